// Package hgfake provides a scripted Mercurial executor for tests that must not spawn hg.
package hgfake

import (
	"context"
	"strings"
	"sync"

	"github.com/temirov/manahg/internal/execshell"
)

const (
	argumentSeparatorConstant        = " "
	unscriptedFailureMessageConstant = "abort: unscripted command"
	failureExitCodeConstant          = 255
)

// Response is the scripted outcome of one hg invocation.
type Response struct {
	Output string
	Error  string
}

// Call records one hg invocation observed by the executor.
type Call struct {
	WorkingDirectory string
	Arguments        []string
}

// Key renders the argument vector as a response lookup key.
func (call Call) Key() string {
	return strings.Join(call.Arguments, argumentSeparatorConstant)
}

// Executor answers hg invocations from per-repository scripts keyed by joined arguments.
// Unscripted invocations fail like a real hg abort.
type Executor struct {
	mutex      sync.Mutex
	scripts    map[string]map[string]Response
	calls      []Call
	BeforeCall func(call Call)
}

// NewExecutor constructs an Executor without scripts.
func NewExecutor() *Executor {
	return &Executor{scripts: make(map[string]map[string]Response)}
}

// Script registers the response for an argument vector in a repository.
func (executor *Executor) Script(repositoryPath string, arguments string, response Response) *Executor {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	repositoryScripts, exists := executor.scripts[repositoryPath]
	if !exists {
		repositoryScripts = make(map[string]Response)
		executor.scripts[repositoryPath] = repositoryScripts
	}
	repositoryScripts[arguments] = response
	return executor
}

// ScriptState registers the responses a refresh issues for a repository.
func (executor *Executor) ScriptState(repositoryPath string, branch string, revision string, statusOutput string, phase string) *Executor {
	executor.Script(repositoryPath, "branch", Response{Output: branch})
	executor.Script(repositoryPath, "id -n", Response{Output: revision})
	executor.Script(repositoryPath, "status -q", Response{Output: statusOutput})
	executor.Script(repositoryPath, "log -r . --template {phase}", Response{Output: phase})
	return executor
}

// ExecuteMercurial implements shared.MercurialExecutor.
func (executor *Executor) ExecuteMercurial(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	call := Call{WorkingDirectory: details.WorkingDirectory, Arguments: append([]string{}, details.Arguments...)}
	if executor.BeforeCall != nil {
		executor.BeforeCall(call)
	}

	executor.mutex.Lock()
	executor.calls = append(executor.calls, call)
	response, scripted := executor.scripts[call.WorkingDirectory][call.Key()]
	executor.mutex.Unlock()

	command := execshell.ShellCommand{Name: execshell.CommandMercurial, Details: details}
	if !scripted {
		return execshell.ExecutionResult{}, execshell.CommandFailedError{
			Command: command,
			Result:  execshell.ExecutionResult{StandardError: unscriptedFailureMessageConstant, ExitCode: failureExitCodeConstant},
		}
	}
	if len(response.Error) > 0 {
		return execshell.ExecutionResult{}, execshell.CommandFailedError{
			Command: command,
			Result:  execshell.ExecutionResult{StandardError: response.Error, ExitCode: failureExitCodeConstant},
		}
	}
	return execshell.ExecutionResult{StandardOutput: strings.TrimSpace(response.Output)}, nil
}

// Calls returns a copy of the recorded invocations.
func (executor *Executor) Calls() []Call {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	return append([]Call{}, executor.calls...)
}

// CallsFor returns the joined argument vectors invoked in one repository, in order.
func (executor *Executor) CallsFor(repositoryPath string) []string {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	keys := make([]string, 0)
	for _, call := range executor.calls {
		if call.WorkingDirectory == repositoryPath {
			keys = append(keys, call.Key())
		}
	}
	return keys
}

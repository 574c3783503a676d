package hgrepo

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/temirov/manahg/internal/execshell"
	"github.com/temirov/manahg/internal/repos/shared"
	"github.com/temirov/manahg/internal/repository"
)

const (
	branchSubcommandConstant          = "branch"
	branchesSubcommandConstant        = "branches"
	logSubcommandConstant             = "log"
	identifySubcommandConstant        = "id"
	statusSubcommandConstant          = "status"
	pullSubcommandConstant            = "pull"
	updateSubcommandConstant          = "update"
	commitSubcommandConstant          = "commit"
	revertSubcommandConstant          = "revert"
	revisionFlagConstant              = "-r"
	currentRevisionConstant           = "."
	templateFlagConstant              = "--template"
	phaseTemplateConstant             = "{phase}"
	numericIdentifierFlagConstant     = "-n"
	quietFlagConstant                 = "-q"
	branchFlagConstant                = "-b"
	messageFlagConstant               = "-m"
	allFlagConstant                   = "--all"
	lastPublicRevsetTemplateConstant  = "last(public() and branch(\"%s\"))"
	pullCurrentOperationConstant      = "pull current branch"
	updateLastPublicOperationConstant = "update to last public"
	commitOperationConstant           = "commit"
	updateBranchOperationConstant     = "switch branch"
)

// Client runs Mercurial verbs against repositories through an executor.
type Client struct {
	executor shared.MercurialExecutor
}

// NewClient constructs a Client backed by the provided executor.
func NewClient(executor shared.MercurialExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// Refresh recomputes the VCS-derived fields of the record. Each query falls back
// to its sentinel on failure so the result is always a complete State.
func (client *Client) Refresh(executionContext context.Context, record repository.Record) repository.Record {
	repositoryPath := record.Path

	currentBranch, branchError := client.run(executionContext, repositoryPath, branchSubcommandConstant)
	if branchError != nil {
		currentBranch = repository.BranchUnknownSentinel
	}

	revision, modified := client.readRevisionAndModification(executionContext, repositoryPath)

	commitType, phaseError := client.run(executionContext, repositoryPath, logSubcommandConstant, revisionFlagConstant, currentRevisionConstant, templateFlagConstant, phaseTemplateConstant)
	if phaseError != nil {
		commitType = repository.PhaseUnknownSentinel
	} else {
		commitType = capitalizeFirst(commitType)
	}

	return record.WithState(repository.State{
		CurrentBranch: currentBranch,
		Revision:      revision,
		Modified:      modified,
		CommitType:    commitType,
	})
}

func (client *Client) readRevisionAndModification(executionContext context.Context, repositoryPath string) (string, bool) {
	revision, identifyError := client.run(executionContext, repositoryPath, identifySubcommandConstant, numericIdentifierFlagConstant)
	if identifyError != nil {
		return repository.RevisionUnknownSentinel, false
	}

	statusOutput, statusError := client.run(executionContext, repositoryPath, statusSubcommandConstant, quietFlagConstant)
	if statusError != nil {
		return revision, false
	}
	return revision, len(statusOutput) > 0
}

// ListBranches returns the first token of every line printed by hg branches.
func (client *Client) ListBranches(executionContext context.Context, repositoryPath string) ([]string, error) {
	output, branchesError := client.run(executionContext, repositoryPath, branchesSubcommandConstant)
	if branchesError != nil {
		return nil, branchesError
	}

	branchNames := make([]string, 0)
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		branchNames = append(branchNames, fields[0])
	}
	return branchNames, nil
}

// PullAll pulls every branch from the default path.
func (client *Client) PullAll(executionContext context.Context, repositoryPath string) (string, error) {
	return client.run(executionContext, repositoryPath, pullSubcommandConstant)
}

// PullCurrent pulls only the record's current branch.
func (client *Client) PullCurrent(executionContext context.Context, record repository.Record) (string, error) {
	if !record.BranchKnown() {
		return "", PreconditionError{Operation: pullCurrentOperationConstant, Reason: branchUnknownReasonConstant}
	}
	return client.run(executionContext, record.Path, pullSubcommandConstant, branchFlagConstant, record.CurrentBranch)
}

// UpdateToLatest updates the working directory to the tip of its branch.
func (client *Client) UpdateToLatest(executionContext context.Context, repositoryPath string) (string, error) {
	return client.run(executionContext, repositoryPath, updateSubcommandConstant)
}

// UpdateBranch switches the working directory to the named branch.
func (client *Client) UpdateBranch(executionContext context.Context, repositoryPath string, branchName string) (string, error) {
	validatedBranch, branchError := shared.NewBranchName(branchName)
	if branchError != nil {
		return "", PreconditionError{Operation: updateBranchOperationConstant, Reason: branchTargetInvalidReasonConstant}
	}
	return client.run(executionContext, repositoryPath, updateSubcommandConstant, validatedBranch.String())
}

// Commit records all working directory changes with the supplied message.
func (client *Client) Commit(executionContext context.Context, repositoryPath string, message string) (string, error) {
	if len(strings.TrimSpace(message)) == 0 {
		return "", PreconditionError{Operation: commitOperationConstant, Reason: commitMessageEmptyReasonConstant}
	}
	return client.run(executionContext, repositoryPath, commitSubcommandConstant, messageFlagConstant, message)
}

// RevertAll discards every uncommitted change in the working directory.
func (client *Client) RevertAll(executionContext context.Context, repositoryPath string) (string, error) {
	return client.run(executionContext, repositoryPath, revertSubcommandConstant, allFlagConstant)
}

// UpdateToLastPublic updates to the newest public changeset on the record's current branch.
func (client *Client) UpdateToLastPublic(executionContext context.Context, record repository.Record) (string, error) {
	if !record.BranchKnown() {
		return "", PreconditionError{Operation: updateLastPublicOperationConstant, Reason: branchUnknownReasonConstant}
	}
	revset := fmt.Sprintf(lastPublicRevsetTemplateConstant, record.CurrentBranch)
	return client.run(executionContext, record.Path, updateSubcommandConstant, revisionFlagConstant, revset)
}

func (client *Client) run(executionContext context.Context, repositoryPath string, arguments ...string) (string, error) {
	executionResult, executionError := client.executor.ExecuteMercurial(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

func capitalizeFirst(value string) string {
	firstRune, runeWidth := utf8.DecodeRuneInString(value)
	if runeWidth == 0 {
		return value
	}
	return string(unicode.ToUpper(firstRune)) + value[runeWidth:]
}

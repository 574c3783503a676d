package shared

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	"github.com/temirov/manahg/internal/execshell"
)

const (
	repositoryPathEmptyMessageConstant   = "repository path must not be empty"
	repositoryPathInvalidMessageConstant = "repository path must not contain line breaks"
	branchNameEmptyMessageConstant       = "branch name must not be empty"
	branchNameInvalidMessageConstant     = "branch name must not contain colons, line breaks or NUL characters"
	forbiddenPathCharactersConstant      = "\n\r\x00"
	branchNameOptionMessageConstant      = "branch name must not start with a dash"
	forbiddenBranchCharactersConstant    = ":\n\r\x00"
	optionPrefixConstant                 = "-"
)

// ErrRepositoryPathEmpty indicates a blank repository path.
var ErrRepositoryPathEmpty = errors.New(repositoryPathEmptyMessageConstant)

// ErrRepositoryPathInvalid indicates a repository path carrying control characters.
var ErrRepositoryPathInvalid = errors.New(repositoryPathInvalidMessageConstant)

// ErrBranchNameEmpty indicates a blank branch name.
var ErrBranchNameEmpty = errors.New(branchNameEmptyMessageConstant)

// ErrBranchNameInvalid indicates a branch name Mercurial would reject.
var ErrBranchNameInvalid = errors.New(branchNameInvalidMessageConstant)

// ErrBranchNameLooksLikeOption indicates a branch name hg would parse as a command-line option.
var ErrBranchNameLooksLikeOption = errors.New(branchNameOptionMessageConstant)

// RepositoryPath is a validated repository location.
type RepositoryPath string

// NewRepositoryPath trims and validates a repository path.
func NewRepositoryPath(raw string) (RepositoryPath, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", ErrRepositoryPathEmpty
	}
	if strings.ContainsAny(trimmed, forbiddenPathCharactersConstant) {
		return "", ErrRepositoryPathInvalid
	}
	return RepositoryPath(trimmed), nil
}

func (path RepositoryPath) String() string {
	return string(path)
}

// BranchName is a validated Mercurial named branch.
type BranchName string

// NewBranchName trims and validates a Mercurial branch name.
func NewBranchName(raw string) (BranchName, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", ErrBranchNameEmpty
	}
	if strings.HasPrefix(trimmed, optionPrefixConstant) {
		return "", ErrBranchNameLooksLikeOption
	}
	if strings.ContainsAny(trimmed, forbiddenBranchCharactersConstant) {
		return "", ErrBranchNameInvalid
	}
	return BranchName(trimmed), nil
}

func (name BranchName) String() string {
	return string(name)
}

// FileSystem is the file access the configuration store needs to replace its document atomically.
type FileSystem interface {
	MkdirAll(path string, permissions fs.FileMode) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	Rename(oldPath string, newPath string) error
	Remove(path string) error
}

// MercurialExecutor exposes the subset of shell execution used by repository services.
type MercurialExecutor interface {
	ExecuteMercurial(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryDiscoverer locates Mercurial repositories for bulk operations.
type RepositoryDiscoverer interface {
	DiscoverRepositories(roots []string) ([]string, error)
}

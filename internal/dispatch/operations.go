package dispatch

import (
	"context"
	"errors"

	"github.com/temirov/manahg/internal/repository"
)

const (
	unsupportedOperationMessageConstant = "unsupported repository operation"

	refreshNameConstant            = "refresh"
	pullAllNameConstant            = "pull all branches"
	pullCurrentNameConstant        = "pull current branch"
	updateToLatestNameConstant     = "update to latest"
	switchBranchNameConstant       = "switch branch"
	commitNameConstant             = "commit"
	revertAllNameConstant          = "revert all"
	updateToLastPublicNameConstant = "update to last public"

	refreshProgressLabelConstant            = "Refreshing..."
	pullAllProgressLabelConstant            = "Pull All Branches..."
	pullCurrentProgressLabelConstant        = "Pull Current Branch..."
	updateToLatestProgressLabelConstant     = "Update to Latest..."
	switchBranchProgressLabelConstant       = "Switching..."
	commitProgressLabelConstant             = "Committing..."
	revertAllProgressLabelConstant          = "Reverting..."
	updateToLastPublicProgressLabelConstant = "Updating to last public..."

	readySuccessLabelConstant     = "Ready"
	genericSuccessLabelConstant   = "Success"
	switchedSuccessLabelConstant  = "Switched"
	committedSuccessLabelConstant = "Committed"
	revertedSuccessLabelConstant  = "Reverted"
)

// ErrUnsupportedOperation indicates an Operation value outside the closed set.
var ErrUnsupportedOperation = errors.New(unsupportedOperationMessageConstant)

// Operation is one of the closed set of bulk repository operations.
type Operation interface {
	isOperation()
}

// Refresh recomputes repository state without mutating the repository.
type Refresh struct{}

// PullAll pulls every branch.
type PullAll struct{}

// PullCurrent pulls the current branch only.
type PullCurrent struct{}

// UpdateToLatest updates to the tip of the current branch.
type UpdateToLatest struct{}

// SwitchBranch updates the working directory to Target.
type SwitchBranch struct {
	Target string
}

// Commit commits every change with Message.
type Commit struct {
	Message string
}

// RevertAll discards uncommitted changes.
type RevertAll struct{}

// UpdateToLastPublic updates to the newest public changeset of the current branch.
type UpdateToLastPublic struct{}

func (Refresh) isOperation()            {}
func (PullAll) isOperation()            {}
func (PullCurrent) isOperation()        {}
func (UpdateToLatest) isOperation()     {}
func (SwitchBranch) isOperation()       {}
func (Commit) isOperation()             {}
func (RevertAll) isOperation()          {}
func (UpdateToLastPublic) isOperation() {}

// RepositoryOperator is the per-repository verb set the dispatcher drives.
type RepositoryOperator interface {
	Refresh(executionContext context.Context, record repository.Record) repository.Record
	PullAll(executionContext context.Context, repositoryPath string) (string, error)
	PullCurrent(executionContext context.Context, record repository.Record) (string, error)
	UpdateToLatest(executionContext context.Context, repositoryPath string) (string, error)
	UpdateBranch(executionContext context.Context, repositoryPath string, branchName string) (string, error)
	Commit(executionContext context.Context, repositoryPath string, message string) (string, error)
	RevertAll(executionContext context.Context, repositoryPath string) (string, error)
	UpdateToLastPublic(executionContext context.Context, record repository.Record) (string, error)
}

type operationFunc func(executionContext context.Context, operator RepositoryOperator, record repository.Record) error

// Descriptor names an operation and the status texts shown while it runs and when it succeeds.
type Descriptor struct {
	Name          string
	ProgressLabel string
	SuccessLabel  string
	run           operationFunc
}

// Describe maps an operation to its descriptor.
func Describe(operation Operation) Descriptor {
	switch typedOperation := operation.(type) {
	case Refresh:
		return Descriptor{Name: refreshNameConstant, ProgressLabel: refreshProgressLabelConstant, SuccessLabel: readySuccessLabelConstant, run: skipMutation}
	case PullAll:
		return Descriptor{Name: pullAllNameConstant, ProgressLabel: pullAllProgressLabelConstant, SuccessLabel: genericSuccessLabelConstant, run: byPath(RepositoryOperator.PullAll)}
	case PullCurrent:
		return Descriptor{Name: pullCurrentNameConstant, ProgressLabel: pullCurrentProgressLabelConstant, SuccessLabel: genericSuccessLabelConstant, run: byRecord(RepositoryOperator.PullCurrent)}
	case UpdateToLatest:
		return Descriptor{Name: updateToLatestNameConstant, ProgressLabel: updateToLatestProgressLabelConstant, SuccessLabel: genericSuccessLabelConstant, run: byPath(RepositoryOperator.UpdateToLatest)}
	case SwitchBranch:
		return Descriptor{
			Name:          switchBranchNameConstant,
			ProgressLabel: switchBranchProgressLabelConstant,
			SuccessLabel:  switchedSuccessLabelConstant,
			run: func(executionContext context.Context, operator RepositoryOperator, record repository.Record) error {
				_, switchError := operator.UpdateBranch(executionContext, record.Path, typedOperation.Target)
				return switchError
			},
		}
	case Commit:
		return Descriptor{
			Name:          commitNameConstant,
			ProgressLabel: commitProgressLabelConstant,
			SuccessLabel:  committedSuccessLabelConstant,
			run: func(executionContext context.Context, operator RepositoryOperator, record repository.Record) error {
				_, commitError := operator.Commit(executionContext, record.Path, typedOperation.Message)
				return commitError
			},
		}
	case RevertAll:
		return Descriptor{Name: revertAllNameConstant, ProgressLabel: revertAllProgressLabelConstant, SuccessLabel: revertedSuccessLabelConstant, run: byPath(RepositoryOperator.RevertAll)}
	case UpdateToLastPublic:
		return Descriptor{Name: updateToLastPublicNameConstant, ProgressLabel: updateToLastPublicProgressLabelConstant, SuccessLabel: genericSuccessLabelConstant, run: byRecord(RepositoryOperator.UpdateToLastPublic)}
	default:
		return Descriptor{
			Name:          unsupportedOperationMessageConstant,
			ProgressLabel: refreshProgressLabelConstant,
			SuccessLabel:  readySuccessLabelConstant,
			run: func(context.Context, RepositoryOperator, repository.Record) error {
				return ErrUnsupportedOperation
			},
		}
	}
}

func skipMutation(context.Context, RepositoryOperator, repository.Record) error {
	return nil
}

func byPath(method func(RepositoryOperator, context.Context, string) (string, error)) operationFunc {
	return func(executionContext context.Context, operator RepositoryOperator, record repository.Record) error {
		_, operationError := method(operator, executionContext, record.Path)
		return operationError
	}
}

func byRecord(method func(RepositoryOperator, context.Context, repository.Record) (string, error)) operationFunc {
	return func(executionContext context.Context, operator RepositoryOperator, record repository.Record) error {
		_, operationError := method(operator, executionContext, record)
		return operationError
	}
}

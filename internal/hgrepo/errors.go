package hgrepo

import (
	"errors"
	"fmt"
)

const (
	executorNotConfiguredMessageConstant = "mercurial repository client requires an executor"
	preconditionErrorTemplateConstant    = "%s: %s"
	branchUnknownReasonConstant          = "current branch unknown"
	commitMessageEmptyReasonConstant     = "commit message must not be empty"
	branchTargetInvalidReasonConstant    = "target branch invalid"
)

// ErrExecutorNotConfigured indicates that NewClient received a nil executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// PreconditionError reports an operation rejected before any hg process was started.
type PreconditionError struct {
	Operation string
	Reason    string
}

func (preconditionError PreconditionError) Error() string {
	return fmt.Sprintf(preconditionErrorTemplateConstant, preconditionError.Operation, preconditionError.Reason)
}

// Package dispatch fans a repository operation out over a selection of records.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/manahg/internal/events"
	"github.com/temirov/manahg/internal/repository"
)

const (
	operatorNotConfiguredMessageConstant = "dispatcher requires a repository operator"
	errorStatusPrefixConstant            = "Error: "
	errorStatusTemplateConstant          = errorStatusPrefixConstant + "%s"
	batchStartedLogMessageConstant       = "batch started"
	batchCompletedLogMessageConstant     = "batch completed"
	recordFailedLogMessageConstant       = "repository operation failed"
	logFieldBatchIdentifierConstant      = "batch_id"
	logFieldOperationConstant            = "operation"
	logFieldSelectionSizeConstant        = "selection_size"
	logFieldRepositoryPathConstant       = "repository_path"
)

// ErrOperatorNotConfigured indicates that NewDispatcher received a nil operator.
var ErrOperatorNotConfigured = errors.New(operatorNotConfiguredMessageConstant)

// DispatcherConfiguration customizes dispatcher behavior.
type DispatcherConfiguration struct {
	// MaxParallel caps concurrent workers in a batch; zero or negative means one worker per record.
	MaxParallel int
}

// Dispatcher runs operations over record selections and reports through a Sink.
type Dispatcher struct {
	logger        *zap.Logger
	operator      RepositoryOperator
	configuration DispatcherConfiguration
}

// NewDispatcher constructs a Dispatcher with unbounded parallelism.
func NewDispatcher(logger *zap.Logger, operator RepositoryOperator) (*Dispatcher, error) {
	return NewDispatcherWithConfiguration(logger, operator, DispatcherConfiguration{})
}

// NewDispatcherWithConfiguration constructs a Dispatcher using the provided configuration.
func NewDispatcherWithConfiguration(logger *zap.Logger, operator RepositoryOperator, configuration DispatcherConfiguration) (*Dispatcher, error) {
	if operator == nil {
		return nil, ErrOperatorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{logger: logger, operator: operator, configuration: configuration}, nil
}

// Dispatch publishes an in-progress StatusPatch for every selected record, runs the operation
// on a private copy of each record concurrently, publishes exactly one RecordUpdated per record
// and finally one BatchCompleted. It returns after the BatchCompleted was published.
// Operation failures are reported as status text and never returned.
func (dispatcher *Dispatcher) Dispatch(executionContext context.Context, batchIdentifier events.BatchID, selection []repository.Record, operation Operation, sink events.Sink) {
	descriptor := Describe(operation)
	dispatcher.logger.Debug(
		batchStartedLogMessageConstant,
		zap.Uint64(logFieldBatchIdentifierConstant, uint64(batchIdentifier)),
		zap.String(logFieldOperationConstant, descriptor.Name),
		zap.Int(logFieldSelectionSizeConstant, len(selection)),
	)

	for selectionIndex := range selection {
		sink.Publish(events.StatusPatch{BatchID: batchIdentifier, Path: selection[selectionIndex].Path, Status: descriptor.ProgressLabel})
	}

	workerGroup := &errgroup.Group{}
	if dispatcher.configuration.MaxParallel > 0 {
		workerGroup.SetLimit(dispatcher.configuration.MaxParallel)
	}
	for selectionIndex := range selection {
		workingCopy := selection[selectionIndex]
		workerGroup.Go(func() error {
			sink.Publish(events.RecordUpdated{BatchID: batchIdentifier, Record: dispatcher.runOne(executionContext, descriptor, workingCopy)})
			return nil
		})
	}
	_ = workerGroup.Wait()

	dispatcher.logger.Debug(batchCompletedLogMessageConstant, zap.Uint64(logFieldBatchIdentifierConstant, uint64(batchIdentifier)))
	sink.Publish(events.BatchCompleted{BatchID: batchIdentifier})
}

func (dispatcher *Dispatcher) runOne(executionContext context.Context, descriptor Descriptor, workingCopy repository.Record) repository.Record {
	operationError := descriptor.run(executionContext, dispatcher.operator, workingCopy)
	refreshed := dispatcher.operator.Refresh(executionContext, workingCopy)
	if operationError != nil {
		dispatcher.logger.Debug(
			recordFailedLogMessageConstant,
			zap.String(logFieldOperationConstant, descriptor.Name),
			zap.String(logFieldRepositoryPathConstant, workingCopy.Path),
			zap.Error(operationError),
		)
		return refreshed.WithStatus(FormatErrorStatus(operationError))
	}
	return refreshed.WithStatus(descriptor.SuccessLabel)
}

// FormatErrorStatus renders an operation failure as record status text.
func FormatErrorStatus(operationError error) string {
	return fmt.Sprintf(errorStatusTemplateConstant, operationError.Error())
}

// IsErrorStatus reports whether status text was produced by FormatErrorStatus.
func IsErrorStatus(status string) bool {
	return strings.HasPrefix(status, errorStatusPrefixConstant)
}

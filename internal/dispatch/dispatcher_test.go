package dispatch_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/manahg/internal/dispatch"
	"github.com/temirov/manahg/internal/events"
	"github.com/temirov/manahg/internal/hgrepo"
	"github.com/temirov/manahg/internal/hgrepo/hgfake"
	"github.com/temirov/manahg/internal/repository"
)

const (
	firstRepositoryPath  = "/work/R1"
	secondRepositoryPath = "/work/R2"
	noRepositoryMessage  = "abort: no repository"
	dispatchBatchID      = events.BatchID(3)
)

type recordingSink struct {
	mutex    sync.Mutex
	messages []events.Message
}

func (sink *recordingSink) Publish(message events.Message) {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	sink.messages = append(sink.messages, message)
}

func (sink *recordingSink) recordUpdates() map[string]repository.Record {
	updates := make(map[string]repository.Record)
	for _, message := range sink.messages {
		if update, isUpdate := message.(events.RecordUpdated); isUpdate {
			updates[update.Record.Path] = update.Record
		}
	}
	return updates
}

func newDispatcher(testInstance *testing.T, executor *hgfake.Executor, configuration dispatch.DispatcherConfiguration) *dispatch.Dispatcher {
	testInstance.Helper()
	client, clientError := hgrepo.NewClient(executor)
	require.NoError(testInstance, clientError)
	dispatcher, dispatcherError := dispatch.NewDispatcherWithConfiguration(zap.NewNop(), client, configuration)
	require.NoError(testInstance, dispatcherError)
	return dispatcher
}

func TestDispatchPublishesPatchesUpdatesAndCompletion(testInstance *testing.T) {
	executor := hgfake.NewExecutor().
		ScriptState(firstRepositoryPath, "default", "11", "", "public").
		ScriptState(secondRepositoryPath, "feature", "5", "", "draft").
		Script(firstRepositoryPath, "pull", hgfake.Response{Output: "pulling from default\nno changes found"}).
		Script(secondRepositoryPath, "pull", hgfake.Response{Error: noRepositoryMessage})
	dispatcher := newDispatcher(testInstance, executor, dispatch.DispatcherConfiguration{})

	selection := []repository.Record{repository.New(firstRepositoryPath), repository.New(secondRepositoryPath)}
	sink := &recordingSink{}
	dispatcher.Dispatch(context.Background(), dispatchBatchID, selection, dispatch.PullAll{}, sink)

	require.Len(testInstance, sink.messages, 5)
	require.Equal(testInstance, events.StatusPatch{BatchID: dispatchBatchID, Path: firstRepositoryPath, Status: "Pull All Branches..."}, sink.messages[0])
	require.Equal(testInstance, events.StatusPatch{BatchID: dispatchBatchID, Path: secondRepositoryPath, Status: "Pull All Branches..."}, sink.messages[1])
	require.Equal(testInstance, events.BatchCompleted{BatchID: dispatchBatchID}, sink.messages[4])

	updates := sink.recordUpdates()
	require.Len(testInstance, updates, 2)
	require.Equal(testInstance, "Success", updates[firstRepositoryPath].LastStatus)
	require.Equal(testInstance, "Error: "+noRepositoryMessage, updates[secondRepositoryPath].LastStatus)
	require.Equal(testInstance, "feature", updates[secondRepositoryPath].CurrentBranch)
	require.Equal(testInstance, "Public", updates[firstRepositoryPath].CommitType)
}

func TestDispatchOperationTable(testInstance *testing.T) {
	testCases := []struct {
		name             string
		operation        dispatch.Operation
		record           repository.Record
		scriptedCommand  string
		expectedProgress string
		expectedStatus   string
	}{
		{
			name:             "refresh",
			operation:        dispatch.Refresh{},
			record:           repository.New(firstRepositoryPath),
			expectedProgress: "Refreshing...",
			expectedStatus:   "Ready",
		},
		{
			name:             "pull_current",
			operation:        dispatch.PullCurrent{},
			record:           repository.New(firstRepositoryPath).WithState(repository.State{CurrentBranch: "stable"}),
			scriptedCommand:  "pull -b stable",
			expectedProgress: "Pull Current Branch...",
			expectedStatus:   "Success",
		},
		{
			name:             "pull_current_unknown_branch",
			operation:        dispatch.PullCurrent{},
			record:           repository.New(firstRepositoryPath).WithState(repository.State{CurrentBranch: repository.BranchUnknownSentinel}),
			expectedProgress: "Pull Current Branch...",
			expectedStatus:   "Error: pull current branch: current branch unknown",
		},
		{
			name:             "update_to_latest",
			operation:        dispatch.UpdateToLatest{},
			record:           repository.New(firstRepositoryPath),
			scriptedCommand:  "update",
			expectedProgress: "Update to Latest...",
			expectedStatus:   "Success",
		},
		{
			name:             "switch_branch",
			operation:        dispatch.SwitchBranch{Target: "stable"},
			record:           repository.New(firstRepositoryPath),
			scriptedCommand:  "update stable",
			expectedProgress: "Switching...",
			expectedStatus:   "Switched",
		},
		{
			name:             "commit",
			operation:        dispatch.Commit{Message: "release notes"},
			record:           repository.New(firstRepositoryPath),
			scriptedCommand:  "commit -m release notes",
			expectedProgress: "Committing...",
			expectedStatus:   "Committed",
		},
		{
			name:             "revert_all",
			operation:        dispatch.RevertAll{},
			record:           repository.New(firstRepositoryPath),
			scriptedCommand:  "revert --all",
			expectedProgress: "Reverting...",
			expectedStatus:   "Reverted",
		},
		{
			name:             "update_to_last_public",
			operation:        dispatch.UpdateToLastPublic{},
			record:           repository.New(firstRepositoryPath).WithState(repository.State{CurrentBranch: "default"}),
			scriptedCommand:  `update -r last(public() and branch("default"))`,
			expectedProgress: "Updating to last public...",
			expectedStatus:   "Success",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := hgfake.NewExecutor().ScriptState(firstRepositoryPath, "default", "2", "", "draft")
			if len(testCase.scriptedCommand) > 0 {
				executor.Script(firstRepositoryPath, testCase.scriptedCommand, hgfake.Response{})
			}
			dispatcher := newDispatcher(testInstance, executor, dispatch.DispatcherConfiguration{MaxParallel: 1})

			sink := &recordingSink{}
			dispatcher.Dispatch(context.Background(), dispatchBatchID, []repository.Record{testCase.record}, testCase.operation, sink)

			require.Len(testInstance, sink.messages, 3)
			require.Equal(testInstance, events.StatusPatch{BatchID: dispatchBatchID, Path: firstRepositoryPath, Status: testCase.expectedProgress}, sink.messages[0])
			update, isUpdate := sink.messages[1].(events.RecordUpdated)
			require.True(testInstance, isUpdate)
			require.Equal(testInstance, testCase.expectedStatus, update.Record.LastStatus)
			require.Equal(testInstance, "default", update.Record.CurrentBranch)
			require.Equal(testInstance, events.BatchCompleted{BatchID: dispatchBatchID}, sink.messages[2])
			require.Equal(testInstance, testCase.expectedProgress, dispatch.Describe(testCase.operation).ProgressLabel)
		})
	}
}

func TestDispatchEmptySelectionStillCompletes(testInstance *testing.T) {
	dispatcher := newDispatcher(testInstance, hgfake.NewExecutor(), dispatch.DispatcherConfiguration{})

	sink := &recordingSink{}
	dispatcher.Dispatch(context.Background(), dispatchBatchID, nil, dispatch.Refresh{}, sink)
	require.Equal(testInstance, []events.Message{events.BatchCompleted{BatchID: dispatchBatchID}}, sink.messages)
}

func TestNewDispatcherRequiresOperator(testInstance *testing.T) {
	_, dispatcherError := dispatch.NewDispatcher(zap.NewNop(), nil)
	require.ErrorIs(testInstance, dispatcherError, dispatch.ErrOperatorNotConfigured)
}

func TestIsErrorStatusRecognizesFormattedFailures(testInstance *testing.T) {
	require.True(testInstance, dispatch.IsErrorStatus(dispatch.FormatErrorStatus(errors.New("abort: no repository found"))))
	require.False(testInstance, dispatch.IsErrorStatus("Success"))
	require.False(testInstance, dispatch.IsErrorStatus(""))
}

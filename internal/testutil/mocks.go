// Package testutil provides testify mocks for the interfaces of the converty
// core library (pkg/converter and subpackages) plus small fixture helpers.
package testutil

import (
	"context"
	"time"

	"github.com/stackvity/converty/pkg/converter"
	"github.com/stackvity/converty/pkg/converter/engine"
	"github.com/stackvity/converty/pkg/converter/history"
	"github.com/stretchr/testify/mock"
)

// MockHooks provides a mock implementation of the converter.Hooks interface.
// OnUnitStatus may be called concurrently; testify's mock.Mock is safe for that,
// but any extra state a test adds to a Run callback must be guarded by the test.
type MockHooks struct {
	mock.Mock
}

// OnBatchStart mocks the OnBatchStart method.
func (m *MockHooks) OnBatchStart(batchID string, total int) error {
	args := m.Called(batchID, total)
	return args.Error(0)
}

// OnUnitStatus mocks the OnUnitStatus method.
func (m *MockHooks) OnUnitStatus(path string, status converter.Status, message string, duration time.Duration) error {
	args := m.Called(path, status, message, duration)
	return args.Error(0)
}

// OnBatchComplete mocks the OnBatchComplete method.
func (m *MockHooks) OnBatchComplete(result converter.Result) error {
	args := m.Called(result)
	return args.Error(0)
}

// MockResolver provides a mock implementation of converter.BackendResolver.
type MockResolver struct {
	mock.Mock
}

// Resolve mocks the Resolve method.
func (m *MockResolver) Resolve(direction engine.Direction, id engine.EngineID) (engine.Backend, error) {
	args := m.Called(direction, id)
	b, _ := args.Get(0).(engine.Backend)
	return b, args.Error(1)
}

// MockBackend provides a mock implementation of engine.Backend.
type MockBackend struct {
	mock.Mock
}

// Name mocks the Name method.
func (m *MockBackend) Name() string {
	args := m.Called()
	return args.String(0)
}

// Concurrent mocks the Concurrent method.
func (m *MockBackend) Concurrent() bool {
	args := m.Called()
	return args.Bool(0)
}

// Open mocks the Open method.
func (m *MockBackend) Open(ctx context.Context) (engine.Session, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(engine.Session)
	return s, args.Error(1)
}

// MockSession provides a mock implementation of engine.Session.
// Convert expectations usually match on the input path with mock.Anything for
// the context and output directory.
type MockSession struct {
	mock.Mock
}

// Convert mocks the Convert method.
func (m *MockSession) Convert(ctx context.Context, inputPath, outputDir string) (string, error) {
	args := m.Called(ctx, inputPath, outputDir)
	return args.String(0), args.Error(1)
}

// Close mocks the Close method.
func (m *MockSession) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockLedger provides a mock implementation of history.Ledger.
type MockLedger struct {
	mock.Mock
}

// Append mocks the Append method.
func (m *MockLedger) Append(r history.Record) error {
	args := m.Called(r)
	return args.Error(0)
}

// ReadAll mocks the ReadAll method.
func (m *MockLedger) ReadAll() ([]history.Record, error) {
	args := m.Called()
	recs, _ := args.Get(0).([]history.Record)
	return recs, args.Error(1)
}

// Clear mocks the Clear method.
func (m *MockLedger) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// MockPackager provides a mock implementation of converter.Packager.
type MockPackager struct {
	mock.Mock
}

// Pack mocks the Pack method.
func (m *MockPackager) Pack(files []string, outputDir string, direction engine.Direction) (string, error) {
	args := m.Called(files, outputDir, direction)
	return args.String(0), args.Error(1)
}

// MockProcessRunner provides a mock implementation of engine.ProcessRunner.
type MockProcessRunner struct {
	mock.Mock
}

// Run mocks the Run method. Arguments are recorded as a single []string.
func (m *MockProcessRunner) Run(ctx context.Context, name string, args ...string) (engine.ProcessResult, error) {
	called := m.Called(ctx, name, args)
	res, _ := called.Get(0).(engine.ProcessResult)
	return res, called.Error(1)
}

package testutil_test

import (
	"github.com/stackvity/converty/internal/testutil"
	"github.com/stackvity/converty/pkg/converter"
	"github.com/stackvity/converty/pkg/converter/engine"
	"github.com/stackvity/converty/pkg/converter/history"
)

// Compile-time checks that the mocks still satisfy the interfaces they stand in for.
var (
	_ converter.Hooks           = (*testutil.MockHooks)(nil)
	_ converter.BackendResolver = (*testutil.MockResolver)(nil)
	_ converter.Packager        = (*testutil.MockPackager)(nil)
	_ engine.Backend            = (*testutil.MockBackend)(nil)
	_ engine.Session            = (*testutil.MockSession)(nil)
	_ engine.ProcessRunner      = (*testutil.MockProcessRunner)(nil)
	_ history.Ledger            = (*testutil.MockLedger)(nil)
)

//go:build !windows

package engine

import (
	"context"
	"fmt"
	"runtime"
)

// DefaultLauncher returns the platform launcher. Outside Windows there is no
// automation server to talk to.
func DefaultLauncher() AppLauncher { return unsupportedLauncher{} }

type unsupportedLauncher struct{}

func (unsupportedLauncher) Launch(ctx context.Context) (App, error) {
	return nil, fmt.Errorf("%w: presentation automation is not available on %s", ErrEngineUnavailable, runtime.GOOS)
}

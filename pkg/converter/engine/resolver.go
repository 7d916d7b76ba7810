package engine

import (
	"fmt"
)

// Resolver picks the backend for a (direction, engine) pair. Backends are
// built by the caller so tests can swap any of them for fakes.
type Resolver struct {
	Raster     Backend
	Automation Backend
	Headless   Backend
}

// Resolve returns the backend serving direction. For DirectionRasterToDeck the
// engine id is ignored.
func (r *Resolver) Resolve(direction Direction, id EngineID) (Backend, error) {
	switch direction {
	case DirectionRasterToDeck:
		if r.Raster == nil {
			return nil, fmt.Errorf("%w: no raster backend configured", ErrEngineUnavailable)
		}
		return r.Raster, nil
	case DirectionDeckToRaster:
		var b Backend
		switch id {
		case EngineAutomation:
			b = r.Automation
		case EngineHeadless:
			b = r.Headless
		default:
			return nil, fmt.Errorf("%w: unknown engine %q", ErrEngineUnavailable, id)
		}
		if b == nil {
			return nil, fmt.Errorf("%w: engine %q not configured", ErrEngineUnavailable, id)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: unknown direction %q", ErrEngineUnavailable, direction)
}

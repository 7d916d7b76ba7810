package converter

import (
	"path/filepath"
	"time"
)

// Request describes one batch.
type Request struct {
	// Inputs are converted in this order. At least one is required.
	Inputs []string
	// OutputDir must be an existing writable directory.
	OutputDir  string
	Direction  Direction
	Compressed bool
	// Engine picks the DeckToRaster backend and is ignored otherwise.
	Engine EngineID
	Mode   Mode
}

// clone copies the request so later changes to the caller's slice cannot
// reach a running batch. Paths are made absolute and a missing mode is
// derived from the input count.
func (r Request) clone() Request {
	c := r
	c.Inputs = make([]string, len(r.Inputs))
	for i, p := range r.Inputs {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		c.Inputs[i] = p
	}
	if r.OutputDir != "" {
		if abs, err := filepath.Abs(r.OutputDir); err == nil {
			c.OutputDir = abs
		}
	}
	if !c.Mode.Valid() {
		c.Mode = ModeSingle
		if len(c.Inputs) > 1 {
			c.Mode = ModeMultiple
		}
	}
	return c
}

// Unit is one input of a batch with its 1-based position.
type Unit struct {
	Path  string
	Index int
	Total int
}

// UnitFailure records why one input produced no output.
type UnitFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Result is the outcome of a batch.
type Result struct {
	BatchID    string        `json:"batchId"`
	Direction  Direction     `json:"direction"`
	Mode       Mode          `json:"mode"`
	Compressed bool          `json:"compressed"`
	Total      int           `json:"total"`
	Outputs    []string      `json:"outputs"` // input order, failed units absent
	Archive    string        `json:"archive,omitempty"`
	Failures   []UnitFailure `json:"failures,omitempty"`
	StartedAt  time.Time     `json:"startedAt"`
	Duration   time.Duration `json:"duration"`
}

// Location is where the batch left its results: the directory holding the
// archive, else the directory of the first output, else "".
func (r Result) Location() string {
	if r.Archive != "" {
		return filepath.Dir(r.Archive)
	}
	if len(r.Outputs) > 0 {
		return filepath.Dir(r.Outputs[0])
	}
	return ""
}

// Succeeded is the number of units that produced an output.
func (r Result) Succeeded() int { return len(r.Outputs) }

// Failed is the number of units that were attempted and failed.
func (r Result) Failed() int { return len(r.Failures) }

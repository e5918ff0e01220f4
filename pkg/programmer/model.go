package programmer

import (
	"time"

	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/types"
	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/voltage"
)

// Config holds engine options.
//   - Timeout: per tool invocation; enforced by the caller's msr.Runner and
//     recorded in the Report
//   - DryRun: encode and build commands without touching the register
type Config struct {
	Timeout time.Duration
	DryRun  bool
}

// _defaultConfig returns a Config with the values used when nothing is set.
func _defaultConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		DryRun:  false,
	}
}

// Stage names the step of the per-plane protocol that failed.
type Stage string

const (
	StageEncode Stage = "encode"
	StageWrite  Stage = "write"
	StageSelect Stage = "select"
	StageRead   Stage = "read"
	StageVerify Stage = "verify"
)

// PlaneResult is the outcome of programming one plane.
type PlaneResult struct {
	Plane      voltage.Plane    `json:"plane" yaml:"plane"`
	Name       string           `json:"name" yaml:"name"`
	Millivolts types.Millivolts `json:"millivolts" yaml:"millivolts"`
	Expected   types.Offset     `json:"expected" yaml:"expected"`
	ReadBack   types.Offset     `json:"read_back" yaml:"read_back"`
	Command    string           `json:"command,omitempty" yaml:"command,omitempty"`
	Stage      Stage            `json:"stage,omitempty" yaml:"stage,omitempty"`
	Err        error            `json:"-" yaml:"-"`
	Error      string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the plane was written and verified.
func (r PlaneResult) OK() bool { return r.Err == nil }

// Status summarizes a run.
type Status int

const (
	StatusNothingAttempted Status = iota // no plane configured
	StatusSuccess                        // every configured plane verified
	StatusPartialFailure                 // at least one configured plane failed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPartialFailure:
		return "partial failure"
	default:
		return "nothing attempted"
	}
}

// Report collects per-plane results in plane order.
type Report struct {
	DryRun  bool          `json:"dry_run" yaml:"dry_run"`
	Timeout string        `json:"timeout" yaml:"timeout"`
	Results []PlaneResult `json:"results" yaml:"results"`
}

// Status returns the aggregate outcome.
func (r *Report) Status() Status {
	if r == nil || len(r.Results) == 0 {
		return StatusNothingAttempted
	}
	if len(r.Failed()) > 0 {
		return StatusPartialFailure
	}
	return StatusSuccess
}

// Failed returns the results that did not verify.
func (r *Report) Failed() []PlaneResult {
	var out []PlaneResult
	if r == nil {
		return out
	}
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Succeeded returns the planes that were written and verified.
func (r *Report) Succeeded() []voltage.Plane {
	var out []voltage.Plane
	if r == nil {
		return out
	}
	for _, res := range r.Results {
		if res.OK() {
			out = append(out, res.Plane)
		}
	}
	return out
}

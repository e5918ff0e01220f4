package programmer

import (
	"errors"
	"fmt"

	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/types"
	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/voltage"
)

var (
	// ErrVerificationFailed indicates that the value read back differs from
	// the value written.
	ErrVerificationFailed = errors.New("programmer: read-back does not match written offset")

	// ErrPlanesFailed is returned by Program when one or more configured
	// planes could not be written and verified.
	ErrPlanesFailed = errors.New("programmer: unable to set all voltage offsets")
)

// PlaneError ties a failure to the plane and protocol step it happened in.
type PlaneError struct {
	Plane    voltage.Plane
	Stage    Stage
	Expected types.Offset
	Err      error
}

func (e *PlaneError) Error() string {
	return fmt.Sprintf("voltage plane index %d (%s): unable to set %s: %s: %v",
		e.Plane.Index(), e.Plane, e.Expected, e.Stage, e.Err)
}

func (e *PlaneError) Unwrap() error { return e.Err }

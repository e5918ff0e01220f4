package msr

import "errors"

var (
	// ErrToolNotFound indicates that wrmsr or rdmsr could not be located.
	ErrToolNotFound = errors.New("msr: register tool not found")

	// ErrTimeout indicates that a tool invocation did not finish in time.
	ErrTimeout = errors.New("msr: tool invocation timed out")

	// ErrWritePermission indicates that writing an offset with wrmsr failed
	// (non-zero exit, usually missing root permissions, or a timeout).
	ErrWritePermission = errors.New("msr: wrmsr write failed")

	// ErrReadSelect indicates that the read-select command could not be
	// written with wrmsr.
	ErrReadSelect = errors.New("msr: wrmsr read-select failed")

	// ErrReadPermission indicates that rdmsr failed to run.
	ErrReadPermission = errors.New("msr: rdmsr read failed")

	// ErrMalformedRead indicates that rdmsr output was not a hexadecimal value.
	ErrMalformedRead = errors.New("msr: malformed rdmsr output")
)

package host

import "errors"

var (
	// ErrNotIntel indicates that the CPU vendor is not GenuineIntel.
	ErrNotIntel = errors.New("host: not an Intel CPU")

	// ErrToolsMissing indicates that wrmsr or rdmsr is not on PATH.
	ErrToolsMissing = errors.New("host: msr-tools not found")

	// ErrModuleUnavailable indicates that the msr kernel module is not loaded
	// and could not be loaded.
	ErrModuleUnavailable = errors.New("host: msr kernel module unavailable")

	// ErrNotRoot indicates that the process lacks root privileges.
	ErrNotRoot = errors.New("host: root permissions required")

	// ErrNoVendor indicates that cpuinfo carried no vendor_id line.
	ErrNoVendor = errors.New("host: no vendor_id in cpuinfo")
)

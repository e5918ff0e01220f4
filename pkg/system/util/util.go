//go:build linux

package util

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"golang.org/x/sys/unix"
)

// SystemSummary returns hostname, kernel release, logical CPU count and total
// memory for the console header. Fields that cannot be read are "unknown".
func SystemSummary() (host, kernel, cpus, mem string) {
	host, kernel, mem = "unknown", "unknown", "unknown"

	if h, err := os.Hostname(); err == nil && h != "" {
		host = h
	}

	var u unix.Utsname
	if err := unix.Uname(&u); err == nil {
		kernel = unix.ByteSliceToString(u.Sysname[:]) + " " + unix.ByteSliceToString(u.Release[:])
	}

	cpus = strconv.Itoa(runtime.NumCPU())

	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err == nil {
		mem = HumanBytes(uint64(si.Totalram) * uint64(si.Unit))
	}
	return host, kernel, cpus, mem
}

// HumanBytes formats n in IEC units with one decimal ("15.5 GiB").
func HumanBytes(n uint64) string {
	const units = "KMGTPE"
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(1024), 0
	for m := n / 1024; m >= 1024 && exp < len(units)-1; m /= 1024 {
		div *= 1024
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), units[exp])
}

// FmtFloat formats f with the fewest digits that round-trip.
func FmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

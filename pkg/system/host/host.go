//go:build linux

package host

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/system/msr"
)

const (
	// CPUInfoPath is read to identify the CPU vendor.
	CPUInfoPath = "/proc/cpuinfo"
	// MSRDevice exists once the msr kernel module is loaded.
	MSRDevice = "/dev/cpu/0/msr"
)

type Vendor int

const (
	Unknown Vendor = iota
	Intel          // GenuineIntel
	AMD            // AuthenticAMD
)

func (v Vendor) String() string {
	switch v {
	case Intel:
		return "GenuineIntel"
	case AMD:
		return "AuthenticAMD"
	default:
		return "unknown"
	}
}

// CPU describes the first processor listed in cpuinfo.
type CPU struct {
	Vendor   Vendor
	VendorID string
	Model    string
}

// DetectCPU parses a cpuinfo file. Only the first processor block is read;
// all logical CPUs of a system share the vendor.
func DetectCPU(path string) (CPU, error) {
	f, err := os.Open(path)
	if err != nil {
		return CPU{}, fmt.Errorf("open cpuinfo: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var (
		cpu CPU
		sc  = bufio.NewScanner(f)
	)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" && cpu.VendorID != "" {
			break // end of the first processor block
		}
		// cpuinfo has: <name>\t: <value>
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(name) {
		case "vendor_id":
			cpu.VendorID = strings.TrimSpace(value)
		case "model name":
			cpu.Model = strings.TrimSpace(value)
		}
	}
	if err := sc.Err(); err != nil {
		return CPU{}, fmt.Errorf("scan cpuinfo: %w", err)
	}
	if cpu.VendorID == "" {
		return CPU{}, ErrNoVendor
	}

	switch cpu.VendorID {
	case Intel.String():
		cpu.Vendor = Intel
	case AMD.String():
		cpu.Vendor = AMD
	}
	return cpu, nil
}

// RequireIntel returns ErrNotIntel unless the CPU in path is an Intel part.
func RequireIntel(path string) (CPU, error) {
	cpu, err := DetectCPU(path)
	if err != nil {
		return cpu, fmt.Errorf("%w: %w", ErrNotIntel, err)
	}
	if cpu.Vendor != Intel {
		return cpu, fmt.Errorf("%w: vendor is %q", ErrNotIntel, cpu.VendorID)
	}
	return cpu, nil
}

// LookupTools resolves each name on PATH and returns their paths in order.
// Every missing name is listed in the ErrToolsMissing error.
func LookupTools(names ...string) ([]string, error) {
	var (
		paths   = make([]string, len(names))
		missing []string
	)
	for i, n := range names {
		p, err := exec.LookPath(n)
		if err != nil {
			missing = append(missing, n)
			continue
		}
		paths[i] = p
	}
	if len(missing) > 0 {
		return paths, fmt.Errorf("%w: %s", ErrToolsMissing, strings.Join(missing, ", "))
	}
	return paths, nil
}

// EnsureModule makes sure device exists, running "modprobe msr" through r
// when it does not.
func EnsureModule(ctx context.Context, r msr.Runner, device string) error {
	if _, err := os.Stat(device); err == nil {
		return nil
	}
	res, err := r.Run(ctx, "modprobe", "msr")
	if err != nil {
		return fmt.Errorf("%w: modprobe msr: %w", ErrModuleUnavailable, err)
	}
	if res.ExitCode != 0 {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = fmt.Sprintf("exit status %d", res.ExitCode)
		}
		return fmt.Errorf("%w: modprobe msr: %s", ErrModuleUnavailable, msg)
	}
	return nil
}

// IsRoot reports whether both the real and effective user IDs are 0.
func IsRoot() bool {
	return unix.Getuid() == 0 && unix.Geteuid() == 0
}

// RequireRoot returns ErrNotRoot unless IsRoot.
func RequireRoot() error {
	if !IsRoot() {
		return ErrNotRoot
	}
	return nil
}

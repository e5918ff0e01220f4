//go:build linux

package msr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/types"
)

const (
	DefaultWrmsr = "wrmsr"
	DefaultRdmsr = "rdmsr"
)

// Tool drives the voltage mailbox through the msr-tools binaries.
// Each call is one blocking process; the tools keep no state between calls.
type Tool struct {
	runner Runner
	wrmsr  string
	rdmsr  string
}

// NewTool returns a Tool that runs wrmsr and rdmsr from PATH through r.
// A nil r uses an ExecRunner with DefaultTimeout.
func NewTool(r Runner) *Tool {
	if r == nil {
		r = NewExecRunner(DefaultTimeout)
	}
	return &Tool{runner: r, wrmsr: DefaultWrmsr, rdmsr: DefaultRdmsr}
}

// WithBinaries overrides the wrmsr and rdmsr paths. Empty values keep the
// current ones.
func (t *Tool) WithBinaries(wrmsr, rdmsr string) *Tool {
	if wrmsr != "" {
		t.wrmsr = wrmsr
	}
	if rdmsr != "" {
		t.rdmsr = rdmsr
	}
	return t
}

// Write issues a write command. Failures wrap ErrWritePermission.
func (t *Tool) Write(ctx context.Context, c Command) error {
	if c.Kind != KindWrite {
		return fmt.Errorf("%w: %s command passed to Write", types.ErrEncoding, c.Kind)
	}
	return t.write(ctx, c, ErrWritePermission)
}

// Select issues a read-select command. Failures wrap ErrReadSelect.
func (t *Tool) Select(ctx context.Context, c Command) error {
	if c.Kind != KindReadSelect {
		return fmt.Errorf("%w: %s command passed to Select", types.ErrEncoding, c.Kind)
	}
	return t.write(ctx, c, ErrReadSelect)
}

func (t *Tool) write(ctx context.Context, c Command, class error) error {
	if err := c.Validate(); err != nil {
		return err
	}
	res, err := t.runner.Run(ctx, t.wrmsr, RegisterHex, c.Hex())
	slog.Debug("wrmsr", "kind", c.Kind.String(), "plane", c.Plane.Index(), "value", c.Hex(),
		"exit", res.ExitCode, "took", res.Duration, "err", err)
	if err != nil {
		return fmt.Errorf("%w: plane %d: %w", class, c.Plane.Index(), err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%w: plane %d: wrmsr exited with %d%s", class, c.Plane.Index(), res.ExitCode, stderrSuffix(res))
	}
	return nil
}

// Read runs rdmsr on Register and returns the low 32 bits of the value,
// which hold the offset selected by the last read-select command.
func (t *Tool) Read(ctx context.Context) (types.Offset, error) {
	res, err := t.runner.Run(ctx, t.rdmsr, RegisterHex)
	slog.Debug("rdmsr", "out", strings.TrimSpace(res.Stdout), "exit", res.ExitCode, "took", res.Duration, "err", err)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrReadPermission, err)
	}
	if res.ExitCode != 0 {
		return 0, fmt.Errorf("%w: rdmsr exited with %d%s", ErrReadPermission, res.ExitCode, stderrSuffix(res))
	}
	return ParseReadback(res.Stdout)
}

// ParseReadback parses rdmsr output: one hexadecimal value, with or without
// a 0x prefix, of up to 64 bits. The offset is taken from the low 32 bits.
func ParseReadback(out string) (types.Offset, error) {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: empty output", ErrMalformedRead)
	}
	s := fields[len(fields)-1]
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformedRead, strings.TrimSpace(out), err)
	}
	return types.Offset(int32(uint32(v))), nil
}

func stderrSuffix(res Result) string {
	if msg := strings.TrimSpace(res.Stderr); msg != "" {
		return ": " + msg
	}
	return ""
}

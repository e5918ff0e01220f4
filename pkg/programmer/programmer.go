package programmer

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/system/msr"
	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/types"
	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/voltage"
)

// Register is the mailbox the engine programs through. *msr.Tool implements it.
type Register interface {
	Write(ctx context.Context, c msr.Command) error
	Select(ctx context.Context, c msr.Command) error
	Read(ctx context.Context) (types.Offset, error)
}

// Engine writes configured offsets and verifies each one by reading it back.
type Engine struct {
	reg Register
	cfg *Config
}

// New creates an engine on top of reg.
// Zero fields in cfg keep their defaults.
func New(reg Register, cfg *Config) *Engine {
	base := _defaultConfig()
	if cfg == nil {
		return &Engine{reg: reg, cfg: base}
	}

	merged := *base
	if cfg.Timeout > 0 {
		merged.Timeout = cfg.Timeout
	}
	merged.DryRun = cfg.DryRun

	return &Engine{reg: reg, cfg: &merged}
}

// Program runs write, select, read and verify for every configured plane in
// index order. A failing plane does not stop the others. The error is nil
// only when every configured plane verified; otherwise it wraps
// ErrPlanesFailed and each PlaneError.
func (e *Engine) Program(ctx context.Context, s voltage.Setting) (*Report, error) {
	rep := &Report{DryRun: e.cfg.DryRun, Timeout: e.cfg.Timeout.String()}

	var errs error
	for _, p := range s.Configured() {
		if err := ctx.Err(); err != nil {
			return rep, multierr.Append(fmt.Errorf("%w: %w", ErrPlanesFailed, err), errs)
		}
		mv, _ := s.Get(p)
		res := e.programPlane(ctx, p, mv)
		if res.Err != nil {
			slog.Error("unable to set voltage offset", "plane", p.Index(), "name", p.String(),
				"offset", res.Expected.String(), "err", res.Err)
			errs = multierr.Append(errs, res.Err)
		} else if !e.cfg.DryRun {
			slog.Info("voltage offset set", "plane", p.Index(), "name", p.String(), "offset", res.Expected.String())
		}
		rep.Results = append(rep.Results, res)
	}

	if errs != nil {
		return rep, multierr.Append(ErrPlanesFailed, errs)
	}
	return rep, nil
}

func (e *Engine) programPlane(ctx context.Context, p voltage.Plane, mv types.Millivolts) PlaneResult {
	res := PlaneResult{Plane: p, Name: p.String(), Millivolts: mv}
	fail := func(stage Stage, err error) PlaneResult {
		res.Stage = stage
		res.Err = &PlaneError{Plane: p, Stage: stage, Expected: res.Expected, Err: err}
		res.Error = res.Err.Error()
		return res
	}

	offset, err := types.Encode(mv)
	if err != nil {
		return fail(StageEncode, err)
	}
	res.Expected = offset

	write, err := msr.NewWrite(p, offset)
	if err != nil {
		return fail(StageEncode, err)
	}
	sel, err := msr.NewReadSelect(p)
	if err != nil {
		return fail(StageEncode, err)
	}
	res.Command = write.Hex()

	if e.cfg.DryRun {
		res.ReadBack = offset
		return res
	}

	if err := e.reg.Write(ctx, write); err != nil {
		return fail(StageWrite, err)
	}
	if err := e.reg.Select(ctx, sel); err != nil {
		return fail(StageSelect, err)
	}
	got, err := e.reg.Read(ctx)
	if err != nil {
		return fail(StageRead, err)
	}
	res.ReadBack = got

	if got != offset {
		return fail(StageVerify, fmt.Errorf("%w: read %s", ErrVerificationFailed, got))
	}
	return res
}

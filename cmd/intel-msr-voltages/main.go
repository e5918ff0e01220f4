//go:build linux

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/config"
	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/programmer"
	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/system/host"
	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/system/msr"
	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/system/util"
	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/types"
)

const version = "1.0.0"

// Exit codes.
const (
	exitOK           = 0
	exitPlanesFailed = 1
	exitNotIntel     = 2
	exitNoModule     = 3
	exitNotRoot      = 4
	exitNoTools      = 5
	exitNoConfig     = 6
	exitUsage        = 127
)

// envTimeout overrides the default per-invocation timeout.
const envTimeout = "INTEL_MSR_VOLTAGES_TIMEOUT"

type opts struct {
	configPath string
	timeout    time.Duration
	dryRun     bool
	verbose    bool
	version    bool

	// outputs
	jsonPath string
	yamlPath string
}

// environment bundles the host checks and the register so tests can swap them.
type environment struct {
	requireIntel func() (host.CPU, error)
	lookupTools  func() error
	ensureModule func(ctx context.Context, r msr.Runner) error
	requireRoot  func() error
	runner       func(timeout time.Duration) msr.Runner
	register     func(r msr.Runner) programmer.Register
}

func hostEnvironment() environment {
	return environment{
		requireIntel: func() (host.CPU, error) { return host.RequireIntel(host.CPUInfoPath) },
		lookupTools: func() error {
			_, err := host.LookupTools(msr.DefaultWrmsr, msr.DefaultRdmsr)
			return err
		},
		ensureModule: func(ctx context.Context, r msr.Runner) error {
			return host.EnsureModule(ctx, r, host.MSRDevice)
		},
		requireRoot: host.RequireRoot,
		runner:      func(timeout time.Duration) msr.Runner { return msr.NewExecRunner(timeout) },
		register:    func(r msr.Runner) programmer.Register { return msr.NewTool(r) },
	}
}

type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr, hostEnvironment()))
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer, env environment) int {
	var o opts

	root := &cobra.Command{
		Use:   "intel-msr-voltages",
		Short: "Set Intel MSR voltage offsets",
		Long: `intel-msr-voltages applies the voltage offsets listed in its configuration
file to the CPU core, Intel GPU, CPU cache, system agent, analog I/O and
digital I/O planes through MSR 0x150, then reads every plane back to confirm
the offset took effect. It requires an Intel CPU, msr-tools (wrmsr/rdmsr),
the msr kernel module and root permissions.

Configuration (default ` + config.DefaultPath + `):
  cpu_core_voltage_offset: -80    # mV
  cpu_cache_voltage_offset: -80
  intel_gpu_voltage_offset: -50

Exit status:
  0  all voltage offsets set       4  root permissions required
  1  some offsets not set          5  msr-tools not found
  2  non-Intel CPU                 6  configuration file not found
  3  msr kernel module unavailable`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError{fmt.Errorf("unexpected argument %q", args[0])}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if o.version {
				fmt.Fprintf(stderr, "intel-msr-voltages version %s\n", version)
				return nil
			}
			setupLogging(stderr, o.verbose)
			return run(cmd.Context(), o, env, stdout)
		},
	}
	root.SetArgs(args)
	root.SetOut(stderr)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.Flags().StringVarP(&o.configPath, "config", "c", config.Path(), "voltage offset configuration file")
	root.Flags().DurationVar(&o.timeout, "timeout", defaultTimeout(), "timeout for each wrmsr/rdmsr invocation")
	root.Flags().BoolVar(&o.dryRun, "dry-run", false, "print the register commands without running them")
	root.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "log every register access")
	root.Flags().BoolVarP(&o.version, "version", "V", false, "output version information and exit")
	root.Flags().StringVar(&o.jsonPath, "json", "", "write the programming report to a JSON file")
	root.Flags().StringVar(&o.yamlPath, "yaml", "", "write the programming report to a YAML file")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	code := exitCode(err)
	if code == exitUsage {
		fmt.Fprintf(stderr, "intel-msr-voltages: %v\nTry 'intel-msr-voltages --help' for more information.\n", err)
		return code
	}
	if errors.Is(err, programmer.ErrPlanesFailed) {
		// each plane failure was already logged by the engine
		slog.Error("voltage offset configuration was not fully set")
		return code
	}
	slog.Error(err.Error())
	return code
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func defaultTimeout() time.Duration {
	if v := strings.TrimSpace(os.Getenv(envTimeout)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return msr.DefaultTimeout
}

func run(ctx context.Context, o opts, env environment, stdout io.Writer) error {
	if o.timeout <= 0 {
		return usageError{fmt.Errorf("timeout must be > 0")}
	}

	hostName, kernel, cpus, mem := util.SystemSummary()
	model := "unknown"

	runner := env.runner(o.timeout)
	if !o.dryRun {
		cpu, err := env.requireIntel()
		if err != nil {
			return err
		}
		model = cpu.Model
		if err := env.lookupTools(); err != nil {
			return err
		}
		if err := env.ensureModule(ctx, runner); err != nil {
			return err
		}
		if err := env.requireRoot(); err != nil {
			return err
		}
	}
	fmt.Fprintf(stdout, _console, version, hostName, kernel, cpus, model, mem, time.Now().Format("2006-01-02 15:04:05"))

	setting, warns, err := config.Parse(o.configPath)
	if err != nil {
		return err
	}
	for _, w := range warns {
		slog.Warn("skipping configuration line", "file", o.configPath, "line", w.Line, "err", w.Error())
	}
	config.WriteSummary(stdout, setting)

	engine := programmer.New(env.register(runner), &programmer.Config{Timeout: o.timeout, DryRun: o.dryRun})
	rep, progErr := engine.Program(ctx, setting)

	if len(rep.Results) > 0 {
		printReport(stdout, rep)
	}
	if err := writeReports(o, rep); err != nil {
		slog.Error("write report", "err", err)
	}

	switch {
	case progErr != nil:
		return progErr
	case rep.Status() == programmer.StatusNothingAttempted:
		fmt.Fprintln(stdout, "intel-msr-voltages: no voltage offsets configured, nothing to do")
	case o.dryRun:
		fmt.Fprintln(stdout, "intel-msr-voltages: dry run, no voltage offsets were written")
	default:
		fmt.Fprintln(stdout, "intel-msr-voltages: voltage offset configuration was set successfully!")
	}
	return nil
}

func exitCode(err error) int {
	var uerr usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &uerr):
		return exitUsage
	case errors.Is(err, host.ErrNotIntel):
		return exitNotIntel
	case errors.Is(err, host.ErrToolsMissing):
		return exitNoTools
	case errors.Is(err, host.ErrModuleUnavailable):
		return exitNoModule
	case errors.Is(err, host.ErrNotRoot):
		return exitNotRoot
	case errors.Is(err, config.ErrConfigNotFound), errors.Is(err, config.ErrConfigUnreadable):
		return exitNoConfig
	case errors.Is(err, programmer.ErrPlanesFailed):
		return exitPlanesFailed
	default:
		return exitPlanesFailed
	}
}

func printReport(w io.Writer, rep *programmer.Report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tPLANE\tOFFSET (mV)\tAPPLIED (mV)\tCOMMAND\tREAD BACK\tSTATUS")
	fmt.Fprintln(tw, "-----\t-----\t-----------\t------------\t-------\t---------\t------")
	for _, r := range rep.Results {
		status := "ok"
		switch {
		case r.Err != nil:
			status = "FAILED"
		case rep.DryRun:
			status = "dry-run"
		}
		command, readBack := r.Command, r.ReadBack.String()
		if command == "" {
			command = "-"
		}
		if r.Err != nil && r.Stage != programmer.StageVerify {
			readBack = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Plane.Index(), r.Name, util.FmtFloat(float64(r.Millivolts)),
			util.FmtFloat(float64(types.Decode(r.Expected))), command, readBack, status)
	}
	_ = tw.Flush()
}

func writeReports(o opts, rep *programmer.Report) error {
	var errs []error
	if o.jsonPath != "" {
		errs = append(errs, writeFile(o.jsonPath, func(f io.Writer) error {
			enc := json.NewEncoder(f)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}))
	}
	if o.yamlPath != "" {
		errs = append(errs, writeFile(o.yamlPath, func(f io.Writer) error {
			enc := yaml.NewEncoder(f)
			enc.SetIndent(2)
			if err := enc.Encode(rep); err != nil {
				return err
			}
			return enc.Close()
		}))
	}
	return multierr.Combine(errs...)
}

func writeFile(path string, encode func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

const _console = `intel-msr-voltages %s - Intel MSR Voltage Offset Tool

       Host: %s
       Kernel: %s
       CPUs: %s (%s)
       Mem: %s

Voltage offset configuration as of %s:

`

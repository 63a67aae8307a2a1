package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/snow-ghost/wasminspect/config"
	"github.com/snow-ghost/wasminspect/core"
	"github.com/snow-ghost/wasminspect/inspect"
	"github.com/snow-ghost/wasminspect/interp"
	"github.com/snow-ghost/wasminspect/interp/wasm"
	"github.com/snow-ghost/wasminspect/interp/wasmtime"
	"github.com/snow-ghost/wasminspect/pkg/cache"
	"github.com/snow-ghost/wasminspect/pkg/logging"
	"github.com/snow-ghost/wasminspect/pkg/metrics"
	"github.com/snow-ghost/wasminspect/report"
	"github.com/spf13/cobra"
)

// exitMissing is the exit code for --strict runs with missing exports.
const exitMissing = 2

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

type options struct {
	configPath  string
	engine      string
	expect      []string
	format      string
	strict      bool
	logLevel    string
	metricsFile string
	concurrency int
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "wasminspect [wasm-file...]",
		Short: "Inspect WebAssembly exports and imports",
		Long: "Print the size, exports and imports of compiled WebAssembly binaries and\n" +
			"report whether the expected entry points are exported.\n\n" +
			"Without arguments the release build of the escrow contract is checked for\n" +
			strings.Join(config.DefaultExpected, ", ") + ".",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts, args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, stdout)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default "+config.DefaultConfigFile+" if present)")
	flags.StringVarP(&opts.engine, "engine", "e", "", "engine: "+strings.Join(interp.Names, ", "))
	flags.StringSliceVarP(&opts.expect, "expect", "x", nil, "expected export names (repeatable or comma separated)")
	flags.StringVarP(&opts.format, "format", "f", "", "output format: text, json")
	flags.BoolVar(&opts.strict, "strict", false, "exit with status 2 when an expected export is missing")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	flags.IntVar(&opts.concurrency, "concurrency", 0, "maximum inspections in flight")

	return cmd
}

// resolveConfig layers flags and arguments over the file and environment.
func resolveConfig(cmd *cobra.Command, opts *options, args []string) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if len(args) > 0 {
		cfg.Paths = args
	}
	if flags.Changed("engine") {
		cfg.Engine = opts.engine
	}
	if flags.Changed("expect") {
		cfg.Expected = opts.expect
	}
	if flags.Changed("format") {
		cfg.Format = opts.format
	}
	if flags.Changed("strict") {
		cfg.Strict = opts.strict
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = opts.metricsFile
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}

	if err := cfg.Validate(interp.Names); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	renderer, err := report.ForFormat(cfg.Format)
	if err != nil {
		return err
	}

	engine, err := interp.New(ctx, interp.Config{
		Engine: cfg.Engine,
		Wazero: wasm.Config{
			Interpreter:      cfg.Wazero.Interpreter,
			MemoryLimitPages: cfg.Wazero.MemoryLimitPages,
		},
		Wasmtime: wasmtime.Config{Optimize: cfg.Wasmtime.Optimize},
	})
	if err != nil {
		return err
	}
	defer engine.Close(ctx)

	descriptors, err := cache.NewLRUCache(&cache.CacheConfig{MaxSize: cfg.CacheSize})
	if err != nil {
		return err
	}
	m := metrics.NewPrometheusMetrics()
	ins := inspect.New(engine, descriptors, m, logger)

	defer ins.LogStats()

	logger.Debug("inspecting", "paths", cfg.Paths, "expected", cfg.Expected)

	// Text output is streamed in path order so a failing file still shows the
	// lines printed before the failure. JSON is written once everything passed.
	var reports []*core.Report
	var stream *report.Stream
	if cfg.Format == config.FormatText {
		stream = report.NewStream(stdout, len(cfg.Paths) > 1)
		reports, err = ins.InspectEach(ctx, cfg.Paths, cfg.Expected, stream)
	} else {
		reports, err = ins.InspectAll(ctx, cfg.Paths, cfg.Expected, cfg.Concurrency)
	}

	if cfg.MetricsFile != "" {
		if werr := m.WriteTextfile(cfg.MetricsFile); werr != nil {
			logger.Warn("failed to write metrics", "path", cfg.MetricsFile, "error", werr)
		}
	}
	if err != nil {
		return err
	}

	if stream != nil {
		if err := stream.Err(); err != nil {
			return err
		}
	} else if err := renderer.Render(stdout, reports); err != nil {
		return err
	}

	if cfg.Strict {
		if missing := countMissing(reports); missing > 0 {
			return &exitError{code: exitMissing, err: fmt.Errorf("%d expected export(s) missing", missing)}
		}
	}
	return nil
}

func countMissing(reports []*core.Report) int {
	n := 0
	for _, r := range reports {
		n += len(r.Missing())
	}
	return n
}

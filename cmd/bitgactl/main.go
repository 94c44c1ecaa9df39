package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"bitga/internal/population"
	"bitga/internal/storage"
	api "bitga/pkg/bitga"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:], stdout, stderr)
	case "reset":
		return runReset(ctx, args[1:], stdout, stderr)
	case "population":
		return runPopulation(ctx, args[1:], stdout, stderr)
	case "decode":
		return runDecode(ctx, args[1:], stdout, stderr)
	case "runs":
		return runRuns(ctx, args[1:], stdout, stderr)
	case "show":
		return runShow(ctx, args[1:], stdout, stderr)
	case "functions":
		return runFunctions(ctx, args[1:], stdout, stderr)
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

// storeFlags are shared by every command that touches the run store.
type storeFlags struct {
	kind     *string
	dbPath   *string
	logLevel *string
}

func addStoreFlags(fs *flag.FlagSet) storeFlags {
	return storeFlags{
		kind:     fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite"),
		dbPath:   fs.String("db-path", "bitga.db", "sqlite database path"),
		logLevel: fs.String("log-level", "info", "log level: debug|info|warn|error"),
	}
}

func (f storeFlags) client(stderr io.Writer) (*api.Client, error) {
	logger, err := newLogger(stderr, *f.logLevel)
	if err != nil {
		return nil, err
	}
	return api.New(api.Options{StoreKind: *f.kind, DBPath: *f.dbPath, Logger: logger})
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func runInit(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sf.client(stderr)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "initialized store=%s\n", *sf.kind)
	return nil
}

func runReset(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sf.client(stderr)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "reset store=%s\n", *sf.kind)
	return nil
}

func runPopulation(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("population", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sf := addStoreFlags(fs)
	lf := addLayoutFlags(fs)
	vary := fs.Bool("vary", false, "apply one crossover and mutation pass before rendering")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := lf.request(fs)
	if err != nil {
		return err
	}
	req.Vary = *vary
	req.Out = stdout

	client, err := sf.client(stderr)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Sample(ctx, req)
	if err != nil {
		return err
	}
	if summary.Summary != nil {
		s := summary.Summary
		fmt.Fprintf(stdout, "fitness mean=%g std=%g min=%g max=%g\n", s.Mean, s.StdDev, s.Min, s.Max)
	}
	fmt.Fprintf(stdout, "run_id=%s seed=%d\n", summary.RunID, summary.Seed)
	return nil
}

func runDecode(_ context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	lf := addLayoutFlags(fs)
	bits := fs.String("bits", "", "bit string to decode, e.g. 0110")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *bits == "" {
		return errors.New("decode requires -bits")
	}

	req, err := lf.request(fs)
	if err != nil {
		return err
	}

	client, err := api.New(api.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	values, err := client.Decode(req.Params, *bits)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, population.FormatDecoded(values))
	return nil
}

func runRuns(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sf := addStoreFlags(fs)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := sf.client(stderr)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, *limit)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "no runs found")
		return nil
	}
	for _, r := range runs {
		best := "-"
		if r.Summary != nil {
			best = fmt.Sprintf("%g", r.Summary.Max)
		}
		fitnessName := r.Fitness
		if fitnessName == "" {
			fitnessName = "-"
		}
		fmt.Fprintf(stdout, "%s %s seed=%d pop=%d genes=%d fitness=%s best=%s\n",
			r.ID, r.CreatedAtUTC, r.Seed, r.Config.PopulationSize, r.Config.GeneLength, fitnessName, best)
	}
	return nil
}

func runShow(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sf := addStoreFlags(fs)
	runID := fs.String("run-id", "", "run id to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("show requires -run-id")
	}

	client, err := sf.client(stderr)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	rec, err := client.Run(ctx, *runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func runFunctions(_ context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("functions", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := api.New(api.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	fmt.Fprintln(stdout, strings.Join(client.Functions(), "\n"))
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: bitgactl <init|reset|population|decode|runs|show|functions> [flags]", msg)
}

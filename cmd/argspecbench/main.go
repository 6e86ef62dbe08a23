// Package main provides argspecbench, a command that builds a large
// synthetic schema and repeatedly drives the parser against it, wiring
// package profile for CPU/heap profiling of the benchmark run.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"forgecli.dev/argspec/metrics"
	"forgecli.dev/argspec/parse"
	"forgecli.dev/argspec/profile"
	"forgecli.dev/argspec/schema"
	"forgecli.dev/argspec/validate"
)

type config struct {
	iterations  int
	flags       int
	metricsAddr string
	profile     *profile.Config
}

func main() {
	cfg := &config{profile: profile.NewConfig()}

	rootCmd := &cobra.Command{
		Use:           "argspecbench",
		Short:         "Benchmark the argspec parser against a synthetic schema",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(cfg)
		},
	}

	rootCmd.Flags().IntVar(&cfg.iterations, "iterations", 10000, "number of Parse calls to run")
	rootCmd.Flags().IntVar(&cfg.flags, "flags", 50, "number of flag options in the synthetic schema")
	rootCmd.Flags().StringVar(&cfg.metricsAddr, "metrics-addr", "",
		"serve Prometheus metrics on this address after the run completes (e.g. :9090)")
	cfg.profile.RegisterFlags(rootCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config) error {
	collector := metrics.NewCollector()
	cfg.profile.Recorder = collector

	prof := cfg.profile.NewProfiler()

	if err := prof.Start(); err != nil {
		return fmt.Errorf("start profiling: %w", err)
	}

	defer func() {
		if err := prof.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "stop profiling: %v\n", err)
		}
	}()

	s := buildSchema(cfg.flags)

	ctx := context.Background()

	if _, err := validate.New(validate.WithRecorder(collector)).Validate(ctx, s); err != nil {
		return fmt.Errorf("validate synthetic schema: %w", err)
	}

	p := parse.New(parse.WithRecorder(collector))
	args := benchArgs(cfg.flags)

	for i := 0; i < cfg.iterations; i++ {
		if _, err := p.Parse(ctx, s, args); err != nil {
			return fmt.Errorf("parse iteration %d: %w", i, err)
		}
	}

	fmt.Printf("completed %d iterations against %d flags\n", cfg.iterations, cfg.flags)

	if cfg.metricsAddr != "" {
		fmt.Printf("serving metrics on %s/metrics\n", cfg.metricsAddr)

		return http.ListenAndServe(cfg.metricsAddr, collector.Handler())
	}

	return nil
}

// buildSchema constructs a schema with n boolean flags plus one required
// choice-constrained single option and one append/unique/separator array
// option, exercising most of the parser's non-niladic code paths under
// repeated invocation.
func buildSchema(n int) *schema.Schema {
	s := schema.New()

	for i := 0; i < n; i++ {
		name := "--flag" + strconv.Itoa(i)
		s.Add(schema.Key("flag"+strconv.Itoa(i)), &schema.Flag{
			Common: schema.Common{Names: []string{name}},
		})
	}

	s.Add("mode", &schema.Single{
		Common: schema.Common{Names: []string{"-m", "--mode"}, Required: true},
		Selection: schema.Selection{
			Choices: []schema.Choice{{Name: "fast"}, {Name: "slow"}},
		},
	})

	s.Add("tags", &schema.Array{
		Common:      schema.Common{Names: []string{"-t", "--tag"}},
		ArrayExtras: schema.ArrayExtras{Separator: ",", Append: true, Unique: true},
	})

	return s
}

func benchArgs(n int) []string {
	args := make([]string, 0, n/2+5)

	for i := 0; i < n; i += 2 {
		args = append(args, "--flag"+strconv.Itoa(i))
	}

	args = append(args, "--mode", "fast", "-t", "a,b", "-t", "b,c")

	return args
}

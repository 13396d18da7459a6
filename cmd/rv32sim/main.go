// Package main provides the entry point for rv32sim.
// rv32sim is a cycle-accurate, out-of-order RV32I simulator.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/rv32tomasulo/config"
	"github.com/sarchlab/rv32tomasulo/loader"
	"github.com/sarchlab/rv32tomasulo/memory"
	"github.com/sarchlab/rv32tomasulo/pipeline"
	"github.com/sarchlab/rv32tomasulo/predictor"
)

var (
	verbose    bool
	configPath string
	maxCycles  uint64
	statsOnly  bool
	trace      bool
)

func main() {
	root := &cobra.Command{
		Use:   "rv32sim",
		Short: "Cycle-accurate, out-of-order RV32I simulator",
		RunE:  run,
	}

	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline diagnostics to stderr")
	root.Flags().StringVar(&configPath, "config", "", "path to a sizing configuration JSON file")
	root.Flags().Uint64Var(&maxCycles, "max-cycles", 10_000_000, "cycle budget before giving up")
	root.Flags().BoolVar(&statsOnly, "stats", false, "log predictor/cycle statistics at Info level on halt")
	root.Flags().BoolVar(&trace, "trace", false, "log every cycle's commit result at Debug level")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rv32sim:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if verbose || statsOnly {
		logger.SetLevel(logrus.InfoLevel)
	}
	if trace {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}

	ram := memory.New(cfg.RAMSize)
	if err := loader.Load(cmd.InOrStdin(), ram); err != nil {
		return err
	}

	pipe := pipeline.New(ram,
		pipeline.WithLogger(logger),
		pipeline.WithPredictor(predictorConfig(cfg)),
	)
	pipe.Trace(trace)

	if !pipe.Run(maxCycles) {
		return fmt.Errorf("exceeded cycle budget of %d without a HALT commit", maxCycles)
	}

	if verbose || statsOnly {
		stats := pipe.PredictorStats()
		logger.WithFields(logrus.Fields{
			"cycles":             pipe.Cycle(),
			"retired":            pipe.Retired(),
			"predictor_accuracy": stats.Accuracy(),
		}).Info("simulation halted")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d\n", pipe.Result())
	return nil
}

func predictorConfig(cfg *config.SimConfig) predictor.Config {
	return predictor.Config{Buckets: cfg.PredictorBuckets}
}

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/encodeous/dvsim/core"
	"github.com/encodeous/dvsim/state"
	"github.com/spf13/cobra"
)

var (
	inputPath    string
	scenarioPath string
	logPath      string
	trace        bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation",
	Long: `Reads a scenario and prints the distance tables of every round and the final routing tables.
Without --input or --scenario, the line protocol is read from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if state.MaxRounds <= 0 {
			return fmt.Errorf("max-rounds must be positive, got %d", state.MaxRounds)
		}
		sc, err := loadScenario(inputPath, scenarioPath, cmd.InOrStdin())
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("max-rounds") {
			sc.Sim.MaxRounds = state.MaxRounds
		}
		if trace {
			sc.Sim.Trace = true
		}

		level := slog.LevelInfo
		if ok, _ := cmd.Flags().GetBool("verbose"); ok || sc.Sim.Trace {
			level = slog.LevelDebug
		}

		return core.Start(cmd.Context(), sc, cmd.OutOrStdout(), core.LogCfg{
			Level: level,
			W:     cmd.ErrOrStderr(),
			Path:  logPath,
		})
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Path to a line protocol input file, defaults to stdin")
	runCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "Path to a YAML scenario file")
	runCmd.MarkFlagsMutuallyExclusive("input", "scenario")
	runCmd.Flags().IntVar(&state.MaxRounds, "max-rounds", state.MaxRounds, "Maximum rounds per run")
	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().StringVar(&logPath, "log-path", "", "Also write logs to this file")
	runCmd.Flags().BoolVarP(&trace, "trace", "t", false, "Log every computed round")
}

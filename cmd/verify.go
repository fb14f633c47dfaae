package cmd

import (
	"fmt"

	"github.com/encodeous/dvsim/state"
	"github.com/spf13/cobra"
)

var verifyPath string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validates a YAML scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := state.ReadScenario(verifyPath)
		if err != nil {
			return err
		}
		topo := sc.BuildTopology()
		final := topo.Clone()
		changed := sc.ApplyUpdates(final)

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "Scenario is valid")
		fmt.Fprintf(w, "routers: %d\n", len(topo.Routers()))
		fmt.Fprintf(w, "links: %d\n", len(topo.Links()))
		fmt.Fprintf(w, "updates: %d (%d effective)\n", len(sc.Updates), changed)
		fmt.Fprintf(w, "max rounds: %d\n", sc.GetMaxRounds())
		for _, l := range final.Links() {
			fmt.Fprintf(w, "  %s\n", l)
		}
		return nil
	},
	GroupID: "cfg",
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&verifyPath, "scenario", "s", "scenario.yaml", "Path to the scenario file")
}

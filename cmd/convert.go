package cmd

import (
	"fmt"

	"github.com/encodeous/dvsim/protocol"
	"github.com/encodeous/dvsim/state"
	"github.com/spf13/cobra"
)

var (
	convertInput string
	convertTo    string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Converts between the line protocol and YAML scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch convertTo {
		case "yaml":
			s, err := readScript(convertInput, cmd.InOrStdin())
			if err != nil {
				return err
			}
			out, err := state.MarshalScenario(&s.ScenarioCfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		case "text":
			if convertInput == "" {
				return fmt.Errorf("--input is required when converting to text")
			}
			sc, err := state.ReadScenario(convertInput)
			if err != nil {
				return err
			}
			return protocol.WriteScript(cmd.OutOrStdout(), sc)
		default:
			return fmt.Errorf("unknown output format %q, expected yaml or text", convertTo)
		}
	},
	GroupID: "cfg",
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "Path to the input file, line protocol defaults to stdin")
	convertCmd.Flags().StringVar(&convertTo, "to", "yaml", "Output format: yaml or text")
}

// cmd_builders.go - Command-Builder Funktionen
// Hauptfunktionen: newCreateCmd, newRunCmd, newTrainCmd, newTestCmd, newShowCmd, newEnvCmd
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fanny/fanny/fanny"
)

// newCreateCmd - Erstellt den create Command
func newCreateCmd() *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create NETWORK",
		Short: "Create a network with random weights and save it",
		Args:  cobra.ExactArgs(1),
		RunE:  CreateHandler,
	}

	createCmd.Flags().String("layers", "", "Neurons per layer, input layer first (e.g. 2,3,1)")
	createCmd.Flags().String("type", fanny.TypeStandard, "Network type: standard, sparse or shortcut")
	createCmd.Flags().Float64("connection-rate", fanny.DefaultConnectionRate, "Connection rate for sparse networks")
	createCmd.Flags().Bool("fixed", false, "Save in fixed point format")
	createCmd.MarkFlagRequired("layers") //nolint:errcheck

	return createCmd
}

// newRunCmd - Erstellt den run Command
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run NETWORK [INPUT...]",
		Short: "Run input vectors through a network",
		Long:  "Run input vectors through a network. Each INPUT is a comma separated vector. Without INPUT, vectors are read line by line from stdin.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  RunHandler,
	}
}

// newTrainCmd - Erstellt den train Command
func newTrainCmd() *cobra.Command {
	trainCmd := &cobra.Command{
		Use:   "train NETWORK DATA",
		Short: "Train a network on a training data file",
		Args:  cobra.ExactArgs(2),
		RunE:  TrainHandler,
	}

	trainCmd.Flags().Uint32("max-epochs", 500000, "Maximum number of epochs (neurons with --cascade)")
	trainCmd.Flags().Uint32("report", 1000, "Epochs between progress reports (0 disables reports)")
	trainCmd.Flags().Float32("error", 0.001, "Desired mean square error")
	trainCmd.Flags().Bool("cascade", false, "Grow the network with cascade training")
	trainCmd.Flags().Bool("epoch", false, "Train a single epoch only")
	trainCmd.Flags().String("output", "", "Save the trained network under a different name")

	return trainCmd
}

// newTestCmd - Erstellt den test Command
func newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test NETWORK DATA",
		Short: "Report the mean square error of a network on a data file",
		Args:  cobra.ExactArgs(2),
		RunE:  TestHandler,
	}
}

// newShowCmd - Erstellt den show Command
func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show NETWORK",
		Short: "Show information for a network",
		Args:  cobra.ExactArgs(1),
		RunE:  ShowHandler,
	}
}

// newEnvCmd - Erstellt den env Command
func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List environment variables and their current values",
		Args:  cobra.NoArgs,
		RunE:  EnvHandler,
	}
}

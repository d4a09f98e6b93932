// cmd_model_create.go - Netz anlegen und speichern
// Hauptfunktionen: CreateHandler
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fanny/fanny/envconfig"
	"github.com/fanny/fanny/fanny"
)

// CreateHandler - Erzeugt ein Netz aus --layers und speichert es unter NETWORK
func CreateHandler(cmd *cobra.Command, args []string) error {
	layerFlag, _ := cmd.Flags().GetString("layers")
	kind, _ := cmd.Flags().GetString("type")
	fixed, _ := cmd.Flags().GetBool("fixed")

	layers, err := parseLayers(layerFlag)
	if err != nil {
		return err
	}

	topology := fanny.Topology{Type: kind, Layers: layers}
	if cmd.Flags().Changed("connection-rate") {
		rate, _ := cmd.Flags().GetFloat64("connection-rate")
		topology.ConnectionRate = &rate
	}

	n, err := fanny.New(topology)
	if err != nil {
		return err
	}
	defer n.Close()

	path := envconfig.ModelPath(args[0])
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	save := n.Save
	if fixed {
		save = n.SaveToFixed
	}
	f, err := save(path)
	if err != nil {
		return err
	}
	dp, err := f.Wait(cmd.Context())
	if err != nil {
		return err
	}

	slog.Debug("network created", "network", n, "path", path)
	if fixed {
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (decimal point %d)\n", path, dp)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
	}
	return nil
}

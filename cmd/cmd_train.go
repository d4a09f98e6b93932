// cmd_train.go - Training und Auswertung auf Datendateien
// Hauptfunktionen: TrainHandler, TestHandler, writeMetrics
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/fanny/fanny/envconfig"
	"github.com/fanny/fanny/fanny"
)

// TrainHandler - Trainiert NETWORK auf DATA und speichert das Ergebnis
func TrainHandler(cmd *cobra.Command, args []string) error {
	maxEpochs, _ := cmd.Flags().GetUint32("max-epochs")
	report, _ := cmd.Flags().GetUint32("report")
	desiredError, _ := cmd.Flags().GetFloat32("error")
	cascade, _ := cmd.Flags().GetBool("cascade")
	epoch, _ := cmd.Flags().GetBool("epoch")
	output, _ := cmd.Flags().GetString("output")

	if cascade && epoch {
		return fmt.Errorf("--cascade and --epoch cannot be combined")
	}

	ctx := cmd.Context()
	n, err := loadNetwork(ctx, args[0])
	if err != nil {
		return err
	}
	defer n.Close()

	w := cmd.ErrOrStderr()
	if report > 0 {
		err := n.SetCallback(func(p fanny.Progress) bool {
			fmt.Fprintf(w, "epoch %8d    mse %.6f\n", p.Epochs, p.MSE)
			return ctx.Err() == nil
		})
		if err != nil {
			return err
		}
	}

	spec := fanny.TrainSpec{
		Cascade: cascade,
		Params: &fanny.RunParams{
			MaxEpochs:      maxEpochs,
			ReportInterval: report,
			DesiredError:   desiredError,
		},
	}
	if epoch {
		data, err := readData(n, args[1])
		if err != nil {
			return err
		}
		spec = fanny.TrainSpec{Data: data, Mode: fanny.ModeSingleEpoch}
	} else {
		spec.Path = args[1]
	}

	f, err := n.Submit(spec)
	if err != nil {
		return err
	}
	mse, err := f.Wait(ctx)
	if err != nil {
		return err
	}
	slog.Info("training finished", "network", n, "mode", spec.Mode, "mse", mse)

	name := args[0]
	if output != "" {
		name = output
	}
	save, err := n.Save(envconfig.ModelPath(name))
	if err != nil {
		return err
	}
	if _, err := save.Wait(ctx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "mse %s\n", strconv.FormatFloat(mse, 'f', 6, 64))
	if envconfig.Metrics() {
		return writeMetrics(w, prometheus.DefaultGatherer)
	}
	return nil
}

// TestHandler - Gibt MSE und Bit-Fail von NETWORK auf DATA aus
func TestHandler(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	n, err := loadNetwork(ctx, args[0])
	if err != nil {
		return err
	}
	defer n.Close()

	data, err := readData(n, args[1])
	if err != nil {
		return err
	}

	f, err := n.TestData(data)
	if err != nil {
		return err
	}
	mse, err := f.Wait(ctx)
	if err != nil {
		return err
	}

	renderTable(cmd.OutOrStdout(), nil, [][]string{
		{"samples", strconv.Itoa(data.Length())},
		{"mse", strconv.FormatFloat(mse, 'f', 6, 64)},
		{"bit fail", strconv.Itoa(n.BitFail())},
	})

	if envconfig.Metrics() {
		return writeMetrics(cmd.ErrOrStderr(), prometheus.DefaultGatherer)
	}
	return nil
}

// writeMetrics - Schreibt die gesammelten Metriken im Text-Format
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	slog.Debug("metrics written", "families", len(families))
	return nil
}

// cmd_utils.go - Gemeinsame Hilfsfunktionen
// Hauptfunktionen: loadNetwork, readData, parseVector, parseLayers, renderTable
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/fanny/fanny/engine"
	"github.com/fanny/fanny/envconfig"
	"github.com/fanny/fanny/fanny"
)

// loadNetwork - Laedt ein Netz ueber den Dispatcher und wartet auf das Ergebnis
func loadNetwork(ctx context.Context, name string) (*fanny.Network, error) {
	f, err := fanny.Load(envconfig.ModelPath(name))
	if err != nil {
		return nil, err
	}

	n, err := f.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return n, nil
}

// readData - Liest eine Trainingsdatei mit der Engine des Netzes
func readData(n *fanny.Network, path string) (engine.TrainingData, error) {
	data, err := n.Engine().ReadTrainingFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// parseVector - Zerlegt "0.5,1" oder "0.5 1" in Werte
func parseVector(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty vector %q", s)
	}

	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q", f)
		}
		out[i] = v
	}
	return out, nil
}

// parseLayers - Zerlegt "2,3,1" in Schichtgroessen
func parseLayers(s string) ([]int, error) {
	var layers []int
	for f := range strings.SplitSeq(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("invalid layer size %q", f)
		}
		layers = append(layers, v)
	}
	return layers, nil
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', 6, 64)
	}
	return strings.Join(parts, ",")
}

// isPlain - Ausgabe ohne Tabellenformat wenn stdout kein Terminal ist
func isPlain() bool {
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

// renderTable - Gibt Zeilen als Tabelle aus, ohne Terminal tab-separiert
func renderTable(w io.Writer, header []string, rows [][]string) {
	if isPlain() {
		for _, row := range rows {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		return
	}

	table := tablewriter.NewWriter(w)
	if len(header) > 0 {
		table.SetHeader(header)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetHeaderLine(false)
	}
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(rows)
	table.Render()
}

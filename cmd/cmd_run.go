// cmd_run.go - Eingabevektoren durch ein Netz schicken
// Hauptfunktionen: RunHandler, readInputs
package cmd

import (
	"bufio"
	"errors"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/fanny/fanny/dispatch"
)

// RunHandler - Fuehrt alle Eingaben aus und gibt die Ausgaben in Eingabereihenfolge aus
func RunHandler(cmd *cobra.Command, args []string) error {
	inputs := args[1:]
	if len(inputs) == 0 {
		var err error
		inputs, err = readInputs(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	vectors := make([][]float64, len(inputs))
	for i, in := range inputs {
		v, err := parseVector(in)
		if err != nil {
			return err
		}
		vectors[i] = v
	}

	n, err := loadNetwork(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	defer n.Close()

	// Einreihen in Eingabereihenfolge, Warten parallel
	futures := make([]*dispatch.Future[[]float64], len(vectors))
	for i, v := range vectors {
		if futures[i], err = n.RunAsync(v); err != nil {
			return err
		}
	}

	outputs := make([][]float64, len(futures))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(runtime.GOMAXPROCS(0)-1, 1))
	for i, f := range futures {
		g.Go(func() error {
			out, err := f.Wait(ctx)
			outputs[i] = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rows := make([][]string, len(outputs))
	for i := range outputs {
		rows[i] = []string{formatVector(vectors[i]), formatVector(outputs[i])}
	}
	renderTable(cmd.OutOrStdout(), []string{"INPUT", "OUTPUT"}, rows)
	return nil
}

// readInputs - Liest nichtleere Zeilen, ueberspringt Kommentare mit #
func readInputs(r io.Reader) ([]string, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return nil, errors.New("no input vectors given")
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errors.New("no input vectors given")
	}
	return lines, nil
}

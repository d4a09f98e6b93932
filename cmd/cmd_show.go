// cmd_show.go - Netz- und Konfigurationsanzeige
// Hauptfunktionen: ShowHandler, showInfo, EnvHandler
package cmd

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fanny/fanny/envconfig"
	"github.com/fanny/fanny/fanny"
)

// ShowHandler - Zeigt Struktur und Lernparameter eines Netzes
func ShowHandler(cmd *cobra.Command, args []string) error {
	n, err := loadNetwork(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	defer n.Close()

	showInfo(n, cmd.OutOrStdout())
	return nil
}

// showInfo - Gibt die Abschnitte Network und Parameters aus
func showInfo(n *fanny.Network, w io.Writer) {
	section := func(header string, rows [][]string) {
		if !isPlain() {
			fmt.Fprintln(w, " ", header)
		}
		renderTable(w, nil, rows)
		if !isPlain() {
			fmt.Fprintln(w)
		}
	}

	ints := func(v []int) string {
		parts := make([]string, len(v))
		for i, x := range v {
			parts[i] = strconv.Itoa(x)
		}
		return strings.Join(parts, " ")
	}
	float := func(v float64) string {
		return strconv.FormatFloat(v, 'g', 6, 64)
	}

	section("Network", [][]string{
		{"", "engine", n.Engine().Name()},
		{"", "fixed point", strconv.FormatBool(n.IsFixed())},
		{"", "inputs", strconv.Itoa(n.NumInput())},
		{"", "outputs", strconv.Itoa(n.NumOutput())},
		{"", "layers", ints(n.LayerArray())},
		{"", "bias", ints(n.BiasArray())},
		{"", "neurons", strconv.Itoa(n.TotalNeurons())},
		{"", "connections", strconv.Itoa(n.TotalConnections())},
	})

	section("Parameters", [][]string{
		{"", "learning rate", float(n.LearningRate())},
		{"", "quickprop decay", float(n.QuickpropDecay())},
		{"", "quickprop mu", float(n.QuickpropMu())},
		{"", "rprop increase factor", float(n.RpropIncreaseFactor())},
		{"", "rprop decrease factor", float(n.RpropDecreaseFactor())},
		{"", "rprop delta zero", float(n.RpropDeltaZero())},
		{"", "rprop delta min", float(n.RpropDeltaMin())},
		{"", "rprop delta max", float(n.RpropDeltaMax())},
	})
}

// EnvHandler - Listet alle FANNY_* Variablen mit aktuellem Wert
func EnvHandler(cmd *cobra.Command, args []string) error {
	vars := envconfig.AsMap()
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		v := vars[k]
		rows = append(rows, []string{v.Name, fmt.Sprintf("%v", v.Value), v.Description})
	}
	renderTable(cmd.OutOrStdout(), []string{"NAME", "VALUE", "DESCRIPTION"}, rows)
	return nil
}

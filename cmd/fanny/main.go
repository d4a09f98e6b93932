// MODUL: fanny/main
// ZWECK: Kommandozeile zum Anlegen, Trainieren und Ausfuehren von Netzen
// INPUT: CLI-Argumente, FANNY_* Umgebungsvariablen
// OUTPUT: Tabellen (Terminal) oder tab-separierte Zeilen (Pipe)
// NEBENEFFEKTE: Schreibt Netzdefinitionen nach FANNY_MODELS
// ABHAENGIGKEITEN: cmd, fann (nur mit Build-Tag fann)
// HINWEISE: Mit -tags fann steht zusaetzlich FANNY_ENGINE=fann zur Verfuegung

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fanny/fanny/cmd"
	_ "github.com/fanny/fanny/fann"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.NewCLI().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

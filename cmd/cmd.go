// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fanny/fanny/envconfig"
	"github.com/fanny/fanny/logutil"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "fanny",
		Short:         "Create, train and run artificial neural networks",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
		},
	}

	createCmd := newCreateCmd()
	runCmd := newRunCmd()
	trainCmd := newTrainCmd()
	testCmd := newTestCmd()
	showCmd := newShowCmd()
	envCmd := newEnvCmd()

	envVars := envconfig.AsMap()
	envs := []envconfig.EnvVar{envVars["FANNY_DEBUG"], envVars["FANNY_MODELS"]}

	for _, cmd := range []*cobra.Command{createCmd, runCmd, trainCmd, testCmd, showCmd} {
		switch cmd {
		case createCmd:
			appendEnvDocs(cmd, append(envs, envVars["FANNY_ENGINE"]))
		case runCmd, trainCmd, testCmd:
			appendEnvDocs(cmd, append(envs,
				envVars["FANNY_ENGINE"],
				envVars["FANNY_MAX_WORKERS"],
				envVars["FANNY_MAX_QUEUE"],
				envVars["FANNY_METRICS"],
			))
		default:
			appendEnvDocs(cmd, envs)
		}
	}

	rootCmd.AddCommand(
		createCmd,
		runCmd,
		trainCmd,
		testCmd,
		showCmd,
		envCmd,
	)

	return rootCmd
}

// config.go - Haupt-Konfigurationsfunktionen fuer fanny
//
// Dieses Modul enthaelt:
// - Models: Gibt das Netz-Verzeichnis zurueck (FANNY_MODELS)
// - LogLevel: Gibt Log-Level zurueck (FANNY_DEBUG)
// - Var: Liest eine Environment-Variable
//
// Weitere Konfigurationen sind ausgelagert:
// - config_features.go: Engine-Auswahl und Dispatcher-Grenzen
// - config_utils.go: Utility-Funktionen und AsMap/Values
package envconfig

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Models gibt das Verzeichnis fuer Netzdefinitionen zurueck
// Konfigurierbar via FANNY_MODELS
// Default: $HOME/.fanny/models
func Models() string {
	if s := Var("FANNY_MODELS"); s != "" {
		return s
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "fanny", "models")
	}

	return filepath.Join(home, ".fanny", "models")
}

// ModelPath loest einen relativen Dateinamen gegen Models() auf
// Absolute Pfade und Pfade mit Verzeichnisanteil bleiben unveraendert
func ModelPath(name string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	return filepath.Join(Models(), name)
}

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via FANNY_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("FANNY_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

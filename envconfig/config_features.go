// config_features.go - Engine-Auswahl und Dispatcher-Grenzen
//
// Dieses Modul enthaelt:
// - Engine: Name der nativen Engine (refnet, fann)
// - MaxWorkers/MaxQueue: Grenzen fuer den Task-Dispatcher
package envconfig

var (
	// Engine waehlt die registrierte Engine fuer neue Netze
	Engine = StringWithDefault("FANNY_ENGINE", "refnet")

	// MaxWorkers begrenzt gleichzeitig laufende Tasks (0 = eine Goroutine pro Netz)
	MaxWorkers = Uint("FANNY_MAX_WORKERS", 0)

	// MaxQueue begrenzt wartende Tasks (0 = unbegrenzt)
	MaxQueue = Uint("FANNY_MAX_QUEUE", 0)

	// Metrics aktiviert die Prometheus-Metriken des Dispatchers
	Metrics = Bool("FANNY_METRICS")
)

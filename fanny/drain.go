// drain.go - Auslesen und Zuruecksetzen des Fehlerregisters
package fanny

import (
	"github.com/fanny/fanny/engine"
	"github.com/fanny/fanny/logutil"
)

// drain liest das Fehlerregister und setzt es im selben Schritt zurueck.
// Muss nach jedem Engine-Aufruf unter dem Handle-Lock laufen.
func drain(net engine.Network) error {
	code := net.Errno()
	if code == engine.ErrNone {
		return nil
	}

	err := newNativeError(code, net.Errstr())
	net.ResetErrno()
	net.ResetErrstr()

	logutil.Trace("drained native error", "code", int(code), "kind", err.Kind, "message", err.Message)
	return err
}

// accessors.go - Lesende Zugriffe auf das Engine-Netz
//
// Alle Accessoren laufen unter dem Handle-Lock und liefern nach Close Nullwerte.
package fanny

import "github.com/fanny/fanny/engine"

func get[T any](n *Network, fn func(engine.Network) T) T {
	n.mu.Lock()
	defer n.mu.Unlock()

	var v T
	if n.closed {
		return v
	}
	return fn(n.net)
}

func getFloat(n *Network, fn func(engine.Network) float32) float64 {
	return float64(get(n, fn))
}

func (n *Network) NumInput() int         { return get(n, engine.Network.NumInput) }
func (n *Network) NumOutput() int        { return get(n, engine.Network.NumOutput) }
func (n *Network) NumLayers() int        { return get(n, engine.Network.NumLayers) }
func (n *Network) TotalNeurons() int     { return get(n, engine.Network.TotalNeurons) }
func (n *Network) TotalConnections() int { return get(n, engine.Network.TotalConnections) }
func (n *Network) BitFail() int          { return get(n, engine.Network.BitFail) }

// LayerArray returns the number of neurons in each layer, bias neurons excluded.
func (n *Network) LayerArray() []int { return get(n, engine.Network.LayerArray) }

// BiasArray returns the number of bias neurons in each layer.
func (n *Network) BiasArray() []int { return get(n, engine.Network.BiasArray) }

// MSE returns the mean squared error of the last training or test run.
func (n *Network) MSE() float64 { return getFloat(n, engine.Network.MSE) }

func (n *Network) LearningRate() float64        { return getFloat(n, engine.Network.LearningRate) }
func (n *Network) QuickpropDecay() float64      { return getFloat(n, engine.Network.QuickpropDecay) }
func (n *Network) QuickpropMu() float64         { return getFloat(n, engine.Network.QuickpropMu) }
func (n *Network) RpropIncreaseFactor() float64 { return getFloat(n, engine.Network.RpropIncreaseFactor) }
func (n *Network) RpropDecreaseFactor() float64 { return getFloat(n, engine.Network.RpropDecreaseFactor) }
func (n *Network) RpropDeltaZero() float64      { return getFloat(n, engine.Network.RpropDeltaZero) }
func (n *Network) RpropDeltaMin() float64       { return getFloat(n, engine.Network.RpropDeltaMin) }
func (n *Network) RpropDeltaMax() float64       { return getFloat(n, engine.Network.RpropDeltaMax) }

// network.go - Reine Go-Referenz-Engine fuer Feed-Forward-Netze
//
// Dieses Modul enthaelt:
// - Engine: Registrierung als "refnet" und Konstruktoren (standard, sparse, shortcut)
// - network: Gewichte pro Schicht als gonum-Matrizen, Forward-Pass, Accessoren
// - Fehlerregister im Stil von libfann (errno/errstr bleiben bis zum Reset stehen)
package refnet

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/fanny/fanny/engine"
)

// Standardwerte wie in libfann
const (
	defaultLearningRate        = 0.7
	defaultQuickpropDecay      = -0.0001
	defaultQuickpropMu         = 1.75
	defaultRpropIncreaseFactor = 1.2
	defaultRpropDecreaseFactor = 0.5
	defaultRpropDeltaZero      = 0.1
	defaultRpropDeltaMin       = 0.0
	defaultRpropDeltaMax       = 50.0
	defaultBitFailLimit        = 0.35
	initialWeightRange         = 0.1
)

func init() {
	engine.Register("refnet", func() engine.Engine { return Engine{} })
}

// Engine is the pure Go engine. It needs no native library and is the default
// engine of the module.
type Engine struct{}

func (Engine) Name() string { return "refnet" }

func (Engine) CreateStandard(layers []int) (engine.Network, error) {
	return wrap(create(layers, 1, false))
}

func (Engine) CreateSparse(connectionRate float32, layers []int) (engine.Network, error) {
	return wrap(create(layers, connectionRate, false))
}

func (Engine) CreateShortcut(layers []int) (engine.Network, error) {
	return wrap(create(layers, 1, true))
}

func (Engine) CreateFromFile(path string) (engine.Network, error) {
	return wrap(load(path))
}

// wrap verhindert ein typisiertes nil im Interface.
func wrap(n *network, err error) (engine.Network, error) {
	if err != nil {
		return nil, err
	}
	return n, nil
}

type hyperParams struct {
	learningRate        float32
	quickpropDecay      float32
	quickpropMu         float32
	rpropIncreaseFactor float32
	rpropDecreaseFactor float32
	rpropDeltaZero      float32
	rpropDeltaMin       float32
	rpropDeltaMax       float32
	bitFailLimit        float32
}

func defaultHyperParams() hyperParams {
	return hyperParams{
		learningRate:        defaultLearningRate,
		quickpropDecay:      defaultQuickpropDecay,
		quickpropMu:         defaultQuickpropMu,
		rpropIncreaseFactor: defaultRpropIncreaseFactor,
		rpropDecreaseFactor: defaultRpropDecreaseFactor,
		rpropDeltaZero:      defaultRpropDeltaZero,
		rpropDeltaMin:       defaultRpropDeltaMin,
		rpropDeltaMax:       defaultRpropDeltaMax,
		bitFailLimit:        defaultBitFailLimit,
	}
}

type network struct {
	layers         []int
	shortcut       bool
	connectionRate float32

	// weights[l-1] verbindet Schicht l mit ihren Eingaengen: Zeilen = Neuronen,
	// Spalten = Eingaenge + Bias (letzte Spalte)
	weights []*mat.Dense
	// masks ist nil fuer voll verbundene Netze
	masks []*mat.Dense

	fixed        bool
	decimalPoint int

	params   hyperParams
	scale    *scaling
	callback engine.Callback

	mseSum   float64
	mseCount int
	bitFail  int

	errno  engine.ErrorCode
	errstr string
}

func create(layers []int, connectionRate float32, shortcut bool) (*network, error) {
	if len(layers) < 2 {
		return nil, engine.Errorf(engine.ErrWrongParametersForCreate, "Wrong parameters for create: at least 2 layers required, got %d.", len(layers))
	}
	for _, l := range layers {
		if l <= 0 {
			return nil, engine.Errorf(engine.ErrWrongParametersForCreate, "Wrong parameters for create: layer size %d.", l)
		}
	}
	if connectionRate <= 0 || connectionRate > 1 {
		return nil, engine.Errorf(engine.ErrWrongParametersForCreate, "Wrong parameters for create: connection rate %f.", connectionRate)
	}

	n := &network{
		layers:         slices.Clone(layers),
		shortcut:       shortcut,
		connectionRate: connectionRate,
		params:         defaultHyperParams(),
	}

	for l := 1; l < len(layers); l++ {
		rows, cols := layers[l], n.fanIn(l)+1
		w := mat.NewDense(rows, cols, nil)
		for i := range rows {
			for j := range cols {
				w.Set(i, j, (rand.Float64()*2-1)*initialWeightRange)
			}
		}
		n.weights = append(n.weights, w)
	}

	if connectionRate < 1 {
		n.masks = make([]*mat.Dense, len(n.weights))
		for idx, w := range n.weights {
			n.masks[idx] = sparseMask(w, connectionRate)
			w.MulElem(w, n.masks[idx])
		}
	}

	slog.Debug("refnet network created", "layers", layers, "shortcut", shortcut, "connection_rate", connectionRate)
	return n, nil
}

// sparseMask behaelt den Bias und mindestens einen Eingang pro Neuron.
func sparseMask(w *mat.Dense, rate float32) *mat.Dense {
	rows, cols := w.Dims()
	mask := mat.NewDense(rows, cols, nil)
	for i := range rows {
		mask.Set(i, cols-1, 1)
		mask.Set(i, rand.IntN(cols-1), 1)
		for j := range cols - 1 {
			if rand.Float32() < rate {
				mask.Set(i, j, 1)
			}
		}
	}
	return mask
}

// fanIn ist die Anzahl der Eingaenge (ohne Bias) von Schicht l.
func (n *network) fanIn(l int) int {
	if !n.shortcut {
		return n.layers[l-1]
	}
	total := 0
	for _, size := range n.layers[:l] {
		total += size
	}
	return total
}

func (n *network) fail(code engine.ErrorCode, format string, args ...any) {
	n.errno = code
	n.errstr = fmt.Sprintf(format, args...)
	slog.Debug("refnet error", "errno", int(code), "errstr", n.errstr)
}

func (n *network) Close() {
	n.weights = nil
	n.masks = nil
	n.callback = nil
}

func (n *network) Copy() engine.Network {
	c := &network{
		layers:         slices.Clone(n.layers),
		shortcut:       n.shortcut,
		connectionRate: n.connectionRate,
		fixed:          n.fixed,
		decimalPoint:   n.decimalPoint,
		params:         n.params,
		mseSum:         n.mseSum,
		mseCount:       n.mseCount,
		bitFail:        n.bitFail,
	}
	for _, w := range n.weights {
		c.weights = append(c.weights, mat.DenseCopyOf(w))
	}
	for _, m := range n.masks {
		c.masks = append(c.masks, mat.DenseCopyOf(m))
	}
	if n.scale != nil {
		s := n.scale.clone()
		c.scale = &s
	}
	return c
}

// forward berechnet die Aktivierungen aller Schichten.
func (n *network) forward(input []float32) [][]float64 {
	acts := make([][]float64, len(n.layers))
	acts[0] = make([]float64, len(input))
	for i, v := range input {
		acts[0][i] = float64(v)
	}

	for l := 1; l < len(n.layers); l++ {
		x := mat.NewVecDense(n.fanIn(l)+1, n.layerInput(acts, l))
		var z mat.VecDense
		z.MulVec(n.weights[l-1], x)

		out := make([]float64, n.layers[l])
		for i := range out {
			out[i] = n.quantize(sigmoid(z.AtVec(i)))
		}
		acts[l] = out
	}
	return acts
}

// layerInput baut den Eingangsvektor von Schicht l inklusive Bias.
func (n *network) layerInput(acts [][]float64, l int) []float64 {
	x := make([]float64, 0, n.fanIn(l)+1)
	if n.shortcut {
		for k := range l {
			x = append(x, acts[k]...)
		}
	} else {
		x = append(x, acts[l-1]...)
	}
	return append(x, 1)
}

func (n *network) quantize(v float64) float64 {
	if !n.fixed {
		return v
	}
	mult := math.Ldexp(1, n.decimalPoint)
	return math.Round(v*mult) / mult
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func (n *network) Run(input []float32) []float32 {
	if len(input) != n.NumInput() {
		n.fail(engine.ErrInputNoMatch, "The number of input neurons in the ann (%d) and data (%d) don't match", n.NumInput(), len(input))
		return nil
	}
	acts := n.forward(input)
	return toFloat32(acts[len(acts)-1])
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func (n *network) SetCallback(fn engine.Callback) { n.callback = fn }

func (n *network) NumInput() int  { return n.layers[0] }
func (n *network) NumOutput() int { return n.layers[len(n.layers)-1] }
func (n *network) NumLayers() int { return len(n.layers) }

// TotalNeurons zaehlt wie libfann ein Bias-Neuron pro Schicht ausser der letzten.
func (n *network) TotalNeurons() int {
	total := len(n.layers) - 1
	for _, size := range n.layers {
		total += size
	}
	return total
}

func (n *network) TotalConnections() int {
	if n.masks == nil {
		total := 0
		for _, w := range n.weights {
			r, c := w.Dims()
			total += r * c
		}
		return total
	}

	total := 0
	for _, m := range n.masks {
		r, c := m.Dims()
		for i := range r {
			for j := range c {
				if m.At(i, j) != 0 {
					total++
				}
			}
		}
	}
	return total
}

func (n *network) LayerArray() []int { return slices.Clone(n.layers) }

func (n *network) BiasArray() []int {
	bias := make([]int, len(n.layers))
	for i := range len(bias) - 1 {
		bias[i] = 1
	}
	return bias
}

func (n *network) MSE() float32 {
	if n.mseCount == 0 {
		return 0
	}
	return float32(n.mseSum / float64(n.mseCount))
}

func (n *network) BitFail() int { return n.bitFail }
func (n *network) IsFixed() bool { return n.fixed }

func (n *network) LearningRate() float32        { return n.params.learningRate }
func (n *network) QuickpropDecay() float32      { return n.params.quickpropDecay }
func (n *network) QuickpropMu() float32         { return n.params.quickpropMu }
func (n *network) RpropIncreaseFactor() float32 { return n.params.rpropIncreaseFactor }
func (n *network) RpropDecreaseFactor() float32 { return n.params.rpropDecreaseFactor }
func (n *network) RpropDeltaZero() float32      { return n.params.rpropDeltaZero }
func (n *network) RpropDeltaMin() float32       { return n.params.rpropDeltaMin }
func (n *network) RpropDeltaMax() float32       { return n.params.rpropDeltaMax }

func (n *network) Errno() engine.ErrorCode { return n.errno }
func (n *network) Errstr() string          { return n.errstr }
func (n *network) ResetErrno()             { n.errno = engine.ErrNone }
func (n *network) ResetErrstr()            { n.errstr = "" }

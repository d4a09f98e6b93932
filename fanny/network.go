// Package fanny binds a synchronous feed-forward network engine to a Go API with
// asynchronous, future based operations.
//
// Ein Network besitzt genau ein Engine-Netz. Jeder Engine-Aufruf laeuft unter dem
// Lock des Handles und liest danach das Fehlerregister aus. Asynchrone Operationen
// werden als Task an einen dispatch.Dispatcher uebergeben; Tasks desselben Netzes
// laufen in Einreichungsreihenfolge und nie gleichzeitig.
//
// Verwendung:
//
//	net, err := fanny.New(fanny.Topology{Layers: []int{2, 3, 1}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer net.Close()
//
//	future, err := net.RunAsync([]float64{0, 1})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := future.Wait(ctx)
package fanny

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/fanny/fanny/dispatch"
	"github.com/fanny/fanny/engine"
)

// Network owns one engine network. All methods are safe for concurrent use.
type Network struct {
	// mu schuetzt net und closed und serialisiert jeden Engine-Aufruf
	mu     sync.Mutex
	net    engine.Network
	closed bool

	eng        engine.Engine
	dispatcher *dispatch.Dispatcher
	id         uuid.UUID

	// unveraenderlich nach der Konstruktion
	numInput  int
	numOutput int
	fixed     bool
}

func newNetwork(id uuid.UUID, net engine.Network, eng engine.Engine, d *dispatch.Dispatcher) *Network {
	n := &Network{
		net:        net,
		eng:        eng,
		dispatcher: d,
		id:         id,
		numInput:   net.NumInput(),
		numOutput:  net.NumOutput(),
		fixed:      net.IsFixed(),
	}
	runtime.SetFinalizer(n, (*Network).Close)

	slog.Debug("network created", "network", n)
	return n
}

// Close releases the engine network. Calling Close more than once is a no-op.
// Tasks still queued for the network complete with ErrClosed.
func (n *Network) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}

	n.net.Close()
	n.net = nil
	n.closed = true
	runtime.SetFinalizer(n, nil)

	slog.Debug("network closed", "id", n.id)
	return nil
}

// ID identifies the network in logs and in the dispatcher.
func (n *Network) ID() uuid.UUID { return n.id }

// Engine returns the engine that created the network. Training data passed to the
// network must come from the same engine.
func (n *Network) Engine() engine.Engine { return n.eng }

// IsFixed reports whether the network uses fixed point weights. Fixed point
// networks can be run, tested and saved but not trained.
func (n *Network) IsFixed() bool { return n.fixed }

func (n *Network) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", n.id.String()),
		slog.String("engine", n.eng.Name()),
		slog.Int("inputs", n.numInput),
		slog.Int("outputs", n.numOutput),
		slog.Bool("fixed", n.fixed),
	)
}

func (n *Network) String() string {
	return fmt.Sprintf("network %s (%d -> %d)", n.id, n.numInput, n.numOutput)
}

// call fuehrt fn unter dem Lock aus und leert danach das Fehlerregister.
func (n *Network) call(fn func(engine.Network)) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrClosed
	}
	fn(n.net)
	return drain(n.net)
}

func (n *Network) isClosed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}

func (n *Network) checkOpen() error {
	if n.isClosed() {
		return ErrClosed
	}
	return nil
}

func (n *Network) checkTrainable() error {
	if n.fixed {
		return ErrUnsupportedOperation
	}
	return nil
}

func (n *Network) checkInput(input []float64) error {
	if len(input) != n.numInput {
		return invalidf("input has %d values, network expects %d", len(input), n.numInput)
	}
	return nil
}

func (n *Network) checkDesired(desired []float64) error {
	if len(desired) != n.numOutput {
		return invalidf("desired output has %d values, network produces %d", len(desired), n.numOutput)
	}
	return nil
}

func checkData(data engine.TrainingData) error {
	if data == nil {
		return invalidf("training data is nil")
	}
	return nil
}

// output prueft die Breite der Engine-Ausgabe vor dem Kopieren.
func (n *Network) output(buf []float32) ([]float64, error) {
	if len(buf) < n.numOutput {
		return nil, fmt.Errorf("%w: engine returned %d values, expected %d", ErrNativeCompute, len(buf), n.numOutput)
	}
	return FromNative(buf, n.numOutput), nil
}

// Run executes the network on input and returns NumOutput values.
func (n *Network) Run(input []float64) ([]float64, error) {
	if err := n.checkOpen(); err != nil {
		return nil, err
	}
	if err := n.checkInput(input); err != nil {
		return nil, err
	}
	return n.run(ToNative(input))
}

func (n *Network) run(input []float32) ([]float64, error) {
	var out []float32
	if err := n.call(func(net engine.Network) { out = net.Run(input) }); err != nil {
		return nil, err
	}
	return n.output(out)
}

// Train performs one training step on a single pattern.
func (n *Network) Train(input, desired []float64) error {
	if err := n.checkOpen(); err != nil {
		return err
	}
	if err := n.checkInput(input); err != nil {
		return err
	}
	if err := n.checkDesired(desired); err != nil {
		return err
	}
	if err := n.checkTrainable(); err != nil {
		return err
	}

	in, want := ToNative(input), ToNative(desired)
	return n.call(func(net engine.Network) { net.Train(in, want) })
}

// Test runs input and accumulates the error against desired without changing any
// weight. It returns the network's output.
func (n *Network) Test(input, desired []float64) ([]float64, error) {
	if err := n.checkOpen(); err != nil {
		return nil, err
	}
	if err := n.checkInput(input); err != nil {
		return nil, err
	}
	if err := n.checkDesired(desired); err != nil {
		return nil, err
	}

	in, want := ToNative(input), ToNative(desired)
	var out []float32
	if err := n.call(func(net engine.Network) { out = net.Test(in, want) }); err != nil {
		return nil, err
	}
	return n.output(out)
}

// InitWeights initializes the weights from the value range of data.
func (n *Network) InitWeights(data engine.TrainingData) error {
	if err := n.checkOpen(); err != nil {
		return err
	}
	if err := checkData(data); err != nil {
		return err
	}
	return n.call(func(net engine.Network) { net.InitWeights(data) })
}

// ScaleTrain scales data in place with the parameters set by SetScalingParams.
func (n *Network) ScaleTrain(data engine.TrainingData) error {
	if err := n.checkOpen(); err != nil {
		return err
	}
	if err := checkData(data); err != nil {
		return err
	}
	if err := n.checkTrainable(); err != nil {
		return err
	}
	return n.call(func(net engine.Network) { net.ScaleTrain(data) })
}

// SetScalingParams computes scaling parameters that map data into the given
// input and output ranges.
func (n *Network) SetScalingParams(data engine.TrainingData, inputMin, inputMax, outputMin, outputMax float64) error {
	if err := n.checkOpen(); err != nil {
		return err
	}
	if err := checkData(data); err != nil {
		return err
	}
	if inputMin >= inputMax || outputMin >= outputMax {
		return invalidf("scaling range [%g, %g] -> [%g, %g] is empty", inputMin, inputMax, outputMin, outputMax)
	}
	if err := n.checkTrainable(); err != nil {
		return err
	}

	ok := true
	err := n.call(func(net engine.Network) {
		ok = net.SetScalingParams(data, float32(inputMin), float32(inputMax), float32(outputMin), float32(outputMax))
	})
	if err == nil && !ok {
		err = fmt.Errorf("%w: setting scaling parameters failed", ErrNativeCompute)
	}
	return err
}

// Progress is passed to the training callback.
type Progress = engine.Progress

// SetCallback installs fn as progress hook of the full training runs. fn runs on
// the worker goroutine while the network is locked and must not call methods of
// the network. Returning false stops the run. nil removes the hook.
func (n *Network) SetCallback(fn func(Progress) bool) error {
	if err := n.checkOpen(); err != nil {
		return err
	}
	var cb engine.Callback
	if fn != nil {
		cb = fn
	}
	return n.call(func(net engine.Network) { net.SetCallback(cb) })
}

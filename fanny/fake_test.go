package fanny

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fanny/fanny/dispatch"
	"github.com/fanny/fanny/engine"
)

// fakeEngine liefert nur den Namen, die Netze werden direkt uebernommen.
type fakeEngine struct{ engine.Engine }

func (fakeEngine) Name() string { return "fake" }

// fakeNetwork zaehlt Aufrufe und erkennt gleichzeitigen Zugriff. Nicht
// implementierte Methoden fuehren zu einem Panic ueber das eingebettete nil.
type fakeNetwork struct {
	engine.Network

	inputs, outputs int
	fixed           bool

	// failNext setzt beim naechsten Run das Fehlerregister
	failNext engine.ErrorCode
	// copyFails laesst Copy wie fann_copy ohne Speicher scheitern
	copyFails bool
	delay    time.Duration

	mu    sync.Mutex
	calls map[string]int
	seen  []float32

	busy       atomic.Bool
	concurrent atomic.Bool

	errno  engine.ErrorCode
	errstr string
	closed int
}

func newFake(inputs, outputs int) *fakeNetwork {
	return &fakeNetwork{inputs: inputs, outputs: outputs, calls: make(map[string]int)}
}

func (f *fakeNetwork) enter(name string) func() {
	if !f.busy.CompareAndSwap(false, true) {
		f.concurrent.Store(true)
	}
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return func() { f.busy.Store(false) }
}

func (f *fakeNetwork) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeNetwork) Close() { f.closed++ }

func (f *fakeNetwork) Copy() engine.Network {
	defer f.enter("copy")()

	if f.copyFails {
		f.errno, f.errstr = engine.ErrCantAllocateMem, "Unable to allocate memory."
		return nil
	}
	return newFake(f.inputs, f.outputs)
}

func (f *fakeNetwork) Run(input []float32) []float32 {
	defer f.enter("run")()

	if f.failNext != engine.ErrNone {
		f.errno, f.errstr = f.failNext, "injected failure"
		f.failNext = engine.ErrNone
		return nil
	}

	f.mu.Lock()
	f.seen = append(f.seen, input[0])
	f.mu.Unlock()

	out := make([]float32, f.outputs)
	for i := range out {
		out[i] = input[0] * 2
	}
	return out
}

func (f *fakeNetwork) Train(input, desired []float32) { defer f.enter("train")() }

func (f *fakeNetwork) TrainEpoch(engine.TrainingData) float32 {
	defer f.enter("train_epoch")()
	return 0.25
}

func (f *fakeNetwork) TestData(engine.TrainingData) float32 {
	defer f.enter("test_data")()
	return 0.5
}

func (f *fakeNetwork) TrainOnData(engine.TrainingData, uint32, uint32, float32) {
	defer f.enter("train_on_data")()
}

func (f *fakeNetwork) MSE() float32                { return 0.125 }
func (f *fakeNetwork) SetCallback(engine.Callback) { defer f.enter("set_callback")() }
func (f *fakeNetwork) NumInput() int               { return f.inputs }
func (f *fakeNetwork) NumOutput() int              { return f.outputs }
func (f *fakeNetwork) IsFixed() bool               { return f.fixed }
func (f *fakeNetwork) Errno() engine.ErrorCode     { return f.errno }
func (f *fakeNetwork) Errstr() string              { return f.errstr }
func (f *fakeNetwork) ResetErrno()                 { f.errno = engine.ErrNone }
func (f *fakeNetwork) ResetErrstr()                { f.errstr = "" }
func (f *fakeNetwork) LearningRate() float32       { return 0.7 }

// fakeData ist ein Datensatz ohne Inhalt.
type fakeData struct{}

func (fakeData) Length() int    { return 1 }
func (fakeData) NumInput() int  { return 2 }
func (fakeData) NumOutput() int { return 1 }

func newFakeHandle(t *testing.T, f *fakeNetwork) *Network {
	t.Helper()
	d := dispatch.New()
	n, err := New(adopt{id: uuid.New(), net: f, eng: fakeEngine{}}, WithDispatcher(d))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		n.Close()
		d.Close(context.Background())
	})
	return n
}

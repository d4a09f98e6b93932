package fanny

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/fanny/fanny/dispatch"
	"github.com/fanny/fanny/engine"
	"github.com/fanny/fanny/engine/refnet"
)

func wait[T any](t *testing.T, f *dispatch.Future[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return f.Wait(ctx)
}

func newRefnet(t *testing.T, topo Topology) *Network {
	t.Helper()
	d := dispatch.New()
	n, err := New(topo, WithEngine("refnet"), WithDispatcher(d))
	require.NoError(t, err)
	t.Cleanup(func() {
		n.Close()
		d.Close(context.Background())
	})
	return n
}

func xorData(t *testing.T, n *Network) engine.TrainingData {
	t.Helper()
	data, err := n.Engine().NewTrainingData(
		[][]float32{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		[][]float32{{0}, {1}, {1}, {0}},
	)
	require.NoError(t, err)
	return data
}

func TestStandardTopology(t *testing.T) {
	n := newRefnet(t, Topology{Type: "standard", Layers: []int{2, 3, 1}})

	assert.Equal(t, 2, n.NumInput())
	assert.Equal(t, 1, n.NumOutput())
	assert.Equal(t, 3, n.NumLayers())
	assert.Equal(t, []int{2, 3, 1}, n.LayerArray())
	assert.Equal(t, []int{1, 1, 0}, n.BiasArray())
	assert.Equal(t, 8, n.TotalNeurons())
	assert.Equal(t, 3*3+1*4, n.TotalConnections())
	assert.False(t, n.IsFixed())
	assert.InDelta(t, 0.7, n.LearningRate(), 1e-6)

	out, err := n.Run([]float64{0.5, -0.5})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestTopologyValidation(t *testing.T) {
	rate := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		topo Topology
	}{
		{"single layer", Topology{Layers: []int{5}}},
		{"no layers", Topology{}},
		{"empty layer", Topology{Layers: []int{2, 0, 1}}},
		{"negative layer", Topology{Layers: []int{2, -3, 1}}},
		{"unknown type", Topology{Type: "recurrent", Layers: []int{2, 1}}},
		{"zero rate", Topology{Type: TypeSparse, Layers: []int{2, 1}, ConnectionRate: rate(0)}},
		{"rate above one", Topology{Type: TypeSparse, Layers: []int{2, 1}, ConnectionRate: rate(1.5)}},
		{"rate on standard", Topology{Layers: []int{2, 1}, ConnectionRate: rate(0.5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.topo, WithEngine("refnet"), WithDispatcher(dispatch.New()))
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestTopologyTypes(t *testing.T) {
	sparse := newRefnet(t, Topology{Type: TypeSparse, Layers: []int{4, 6, 2}})
	full := newRefnet(t, Topology{Type: TypeStandard, Layers: []int{4, 6, 2}})
	assert.LessOrEqual(t, sparse.TotalConnections(), full.TotalConnections())

	shortcut := newRefnet(t, Topology{Type: TypeShortcut, Layers: []int{2, 3, 1}})
	// jede Schicht sieht alle vorherigen
	assert.Equal(t, 3*3+1*6, shortcut.TotalConnections())

	out, err := shortcut.Run([]float64{1, 0})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestUnknownEngine(t *testing.T) {
	_, err := New(Topology{Layers: []int{2, 1}}, WithEngine("does-not-exist"), WithDispatcher(dispatch.New()))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNilRequest(t *testing.T) {
	_, err := New(nil, WithDispatcher(dispatch.New()))
	require.ErrorIs(t, err, ErrInvalidArgument)

	var clone *Clone
	_, err = New(clone, WithDispatcher(dispatch.New()))
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(Clone{}, WithDispatcher(dispatch.New()))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRunWrongLengthSkipsEngine(t *testing.T) {
	f := newFake(2, 1)
	n := newFakeHandle(t, f)

	for _, input := range [][]float64{nil, {1}, {1, 2, 3}} {
		_, err := n.Run(input)
		require.ErrorIs(t, err, ErrInvalidArgument)

		_, err = n.RunAsync(input)
		require.ErrorIs(t, err, ErrInvalidArgument)
	}
	assert.Equal(t, 0, f.count("run"))
}

func TestTrainWrongLength(t *testing.T) {
	f := newFake(2, 1)
	n := newFakeHandle(t, f)

	require.ErrorIs(t, n.Train([]float64{1}, []float64{1}), ErrInvalidArgument)
	require.ErrorIs(t, n.Train([]float64{1, 2}, []float64{1, 2}), ErrInvalidArgument)
	_, err := n.Test([]float64{1, 2}, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 0, f.count("train"))

	require.NoError(t, n.Train([]float64{1, 2}, []float64{1}))
	assert.Equal(t, 1, f.count("train"))
}

func TestNativeErrorReportedOnce(t *testing.T) {
	f := newFake(2, 1)
	n := newFakeHandle(t, f)

	f.failNext = engine.ErrIndexOutOfBound
	_, err := n.Run([]float64{1, 2})
	require.ErrorIs(t, err, ErrNativeCompute)
	assert.NotErrorIs(t, err, ErrIO)

	var ne *NativeError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, engine.ErrIndexOutOfBound, ne.Code)
	assert.Equal(t, "injected failure", ne.Message)

	// der naechste erfolgreiche Aufruf sieht keinen alten Fehler
	out, err := n.Run([]float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, out)
}

func TestDrainIsIdempotent(t *testing.T) {
	f := newFake(2, 1)
	require.NoError(t, drain(f))
	require.NoError(t, drain(f))

	f.errno, f.errstr = engine.ErrCantOpenConfigR, "missing"
	err := drain(f)
	require.ErrorIs(t, err, ErrIO)
	assert.Equal(t, engine.ErrNone, f.Errno())
	assert.Empty(t, f.Errstr())
	require.NoError(t, drain(f))
}

func TestRunAsyncOrder(t *testing.T) {
	f := newFake(1, 1)
	f.delay = time.Millisecond
	n := newFakeHandle(t, f)

	input := []float64{0}
	var futures []*dispatch.Future[[]float64]
	for i := range 20 {
		input[0] = float64(i)
		fut, err := n.RunAsync(input)
		require.NoError(t, err)
		futures = append(futures, fut)
	}
	// der Task besitzt eine Kopie, die Aenderung darf ihn nicht erreichen
	input[0] = -1

	for i, fut := range futures {
		out, err := wait(t, fut)
		require.NoError(t, err)
		assert.Equal(t, []float64{float64(2 * i)}, out)
	}

	want := make([]float32, 20)
	for i := range want {
		want[i] = float32(i)
	}
	if diff := cmp.Diff(want, f.seen); diff != "" {
		t.Errorf("execution order mismatch (-want +got):\n%s", diff)
	}
}

func TestNoConcurrentEngineAccess(t *testing.T) {
	f := newFake(2, 1)
	f.delay = 100 * time.Microsecond
	n := newFakeHandle(t, f)

	var g errgroup.Group
	for i := range 8 {
		g.Go(func() error {
			for range 10 {
				if i%2 == 0 {
					if _, err := n.Run([]float64{1, 2}); err != nil {
						return err
					}
					continue
				}
				fut, err := n.RunAsync([]float64{1, 2})
				if err != nil {
					return err
				}
				if _, err := fut.Wait(context.Background()); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.False(t, f.concurrent.Load(), "engine was entered concurrently")
	assert.Equal(t, 80, f.count("run"))
}

func TestTrainSpecArity(t *testing.T) {
	params := &RunParams{MaxEpochs: 10, ReportInterval: 1, DesiredError: 0.01}

	tests := []struct {
		name string
		spec TrainSpec
	}{
		{"epoch with params", TrainSpec{Data: fakeData{}, Mode: ModeSingleEpoch, Params: params}},
		{"evaluate with params", TrainSpec{Data: fakeData{}, Mode: ModeEvaluate, Params: params}},
		{"full run without params", TrainSpec{Data: fakeData{}, Mode: ModeFullRun}},
		{"no source", TrainSpec{Mode: ModeSingleEpoch}},
		{"two sources", TrainSpec{Data: fakeData{}, Path: "train.data", Mode: ModeFullRun, Params: params}},
		{"epoch from file", TrainSpec{Path: "train.data", Mode: ModeSingleEpoch}},
		{"cascade epoch", TrainSpec{Data: fakeData{}, Cascade: true, Mode: ModeSingleEpoch}},
		{"unknown mode", TrainSpec{Data: fakeData{}, Mode: Mode(7)}},
	}

	f := newFake(2, 1)
	n := newFakeHandle(t, f)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fut, err := n.Submit(tt.spec)
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Nil(t, fut)
		})
	}
	assert.Equal(t, 0, f.count("train_epoch")+f.count("test_data")+f.count("train_on_data"))
}

func TestTrainModesReportTheirMetric(t *testing.T) {
	f := newFake(2, 1)
	n := newFakeHandle(t, f)

	fut, err := n.TrainEpoch(fakeData{})
	require.NoError(t, err)
	mse, err := wait(t, fut)
	require.NoError(t, err)
	assert.Equal(t, 0.25, mse)

	fut, err = n.TestData(fakeData{})
	require.NoError(t, err)
	mse, err = wait(t, fut)
	require.NoError(t, err)
	assert.Equal(t, 0.5, mse)

	// ein voller Lauf meldet das MSE nach dem Lauf
	fut, err = n.TrainOnData(fakeData{}, 100, 10, 0.001)
	require.NoError(t, err)
	mse, err = wait(t, fut)
	require.NoError(t, err)
	assert.Equal(t, 0.125, mse)
	assert.Equal(t, 1, f.count("train_on_data"))

	_, err = n.TrainEpoch(nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	n := newRefnet(t, Topology{Layers: []int{3, 4, 2}})
	path := filepath.Join(t.TempDir(), "net.net")

	fut, err := n.Save(path)
	require.NoError(t, err)
	dp, err := wait(t, fut)
	require.NoError(t, err)
	assert.Equal(t, 0, dp)

	d := dispatch.New()
	defer d.Close(context.Background())
	lf, err := Load(path, WithEngine("refnet"), WithDispatcher(d))
	require.NoError(t, err)
	loaded, err := wait(t, lf)
	require.NoError(t, err)
	defer loaded.Close()

	assert.Equal(t, n.NumInput(), loaded.NumInput())
	assert.Equal(t, n.NumOutput(), loaded.NumOutput())
	assert.Equal(t, n.NumLayers(), loaded.NumLayers())
	assert.Equal(t, n.TotalConnections(), loaded.TotalConnections())
	assert.NotEqual(t, n.ID(), loaded.ID())

	input := []float64{0.1, 0.5, 0.9}
	want, err := n.Run(input)
	require.NoError(t, err)
	got, err := loaded.Run(input)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-6)
}

func TestSaveToFixedLoadTrain(t *testing.T) {
	n := newRefnet(t, Topology{Layers: []int{2, 3, 1}})
	path := filepath.Join(t.TempDir(), "fixed.net")

	fut, err := n.SaveToFixed(path)
	require.NoError(t, err)
	dp, err := wait(t, fut)
	require.NoError(t, err)
	assert.Positive(t, dp)

	loaded, err := New(FromFile{Path: path}, WithEngine("refnet"), WithDispatcher(dispatch.New()))
	require.NoError(t, err)
	defer loaded.Close()

	assert.True(t, loaded.IsFixed())
	assert.Equal(t, 2, loaded.NumInput())
	assert.Equal(t, 1, loaded.NumOutput())
	assert.Equal(t, 3, loaded.NumLayers())

	input := []float64{0.25, 0.75}
	want, err := n.Run(input)
	require.NoError(t, err)
	got, err := loaded.Run(input)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 0.01)

	require.ErrorIs(t, loaded.Train(input, []float64{1}), ErrUnsupportedOperation)

	data := xorData(t, loaded)
	_, err = loaded.TrainEpoch(data)
	require.ErrorIs(t, err, ErrUnsupportedOperation)
	_, err = loaded.TrainOnData(data, 10, 1, 0.1)
	require.ErrorIs(t, err, ErrUnsupportedOperation)
	require.ErrorIs(t, loaded.ScaleTrain(data), ErrUnsupportedOperation)

	// Save behaelt das Festkomma-Format, liefert aber keinen Dezimalpunkt
	again, err := loaded.Save(filepath.Join(t.TempDir(), "again.net"))
	require.NoError(t, err)
	dp, err = wait(t, again)
	require.NoError(t, err)
	assert.Zero(t, dp)
}

func TestLoadRejectsBadScaling(t *testing.T) {
	n := newRefnet(t, Topology{Layers: []int{2, 3, 1}})
	data := xorData(t, n)
	require.NoError(t, n.SetScalingParams(data, -1, 1, -1, 1))

	path := filepath.Join(t.TempDir(), "scaled.net")
	fut, err := n.Save(path)
	require.NoError(t, err)
	_, err = wait(t, fut)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(string(raw), "\n")
	for i, l := range lines {
		if strings.HasPrefix(l, "scale_input_from=") {
			lines[i] = "scale_input_from=0"
		}
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))

	_, err = New(FromFile{Path: path}, WithEngine("refnet"), WithDispatcher(dispatch.New()))
	require.ErrorIs(t, err, ErrParse)
	var ne *NativeError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, engine.ErrCantReadConfig, ne.Code)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	d := dispatch.New()
	defer d.Close(context.Background())

	fut, err := Load(filepath.Join(dir, "missing.net"), WithEngine("refnet"), WithDispatcher(d))
	require.NoError(t, err)
	_, err = wait(t, fut)
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, ErrNativeCompute)

	bad := filepath.Join(dir, "bad.net")
	require.NoError(t, os.WriteFile(bad, []byte("NOT_A_NETWORK\n"), 0o644))
	_, err = New(FromFile{Path: bad}, WithEngine("refnet"), WithDispatcher(d))
	require.ErrorIs(t, err, ErrParse)

	_, err = Load("", WithDispatcher(d))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSaveFailure(t *testing.T) {
	n := newRefnet(t, Topology{Layers: []int{2, 1}})

	fut, err := n.Save(filepath.Join(t.TempDir(), "missing", "dir", "net.net"))
	require.NoError(t, err)
	_, err = wait(t, fut)
	require.ErrorIs(t, err, ErrIO)

	_, err = n.Save("")
	require.ErrorIs(t, err, ErrInvalidArgument)

	// das Register ist danach wieder sauber
	_, err = n.Run([]float64{1, 1})
	require.NoError(t, err)
}

func TestClone(t *testing.T) {
	n := newRefnet(t, Topology{Layers: []int{2, 3, 1}})

	c, err := New(Clone{From: n}, WithDispatcher(dispatch.New()))
	require.NoError(t, err)
	defer c.Close()
	assert.NotEqual(t, n.ID(), c.ID())

	input := []float64{0.3, 0.6}
	want, err := n.Run(input)
	require.NoError(t, err)

	// Training auf dem Original veraendert die Kopie nicht
	for range 50 {
		require.NoError(t, n.Train(input, []float64{1}))
	}
	require.NoError(t, n.Close())

	got, err := c.Run(input)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-9)
}

func TestCloneFailure(t *testing.T) {
	f := newFake(2, 1)
	f.copyFails = true
	n := newFakeHandle(t, f)

	_, err := New(Clone{From: n})
	require.ErrorIs(t, err, ErrNativeCompute)
	var ne *NativeError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, engine.ErrCantAllocateMem, ne.Code)

	// das Register ist danach leer, die Quelle bleibt nutzbar
	assert.Equal(t, engine.ErrNone, f.errno)
	f.copyFails = false
	c, err := New(Clone{From: n}, WithDispatcher(dispatch.New()))
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, 2, c.NumInput())
	assert.Equal(t, 2, f.count("copy"))
}

func TestClose(t *testing.T) {
	d := dispatch.New()
	defer d.Close(context.Background())

	n, err := New(Topology{Layers: []int{2, 1}}, WithEngine("refnet"), WithDispatcher(d))
	require.NoError(t, err)

	require.NoError(t, n.Close())
	require.NoError(t, n.Close())

	_, err = n.Run([]float64{1, 2})
	require.ErrorIs(t, err, ErrClosed)
	_, err = n.RunAsync([]float64{1, 2})
	require.ErrorIs(t, err, ErrClosed)
	_, err = n.Save("x.net")
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, n.SetCallback(nil), ErrClosed)
	_, err = New(Clone{From: n})
	require.ErrorIs(t, err, ErrClosed)

	assert.Equal(t, 0, n.NumInput())
	assert.Nil(t, n.LayerArray())
	assert.Zero(t, n.MSE())
}

func TestQueuedTaskAfterClose(t *testing.T) {
	f := newFake(1, 1)
	f.delay = 20 * time.Millisecond
	n := newFakeHandle(t, f)

	first, err := n.RunAsync([]float64{1})
	require.NoError(t, err)
	second, err := n.RunAsync([]float64{2})
	require.NoError(t, err)

	require.NoError(t, n.Close())

	// jedes Future wird aufgeloest, mit Ergebnis oder ErrClosed
	for _, fut := range []*dispatch.Future[[]float64]{first, second} {
		_, err := wait(t, fut)
		if err != nil {
			require.ErrorIs(t, err, ErrClosed)
		}
	}
	assert.Equal(t, 1, f.closed)
}

func TestTrainOnDataCallback(t *testing.T) {
	n := newRefnet(t, Topology{Layers: []int{2, 4, 1}})
	data := xorData(t, n)

	var reports []Progress
	require.NoError(t, n.SetCallback(func(p Progress) bool {
		reports = append(reports, p)
		return true
	}))

	fut, err := n.TrainOnData(data, 50, 10, 0)
	require.NoError(t, err)
	mse, err := wait(t, fut)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, mse, 0.0)

	var epochs []uint32
	for _, p := range reports {
		epochs = append(epochs, p.Epochs)
		assert.Equal(t, uint32(50), p.MaxEpochs)
	}
	assert.Equal(t, []uint32{1, 10, 20, 30, 40, 50}, epochs)

	// false beendet den Lauf nach dem ersten Bericht
	reports = nil
	require.NoError(t, n.SetCallback(func(p Progress) bool {
		reports = append(reports, p)
		return false
	}))
	fut, err = n.TrainOnData(data, 50, 10, 0)
	require.NoError(t, err)
	_, err = wait(t, fut)
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	require.NoError(t, n.SetCallback(nil))
}

func TestTrainOnFile(t *testing.T) {
	n := newRefnet(t, Topology{Layers: []int{2, 3, 1}})
	path := filepath.Join(t.TempDir(), "xor.data")
	require.NoError(t, refnet.WriteTrainingFile(path,
		[][]float32{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		[][]float32{{0}, {1}, {1}, {0}},
	))

	fut, err := n.TrainOnFile(path, 20, 0, 0.0001)
	require.NoError(t, err)
	mse, err := wait(t, fut)
	require.NoError(t, err)
	assert.Greater(t, mse, 0.0)

	fut, err = n.TrainOnFile(filepath.Join(t.TempDir(), "missing.data"), 20, 0, 0.0001)
	require.NoError(t, err)
	_, err = wait(t, fut)
	require.ErrorIs(t, err, ErrIO)
}

func TestEpochAndEvaluate(t *testing.T) {
	n := newRefnet(t, Topology{Layers: []int{2, 3, 1}})
	data := xorData(t, n)

	fut, err := n.TrainEpoch(data)
	require.NoError(t, err)
	epochMSE, err := wait(t, fut)
	require.NoError(t, err)
	assert.Greater(t, epochMSE, 0.0)

	fut, err = n.TestData(data)
	require.NoError(t, err)
	testMSE, err := wait(t, fut)
	require.NoError(t, err)
	assert.Greater(t, testMSE, 0.0)
	assert.InDelta(t, testMSE, n.MSE(), 1e-6)

	out, err := n.Test([]float64{1, 0}, []float64{1})
	require.NoError(t, err)
	assert.Len(t, out, 1)

	// Daten mit anderer Breite meldet die Engine
	wide, err := n.Engine().NewTrainingData([][]float32{{1, 2, 3}}, [][]float32{{1}})
	require.NoError(t, err)
	fut, err = n.TrainEpoch(wide)
	require.NoError(t, err)
	_, err = wait(t, fut)
	var ne *NativeError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, engine.ErrInputNoMatch, ne.Code)
}

func TestCascadeUnsupportedByRefnet(t *testing.T) {
	n := newRefnet(t, Topology{Layers: []int{2, 3, 1}})
	data := xorData(t, n)

	fut, err := n.CascadeTrainOnData(data, 10, 1, 0.01)
	require.NoError(t, err)
	_, err = wait(t, fut)

	var ne *NativeError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, engine.ErrCantUseTrainAlg, ne.Code)
	assert.Equal(t, KindNativeCompute, ne.Kind)

	_, err = n.Run([]float64{1, 0})
	require.NoError(t, err)
}

func TestScaling(t *testing.T) {
	n := newRefnet(t, Topology{Layers: []int{2, 2, 1}})
	data, err := n.Engine().NewTrainingData(
		[][]float32{{0, 10}, {5, 20}, {10, 30}},
		[][]float32{{100}, {150}, {200}},
	)
	require.NoError(t, err)

	var ne *NativeError
	err = n.ScaleTrain(data)
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, engine.ErrScaleNotPresent, ne.Code)

	require.NoError(t, n.SetScalingParams(data, -1, 1, 0, 1))
	require.NoError(t, n.ScaleTrain(data))

	ds := data.(*refnet.Dataset)
	assert.InDeltaSlice(t, []float32{-1, -1}, ds.Input(0), 1e-6)
	assert.InDeltaSlice(t, []float32{1, 1}, ds.Input(2), 1e-6)
	assert.InDeltaSlice(t, []float32{0.5}, ds.Output(1), 1e-6)

	require.ErrorIs(t, n.SetScalingParams(nil, -1, 1, 0, 1), ErrInvalidArgument)
	require.ErrorIs(t, n.SetScalingParams(data, 1, -1, 0, 1), ErrInvalidArgument)
	require.ErrorIs(t, n.InitWeights(nil), ErrInvalidArgument)
	require.NoError(t, n.InitWeights(data))
}

func TestNativeErrorClassification(t *testing.T) {
	tests := []struct {
		code  engine.ErrorCode
		io    bool
		parse bool
	}{
		{engine.ErrCantOpenConfigR, true, false},
		{engine.ErrCantOpenConfigW, true, false},
		{engine.ErrCantOpenTDW, true, false},
		{engine.ErrCantOpenTDR, true, false},
		{engine.ErrWrongConfigVersion, false, true},
		{engine.ErrCantReadConfig, false, true},
		{engine.ErrCantReadNeuron, false, true},
		{engine.ErrCantReadConnections, false, true},
		{engine.ErrWrongNumConnections, false, true},
		{engine.ErrCantReadTD, false, true},
		{engine.ErrCantAllocateMem, false, false},
		{engine.ErrInputNoMatch, false, false},
	}

	for _, tt := range tests {
		err := error(newNativeError(tt.code, "msg"))
		assert.ErrorIs(t, err, ErrNativeCompute, "code %d", tt.code)
		assert.Equal(t, tt.io, errors.Is(err, ErrIO), "code %d", tt.code)
		assert.Equal(t, tt.parse, errors.Is(err, ErrParse), "code %d", tt.code)
		assert.NotErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestArrays(t *testing.T) {
	in := []float64{1.5, -2, 0}
	buf := ToNative(in)
	assert.Equal(t, []float32{1.5, -2, 0}, buf)

	buf[0] = 9
	assert.Equal(t, 1.5, in[0])

	assert.Equal(t, []float64{1.5, -2}, FromNative([]float32{1.5, -2, 7}, 2))
	assert.Empty(t, ToNative(nil))
	assert.Panics(t, func() { FromNative([]float32{1}, 2) })
}

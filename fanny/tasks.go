// tasks.go - Asynchrone Operationen als Tasks fuer den Dispatcher
//
// Jeder Task besitzt Kopien seiner Eingaben und ein Future. Execute fuehrt den
// Engine-Aufruf unter dem Handle-Lock aus, leert das Fehlerregister und loest das
// Future genau einmal auf.
package fanny

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fanny/fanny/dispatch"
	"github.com/fanny/fanny/engine"
)

// task ist die gemeinsame Basis aller Tasks.
type task[T any] struct {
	name   string
	future *dispatch.Future[T]
}

func newTask[T any](name string) task[T] {
	return task[T]{name: name, future: dispatch.NewFuture[T]()}
}

func (t *task[T]) Name() string { return t.name }

func (t *task[T]) Fail(err error) {
	var zero T
	t.future.Resolve(zero, err)
}

func (t *task[T]) resolve(v T, err error) error {
	t.future.Resolve(v, err)
	return err
}

type runTask struct {
	task[[]float64]
	n     *Network
	input []float32
}

func (t *runTask) Execute() error {
	out, err := t.n.run(t.input)
	return t.resolve(out, err)
}

// RunAsync is Run on a worker goroutine.
func (n *Network) RunAsync(input []float64) (*dispatch.Future[[]float64], error) {
	if err := n.checkOpen(); err != nil {
		return nil, err
	}
	if err := n.checkInput(input); err != nil {
		return nil, err
	}

	t := &runTask{task: newTask[[]float64]("run"), n: n, input: ToNative(input)}
	n.dispatcher.Submit(n.id, t)
	return t.future, nil
}

type saveTask struct {
	task[int]
	n     *Network
	path  string
	fixed bool
}

func (t *saveTask) Execute() error {
	dp, err := t.n.save(t.path, t.fixed)
	return t.resolve(dp, err)
}

func (n *Network) save(path string, fixed bool) (int, error) {
	dp := 0
	ok := true
	err := n.call(func(net engine.Network) {
		if fixed {
			dp = net.SaveToFixed(path)
			ok = dp >= 0
		} else {
			ok = net.Save(path)
		}
	})
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: saving %s failed", ErrIO, path)
	}
	return dp, nil
}

// Save writes the network definition to path in the network's own format. The
// future always yields 0; use SaveToFixed to learn a decimal point.
func (n *Network) Save(path string) (*dispatch.Future[int], error) {
	return n.submitSave(path, false)
}

// SaveToFixed writes a fixed point version of the network to path. The future
// yields the decimal point the engine chose for the quantization.
func (n *Network) SaveToFixed(path string) (*dispatch.Future[int], error) {
	return n.submitSave(path, true)
}

func (n *Network) submitSave(path string, fixed bool) (*dispatch.Future[int], error) {
	if err := n.checkOpen(); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, invalidf("path is empty")
	}

	name := "save"
	if fixed {
		name = "save_fixed"
	}
	t := &saveTask{task: newTask[int](name), n: n, path: path, fixed: fixed}
	n.dispatcher.Submit(n.id, t)
	return t.future, nil
}

type loadTask struct {
	task[*Network]
	id   uuid.UUID
	path string
	eng  engine.Engine
	opts options
}

func (t *loadTask) Execute() error {
	net, err := t.eng.CreateFromFile(t.path)
	if err != nil {
		return t.resolve(nil, translate(err))
	}
	n, err := New(adopt{id: t.id, net: net, eng: t.eng}, WithDispatcher(t.opts.dispatcher))
	return t.resolve(n, err)
}

// Mode selects what a TrainSpec does with its data.
type Mode int

const (
	// ModeFullRun trains until the desired error or the epoch budget is reached.
	// The future yields the MSE after the run.
	ModeFullRun Mode = iota

	// ModeSingleEpoch trains one epoch and yields its MSE.
	ModeSingleEpoch

	// ModeEvaluate tests the data without training and yields the MSE.
	ModeEvaluate
)

func (m Mode) String() string {
	switch m {
	case ModeFullRun:
		return "full_run"
	case ModeSingleEpoch:
		return "single_epoch"
	case ModeEvaluate:
		return "evaluate"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// RunParams are the arguments of a full run. For cascade training MaxEpochs and
// ReportInterval count neurons instead of epochs.
type RunParams struct {
	MaxEpochs      uint32
	ReportInterval uint32
	DesiredError   float32
}

// TrainSpec describes one training or test operation. Exactly one of Data and
// Path is set. Params is required for ModeFullRun and must be nil otherwise.
// Path and Cascade are only valid with ModeFullRun.
type TrainSpec struct {
	Data    engine.TrainingData
	Path    string
	Cascade bool
	Mode    Mode
	Params  *RunParams
}

func (s TrainSpec) validate() error {
	switch {
	case s.Data == nil && s.Path == "":
		return invalidf("training data or path required")
	case s.Data != nil && s.Path != "":
		return invalidf("training data and path are mutually exclusive")
	}

	switch s.Mode {
	case ModeFullRun:
		if s.Params == nil {
			return invalidf("%s requires max epochs, report interval and desired error", s.Mode)
		}
	case ModeSingleEpoch, ModeEvaluate:
		if s.Params != nil {
			return invalidf("%s takes no run parameters", s.Mode)
		}
		if s.Path != "" {
			return invalidf("%s requires in-memory training data", s.Mode)
		}
		if s.Cascade {
			return invalidf("%s does not support cascade training", s.Mode)
		}
	default:
		return invalidf("unknown mode %d", int(s.Mode))
	}
	return nil
}

func (s TrainSpec) name() string {
	switch s.Mode {
	case ModeSingleEpoch:
		return "train_epoch"
	case ModeEvaluate:
		return "test_data"
	}
	name := "train_on_data"
	if s.Path != "" {
		name = "train_on_file"
	}
	if s.Cascade {
		name = "cascade" + name
	}
	return name
}

type trainTask struct {
	task[float64]
	n    *Network
	spec TrainSpec
}

func (t *trainTask) Execute() error {
	var mse float32
	err := t.n.call(func(net engine.Network) {
		s := t.spec
		switch s.Mode {
		case ModeEvaluate:
			mse = net.TestData(s.Data)
			return
		case ModeSingleEpoch:
			mse = net.TrainEpoch(s.Data)
			return
		}

		p := s.Params
		switch {
		case s.Cascade && s.Path != "":
			net.CascadeTrainOnFile(s.Path, p.MaxEpochs, p.ReportInterval, p.DesiredError)
		case s.Cascade:
			net.CascadeTrainOnData(s.Data, p.MaxEpochs, p.ReportInterval, p.DesiredError)
		case s.Path != "":
			net.TrainOnFile(s.Path, p.MaxEpochs, p.ReportInterval, p.DesiredError)
		default:
			net.TrainOnData(s.Data, p.MaxEpochs, p.ReportInterval, p.DesiredError)
		}
		mse = net.MSE()
	})
	if err != nil {
		return t.resolve(0, err)
	}
	return t.resolve(float64(mse), nil)
}

// Submit validates spec and schedules it. Fixed point networks reject every
// mode with ErrUnsupportedOperation.
func (n *Network) Submit(spec TrainSpec) (*dispatch.Future[float64], error) {
	if err := n.checkOpen(); err != nil {
		return nil, err
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	if err := n.checkTrainable(); err != nil {
		return nil, err
	}

	if spec.Params != nil {
		p := *spec.Params
		spec.Params = &p
	}
	t := &trainTask{task: newTask[float64](spec.name()), n: n, spec: spec}
	n.dispatcher.Submit(n.id, t)
	return t.future, nil
}

// TrainEpoch trains one epoch on data. The future yields the epoch's MSE.
func (n *Network) TrainEpoch(data engine.TrainingData) (*dispatch.Future[float64], error) {
	return n.Submit(TrainSpec{Data: data, Mode: ModeSingleEpoch})
}

// TestData computes the MSE of data without training.
func (n *Network) TestData(data engine.TrainingData) (*dispatch.Future[float64], error) {
	return n.Submit(TrainSpec{Data: data, Mode: ModeEvaluate})
}

// TrainOnData trains on data until desiredError or maxEpochs is reached.
func (n *Network) TrainOnData(data engine.TrainingData, maxEpochs, epochsBetweenReports uint32, desiredError float32) (*dispatch.Future[float64], error) {
	return n.Submit(TrainSpec{
		Data:   data,
		Mode:   ModeFullRun,
		Params: &RunParams{MaxEpochs: maxEpochs, ReportInterval: epochsBetweenReports, DesiredError: desiredError},
	})
}

// TrainOnFile is TrainOnData with training data read from path by the engine.
func (n *Network) TrainOnFile(path string, maxEpochs, epochsBetweenReports uint32, desiredError float32) (*dispatch.Future[float64], error) {
	return n.Submit(TrainSpec{
		Path:   path,
		Mode:   ModeFullRun,
		Params: &RunParams{MaxEpochs: maxEpochs, ReportInterval: epochsBetweenReports, DesiredError: desiredError},
	})
}

// CascadeTrainOnData grows the network with cascade correlation.
func (n *Network) CascadeTrainOnData(data engine.TrainingData, maxNeurons, neuronsBetweenReports uint32, desiredError float32) (*dispatch.Future[float64], error) {
	return n.Submit(TrainSpec{
		Data:    data,
		Cascade: true,
		Mode:    ModeFullRun,
		Params:  &RunParams{MaxEpochs: maxNeurons, ReportInterval: neuronsBetweenReports, DesiredError: desiredError},
	})
}

func (n *Network) CascadeTrainOnFile(path string, maxNeurons, neuronsBetweenReports uint32, desiredError float32) (*dispatch.Future[float64], error) {
	return n.Submit(TrainSpec{
		Path:    path,
		Cascade: true,
		Mode:    ModeFullRun,
		Params:  &RunParams{MaxEpochs: maxNeurons, ReportInterval: neuronsBetweenReports, DesiredError: desiredError},
	})
}

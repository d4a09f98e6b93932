// engine.go - Vertrag fuer native Netzwerk-Engines und Engine-Registrierung
// Dieses Modul definiert die Interfaces Network, TrainingData und Engine sowie die
// Registry, ueber die konkrete Engines (refnet, fann) eingebunden werden.
package engine

import (
	"fmt"
	"slices"
	"sync"
)

// Network is a single native network resource.
//
// Implementations are synchronous and not safe for concurrent use. Every failing
// call leaves a code in the error register (Errno/Errstr) that stays set until it
// is reset explicitly.
type Network interface {
	// Close frees the native resource. The Network must not be used afterwards.
	Close()

	// Copy returns a deep copy that shares no state with the receiver.
	Copy() Network

	Run(input []float32) []float32
	Train(input, desired []float32)
	Test(input, desired []float32) []float32

	TrainEpoch(data TrainingData) float32
	TestData(data TrainingData) float32
	TrainOnData(data TrainingData, maxEpochs, epochsBetweenReports uint32, desiredError float32)
	TrainOnFile(path string, maxEpochs, epochsBetweenReports uint32, desiredError float32)
	CascadeTrainOnData(data TrainingData, maxNeurons, neuronsBetweenReports uint32, desiredError float32)
	CascadeTrainOnFile(path string, maxNeurons, neuronsBetweenReports uint32, desiredError float32)

	// Save writes the network as floating point definition.
	Save(path string) bool

	// SaveToFixed writes a fixed point definition and returns the decimal point used.
	SaveToFixed(path string) int

	InitWeights(data TrainingData)
	ScaleTrain(data TrainingData)
	SetScalingParams(data TrainingData, inputMin, inputMax, outputMin, outputMax float32) bool

	// SetCallback installs a progress hook for the full training runs. nil removes it.
	SetCallback(fn Callback)

	NumInput() int
	NumOutput() int
	NumLayers() int
	TotalNeurons() int
	TotalConnections() int
	LayerArray() []int
	BiasArray() []int
	MSE() float32
	BitFail() int
	IsFixed() bool

	LearningRate() float32
	QuickpropDecay() float32
	QuickpropMu() float32
	RpropIncreaseFactor() float32
	RpropDecreaseFactor() float32
	RpropDeltaZero() float32
	RpropDeltaMin() float32
	RpropDeltaMax() float32

	Errno() ErrorCode
	Errstr() string
	ResetErrno()
	ResetErrstr()
}

// TrainingData is a dataset owned by the engine that created it. Networks only
// borrow it for the duration of a call.
type TrainingData interface {
	Length() int
	NumInput() int
	NumOutput() int
}

// Progress is reported to a Callback during full training runs.
type Progress struct {
	MaxEpochs            uint32
	EpochsBetweenReports uint32
	DesiredError         float32
	Epochs               uint32
	MSE                  float32
}

// Callback receives training progress. Returning false stops the run.
type Callback func(Progress) bool

// Engine creates networks and training data.
type Engine interface {
	Name() string

	CreateStandard(layers []int) (Network, error)
	CreateSparse(connectionRate float32, layers []int) (Network, error)
	CreateShortcut(layers []int) (Network, error)
	CreateFromFile(path string) (Network, error)

	ReadTrainingFile(path string) (TrainingData, error)
	NewTrainingData(inputs, outputs [][]float32) (TrainingData, error)
}

var (
	enginesMu sync.RWMutex
	engines   = make(map[string]func() Engine)
)

// Register makes an engine factory available under name.
func Register(name string, f func() Engine) {
	enginesMu.Lock()
	defer enginesMu.Unlock()

	if _, ok := engines[name]; ok {
		panic("engine: engine already registered: " + name)
	}

	engines[name] = f
}

// Get returns a new instance of the engine registered under name.
func Get(name string) (Engine, error) {
	enginesMu.RLock()
	f, ok := engines[name]
	enginesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported engine %q (available: %v)", name, Names())
	}

	return f(), nil
}

// Names lists the registered engines in sorted order.
func Names() []string {
	enginesMu.RLock()
	defer enginesMu.RUnlock()

	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

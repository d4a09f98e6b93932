//go:build fann

// fann.go - Engine, Netz-Handle, Fehlerregister und Trainingsdaten ueber libfann
package fann

/*
#cgo fann_fixed CFLAGS: -DFIXEDFANN
#cgo !fann_fixed LDFLAGS: -lfann
#cgo fann_fixed LDFLAGS: -lfixedfann
#cgo LDFLAGS: -lm

#include <stdlib.h>
#include <stdint.h>
#include <fann.h>

static char *fanny_errstr(struct fann *ann) {
	return ((struct fann_error *)ann)->errstr;
}

static float fanny_mse(struct fann *ann) {
	if (ann->num_MSE == 0) {
		return 0;
	}
	return ann->MSE_value / (float)ann->num_MSE;
}
*/
import "C"

import (
	"log/slog"
	"os"
	"runtime"
	"runtime/cgo"
	"unsafe"

	"github.com/fanny/fanny/engine"
)

func init() {
	engine.Register("fann", func() engine.Engine { return Engine{} })
}

// Engine creates libfann networks and training data.
type Engine struct{}

func (Engine) Name() string { return "fann" }

func layerArgs(layers []int) (C.uint, *C.uint, []C.uint) {
	buf := make([]C.uint, len(layers))
	for i, l := range layers {
		buf[i] = C.uint(l)
	}
	return C.uint(len(buf)), &buf[0], buf
}

func checkLayers(layers []int) error {
	if len(layers) < 2 {
		return engine.Errorf(engine.ErrWrongParametersForCreate, "Wrong parameters for create: at least 2 layers required, got %d.", len(layers))
	}
	for _, l := range layers {
		if l <= 0 {
			return engine.Errorf(engine.ErrWrongParametersForCreate, "Wrong parameters for create: layer size %d.", l)
		}
	}
	return nil
}

func (Engine) CreateStandard(layers []int) (engine.Network, error) {
	if err := checkLayers(layers); err != nil {
		return nil, err
	}
	n, ptr, buf := layerArgs(layers)
	ann := C.fann_create_standard_array(n, ptr)
	runtime.KeepAlive(buf)
	return wrap(ann, "standard")
}

func (Engine) CreateSparse(connectionRate float32, layers []int) (engine.Network, error) {
	if err := checkLayers(layers); err != nil {
		return nil, err
	}
	n, ptr, buf := layerArgs(layers)
	ann := C.fann_create_sparse_array(C.float(connectionRate), n, ptr)
	runtime.KeepAlive(buf)
	return wrap(ann, "sparse")
}

func (Engine) CreateShortcut(layers []int) (engine.Network, error) {
	if err := checkLayers(layers); err != nil {
		return nil, err
	}
	n, ptr, buf := layerArgs(layers)
	ann := C.fann_create_shortcut_array(n, ptr)
	runtime.KeepAlive(buf)
	return wrap(ann, "shortcut")
}

// CreateFromFile laedt eine Netzdefinition. libfann meldet Fehler hier nur ueber
// das globale Log, daher wird die Ursache grob unterschieden.
func (Engine) CreateFromFile(path string) (engine.Network, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, engine.Errorf(engine.ErrCantOpenConfigR, "Unable to open configuration file \"%s\" for reading.", path)
	}

	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	ann := C.fann_create_from_file(cpath)
	if ann == nil {
		return nil, engine.Errorf(engine.ErrCantReadConfig, "Error reading configuration file \"%s\".", path)
	}
	return wrap(ann, path)
}

func wrap(ann *C.struct_fann, origin string) (engine.Network, error) {
	if ann == nil {
		return nil, engine.Errorf(engine.ErrCantAllocateMem, "Unable to allocate memory.")
	}
	// kein Fehlerausdruck auf stderr, Fehler werden ueber das Register gelesen
	C.fann_set_error_log((*C.struct_fann_error)(unsafe.Pointer(ann)), nil)

	slog.Debug("fann network created", "origin", origin, "layers", int(C.fann_get_num_layers(ann)))
	return &network{ann: ann}, nil
}

type network struct {
	ann *C.struct_fann

	// Zustand fuer den Trainings-Callback, siehe setCallback
	handle   cgo.Handle
	userData unsafe.Pointer

	// Fehler, die ohne Aufruf in libfann entstehen
	errno  engine.ErrorCode
	errstr string
}

func (n *network) fail(code engine.ErrorCode, msg string) {
	n.errno = code
	n.errstr = msg
}

func (n *network) Close() {
	if n.ann == nil {
		return
	}
	n.SetCallback(nil)
	C.fann_destroy(n.ann)
	n.ann = nil
}

func (n *network) Copy() engine.Network {
	c := C.fann_copy(n.ann)
	if c == nil {
		return nil
	}
	C.fann_set_error_log((*C.struct_fann_error)(unsafe.Pointer(c)), nil)
	// der Callback gehoert zum Original, ohne user_data laeuft das Training ungestoert
	C.fann_set_user_data(c, nil)
	return &network{ann: c}
}

func (n *network) Run(input []float32) []float32 {
	if len(input) != n.NumInput() {
		n.fail(engine.ErrInputNoMatch, "The number of input neurons in the ann and data don't match")
		return nil
	}
	in := toFann(input, n.multiplier())
	out := C.fann_run(n.ann, &in[0])
	if out == nil {
		return nil
	}
	return fromFann(out, n.NumOutput(), n.multiplier())
}

func (n *network) Test(input, desired []float32) []float32 {
	if len(input) != n.NumInput() || len(desired) != n.NumOutput() {
		n.fail(engine.ErrTrainDataMismatch, "Training data must be of equivalent structure.")
		return nil
	}
	mult := n.multiplier()
	in, want := toFann(input, mult), toFann(desired, mult)
	out := C.fann_test(n.ann, &in[0], &want[0])
	if out == nil {
		return nil
	}
	return fromFann(out, n.NumOutput(), mult)
}

func (n *network) Save(path string) bool {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	return C.fann_save(n.ann, cpath) == 0
}

func (n *network) TestData(data engine.TrainingData) float32 {
	td := n.trainData(data)
	if td == nil {
		return -1
	}
	return float32(C.fann_test_data(n.ann, td.data))
}

// trainData prueft, ob data von dieser Engine stammt.
func (n *network) trainData(data engine.TrainingData) *Dataset {
	td, ok := data.(*Dataset)
	if !ok || td == nil || td.data == nil {
		n.fail(engine.ErrTrainDataMismatch, "Training data must be of equivalent structure.")
		return nil
	}
	return td
}

func (n *network) NumInput() int         { return int(C.fann_get_num_input(n.ann)) }
func (n *network) NumOutput() int        { return int(C.fann_get_num_output(n.ann)) }
func (n *network) NumLayers() int        { return int(C.fann_get_num_layers(n.ann)) }
func (n *network) TotalNeurons() int     { return int(C.fann_get_total_neurons(n.ann)) }
func (n *network) TotalConnections() int { return int(C.fann_get_total_connections(n.ann)) }
func (n *network) BitFail() int          { return int(n.ann.num_bit_fail) }
func (n *network) MSE() float32          { return float32(C.fanny_mse(n.ann)) }

func (n *network) LayerArray() []int {
	buf := make([]C.uint, n.NumLayers())
	C.fann_get_layer_array(n.ann, &buf[0])
	return toInts(buf)
}

func (n *network) BiasArray() []int {
	buf := make([]C.uint, n.NumLayers())
	C.fann_get_bias_array(n.ann, &buf[0])
	return toInts(buf)
}

func toInts(buf []C.uint) []int {
	out := make([]int, len(buf))
	for i, v := range buf {
		out[i] = int(v)
	}
	return out
}

func (n *network) LearningRate() float32        { return float32(n.ann.learning_rate) }
func (n *network) QuickpropDecay() float32      { return float32(n.ann.quickprop_decay) }
func (n *network) QuickpropMu() float32         { return float32(n.ann.quickprop_mu) }
func (n *network) RpropIncreaseFactor() float32 { return float32(n.ann.rprop_increase_factor) }
func (n *network) RpropDecreaseFactor() float32 { return float32(n.ann.rprop_decrease_factor) }
func (n *network) RpropDeltaZero() float32      { return float32(n.ann.rprop_delta_zero) }
func (n *network) RpropDeltaMin() float32       { return float32(n.ann.rprop_delta_min) }
func (n *network) RpropDeltaMax() float32       { return float32(n.ann.rprop_delta_max) }

func (n *network) errData() *C.struct_fann_error {
	return (*C.struct_fann_error)(unsafe.Pointer(n.ann))
}

func (n *network) Errno() engine.ErrorCode {
	if n.errno != engine.ErrNone {
		return n.errno
	}
	return engine.ErrorCode(C.fann_get_errno(n.errData()))
}

// Errstr liest den String direkt, fann_get_errstr gibt ihn beim Lesen frei.
func (n *network) Errstr() string {
	if n.errno != engine.ErrNone {
		return n.errstr
	}
	if s := C.fanny_errstr(n.ann); s != nil {
		return C.GoString(s)
	}
	return ""
}

func (n *network) ResetErrno() {
	n.errno = engine.ErrNone
	C.fann_reset_errno(n.errData())
}

func (n *network) ResetErrstr() {
	n.errstr = ""
	C.fann_reset_errstr(n.errData())
}

//export fannyTrainingCallback
func fannyTrainingCallback(ann *C.struct_fann, _ *C.struct_fann_train_data, maxEpochs, epochsBetweenReports C.uint, desiredError C.float, epochs C.uint) C.int {
	ptr := C.fann_get_user_data(ann)
	if ptr == nil {
		return 0
	}
	handle := cgo.Handle(*(*C.uintptr_t)(ptr))
	callback := handle.Value().(engine.Callback)

	ok := callback(engine.Progress{
		MaxEpochs:            uint32(maxEpochs),
		EpochsBetweenReports: uint32(epochsBetweenReports),
		DesiredError:         float32(desiredError),
		Epochs:               uint32(epochs),
		MSE:                  float32(C.fanny_mse(ann)),
	})
	if !ok {
		return -1
	}
	return 0
}

// releaseCallback gibt Handle und user_data frei.
func (n *network) releaseCallback() {
	if n.userData == nil {
		return
	}
	C.fann_set_user_data(n.ann, nil)
	C.free(n.userData)
	n.userData = nil
	n.handle.Delete()
}

// Dataset wraps struct fann_train_data.
type Dataset struct {
	data *C.struct_fann_train_data
}

func newDataset(data *C.struct_fann_train_data) *Dataset {
	d := &Dataset{data: data}
	runtime.SetFinalizer(d, (*Dataset).Close)
	return d
}

// Close frees the native data. Networks must not use it afterwards.
func (d *Dataset) Close() {
	if d.data == nil {
		return
	}
	C.fann_destroy_train(d.data)
	d.data = nil
	runtime.SetFinalizer(d, nil)
}

func (d *Dataset) Length() int    { return int(C.fann_length_train_data(d.data)) }
func (d *Dataset) NumInput() int  { return int(C.fann_num_input_train_data(d.data)) }
func (d *Dataset) NumOutput() int { return int(C.fann_num_output_train_data(d.data)) }

func (Engine) ReadTrainingFile(path string) (engine.TrainingData, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, engine.Errorf(engine.ErrCantOpenTDR, "Unable to open train data file \"%s\" for reading.", path)
	}
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	data := C.fann_read_train_from_file(cpath)
	if data == nil {
		return nil, engine.Errorf(engine.ErrCantReadTD, "Error reading info from train data file \"%s\".", path)
	}
	return newDataset(data), nil
}

func (Engine) NewTrainingData(inputs, outputs [][]float32) (engine.TrainingData, error) {
	if len(inputs) != len(outputs) || len(inputs) == 0 {
		return nil, engine.Errorf(engine.ErrTrainDataMismatch, "Training data has %d inputs but %d outputs", len(inputs), len(outputs))
	}
	numInput, numOutput := len(inputs[0]), len(outputs[0])

	data := C.fann_create_train(C.uint(len(inputs)), C.uint(numInput), C.uint(numOutput))
	if data == nil {
		return nil, engine.Errorf(engine.ErrCantAllocateMem, "Unable to allocate memory.")
	}
	ds := newDataset(data)

	in := unsafe.Slice(data.input, len(inputs))
	out := unsafe.Slice(data.output, len(outputs))
	for i := range inputs {
		if len(inputs[i]) != numInput || len(outputs[i]) != numOutput {
			ds.Close()
			return nil, engine.Errorf(engine.ErrTrainDataMismatch, "Training data row %d has a different width", i)
		}
		copy(unsafe.Slice(in[i], numInput), toFann(inputs[i], 1))
		copy(unsafe.Slice(out[i], numOutput), toFann(outputs[i], 1))
	}
	return ds, nil
}

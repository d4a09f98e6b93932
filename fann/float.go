//go:build fann && !fann_fixed

// float.go - Gleitkomma-Build: Training, Skalierung und Callback
package fann

/*
#include <stdlib.h>
#include <stdint.h>
#include <fann.h>

extern int fannyTrainingCallback(struct fann *ann, struct fann_train_data *train, unsigned int maxEpochs, unsigned int epochsBetweenReports, float desiredError, unsigned int epochs);
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/fanny/fanny/engine"
)

func (n *network) IsFixed() bool { return false }

func (n *network) multiplier() float32 { return 1 }

func toFann(v []float32, _ float32) []C.fann_type {
	out := make([]C.fann_type, len(v))
	for i, x := range v {
		out[i] = C.fann_type(x)
	}
	return out
}

func fromFann(p *C.fann_type, n int, _ float32) []float32 {
	out := make([]float32, n)
	for i, x := range unsafe.Slice(p, n) {
		out[i] = float32(x)
	}
	return out
}

func (n *network) SaveToFixed(path string) int {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	return int(C.fann_save_to_fixed(n.ann, cpath))
}

func (n *network) Train(input, desired []float32) {
	if len(input) != n.NumInput() || len(desired) != n.NumOutput() {
		n.fail(engine.ErrTrainDataMismatch, "Training data must be of equivalent structure.")
		return
	}
	in, want := toFann(input, 1), toFann(desired, 1)
	C.fann_train(n.ann, &in[0], &want[0])
}

func (n *network) TrainEpoch(data engine.TrainingData) float32 {
	td := n.trainData(data)
	if td == nil {
		return -1
	}
	return float32(C.fann_train_epoch(n.ann, td.data))
}

func (n *network) TrainOnData(data engine.TrainingData, maxEpochs, epochsBetweenReports uint32, desiredError float32) {
	td := n.trainData(data)
	if td == nil {
		return
	}
	C.fann_train_on_data(n.ann, td.data, C.uint(maxEpochs), C.uint(epochsBetweenReports), C.float(desiredError))
}

func (n *network) TrainOnFile(path string, maxEpochs, epochsBetweenReports uint32, desiredError float32) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	C.fann_train_on_file(n.ann, cpath, C.uint(maxEpochs), C.uint(epochsBetweenReports), C.float(desiredError))
}

func (n *network) CascadeTrainOnData(data engine.TrainingData, maxNeurons, neuronsBetweenReports uint32, desiredError float32) {
	td := n.trainData(data)
	if td == nil {
		return
	}
	C.fann_cascadetrain_on_data(n.ann, td.data, C.uint(maxNeurons), C.uint(neuronsBetweenReports), C.float(desiredError))
}

func (n *network) CascadeTrainOnFile(path string, maxNeurons, neuronsBetweenReports uint32, desiredError float32) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	C.fann_cascadetrain_on_file(n.ann, cpath, C.uint(maxNeurons), C.uint(neuronsBetweenReports), C.float(desiredError))
}

func (n *network) InitWeights(data engine.TrainingData) {
	if td := n.trainData(data); td != nil {
		C.fann_init_weights(n.ann, td.data)
	}
}

func (n *network) ScaleTrain(data engine.TrainingData) {
	if td := n.trainData(data); td != nil {
		C.fann_scale_train(n.ann, td.data)
	}
}

func (n *network) SetScalingParams(data engine.TrainingData, inputMin, inputMax, outputMin, outputMax float32) bool {
	td := n.trainData(data)
	if td == nil {
		return false
	}
	return C.fann_set_scaling_params(n.ann, td.data, C.float(inputMin), C.float(inputMax), C.float(outputMin), C.float(outputMax)) == 0
}

// SetCallback legt fn hinter einem cgo.Handle ab. Der Handle-Wert liegt in
// C-Speicher, damit libfann keinen Go-Zeiger haelt.
func (n *network) SetCallback(fn engine.Callback) {
	n.releaseCallback()
	if fn == nil {
		C.fann_set_callback(n.ann, nil)
		return
	}

	n.handle = cgo.NewHandle(fn)
	n.userData = C.malloc(C.size_t(unsafe.Sizeof(C.uintptr_t(0))))
	*(*C.uintptr_t)(n.userData) = C.uintptr_t(n.handle)

	C.fann_set_user_data(n.ann, n.userData)
	C.fann_set_callback(n.ann, C.fann_callback_type(C.fannyTrainingCallback))
}

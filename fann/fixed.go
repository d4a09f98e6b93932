//go:build fann && fann_fixed

// fixed.go - Festkomma-Build: Werte werden mit 2^decimal_point skaliert, Training
// ist nicht verfuegbar
package fann

/*
#include <stdlib.h>
#include <fann.h>
*/
import "C"

import (
	"math"
	"unsafe"

	"github.com/fanny/fanny/engine"
)

const trainUnsupported = "Training is not available for fixed point networks"

func (n *network) IsFixed() bool { return true }

func (n *network) multiplier() float32 {
	return float32(C.fann_get_multiplier(n.ann))
}

func toFann(v []float32, mult float32) []C.fann_type {
	out := make([]C.fann_type, len(v))
	for i, x := range v {
		out[i] = C.fann_type(math.Round(float64(x * mult)))
	}
	return out
}

func fromFann(p *C.fann_type, n int, mult float32) []float32 {
	out := make([]float32, n)
	for i, x := range unsafe.Slice(p, n) {
		out[i] = float32(x) / mult
	}
	return out
}

// SaveToFixed speichert das bereits quantisierte Netz unveraendert.
func (n *network) SaveToFixed(path string) int {
	if !n.Save(path) {
		return -1
	}
	return int(C.fann_get_decimal_point(n.ann))
}

func (n *network) Train([]float32, []float32) {
	n.fail(engine.ErrCantUseTrainAlg, trainUnsupported)
}

func (n *network) TrainEpoch(engine.TrainingData) float32 {
	n.fail(engine.ErrCantUseTrainAlg, trainUnsupported)
	return -1
}

func (n *network) TrainOnData(engine.TrainingData, uint32, uint32, float32) {
	n.fail(engine.ErrCantUseTrainAlg, trainUnsupported)
}

func (n *network) TrainOnFile(string, uint32, uint32, float32) {
	n.fail(engine.ErrCantUseTrainAlg, trainUnsupported)
}

func (n *network) CascadeTrainOnData(engine.TrainingData, uint32, uint32, float32) {
	n.fail(engine.ErrCantUseTrainAlg, trainUnsupported)
}

func (n *network) CascadeTrainOnFile(string, uint32, uint32, float32) {
	n.fail(engine.ErrCantUseTrainAlg, trainUnsupported)
}

func (n *network) InitWeights(engine.TrainingData) {
	n.fail(engine.ErrCantUseTrainAlg, trainUnsupported)
}

func (n *network) ScaleTrain(engine.TrainingData) {
	n.fail(engine.ErrCantUseTrainAlg, trainUnsupported)
}

func (n *network) SetScalingParams(engine.TrainingData, float32, float32, float32, float32) bool {
	n.fail(engine.ErrCantUseTrainAlg, trainUnsupported)
	return false
}

// SetCallback hat ohne Training keine Wirkung, gibt aber einen alten Handle frei.
func (n *network) SetCallback(engine.Callback) {
	n.releaseCallback()
}

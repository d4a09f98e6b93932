// train.go - Training, Test und Skalierung der Referenz-Engine
//
// Dieses Modul enthaelt:
// - Train/Test: inkrementelle Backpropagation fuer ein einzelnes Muster
// - TrainEpoch/TestData/TrainOnData/TrainOnFile: Laeufe ueber Datensaetze
// - InitWeights, SetScalingParams, ScaleTrain
package refnet

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/fanny/fanny/engine"
)

func (n *network) resetMSE() {
	n.mseSum = 0
	n.mseCount = 0
	n.bitFail = 0
}

func (n *network) computeMSE(output []float64, desired []float32) {
	for i, y := range output {
		diff := float64(desired[i]) - y
		n.mseSum += diff * diff
		n.mseCount++
		if math.Abs(diff) >= float64(n.params.bitFailLimit) {
			n.bitFail++
		}
	}
}

func (n *network) checkSizes(inputs, outputs int) bool {
	if inputs != n.NumInput() {
		n.fail(engine.ErrInputNoMatch, "The number of input neurons in the ann (%d) and data (%d) don't match", n.NumInput(), inputs)
		return false
	}
	if outputs != n.NumOutput() {
		n.fail(engine.ErrOutputNoMatch, "The number of output neurons in the ann (%d) and data (%d) don't match", n.NumOutput(), outputs)
		return false
	}
	return true
}

func (n *network) checkTrainable() bool {
	if n.fixed {
		n.fail(engine.ErrCantUseTrainAlg, "Unable to train a fixed point network")
		return false
	}
	return true
}

func (n *network) Train(input, desired []float32) {
	if !n.checkTrainable() || !n.checkSizes(len(input), len(desired)) {
		return
	}
	n.trainPattern(input, desired)
}

func (n *network) trainPattern(input, desired []float32) {
	acts := n.forward(input)
	last := len(n.layers) - 1
	n.computeMSE(acts[last], desired)

	// grads[k] = dE/d(Aktivierung von Schicht k), Fehler als desired - output
	grads := make([][]float64, len(n.layers))
	for k := range grads {
		grads[k] = make([]float64, n.layers[k])
	}
	for i, y := range acts[last] {
		grads[last][i] = float64(desired[i]) - y
	}

	lr := float64(n.params.learningRate)
	for l := last; l >= 1; l-- {
		delta := mat.NewVecDense(n.layers[l], nil)
		for i, y := range acts[l] {
			delta.SetVec(i, grads[l][i]*y*(1-y))
		}

		w := n.weights[l-1]
		var back mat.VecDense
		back.MulVec(w.T(), delta)

		offset := 0
		first := l - 1
		if n.shortcut {
			first = 0
		}
		for k := first; k < l; k++ {
			for j := range n.layers[k] {
				grads[k][j] += back.AtVec(offset + j)
			}
			offset += n.layers[k]
		}

		x := mat.NewVecDense(n.fanIn(l)+1, n.layerInput(acts, l))
		w.RankOne(w, lr, delta, x)
		if n.masks != nil {
			w.MulElem(w, n.masks[l-1])
		}
	}
}

func (n *network) Test(input, desired []float32) []float32 {
	if !n.checkSizes(len(input), len(desired)) {
		return nil
	}
	acts := n.forward(input)
	out := acts[len(acts)-1]
	n.computeMSE(out, desired)
	return toFloat32(out)
}

// dataset prueft, ob data von dieser Engine stammt und zum Netz passt.
func (n *network) dataset(data engine.TrainingData) *Dataset {
	ds, ok := data.(*Dataset)
	if !ok || ds == nil {
		n.fail(engine.ErrTrainDataMismatch, "Training data must be of equivalent structure.")
		return nil
	}
	if !n.checkSizes(ds.NumInput(), ds.NumOutput()) {
		return nil
	}
	return ds
}

func (n *network) TrainEpoch(data engine.TrainingData) float32 {
	if !n.checkTrainable() {
		return -1
	}
	ds := n.dataset(data)
	if ds == nil {
		return -1
	}
	return n.trainEpoch(ds)
}

func (n *network) trainEpoch(ds *Dataset) float32 {
	n.resetMSE()
	for i := range ds.inputs {
		n.trainPattern(ds.inputs[i], ds.outputs[i])
	}
	return n.MSE()
}

func (n *network) TestData(data engine.TrainingData) float32 {
	ds := n.dataset(data)
	if ds == nil {
		return -1
	}
	n.resetMSE()
	for i := range ds.inputs {
		acts := n.forward(ds.inputs[i])
		n.computeMSE(acts[len(acts)-1], ds.outputs[i])
	}
	return n.MSE()
}

func (n *network) TrainOnData(data engine.TrainingData, maxEpochs, epochsBetweenReports uint32, desiredError float32) {
	if !n.checkTrainable() {
		return
	}
	ds := n.dataset(data)
	if ds == nil {
		return
	}

	for epoch := uint32(1); epoch <= maxEpochs; epoch++ {
		mse := n.trainEpoch(ds)
		done := mse <= desiredError

		if epochsBetweenReports > 0 && (epoch == 1 || epoch%epochsBetweenReports == 0 || epoch == maxEpochs || done) {
			if n.callback != nil {
				if !n.callback(engine.Progress{
					MaxEpochs:            maxEpochs,
					EpochsBetweenReports: epochsBetweenReports,
					DesiredError:         desiredError,
					Epochs:               epoch,
					MSE:                  mse,
				}) {
					return
				}
			} else {
				slog.Debug("refnet training", "epochs", epoch, "error", mse, "bit_fail", n.bitFail)
			}
		}

		if done {
			return
		}
	}
}

func (n *network) TrainOnFile(path string, maxEpochs, epochsBetweenReports uint32, desiredError float32) {
	ds, err := readTrainingFile(path)
	if err != nil {
		n.fail(err.Code, "%s", err.Message)
		return
	}
	n.TrainOnData(ds, maxEpochs, epochsBetweenReports, desiredError)
}

func (n *network) CascadeTrainOnData(engine.TrainingData, uint32, uint32, float32) {
	n.fail(engine.ErrCantUseTrainAlg, "Cascade training is not supported by the refnet engine")
}

func (n *network) CascadeTrainOnFile(string, uint32, uint32, float32) {
	n.fail(engine.ErrCantUseTrainAlg, "Cascade training is not supported by the refnet engine")
}

// InitWeights verteilt die Gewichte nach Widrow-Nguyen ueber den Eingabebereich.
func (n *network) InitWeights(data engine.TrainingData) {
	ds := n.dataset(data)
	if ds == nil {
		return
	}

	smallest, largest := 0.0, 0.0
	for i, in := range ds.inputs {
		row := toFloat64(in)
		if i == 0 {
			smallest, largest = floats.Min(row), floats.Max(row)
			continue
		}
		smallest = math.Min(smallest, floats.Min(row))
		largest = math.Max(largest, floats.Max(row))
	}
	span := largest - smallest
	if span == 0 {
		span = 1
	}

	hidden := n.TotalNeurons() - n.NumInput() - n.NumOutput() - (len(n.layers) - 1)
	scale := math.Pow(0.7*float64(max(hidden, 1)), 1/float64(n.NumInput())) / span

	for idx, w := range n.weights {
		r, c := w.Dims()
		for i := range r {
			for j := range c {
				w.Set(i, j, (rand.Float64()*2-1)*scale)
			}
		}
		if n.masks != nil {
			w.MulElem(w, n.masks[idx])
		}
	}
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// scaling haelt lineare Abbildungen pro Ein- und Ausgabespalte.
type scaling struct {
	inputFrom, inputTo   []float64
	outputFrom, outputTo []float64
	inputNewMin          float64
	inputFactor          []float64
	outputNewMin         float64
	outputFactor         []float64
}

func (s scaling) clone() scaling {
	return scaling{
		inputFrom:    append([]float64(nil), s.inputFrom...),
		inputTo:      append([]float64(nil), s.inputTo...),
		outputFrom:   append([]float64(nil), s.outputFrom...),
		outputTo:     append([]float64(nil), s.outputTo...),
		inputNewMin:  s.inputNewMin,
		inputFactor:  append([]float64(nil), s.inputFactor...),
		outputNewMin: s.outputNewMin,
		outputFactor: append([]float64(nil), s.outputFactor...),
	}
}

// fits prueft alle Skalierungsvektoren gegen die Breite der Ein- und Ausgabe.
func (s scaling) fits(numInput, numOutput int) bool {
	for _, v := range [][]float64{s.inputFrom, s.inputTo, s.inputFactor} {
		if len(v) != numInput {
			return false
		}
	}
	for _, v := range [][]float64{s.outputFrom, s.outputTo, s.outputFactor} {
		if len(v) != numOutput {
			return false
		}
	}
	return true
}

func columnRange(rows [][]float32, col int) (lo, hi float64) {
	column := make([]float64, len(rows))
	for i, r := range rows {
		column[i] = float64(r[col])
	}
	return floats.Min(column), floats.Max(column)
}

func (n *network) SetScalingParams(data engine.TrainingData, inputMin, inputMax, outputMin, outputMax float32) bool {
	ds := n.dataset(data)
	if ds == nil {
		return false
	}
	if ds.Length() == 0 {
		n.fail(engine.ErrTrainDataSubset, "Training data is empty")
		return false
	}

	s := &scaling{inputNewMin: float64(inputMin), outputNewMin: float64(outputMin)}
	for col := range ds.NumInput() {
		lo, hi := columnRange(ds.inputs, col)
		s.inputFrom = append(s.inputFrom, lo)
		s.inputTo = append(s.inputTo, hi)
		s.inputFactor = append(s.inputFactor, factor(lo, hi, float64(inputMin), float64(inputMax)))
	}
	for col := range ds.NumOutput() {
		lo, hi := columnRange(ds.outputs, col)
		s.outputFrom = append(s.outputFrom, lo)
		s.outputTo = append(s.outputTo, hi)
		s.outputFactor = append(s.outputFactor, factor(lo, hi, float64(outputMin), float64(outputMax)))
	}
	n.scale = s
	return true
}

func factor(oldMin, oldMax, newMin, newMax float64) float64 {
	if oldMax == oldMin {
		return 1
	}
	return (newMax - newMin) / (oldMax - oldMin)
}

func (n *network) ScaleTrain(data engine.TrainingData) {
	if n.scale == nil {
		n.fail(engine.ErrScaleNotPresent, "Scaling parameters not present.")
		return
	}
	ds := n.dataset(data)
	if ds == nil {
		return
	}

	s := n.scale
	for _, row := range ds.inputs {
		for col, v := range row {
			row[col] = float32((float64(v)-s.inputFrom[col])*s.inputFactor[col] + s.inputNewMin)
		}
	}
	for _, row := range ds.outputs {
		for col, v := range row {
			row[col] = float32((float64(v)-s.outputFrom[col])*s.outputFactor[col] + s.outputNewMin)
		}
	}
}

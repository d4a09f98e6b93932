// data.go - Trainingsdaten der Referenz-Engine
//
// Format der Trainingsdatei (wie libfann):
//
//	num_data num_input num_output
//	input values...
//	output values...
package refnet

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fanny/fanny/engine"
)

// Dataset is the refnet implementation of engine.TrainingData. Scaling modifies it
// in place.
type Dataset struct {
	inputs  [][]float32
	outputs [][]float32
}

func (d *Dataset) Length() int { return len(d.inputs) }

func (d *Dataset) NumInput() int {
	if len(d.inputs) == 0 {
		return 0
	}
	return len(d.inputs[0])
}

func (d *Dataset) NumOutput() int {
	if len(d.outputs) == 0 {
		return 0
	}
	return len(d.outputs[0])
}

// Input returns a copy of the input row i.
func (d *Dataset) Input(i int) []float32 { return append([]float32(nil), d.inputs[i]...) }

// Output returns a copy of the output row i.
func (d *Dataset) Output(i int) []float32 { return append([]float32(nil), d.outputs[i]...) }

func (Engine) ReadTrainingFile(path string) (engine.TrainingData, error) {
	ds, err := readTrainingFile(path)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (Engine) NewTrainingData(inputs, outputs [][]float32) (engine.TrainingData, error) {
	if len(inputs) != len(outputs) {
		return nil, engine.Errorf(engine.ErrTrainDataMismatch, "Training data has %d inputs but %d outputs", len(inputs), len(outputs))
	}

	ds := &Dataset{}
	for i := range inputs {
		if i > 0 && (len(inputs[i]) != len(inputs[0]) || len(outputs[i]) != len(outputs[0])) {
			return nil, engine.Errorf(engine.ErrTrainDataMismatch, "Training data row %d has a different width", i)
		}
		ds.inputs = append(ds.inputs, append([]float32(nil), inputs[i]...))
		ds.outputs = append(ds.outputs, append([]float32(nil), outputs[i]...))
	}
	return ds, nil
}

func readTrainingFile(path string) (*Dataset, *engine.Error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, engine.Errorf(engine.ErrCantOpenTDR, "Unable to open train data file \"%s\" for reading.", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	next := func() (float64, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("unexpected end of file")
		}
		return strconv.ParseFloat(scanner.Text(), 32)
	}

	var header [3]int
	for i := range header {
		v, err := next()
		if err != nil || v < 0 || v != float64(int(v)) {
			return nil, engine.Errorf(engine.ErrCantReadTD, "Error reading info from train data file \"%s\", line: 1.", path)
		}
		header[i] = int(v)
	}
	numData, numInput, numOutput := header[0], header[1], header[2]

	ds := &Dataset{}
	readRow := func(width int) ([]float32, error) {
		// Breite aus dem Header erst nach dem Lesen der Werte vertrauen
		var row []float32
		for range width {
			v, err := next()
			if err != nil {
				return nil, err
			}
			row = append(row, float32(v))
		}
		return row, nil
	}

	for i := range numData {
		in, err := readRow(numInput)
		if err != nil {
			return nil, engine.Errorf(engine.ErrCantReadTD, "Error reading info from train data file \"%s\", line: %d.", path, 2+2*i)
		}
		out, err := readRow(numOutput)
		if err != nil {
			return nil, engine.Errorf(engine.ErrCantReadTD, "Error reading info from train data file \"%s\", line: %d.", path, 3+2*i)
		}
		ds.inputs = append(ds.inputs, in)
		ds.outputs = append(ds.outputs, out)
	}

	return ds, nil
}

// WriteTrainingFile writes inputs and outputs in the format ReadTrainingFile reads.
func WriteTrainingFile(path string, inputs, outputs [][]float32) error {
	if len(inputs) != len(outputs) || len(inputs) == 0 {
		return fmt.Errorf("refnet: need the same non-zero number of input and output rows")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d %d %d\n", len(inputs), len(inputs[0]), len(outputs[0]))
	for i := range inputs {
		b.WriteString(joinFloats(inputs[i]))
		b.WriteByte('\n')
		b.WriteString(joinFloats(outputs[i]))
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func joinFloats(v []float32) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(float64(x), 'g', -1, 32)
	}
	return strings.Join(parts, " ")
}

// file.go - Speichern und Laden von Netzdefinitionen der Referenz-Engine
//
// Die Datei beginnt mit FANN_FLO_2.1 (Gleitkomma) oder FANN_FIX_2.1 (Festkomma),
// danach folgen key=value Zeilen. Festkomma-Gewichte sind ganze Zahlen mit
// 2^decimal_point als Multiplikator.
package refnet

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/fanny/fanny/engine"
)

const (
	floatHeader = "FANN_FLO_2.1"
	fixedHeader = "FANN_FIX_2.1"

	maxDecimalPoint = 13
)

func (n *network) Save(path string) bool {
	dp := -1
	if n.fixed {
		dp = n.decimalPoint
	}
	return n.save(path, dp)
}

func (n *network) SaveToFixed(path string) int {
	dp := n.calculateDecimalPoint()
	if !n.save(path, dp) {
		return -1
	}
	return dp
}

// calculateDecimalPoint waehlt so viele Nachkommabits, dass die groesste
// Neuron-Summe noch in einen int32 passt.
func (n *network) calculateDecimalPoint() int {
	maxSum := 1.0
	for _, w := range n.weights {
		r, c := w.Dims()
		for i := range r {
			sum := 0.0
			for j := range c {
				sum += math.Abs(w.At(i, j))
			}
			maxSum = math.Max(maxSum, sum)
		}
	}
	bits := int(math.Ceil(math.Log2(maxSum)))
	return max(0, min(maxDecimalPoint, 29-bits))
}

// save schreibt das Netz. dp < 0 bedeutet Gleitkomma.
func (n *network) save(path string, dp int) bool {
	f, err := os.Create(path)
	if err != nil {
		n.fail(engine.ErrCantOpenConfigW, "Unable to open configuration file \"%s\" for writing.", path)
		return false
	}

	w := bufio.NewWriter(f)
	if dp < 0 {
		fmt.Fprintln(w, floatHeader)
	} else {
		fmt.Fprintln(w, fixedHeader)
		fmt.Fprintf(w, "decimal_point=%d\n", dp)
	}

	networkType := 0
	if n.shortcut {
		networkType = 1
	}
	fmt.Fprintf(w, "num_layers=%d\n", len(n.layers))
	fmt.Fprintf(w, "network_type=%d\n", networkType)
	fmt.Fprintf(w, "connection_rate=%f\n", n.connectionRate)
	fmt.Fprintf(w, "learning_rate=%f\n", n.params.learningRate)
	fmt.Fprintf(w, "quickprop_decay=%f\n", n.params.quickpropDecay)
	fmt.Fprintf(w, "quickprop_mu=%f\n", n.params.quickpropMu)
	fmt.Fprintf(w, "rprop_increase_factor=%f\n", n.params.rpropIncreaseFactor)
	fmt.Fprintf(w, "rprop_decrease_factor=%f\n", n.params.rpropDecreaseFactor)
	fmt.Fprintf(w, "rprop_delta_zero=%f\n", n.params.rpropDeltaZero)
	fmt.Fprintf(w, "rprop_delta_min=%f\n", n.params.rpropDeltaMin)
	fmt.Fprintf(w, "rprop_delta_max=%f\n", n.params.rpropDeltaMax)
	fmt.Fprintf(w, "bit_fail_limit=%f\n", n.params.bitFailLimit)
	fmt.Fprintf(w, "layer_sizes=%s\n", joinInts(n.layers))

	if n.scale != nil {
		fmt.Fprintln(w, "scale_included=1")
		fmt.Fprintf(w, "scale_input_from=%s\n", joinValues(n.scale.inputFrom, -1))
		fmt.Fprintf(w, "scale_input_to=%s\n", joinValues(n.scale.inputTo, -1))
		fmt.Fprintf(w, "scale_input_factor=%s\n", joinValues(n.scale.inputFactor, -1))
		fmt.Fprintf(w, "scale_input_new_min=%s\n", strconv.FormatFloat(n.scale.inputNewMin, 'g', -1, 64))
		fmt.Fprintf(w, "scale_output_from=%s\n", joinValues(n.scale.outputFrom, -1))
		fmt.Fprintf(w, "scale_output_to=%s\n", joinValues(n.scale.outputTo, -1))
		fmt.Fprintf(w, "scale_output_factor=%s\n", joinValues(n.scale.outputFactor, -1))
		fmt.Fprintf(w, "scale_output_new_min=%s\n", strconv.FormatFloat(n.scale.outputNewMin, 'g', -1, 64))
	} else {
		fmt.Fprintln(w, "scale_included=0")
	}

	for l, weights := range n.weights {
		fmt.Fprintf(w, "weights_%d=%s\n", l+1, joinValues(weights.RawMatrix().Data, dp))
		if n.masks != nil {
			fmt.Fprintf(w, "mask_%d=%s\n", l+1, joinValues(n.masks[l].RawMatrix().Data, 0))
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		n.fail(engine.ErrCantOpenConfigW, "Unable to write configuration file \"%s\": %v", path, err)
		return false
	}
	if err := f.Close(); err != nil {
		n.fail(engine.ErrCantOpenConfigW, "Unable to write configuration file \"%s\": %v", path, err)
		return false
	}
	return true
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, " ")
}

// joinValues formatiert Gleitkommawerte, oder bei dp >= 0 ganze Zahlen mit 2^dp.
func joinValues(v []float64, dp int) string {
	parts := make([]string, len(v))
	for i, x := range v {
		if dp >= 0 {
			parts[i] = strconv.FormatInt(int64(math.Round(math.Ldexp(x, dp))), 10)
		} else {
			parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
		}
	}
	return strings.Join(parts, " ")
}

func load(path string) (*network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, engine.Errorf(engine.ErrCantOpenConfigR, "Unable to open configuration file \"%s\" for reading.", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	if !scanner.Scan() {
		return nil, engine.Errorf(engine.ErrWrongConfigVersion, "Wrong version of configuration file, aborting read of configuration file \"%s\".", path)
	}

	n := &network{params: defaultHyperParams()}
	switch strings.TrimSpace(scanner.Text()) {
	case floatHeader:
	case fixedHeader:
		n.fixed = true
	default:
		return nil, engine.Errorf(engine.ErrWrongConfigVersion, "Wrong version of configuration file, aborting read of configuration file \"%s\".", path)
	}

	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, engine.Errorf(engine.ErrCantReadConfig, "Error reading \"%s\" from configuration file \"%s\".", line, path)
		}
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, engine.Errorf(engine.ErrCantReadConfig, "Error reading configuration file \"%s\": %v", path, err)
	}

	p := parser{path: path, values: values}
	n.decode(&p)
	if p.err != nil {
		return nil, p.err
	}
	return n, nil
}

// parser sammelt den ersten Fehler, damit decode linear bleibt.
type parser struct {
	path   string
	values map[string]string
	err    *engine.Error
}

func (p *parser) raw(key string) string {
	v, ok := p.values[key]
	if !ok && p.err == nil {
		p.err = engine.Errorf(engine.ErrCantReadConfig, "Error reading \"%s\" from configuration file \"%s\".", key, p.path)
	}
	return v
}

func (p *parser) int(key string) int {
	v, err := strconv.Atoi(p.raw(key))
	if err != nil && p.err == nil {
		p.err = engine.Errorf(engine.ErrCantReadConfig, "Error reading \"%s\" from configuration file \"%s\".", key, p.path)
	}
	return v
}

func (p *parser) float(key string) float64 {
	v, err := strconv.ParseFloat(p.raw(key), 64)
	if err != nil && p.err == nil {
		p.err = engine.Errorf(engine.ErrCantReadConfig, "Error reading \"%s\" from configuration file \"%s\".", key, p.path)
	}
	return v
}

func (p *parser) floats(key string, code engine.ErrorCode) []float64 {
	fields := strings.Fields(p.raw(key))
	out := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			if p.err == nil {
				p.err = engine.Errorf(code, "Error reading \"%s\" from configuration file \"%s\".", key, p.path)
			}
			return nil
		}
		out[i] = v
	}
	return out
}

func (n *network) decode(p *parser) {
	if n.fixed {
		n.decimalPoint = p.int("decimal_point")
	}
	numLayers := p.int("num_layers")
	n.shortcut = p.int("network_type") == 1
	n.connectionRate = float32(p.float("connection_rate"))
	n.params.learningRate = float32(p.float("learning_rate"))
	n.params.quickpropDecay = float32(p.float("quickprop_decay"))
	n.params.quickpropMu = float32(p.float("quickprop_mu"))
	n.params.rpropIncreaseFactor = float32(p.float("rprop_increase_factor"))
	n.params.rpropDecreaseFactor = float32(p.float("rprop_decrease_factor"))
	n.params.rpropDeltaZero = float32(p.float("rprop_delta_zero"))
	n.params.rpropDeltaMin = float32(p.float("rprop_delta_min"))
	n.params.rpropDeltaMax = float32(p.float("rprop_delta_max"))
	n.params.bitFailLimit = float32(p.float("bit_fail_limit"))

	for field := range strings.FieldsSeq(p.raw("layer_sizes")) {
		size, err := strconv.Atoi(field)
		if err != nil {
			if p.err == nil {
				p.err = engine.Errorf(engine.ErrCantReadNeuron, "Error reading neurons from configuration file \"%s\".", p.path)
			}
			return
		}
		n.layers = append(n.layers, size)
	}
	if p.err != nil {
		return
	}
	if len(n.layers) != numLayers || numLayers < 2 || slices.Min(n.layers) < 1 {
		p.err = engine.Errorf(engine.ErrCantReadNeuron, "Error reading neurons from configuration file \"%s\".", p.path)
		return
	}

	if p.int("scale_included") == 1 {
		n.scale = &scaling{
			inputFrom:    p.floats("scale_input_from", engine.ErrCantReadConfig),
			inputTo:      p.floats("scale_input_to", engine.ErrCantReadConfig),
			inputFactor:  p.floats("scale_input_factor", engine.ErrCantReadConfig),
			inputNewMin:  p.float("scale_input_new_min"),
			outputFrom:   p.floats("scale_output_from", engine.ErrCantReadConfig),
			outputTo:     p.floats("scale_output_to", engine.ErrCantReadConfig),
			outputFactor: p.floats("scale_output_factor", engine.ErrCantReadConfig),
			outputNewMin: p.float("scale_output_new_min"),
		}
		if p.err != nil {
			return
		}
		if !n.scale.fits(n.NumInput(), n.NumOutput()) {
			p.err = engine.Errorf(engine.ErrCantReadConfig, "Error reading scaling parameters from configuration file \"%s\".", p.path)
			return
		}
	}

	mult := 1.0
	if n.fixed {
		mult = math.Ldexp(1, n.decimalPoint)
	}
	for l := 1; l < numLayers; l++ {
		rows, cols := n.layers[l], n.fanIn(l)+1
		data := p.floats(fmt.Sprintf("weights_%d", l), engine.ErrCantReadConnections)
		if p.err != nil {
			return
		}
		if len(data) != rows*cols {
			p.err = engine.Errorf(engine.ErrWrongNumConnections, "ERROR connections_so_far=%d, total_connections=%d", len(data), rows*cols)
			return
		}
		for i := range data {
			data[i] /= mult
		}
		n.weights = append(n.weights, mat.NewDense(rows, cols, data))

		if n.connectionRate < 1 {
			mask := p.floats(fmt.Sprintf("mask_%d", l), engine.ErrCantReadConnections)
			if p.err != nil {
				return
			}
			if len(mask) != rows*cols {
				p.err = engine.Errorf(engine.ErrWrongNumConnections, "ERROR connections_so_far=%d, total_connections=%d", len(mask), rows*cols)
				return
			}
			n.masks = append(n.masks, mat.NewDense(rows, cols, mask))
		}
	}
}

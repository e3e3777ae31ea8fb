package nn

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidTopology is returned when a layer-size list is malformed
	ErrInvalidTopology = errors.New("invalid topology")
	// ErrIndexOutOfRange is returned when an input or output slot does not exist
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrGenomeLengthMismatch is returned when a genome does not fit the network
	ErrGenomeLengthMismatch = errors.New("genome length mismatch")
)

// Rand is the source of randomness used to initialize weights
type Rand interface {
	Float64() float64
}

// layer holds the parameters and output buffer of one computed layer
type layer struct {
	fanIn   int
	bias    []float64 // one per neuron
	weights []float64 // row-major: neuron j uses weights[j*fanIn : (j+1)*fanIn]
	out     []float64
}

func (l *layer) size() int {
	return len(l.bias)
}

// Network is a fully-connected layered feedforward network with sigmoid neurons
type Network struct {
	topology []int
	inputs   []float64
	layers   []layer
}

// New creates a network for the given topology and randomizes its weights
func New(topology []int, rng Rand) (*Network, error) {
	if _, err := GenomeLength(topology); err != nil {
		return nil, err
	}

	n := &Network{
		topology: append([]int(nil), topology...),
		inputs:   make([]float64, topology[0]),
		layers:   make([]layer, len(topology)-1),
	}
	for i := 1; i < len(topology); i++ {
		fanIn, size := topology[i-1], topology[i]
		n.layers[i-1] = layer{
			fanIn:   fanIn,
			bias:    make([]float64, size),
			weights: make([]float64, size*fanIn),
			out:     make([]float64, size),
		}
	}

	n.Randomize(rng)
	return n, nil
}

// GenomeLength returns the number of weights (biases included) a topology needs
func GenomeLength(topology []int) (int, error) {
	if len(topology) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 layers, got %d", ErrInvalidTopology, len(topology))
	}
	size := 0
	for i, width := range topology {
		if width <= 0 {
			return 0, fmt.Errorf("%w: layer %d has width %d", ErrInvalidTopology, i, width)
		}
		if i > 0 {
			size += width * (topology[i-1] + 1)
		}
	}
	return size, nil
}

// Topology returns a copy of the layer widths
func (n *Network) Topology() []int {
	return append([]int(nil), n.topology...)
}

// NumInputs returns the input width
func (n *Network) NumInputs() int {
	return len(n.inputs)
}

// NumOutputs returns the output width
func (n *Network) NumOutputs() int {
	return n.layers[len(n.layers)-1].size()
}

// GenomeSize returns the total number of weights (including biases)
func (n *Network) GenomeSize() int {
	size := 0
	for i := range n.layers {
		size += len(n.layers[i].bias) + len(n.layers[i].weights)
	}
	return size
}

// Randomize draws every bias and input weight uniformly from [0, 1)
func (n *Network) Randomize(rng Rand) {
	for i := range n.layers {
		l := &n.layers[i]
		for j := 0; j < l.size(); j++ {
			l.bias[j] = rng.Float64()
			row := l.weights[j*l.fanIn : (j+1)*l.fanIn]
			for k := range row {
				row[k] = rng.Float64()
			}
		}
	}
}

// SetInput stores a value in input slot index
func (n *Network) SetInput(index int, value float64) error {
	if index < 0 || index >= len(n.inputs) {
		return fmt.Errorf("%w: input %d of %d", ErrIndexOutOfRange, index, len(n.inputs))
	}
	n.inputs[index] = value
	return nil
}

// SetInputs replaces the whole input vector
func (n *Network) SetInputs(values []float64) error {
	if len(values) != len(n.inputs) {
		return fmt.Errorf("%w: got %d inputs, want %d", ErrIndexOutOfRange, len(values), len(n.inputs))
	}
	copy(n.inputs, values)
	return nil
}

// Forward propagates the current inputs through every layer in order.
// Each neuron computes sigmoid(bias * Σ input_i * weight_i).
func (n *Network) Forward() {
	prev := n.inputs
	for i := range n.layers {
		l := &n.layers[i]
		for j := 0; j < l.size(); j++ {
			row := l.weights[j*l.fanIn : (j+1)*l.fanIn]
			sum := 0.0
			for k, w := range row {
				sum += prev[k] * w
			}
			l.out[j] = Sigmoid(l.bias[j] * sum)
		}
		prev = l.out
	}
}

// Output returns the stored value of output neuron index
func (n *Network) Output(index int) (float64, error) {
	out := n.layers[len(n.layers)-1].out
	if index < 0 || index >= len(out) {
		return 0, fmt.Errorf("%w: output %d of %d", ErrIndexOutOfRange, index, len(out))
	}
	return out[index], nil
}

// Outputs returns a copy of the output layer values
func (n *Network) Outputs() []float64 {
	out := n.layers[len(n.layers)-1].out
	result := make([]float64, len(out))
	copy(result, out)
	return result
}

// Genome flattens the network weights: per neuron the bias followed by its input weights,
// layer by layer from the first computed layer to the output layer.
func (n *Network) Genome() []float64 {
	genome := make([]float64, 0, n.GenomeSize())
	for i := range n.layers {
		l := &n.layers[i]
		for j := 0; j < l.size(); j++ {
			genome = append(genome, l.bias[j])
			genome = append(genome, l.weights[j*l.fanIn:(j+1)*l.fanIn]...)
		}
	}
	return genome
}

// SetGenome copies genome into the network weights using the Genome ordering
func (n *Network) SetGenome(genome []float64) error {
	if want := n.GenomeSize(); len(genome) != want {
		return fmt.Errorf("%w: got %d weights, want %d", ErrGenomeLengthMismatch, len(genome), want)
	}

	offset := 0
	for i := range n.layers {
		l := &n.layers[i]
		for j := 0; j < l.size(); j++ {
			l.bias[j] = genome[offset]
			offset++
			offset += copy(l.weights[j*l.fanIn:(j+1)*l.fanIn], genome[offset:offset+l.fanIn])
		}
	}
	return nil
}

// Sigmoid is the standard logistic function. math.Exp overflows to +Inf for very
// negative x, which yields 0; underflow yields 1.
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

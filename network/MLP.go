package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MLP implements a multi-layered perceptron with one linear output
// node for each value that should be predicted.
type MLP struct {
	g          *G.ExprGraph
	layers     []*fcLayer
	input      *G.Node
	numOutputs int
	numInputs  int
	batchSize  int
	dropout    float64

	// Data needed for gobbing
	hiddenSizes []int
	activations []*Activation

	learnables G.Nodes
	model      []G.ValueGrad

	prediction *G.Node
	predVal    G.Value
}

// NewMLP creates and returns a new multi-layered perceptron with
// outputs output nodes. The graph parameter g is populated with the
// MLP, which takes batches of batch observations of features
// features each.
//
// The MLP has len(hiddenSizes) + 1 layers. For index i, hiddenSizes[i]
// is the number of nodes in hidden layer i and activations[i] is its
// activation function. A final linear layer with outputs nodes is
// always added. Every layer has a bias unit initialized to zero; the
// parameter init determines the initialization of all other weights.
func NewMLP(features, batch, outputs int, g *G.ExprGraph,
	hiddenSizes []int, init G.InitWFn, activations []*Activation) (*MLP,
	error) {
	if len(hiddenSizes) != len(activations) {
		msg := "newMLP: invalid number of activations" +
			"\n\twant(%d)\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(activations))
	}
	if features < 1 || batch < 1 || outputs < 1 {
		return nil, fmt.Errorf("newMLP: %w: features (%v), batch (%v) and "+
			"outputs (%v) must be positive", ErrShape, features, batch,
			outputs)
	}

	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, features),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	sizes := append(append([]int{}, hiddenSizes...), outputs)
	acts := append(append([]*Activation{}, activations...), Identity())
	layers := addfcLayers(g, sizes, acts, init, features)

	network := &MLP{
		g:           g,
		layers:      layers,
		input:       input,
		numOutputs:  outputs,
		numInputs:   features,
		batchSize:   batch,
		hiddenSizes: append([]int{}, hiddenSizes...),
		activations: append([]*Activation{}, activations...),
	}
	if err := network.fwd(input); err != nil {
		return nil, fmt.Errorf("newMLP: could not compute forward pass: %w",
			err)
	}

	return network, nil
}

// Graph returns the computational graph of the MLP
func (m *MLP) Graph() *G.ExprGraph {
	return m.g
}

// Clone clones an MLP into a new graph
func (m *MLP) Clone() (*MLP, error) {
	return m.CloneWithBatch(m.batchSize)
}

// CloneWithBatch clones an MLP into a new graph with a new input batch
// size
func (m *MLP) CloneWithBatch(batchSize int) (*MLP, error) {
	return m.cloneWith(batchSize, 0.0)
}

// CloneWithDropout clones an MLP into a new graph with a new input
// batch size, dropping out each hidden unit with probability p. This
// is used for training graphs only.
func (m *MLP) CloneWithDropout(batchSize int, p float64) (*MLP, error) {
	if p < 0 || p >= 1 {
		return nil, fmt.Errorf("cloneWithDropout: dropout probability must "+
			"be in [0, 1), got %v", p)
	}
	return m.cloneWith(batchSize, p)
}

func (m *MLP) cloneWith(batchSize int, dropout float64) (*MLP, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("clone: %w: batch size must be positive",
			ErrShape)
	}

	graph := G.NewGraph()
	input := G.NewMatrix(
		graph,
		tensor.Float64,
		G.WithShape(batchSize, m.numInputs),
		G.WithName("input"),
		G.WithInit(G.Zeroes()),
	)

	layers := make([]*fcLayer, len(m.layers))
	for i := range m.layers {
		layers[i] = m.layers[i].cloneTo(graph)
	}

	network := &MLP{
		g:           graph,
		layers:      layers,
		input:       input,
		numOutputs:  m.numOutputs,
		numInputs:   m.numInputs,
		batchSize:   batchSize,
		dropout:     dropout,
		hiddenSizes: m.hiddenSizes,
		activations: m.activations,
	}
	if err := network.fwd(input); err != nil {
		return nil, fmt.Errorf("clone: could not compute forward pass: %w",
			err)
	}

	return network, nil
}

// BatchSize returns the batch size of inputs to the network
func (m *MLP) BatchSize() int {
	return m.batchSize
}

// Features returns the number of features in a single observation
// vector that the network takes as input.
func (m *MLP) Features() int {
	return m.numInputs
}

// Outputs returns the number of outputs from the network
func (m *MLP) Outputs() int {
	return m.numOutputs
}

// HiddenSizes returns the number of units in each hidden layer
func (m *MLP) HiddenSizes() []int {
	return append([]int{}, m.hiddenSizes...)
}

// Dropout returns the probability of dropping hidden units
func (m *MLP) Dropout() float64 {
	return m.dropout
}

// SetInput sets the value of the input node before running the forward
// pass. The input must hold BatchSize() row-major observations.
func (m *MLP) SetInput(input []float64) error {
	if len(input) != m.numInputs*m.batchSize {
		return fmt.Errorf("setInput: %w: invalid number of inputs"+
			"\n\twant(%v)\n\thave(%v)", ErrShape, m.numInputs*m.batchSize,
			len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(m.input.Shape()...),
	)
	return G.Let(m.input, inputTensor)
}

// Set sets the weights of the MLP to be equal to the weights of
// another network with the same architecture
func (m *MLP) Set(source NeuralNet) error {
	sourceNodes := source.Learnables()
	nodes := m.Learnables()
	if len(sourceNodes) != len(nodes) {
		return fmt.Errorf("set: %w: source has %v learnables, want %v",
			ErrShape, len(sourceNodes), len(nodes))
	}

	for i, destLearnable := range nodes {
		if !sourceNodes[i].Shape().Eq(destLearnable.Shape()) {
			return fmt.Errorf("set: %w: learnable %v", ErrShape, i)
		}
		sourceLearnable := sourceNodes[i].Clone().(*G.Node)
		if err := G.Let(destLearnable, sourceLearnable.Value()); err != nil {
			return fmt.Errorf("set: %w", err)
		}
	}
	return nil
}

// Learnables returns the learnable nodes of the MLP, layer by layer,
// weights before biases
func (m *MLP) Learnables() G.Nodes {
	if m.learnables == nil {
		learnables := make([]*G.Node, 0, 2*len(m.layers))
		for _, l := range m.layers {
			learnables = append(learnables, l.weights, l.bias)
		}
		m.learnables = G.Nodes(learnables)
	}
	return m.learnables
}

// Weights returns the learnable nodes of the MLP that are not biases
func (m *MLP) Weights() G.Nodes {
	weights := make([]*G.Node, len(m.layers))
	for i, l := range m.layers {
		weights[i] = l.weights
	}
	return G.Nodes(weights)
}

// Model returns the learnables nodes with their gradients
func (m *MLP) Model() []G.ValueGrad {
	if m.model == nil {
		model := make([]G.ValueGrad, 0, 2*len(m.layers))
		for _, node := range m.Learnables() {
			model = append(model, node)
		}
		m.model = model
	}
	return m.model
}

// L2 adds 0.5 Σ w² over all non-bias weights of the MLP to its graph
// and returns the resulting scalar node
func (m *MLP) L2() (*G.Node, error) {
	var penalty *G.Node
	for _, w := range m.Weights() {
		squared, err := G.Square(w)
		if err != nil {
			return nil, fmt.Errorf("l2: %w", err)
		}
		sum, err := G.Sum(squared)
		if err != nil {
			return nil, fmt.Errorf("l2: %w", err)
		}

		if penalty == nil {
			penalty = sum
		} else if penalty, err = G.Add(penalty, sum); err != nil {
			return nil, fmt.Errorf("l2: %w", err)
		}
	}

	half := G.NewConstant(0.5, G.WithName("l2Half"))
	return G.Mul(penalty, half)
}

// fwd performs the forward pass of the MLP on the input node
func (m *MLP) fwd(input *G.Node) error {
	if input.Shape()[1] != m.numInputs {
		return fmt.Errorf("fwd: %w: invalid shape for input to neural net:"+
			" \n\twant(%v) \n\thave(%v)", ErrShape, m.numInputs,
			input.Shape()[1])
	}

	pred := input
	var err error
	for i, l := range m.layers {
		if pred, err = l.fwd(pred); err != nil {
			msg := "fwd: could not compute forward pass of layer %v: %w"
			return fmt.Errorf(msg, i, err)
		}

		if m.dropout > 0 && i < len(m.layers)-1 {
			if pred, err = G.Dropout(pred, m.dropout); err != nil {
				return fmt.Errorf("fwd: could not add dropout: %w", err)
			}
		}
	}

	m.prediction = pred
	G.Read(m.prediction, &m.predVal)

	return nil
}

// Output returns the output of the MLP after its graph has been run
func (m *MLP) Output() G.Value {
	return m.predVal
}

// Prediction returns the node of the computational graph that stores
// the output of the MLP
func (m *MLP) Prediction() *G.Node {
	return m.prediction
}

// GobEncode implements the gob.GobEncoder interface. Only the
// architecture and weights are encoded; dropout is a property of
// training graphs and is not stored.
func (m *MLP) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	header := []interface{}{
		m.numOutputs,
		m.numInputs,
		m.batchSize,
		m.hiddenSizes,
		m.activations,
	}
	for _, field := range header {
		if err := enc.Encode(field); err != nil {
			return nil, fmt.Errorf("gobencode: could not encode "+
				"architecture: %w", err)
		}
	}

	for i, layer := range m.layers {
		if err := enc.Encode(layer); err != nil {
			return nil, fmt.Errorf("gobencode: could not encode layer %v: %w",
				i, err)
		}
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The decoded MLP
// lives in a new graph.
func (m *MLP) GobDecode(in []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(in))

	var (
		numOutputs, numInputs, batchSize int
		hiddenSizes                      []int
		activations                      []*Activation
	)
	header := []interface{}{
		&numOutputs,
		&numInputs,
		&batchSize,
		&hiddenSizes,
		&activations,
	}
	for _, field := range header {
		if err := dec.Decode(field); err != nil {
			return fmt.Errorf("gobdecode: could not decode architecture: %w",
				err)
		}
	}

	newMLP, err := NewMLP(numInputs, batchSize, numOutputs, G.NewGraph(),
		hiddenSizes, G.Zeroes(), activations)
	if err != nil {
		return fmt.Errorf("gobdecode: could not construct new MLP: %w", err)
	}

	for i, layer := range newMLP.layers {
		if err := dec.Decode(layer); err != nil {
			return fmt.Errorf("gobdecode: could not decode layer %v: %w", i,
				err)
		}
	}

	*m = *newMLP
	return nil
}

package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	act     *Activation
}

// addfcLayers adds fully connected layers of the given sizes to g.
// Layer i has weights of shape (sizes[i-1], sizes[i]), with sizes[-1]
// taken to be features, and a (1, sizes[i]) bias initialized to zero.
func addfcLayers(g *G.ExprGraph, sizes []int, activations []*Activation,
	init G.InitWFn, features int) []*fcLayer {
	layers := make([]*fcLayer, len(sizes))

	in := features
	for i, out := range sizes {
		weights := G.NewMatrix(
			g,
			tensor.Float64,
			G.WithShape(in, out),
			G.WithName(fmt.Sprintf("L%dW", i)),
			G.WithInit(init),
		)
		bias := G.NewMatrix(
			g,
			tensor.Float64,
			G.WithShape(1, out),
			G.WithName(fmt.Sprintf("L%dB", i)),
			G.WithInit(G.Zeroes()),
		)

		layers[i] = &fcLayer{weights: weights, bias: bias, act: activations[i]}
		in = out
	}
	return layers
}

// fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	x, err := G.Mul(x, f.weights)
	if err != nil {
		return nil, err
	}

	// Broadcast the bias weights to all samples along the batch
	// dimension
	if x, err = G.BroadcastAdd(x, f.bias, nil, []byte{0}); err != nil {
		return nil, err
	}
	return f.act.apply(x)
}

// cloneTo clones an fcLayer to a new computational graph
func (f *fcLayer) cloneTo(g *G.ExprGraph) *fcLayer {
	return &fcLayer{
		weights: f.weights.CloneTo(g),
		bias:    f.bias.CloneTo(g),
		act:     f.act,
	}
}

// GobEncode implements the gob.GobEncoder interface
func (f *fcLayer) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	for _, node := range []*G.Node{f.weights, f.bias} {
		value, ok := node.Value().(*tensor.Dense)
		if !ok {
			return nil, fmt.Errorf("gobencode: %v has no dense value",
				node.Name())
		}
		if err := enc.Encode(value); err != nil {
			return nil, fmt.Errorf("gobencode: could not encode %v: %w",
				node.Name(), err)
		}
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The layer must
// already be part of a graph, and the decoded weights must match the
// shapes of its nodes.
func (f *fcLayer) GobDecode(in []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(in))

	for _, node := range []*G.Node{f.weights, f.bias} {
		value := &tensor.Dense{}
		if err := dec.Decode(value); err != nil {
			return fmt.Errorf("gobdecode: could not decode %v: %w",
				node.Name(), err)
		}
		if !value.Shape().Eq(node.Shape()) {
			return fmt.Errorf("gobdecode: %w: %v want %v have %v", ErrShape,
				node.Name(), node.Shape(), value.Shape())
		}
		if err := G.Let(node, value); err != nil {
			return fmt.Errorf("gobdecode: %w", err)
		}
	}
	return nil
}

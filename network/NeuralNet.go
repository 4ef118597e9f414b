// Package network implements feed-forward neural networks on Gorgonia
// computational graphs
package network

import (
	"errors"

	G "gorgonia.org/gorgonia"
)

// ErrShape is returned when data given to a network does not match
// the shape of its input
var ErrShape = errors.New("shape mismatch")

// NeuralNet is a neural network whose weights live in their own
// computational graph
type NeuralNet interface {
	Graph() *G.ExprGraph
	BatchSize() int
	Features() int
	Outputs() int
	SetInput([]float64) error
	Set(NeuralNet) error
	Learnables() G.Nodes
	Model() []G.ValueGrad
	Output() G.Value
	Prediction() *G.Node
}

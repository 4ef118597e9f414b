// Package deepq implements a double deep Q-network action-value
// function with a slowly updated target network
package deepq

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/samuelfneumann/skillchain/expreplay"
	"github.com/samuelfneumann/skillchain/network"
	"github.com/samuelfneumann/skillchain/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// ErrBatchSize is returned when a batch given to DeepQ does not have
// the batch size DeepQ was configured with
var ErrBatchSize = errors.New("invalid batch size")

// DeepQ implements an action-value function learned with double
// Q-learning and the MSE loss.
//
// Each network lives in its own computational graph and is run by its
// own VM:
//
//	behaviour    predicts action values for single observations
//	trainNet     holds the learned weights and computes the loss
//	onlineNext   selects next-state actions with the learned weights
//	targetNet    evaluates those actions with the slow target weights
//
// The behaviour and onlineNext networks are copied from trainNet
// after every update. The targetNet is copied from trainNet only by
// SyncTarget.
type DeepQ struct {
	config Config

	behaviour   *network.MLP
	behaviourVM G.VM

	trainNet   *network.MLP
	trainNetVM G.VM
	solver     G.Solver

	onlineNext   *network.MLP
	onlineNextVM G.VM

	targetNet   *network.MLP
	targetNetVM G.VM

	// selectedActions holds the one-hot encoding of the action taken
	// in each state of the batch, and targets holds the double
	// Q-learning update target for each of these actions.
	selectedActions *G.Node
	targets         *G.Node
	lossVal         G.Value

	numActions    int
	numFeatures   int
	gradientSteps int
}

// New creates and returns a new DeepQ for observations of features
// features and numActions discrete actions.
func New(features, numActions int, config Config) (*DeepQ, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	if numActions < 1 {
		return nil, fmt.Errorf("new: need at least one action, got %v",
			numActions)
	}

	init, err := config.InitWFn.Create()
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	activations, err := config.activations()
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	// Behaviour network for selecting actions
	behaviour, err := network.NewMLP(features, 1, numActions, G.NewGraph(),
		config.HiddenSizes, init, activations)
	if err != nil {
		return nil, fmt.Errorf("new: could not create network: %w", err)
	}

	d := &DeepQ{
		config:      config,
		behaviour:   behaviour,
		numActions:  numActions,
		numFeatures: features,
	}

	if d.onlineNext, err = behaviour.CloneWithBatch(config.BatchSize); err != nil {
		return nil, fmt.Errorf("new: could not create online network: %w",
			err)
	}
	if d.targetNet, err = behaviour.CloneWithBatch(config.BatchSize); err != nil {
		return nil, fmt.Errorf("new: could not create target network: %w",
			err)
	}
	if d.trainNet, err = behaviour.CloneWithDropout(config.BatchSize,
		config.Dropout); err != nil {
		return nil, fmt.Errorf("new: could not create learning network: %w",
			err)
	}

	if err := d.buildLoss(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	if d.solver, err = config.Solver.Create(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	d.behaviourVM = G.NewTapeMachine(d.behaviour.Graph())
	d.onlineNextVM = G.NewTapeMachine(d.onlineNext.Graph())
	d.targetNetVM = G.NewTapeMachine(d.targetNet.Graph())
	d.trainNetVM = G.NewTapeMachine(
		d.trainNet.Graph(),
		G.BindDualValues(d.trainNet.Learnables()...),
	)

	return d, nil
}

// buildLoss adds the loss and its gradient to the graph of trainNet:
//
//	mean((y - Q(s, a))²) + l2 * 0.5 * L2(w)
//
// where L2(w) = 0.5 * Σ w² over the non-bias weights.
func (d *DeepQ) buildLoss() error {
	gTrain := d.trainNet.Graph()
	batchSize := d.config.BatchSize

	d.selectedActions = G.NewMatrix(
		gTrain,
		tensor.Float64,
		G.WithName("actionSelected"),
		G.WithShape(batchSize, d.numActions),
		G.WithInit(G.Zeroes()),
	)
	d.targets = G.NewVector(
		gTrain,
		tensor.Float64,
		G.WithName("targets"),
		G.WithShape(batchSize),
		G.WithInit(G.Zeroes()),
	)

	// Only the value of the action taken contributes to the loss
	selectedActionsValue := G.Must(G.HadamardProd(d.trainNet.Prediction(),
		d.selectedActions))
	selectedActionsValue = G.Must(G.Sum(selectedActionsValue, 1))

	losses := G.Must(G.Sub(d.targets, selectedActionsValue))
	losses = G.Must(G.Square(losses))
	cost := G.Must(G.Mean(losses))

	if d.config.L2 > 0 {
		penalty, err := d.trainNet.L2()
		if err != nil {
			return fmt.Errorf("buildLoss: %w", err)
		}
		l2 := G.NewConstant(0.5*d.config.L2, G.WithName("l2Scale"))
		cost = G.Must(G.Add(cost, G.Must(G.Mul(penalty, l2))))
	}
	G.Read(cost, &d.lossVal)

	if _, err := G.Grad(cost, d.trainNet.Learnables()...); err != nil {
		return fmt.Errorf("buildLoss: could not compute gradient: %w", err)
	}
	return nil
}

// NumActions returns the number of actions valued
func (d *DeepQ) NumActions() int {
	return d.numActions
}

// BatchSize returns the number of transitions in each update
func (d *DeepQ) BatchSize() int {
	return d.config.BatchSize
}

// GradientSteps returns the number of updates made so far
func (d *DeepQ) GradientSteps() int {
	return d.gradientSteps
}

// ActionValues returns the value of each action in obs predicted by
// the current network
func (d *DeepQ) ActionValues(obs *mat.VecDense) ([]float64, error) {
	if obs.Len() != d.numFeatures {
		return nil, fmt.Errorf("actionValues: %w: observation has %v "+
			"features, want %v", network.ErrShape, obs.Len(), d.numFeatures)
	}

	return run(d.behaviour, d.behaviourVM, mat.Col(nil, 0, obs))
}

// Greedy returns the action with the highest predicted value in obs,
// preferring lower action indices on ties
func (d *DeepQ) Greedy(obs *mat.VecDense) (int, error) {
	values, err := d.ActionValues(obs)
	if err != nil {
		return 0, fmt.Errorf("greedy: %w", err)
	}
	return floatutils.Argmax(values), nil
}

// Targets returns the double Q-learning update target of each
// transition in the batch:
//
//	r + c * γ * Q_target(s', argmax_a Q_current(s', a))
//
// The current network selects the next action and the target network
// evaluates it.
func (d *DeepQ) Targets(b expreplay.Batch) ([]float64, error) {
	if b.Len() != d.config.BatchSize {
		return nil, fmt.Errorf("targets: %w: want %v have %v", ErrBatchSize,
			d.config.BatchSize, b.Len())
	}
	nextStates := denseData(b.NextStates)

	onlineValues, err := run(d.onlineNext, d.onlineNextVM, nextStates)
	if err != nil {
		return nil, fmt.Errorf("targets: %w", err)
	}
	targetValues, err := run(d.targetNet, d.targetNetVM, nextStates)
	if err != nil {
		return nil, fmt.Errorf("targets: %w", err)
	}

	return DoubleQTargets(onlineValues, targetValues, b.Rewards,
		b.Continuations, d.numActions, d.config.Gamma)
}

// Learn performs one gradient step on the batch and returns the loss
// before the step
func (d *DeepQ) Learn(b expreplay.Batch) (float64, error) {
	targets, err := d.Targets(b)
	if err != nil {
		return 0, fmt.Errorf("learn: %w", err)
	}

	oneHot := make([]float64, b.Len()*d.numActions)
	for i, a := range b.Actions {
		if a < 0 || a >= d.numActions {
			return 0, fmt.Errorf("learn: action %v out of range [0, %v)", a,
				d.numActions)
		}
		oneHot[i*d.numActions+a] = 1.0
	}

	if err := d.trainNet.SetInput(denseData(b.States)); err != nil {
		return 0, fmt.Errorf("learn: %w", err)
	}
	err = G.Let(d.selectedActions, tensor.New(
		tensor.WithShape(b.Len(), d.numActions),
		tensor.WithBacking(oneHot),
	))
	if err != nil {
		return 0, fmt.Errorf("learn: could not set actions: %w", err)
	}
	err = G.Let(d.targets, tensor.New(
		tensor.WithShape(b.Len()),
		tensor.WithBacking(targets),
	))
	if err != nil {
		return 0, fmt.Errorf("learn: could not set targets: %w", err)
	}

	// Run the learning step
	if err := d.trainNetVM.RunAll(); err != nil {
		d.trainNetVM.Reset()
		return 0, fmt.Errorf("learn: %w", err)
	}
	loss := d.lossVal.Data().(float64)
	if err := d.solver.Step(d.trainNet.Model()); err != nil {
		d.trainNetVM.Reset()
		return 0, fmt.Errorf("learn: %w", err)
	}
	d.trainNetVM.Reset()
	d.gradientSteps++

	if err := d.behaviour.Set(d.trainNet); err != nil {
		return 0, fmt.Errorf("learn: %w", err)
	}
	if err := d.onlineNext.Set(d.trainNet); err != nil {
		return 0, fmt.Errorf("learn: %w", err)
	}
	return loss, nil
}

// SyncTarget hard copies the current weights into the target network
func (d *DeepQ) SyncTarget() error {
	if err := d.targetNet.Set(d.trainNet); err != nil {
		return fmt.Errorf("syncTarget: %w", err)
	}
	return nil
}

// GobEncode implements the gob.GobEncoder interface. The current
// network's architecture and weights are encoded.
func (d *DeepQ) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(d.behaviour); err != nil {
		return nil, fmt.Errorf("gobencode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The encoded
// weights are copied into every network of an existing DeepQ, whose
// architecture must match the encoded one.
func (d *DeepQ) GobDecode(in []byte) error {
	if d.trainNet == nil {
		return fmt.Errorf("gobdecode: cannot decode into an uninitialized " +
			"DeepQ")
	}

	decoded := &network.MLP{}
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(decoded); err != nil {
		return fmt.Errorf("gobdecode: %w", err)
	}
	if decoded.Features() != d.numFeatures ||
		decoded.Outputs() != d.numActions {
		return fmt.Errorf("gobdecode: %w: network maps %v features to %v "+
			"actions, want %v to %v", network.ErrShape, decoded.Features(),
			decoded.Outputs(), d.numFeatures, d.numActions)
	}

	for _, net := range []*network.MLP{d.trainNet, d.behaviour, d.onlineNext,
		d.targetNet} {
		if err := net.Set(decoded); err != nil {
			return fmt.Errorf("gobdecode: %w", err)
		}
	}
	return nil
}

// Close releases the VMs of DeepQ
func (d *DeepQ) Close() error {
	for _, vm := range []G.VM{d.behaviourVM, d.trainNetVM, d.onlineNextVM,
		d.targetNetVM} {
		if err := vm.Close(); err != nil {
			return fmt.Errorf("close: %w", err)
		}
	}
	return nil
}

// DoubleQTargets computes double Q-learning update targets. Row i of
// the row-major (len(rewards), numActions) matrices selectValues and
// evalValues hold the next-state action values of transition i
// predicted by the network that selects the next action and by the
// network that evaluates it. Ties in selection go to the lowest index.
func DoubleQTargets(selectValues, evalValues, rewards,
	continuations []float64, numActions int, gamma float64) ([]float64,
	error) {
	n := len(rewards)
	if len(continuations) != n || len(selectValues) != n*numActions ||
		len(evalValues) != n*numActions {
		return nil, fmt.Errorf("doubleQTargets: %w: %v rewards, %v "+
			"continuations, %v and %v action values for %v actions",
			ErrBatchSize, n, len(continuations), len(selectValues),
			len(evalValues), numActions)
	}

	targets := make([]float64, n)
	for i := range targets {
		row := i * numActions
		next := floatutils.Argmax(selectValues[row : row+numActions])
		targets[i] = rewards[i] +
			continuations[i]*gamma*evalValues[row+next]
	}
	return targets, nil
}

// run runs the graph of net on input and returns a copy of its output
func run(net *network.MLP, vm G.VM, input []float64) ([]float64, error) {
	if err := net.SetInput(input); err != nil {
		return nil, err
	}
	defer vm.Reset()

	if err := vm.RunAll(); err != nil {
		return nil, err
	}

	out := net.Output().Data().([]float64)
	return append([]float64(nil), out...), nil
}

// denseData returns the row-major data of m
func denseData(m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	raw := m.RawMatrix()
	if raw.Stride == cols {
		return raw.Data[:rows*cols]
	}

	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, m.RawRowView(i)...)
	}
	return data
}

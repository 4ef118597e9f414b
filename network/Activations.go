package network

import (
	"fmt"
	"sort"

	G "gorgonia.org/gorgonia"
)

// Activation is a named element-wise non-linearity applied to the
// output of a layer. Only the name is serialized.
type Activation struct {
	name string
	f    func(x *G.Node) (*G.Node, error)
}

var activations = map[string]func(x *G.Node) (*G.Node, error){
	"relu":     G.Rectify,
	"tanh":     G.Tanh,
	"sigmoid":  G.Sigmoid,
	"identity": func(x *G.Node) (*G.Node, error) { return x, nil },
}

// Activations returns the names accepted by ParseActivation
func Activations() []string {
	names := make([]string, 0, len(activations))
	for name := range activations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseActivation returns the Activation with the given name
func ParseActivation(name string) (*Activation, error) {
	f, ok := activations[name]
	if !ok {
		return nil, fmt.Errorf("parseActivation: unknown activation %q, "+
			"want one of %v", name, Activations())
	}
	return &Activation{name: name, f: f}, nil
}

func mustActivation(name string) *Activation {
	a, err := ParseActivation(name)
	if err != nil {
		panic(err)
	}
	return a
}

// Identity returns the identity Activation used by output layers
func Identity() *Activation { return mustActivation("identity") }

// ReLU returns a rectified linear Activation
func ReLU() *Activation { return mustActivation("relu") }

// TanH returns a hyperbolic tangent Activation
func TanH() *Activation { return mustActivation("tanh") }

// Sigmoid returns a logistic sigmoid Activation
func Sigmoid() *Activation { return mustActivation("sigmoid") }

func (a *Activation) apply(x *G.Node) (*G.Node, error) {
	return a.f(x)
}

func (a *Activation) String() string {
	return a.name
}

// GobEncode implements the gob.GobEncoder interface
func (a *Activation) GobEncode() ([]byte, error) {
	return []byte(a.name), nil
}

// GobDecode implements the gob.GobDecoder interface
func (a *Activation) GobDecode(encoded []byte) error {
	act, err := ParseActivation(string(encoded))
	if err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}
	*a = *act
	return nil
}

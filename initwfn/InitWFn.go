// Package initwfn wraps Gorgonia InitWFns in configurations that can
// be read from configuration files.
package initwfn

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Type describes different types of InitWFn that are available
type Type string

// Available InitWFn types
const (
	GlorotU  Type = "GlorotU"
	GlorotN  Type = "GlorotN"
	HeU      Type = "HeU"
	HeN      Type = "HeN"
	Uniform  Type = "Uniform"
	Gaussian Type = "Gaussian"
	Zeroes   Type = "Zeroes"
	Ones     Type = "Ones"
)

// InitWFn describes a Gorgonia weight initializer. Only the fields
// used by Type are read: Gain for the Glorot and He initializers, Low
// and High for Uniform, Mean and StdDev for Gaussian.
type InitWFn struct {
	Type   Type    `mapstructure:"type"`
	Gain   float64 `mapstructure:"gain"`
	Low    float64 `mapstructure:"low"`
	High   float64 `mapstructure:"high"`
	Mean   float64 `mapstructure:"mean"`
	StdDev float64 `mapstructure:"stddev"`
}

// Default returns Glorot uniform initialization with unit gain
func Default() InitWFn {
	return InitWFn{Type: GlorotU, Gain: 1.0}
}

// Validate returns an error if the InitWFn cannot be created
func (i InitWFn) Validate() error {
	switch i.Type {
	case GlorotU, GlorotN, HeU, HeN:
		if i.Gain <= 0 {
			return fmt.Errorf("validate: %v gain must be > 0, got %v",
				i.Type, i.Gain)
		}
	case Uniform:
		if i.Low >= i.High {
			return fmt.Errorf("validate: uniform bounds [%v, %v) are empty",
				i.Low, i.High)
		}
	case Gaussian:
		if i.StdDev <= 0 {
			return fmt.Errorf("validate: gaussian stddev must be > 0, got %v",
				i.StdDev)
		}
	case Zeroes, Ones:
	default:
		return fmt.Errorf("validate: no such initializer %q", i.Type)
	}
	return nil
}

// Create returns the Gorgonia InitWFn described
func (i InitWFn) Create() (G.InitWFn, error) {
	if err := i.Validate(); err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	switch i.Type {
	case GlorotU:
		return G.GlorotU(i.Gain), nil
	case GlorotN:
		return G.GlorotN(i.Gain), nil
	case HeU:
		return G.HeU(i.Gain), nil
	case HeN:
		return G.HeN(i.Gain), nil
	case Uniform:
		return G.Uniform(i.Low, i.High), nil
	case Gaussian:
		return G.Gaussian(i.Mean, i.StdDev), nil
	case Ones:
		return G.Ones(), nil
	default:
		return G.Zeroes(), nil
	}
}

func (i InitWFn) String() string {
	return fmt.Sprintf("{%v InitWFn}", i.Type)
}

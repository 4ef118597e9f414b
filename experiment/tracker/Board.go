package tracker

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	ts "github.com/samuelfneumann/skillchain/timestep"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Files written by a Board into its directory
const (
	ReturnFile  = "reward.bin"
	LengthFile  = "length.bin"
	EpsilonFile = "epsilon.bin"
	PlotFile    = "reward.png"
)

// Board is the log destination of a single learner. It tracks the
// return and length of each episode along with the ε the episode
// finished with, and saves them in its directory together with a plot
// of the learning curve.
type Board struct {
	dir     string
	returns *Return
	lengths *EpisodeLength
	epsilon *Series
}

// NewBoard creates the directory dir and returns a Board logging to it
func NewBoard(dir string) (*Board, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("newBoard: %w", err)
	}

	return &Board{
		dir:     dir,
		returns: NewReturn(filepath.Join(dir, ReturnFile)),
		lengths: NewEpisodeLength(filepath.Join(dir, LengthFile)),
		epsilon: NewSeries(filepath.Join(dir, EpsilonFile)),
	}, nil
}

// Dir returns the directory of the Board
func (b *Board) Dir() string {
	return b.dir
}

// Track tracks the reward and step number of t
func (b *Board) Track(t ts.TimeStep) {
	b.returns.Track(t)
	b.lengths.Track(t)
}

// EndEpisode closes the current episode, recording the ε that the
// episode finished with. Episodes the environment has already ended
// are not closed twice.
func (b *Board) EndEpisode(epsilon float64) {
	b.returns.Cutoff()
	b.lengths.Cutoff()
	b.epsilon.Append(epsilon)
}

// Episodes returns the number of episodes recorded
func (b *Board) Episodes() int {
	return len(b.epsilon.Data())
}

// Returns returns the return of each recorded episode
func (b *Board) Returns() []float64 {
	return b.returns.Data()
}

// Lengths returns the number of steps of each recorded episode
func (b *Board) Lengths() []float64 {
	return b.lengths.Data()
}

// Epsilons returns the ε at the end of each recorded episode
func (b *Board) Epsilons() []float64 {
	return b.epsilon.Data()
}

// Save saves all recorded series and the learning curve plot
func (b *Board) Save() error {
	for _, t := range []interface{ Save() error }{b.returns, b.lengths,
		b.epsilon} {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}

	if err := PlotCurve(filepath.Join(b.dir, PlotFile), "Reward",
		b.returns.Data()); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// PlotCurve saves a line plot of ys against their index as a PNG
func PlotCurve(filename, label string, ys []float64) error {
	p, err := curve(label, ys)
	if err != nil {
		return fmt.Errorf("plotCurve: %w", err)
	}
	if err := p.Save(plotWidth, plotHeight, filename); err != nil {
		return fmt.Errorf("plotCurve: could not save plot: %w", err)
	}
	return nil
}

// WriteCurve writes a line plot of ys against their index to w as a
// PNG
func WriteCurve(w io.Writer, label string, ys []float64) error {
	p, err := curve(label, ys)
	if err != nil {
		return fmt.Errorf("writeCurve: %w", err)
	}
	to, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return fmt.Errorf("writeCurve: %w", err)
	}
	if _, err := to.WriteTo(w); err != nil {
		return fmt.Errorf("writeCurve: %w", err)
	}
	return nil
}

const (
	plotWidth  = 6 * vg.Inch
	plotHeight = 4 * vg.Inch
)

func curve(label string, ys []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = label
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = label

	points := make(plotter.XYs, len(ys))
	for i, y := range ys {
		points[i] = plotter.XY{X: float64(i), Y: y}
	}
	line, err := plotter.NewLine(points)
	if err != nil {
		return nil, fmt.Errorf("could not create line plotter: %w", err)
	}
	p.Add(line)
	return p, nil
}

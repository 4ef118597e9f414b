package tracker

// Series is a sequence of scalars recorded once per episode, such as
// the ε of a policy
type Series struct {
	values   []float64
	filename string
}

// NewSeries returns a new Series which saves its data at filename
func NewSeries(filename string) *Series {
	return &Series{filename: filename}
}

// Append records the next value
func (s *Series) Append(v float64) {
	s.values = append(s.values, v)
}

// Data returns the recorded values
func (s *Series) Data() []float64 {
	return s.values
}

// Save saves the recorded values to disk
func (s *Series) Save() error {
	return saveData(s.filename, s.values)
}

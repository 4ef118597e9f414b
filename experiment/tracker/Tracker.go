// Package tracker implements Trackers, which track and save data from
// the TimeSteps of an experiment
package tracker

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/samuelfneumann/skillchain/timestep"
)

// Tracker keeps track of experiment data and saves the data to disk.
//
// Episodes normally end with a TimeStep for which Last() is true.
// When an experiment cuts an episode off before the environment ends
// it, Cutoff closes the episode instead.
type Tracker interface {
	Track(t ts.TimeStep)
	Cutoff()
	Data() []float64
	Save() error
}

// saveData gob encodes data into filename
func saveData(filename string, data []float64) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not open save file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("save: could not encode data: %w", err)
	}
	return file.Sync()
}

// LoadData loads and returns the data saved by a Tracker
func LoadData(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadData: could not open data file: %w", err)
	}
	defer file.Close()

	var data []float64
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("loadData: could not decode data: %w", err)
	}
	return data, nil
}

package env

import (
	"encoding/json"
	"os"
)

// Frame is one recorded step of a lifeform
type Frame struct {
	Step  int     `json:"step"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
	Food  float64 `json:"food"`
	Water float64 `json:"water"`
}

// Trace stores the path of one lifeform through a generation
type Trace struct {
	Index      int     `json:"index"`
	Params     Params  `json:"params"`
	Frames     []Frame `json:"frames"`
	FinalStats Frame   `json:"final"`
	Fitness    float64 `json:"fitness"`
}

// NewTrace creates a new trace recorder for lifeform index
func NewTrace(index int, params Params) *Trace {
	return &Trace{
		Index:  index,
		Params: params,
		Frames: make([]Frame, 0, 256),
	}
}

// Record adds the lifeform's current state as a frame
func (t *Trace) Record(step int, l *Lifeform) {
	t.Frames = append(t.Frames, frameOf(step, l))
}

// Finish stores the final state and fitness
func (t *Trace) Finish(step int, l *Lifeform) {
	t.FinalStats = frameOf(step, l)
	t.Fitness = l.Fitness
}

func frameOf(step int, l *Lifeform) Frame {
	return Frame{
		Step:  step,
		X:     l.Pos.X,
		Y:     l.Pos.Y,
		Angle: l.Angle,
		Food:  l.Food,
		Water: l.Water,
	}
}

// Save writes the trace to a file
func (t *Trace) Save(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadTrace loads a trace from a file
func LoadTrace(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Trace
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

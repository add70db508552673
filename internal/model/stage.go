package model

// Stage identifies one of the four fixed markdown checkpoints.
type Stage string

const (
	StageM1 Stage = "M1"
	StageM2 Stage = "M2"
	StageM3 Stage = "M3"
	StageM4 Stage = "M4"
)

// Stages lists all markdown stages in canonical order. Expansion emits
// metric rows in this order and tie-breaks resolve to the earliest entry.
var Stages = []Stage{StageM1, StageM2, StageM3, StageM4}

// StageCount is the fixed number of markdown stages per product.
const StageCount = 4

// Index returns the zero-based position of the stage in canonical order,
// or -1 for an unknown stage label.
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the four known stage labels.
func (s Stage) Valid() bool {
	return s.Index() >= 0
}

func (s Stage) String() string {
	return string(s)
}

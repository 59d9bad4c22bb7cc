package incremental

import "fmt"

// Phase is a step of the retraining state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseBuildingVocabulary
	PhaseComputingTfIdf
	PhasePerformingSvd
	PhaseComplete
)

var phaseNames = [...]string{
	PhaseIdle:               "idle",
	PhaseBuildingVocabulary: "building_vocabulary",
	PhaseComputingTfIdf:     "computing_tfidf",
	PhasePerformingSvd:      "performing_svd",
	PhaseComplete:           "complete",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// progress reported once the phase has been executed.
func (p Phase) progress() float32 {
	switch p {
	case PhaseBuildingVocabulary:
		return 0.33
	case PhaseComputingTfIdf:
		return 0.66
	default:
		return 1.0
	}
}

// next returns the phase that follows p.
func (p Phase) next() Phase {
	if p == PhaseComplete {
		return PhaseIdle
	}
	return p + 1
}

func (p Phase) MarshalText() ([]byte, error) {
	if p < 0 || int(p) >= len(phaseNames) {
		return nil, fmt.Errorf("unknown retrain phase %d", int(p))
	}
	return []byte(phaseNames[p]), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown retrain phase %q", string(text))
}

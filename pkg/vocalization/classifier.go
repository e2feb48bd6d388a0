package vocalization

// Classifier thresholds
const (
	GrowlCeilingHz   = 200.0
	WhineFloorHz     = 1000.0
	ExcitedPeakFloor = 0.7
)

// Classification is the emitted vocalization type and emotional state
type Classification struct {
	BarkType       string `json:"barkType" yaml:"barkType"`
	EmotionalState string `json:"emotionalState" yaml:"emotionalState"`
}

// Classify applies the first-match-wins rule over the fundamental frequency
// and peak amplitude. The taxonomy tables are not consulted.
//
// A fundamental of 0 means no pitch was found in the band; such input skips
// the pitch rules and is classified as a bark by peak alone.
func Classify(fundamental, peak float64) Classification {
	pitched := fundamental > 0
	switch {
	case pitched && fundamental < GrowlCeilingHz:
		return Classification{BarkType: TypeGrowl, EmotionalState: StateWarning}
	case fundamental > WhineFloorHz:
		return Classification{BarkType: TypeWhine, EmotionalState: StateAnxious}
	case peak > ExcitedPeakFloor:
		return Classification{BarkType: TypeBark, EmotionalState: StateExcited}
	default:
		return Classification{BarkType: TypeBark, EmotionalState: StateAlert}
	}
}

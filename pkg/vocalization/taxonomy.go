package vocalization

import (
	"slices"
	"strings"
)

// Vocalization type labels
const (
	TypeBark    = "Bark"
	TypeGrowl   = "Growl"
	TypeWhine   = "Whine"
	TypeHowl    = "Howl"
	TypeYip     = "Yip"
	TypeWhimper = "Whimper"
)

// Emotional state labels
const (
	StatePlayful    = "Playful"
	StateContent    = "Content"
	StateExcited    = "Excited"
	StateSocial     = "Social"
	StateAnxious    = "Anxious"
	StateAggressive = "Aggressive"
	StateFearful    = "Fearful"
	StateFrustrated = "Frustrated"
	StateAlert      = "Alert"
	StateCurious    = "Curious"
	StateAttentive  = "Attentive"
	StateWarning    = "Warning"
)

// Polarity groups emotional states
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
	PolarityNeutral  Polarity = "neutral"
)

// Polarities in display order
var Polarities = []Polarity{PolarityPositive, PolarityNegative, PolarityNeutral}

// FrequencyRange is a plausible vocalization range in Hz
type FrequencyRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// VocalizationProfile is a reference entry for one vocalization type
type VocalizationProfile struct {
	Type           string         `json:"type" yaml:"type"`
	FrequencyRange FrequencyRange `json:"frequency_range" yaml:"frequency_range"`
	Emotions       []string       `json:"emotions" yaml:"emotions"`
}

// EmotionalStateProfile places a state in arousal/valence/dominance space
type EmotionalStateProfile struct {
	State     string   `json:"state" yaml:"state"`
	Polarity  Polarity `json:"polarity" yaml:"polarity"`
	Arousal   float64  `json:"arousal" yaml:"arousal"`
	Valence   float64  `json:"valence" yaml:"valence"`
	Dominance float64  `json:"dominance" yaml:"dominance"`
}

var vocalizationTable = []VocalizationProfile{
	{TypeBark, FrequencyRange{500, 4000}, []string{"alert", "excited", "warning", "attention"}},
	{TypeGrowl, FrequencyRange{100, 1000}, []string{"aggressive", "warning", "defensive", "threatened"}},
	{TypeWhine, FrequencyRange{1000, 6000}, []string{"anxious", "stressed", "needy", "pain"}},
	{TypeHowl, FrequencyRange{300, 2000}, []string{"lonely", "social", "responsive", "distressed"}},
	{TypeYip, FrequencyRange{2000, 8000}, []string{"excited", "playful", "startled", "fearful"}},
	{TypeWhimper, FrequencyRange{800, 5000}, []string{"submissive", "nervous", "uncertain", "seeking comfort"}},
}

var emotionalStateTable = []EmotionalStateProfile{
	{StatePlayful, PolarityPositive, 0.7, 0.8, 0.6},
	{StateContent, PolarityPositive, 0.3, 0.8, 0.5},
	{StateExcited, PolarityPositive, 0.9, 0.7, 0.7},
	{StateSocial, PolarityPositive, 0.6, 0.7, 0.5},
	{StateAnxious, PolarityNegative, 0.8, 0.3, 0.3},
	{StateAggressive, PolarityNegative, 0.9, 0.2, 0.9},
	{StateFearful, PolarityNegative, 0.8, 0.2, 0.1},
	{StateFrustrated, PolarityNegative, 0.7, 0.3, 0.6},
	{StateAlert, PolarityNeutral, 0.6, 0.5, 0.5},
	{StateCurious, PolarityNeutral, 0.5, 0.6, 0.4},
	{StateAttentive, PolarityNeutral, 0.4, 0.5, 0.5},
}

// VocalizationProfiles returns a copy of the vocalization table.
func VocalizationProfiles() []VocalizationProfile {
	out := make([]VocalizationProfile, len(vocalizationTable))
	for i, p := range vocalizationTable {
		out[i] = p.clone()
	}
	return out
}

// LookupVocalization finds a profile by type name, case-insensitively.
func LookupVocalization(name string) (VocalizationProfile, bool) {
	for _, p := range vocalizationTable {
		if strings.EqualFold(p.Type, name) {
			return p.clone(), true
		}
	}
	return VocalizationProfile{}, false
}

// EmotionalStates returns a copy of the emotional state table.
func EmotionalStates() []EmotionalStateProfile {
	return slices.Clone(emotionalStateTable)
}

// EmotionalStatesByPolarity returns a copy of the states in one group.
func EmotionalStatesByPolarity(p Polarity) []EmotionalStateProfile {
	var out []EmotionalStateProfile
	for _, s := range emotionalStateTable {
		if s.Polarity == p {
			out = append(out, s)
		}
	}
	return out
}

// LookupEmotionalState finds a state profile by name, case-insensitively.
// Warning has no affect profile.
func LookupEmotionalState(name string) (EmotionalStateProfile, bool) {
	for _, s := range emotionalStateTable {
		if strings.EqualFold(s.State, name) {
			return s, true
		}
	}
	return EmotionalStateProfile{}, false
}

func (p VocalizationProfile) clone() VocalizationProfile {
	p.Emotions = slices.Clone(p.Emotions)
	return p
}

package vocalization

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/extractors"
)

// TimestampLayout is ISO-8601 UTC with milliseconds
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// PatternSingle is the only temporal pattern the analyzer reports
const PatternSingle = "single"

// Result is the structured analysis outcome
type Result struct {
	AudioCharacteristics AudioCharacteristics `json:"audioCharacteristics" yaml:"audioCharacteristics"`
	Analysis             Interpretation       `json:"analysis" yaml:"analysis"`
	Timestamp            string               `json:"timestamp" yaml:"timestamp"`
}

type AudioCharacteristics struct {
	Classification Classification `json:"classification" yaml:"classification"`
	Timing         Timing         `json:"timing" yaml:"timing"`
	Intensity      Intensity      `json:"intensity" yaml:"intensity"`
}

type Timing struct {
	Duration float64 `json:"duration" yaml:"duration"`
	Pattern  string  `json:"pattern" yaml:"pattern"`
}

type Intensity struct {
	Max         float64 `json:"max" yaml:"max"`
	Average     float64 `json:"average" yaml:"average"`
	Description string  `json:"description" yaml:"description"`
}

type Interpretation struct {
	AIInterpretation string `json:"aiInterpretation" yaml:"aiInterpretation"`
}

// Assemble builds the result for one analysis at the given instant.
func Assemble(c Classification, intensity extractors.IntensityMeasure, durationSeconds float64, at time.Time) *Result {
	return &Result{
		AudioCharacteristics: AudioCharacteristics{
			Classification: c,
			Timing: Timing{
				Duration: durationSeconds,
				Pattern:  PatternSingle,
			},
			Intensity: Intensity{
				Max:         intensity.Max,
				Average:     intensity.Average,
				Description: intensity.Description,
			},
		},
		Analysis: Interpretation{
			AIInterpretation: Interpret(c, intensity.Description),
		},
		Timestamp: at.UTC().Format(TimestampLayout),
	}
}

// Interpret renders the fixed interpretation sentence.
func Interpret(c Classification, intensityDescription string) string {
	lower := cases.Lower(language.English)
	return fmt.Sprintf("The dog is making a %s sound with %s intensity, suggesting a %s state.",
		lower.String(c.BarkType), lower.String(intensityDescription), lower.String(c.EmotionalState))
}

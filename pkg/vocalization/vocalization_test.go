package vocalization

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/extractors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		fundamental float64
		peak        float64
		want        Classification
	}{
		{"no pitch is alert bark", 0, 0, Classification{TypeBark, StateAlert}},
		{"loud unpitched is excited bark", 0, 0.9, Classification{TypeBark, StateExcited}},
		{"low rumble", 150, 0.5, Classification{TypeGrowl, StateWarning}},
		{"growl ignores peak", 199.9, 0.95, Classification{TypeGrowl, StateWarning}},
		{"lower bark bound", 200, 0.5, Classification{TypeBark, StateAlert}},
		{"alert bark", 600, 0.5, Classification{TypeBark, StateAlert}},
		{"peak at threshold", 600, 0.7, Classification{TypeBark, StateAlert}},
		{"excited bark", 600, 0.85, Classification{TypeBark, StateExcited}},
		{"upper bark bound", 1000, 0.9, Classification{TypeBark, StateExcited}},
		{"whine", 1500, 0.2, Classification{TypeWhine, StateAnxious}},
		{"loud whine", 3000, 1, Classification{TypeWhine, StateAnxious}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.fundamental, tt.peak))
		})
	}
}

func TestAssemble(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 30, 45, 123_000_000, time.FixedZone("EST", -5*3600))
	intensity := extractors.IntensityMeasure{Max: 0.85, Average: 0.3, Description: extractors.IntensityHigh}

	result := Assemble(Classification{TypeBark, StateExcited}, intensity, 1.25, at)

	assert.Equal(t, "2024-03-01T17:30:45.123Z", result.Timestamp)
	assert.Equal(t, PatternSingle, result.AudioCharacteristics.Timing.Pattern)
	assert.Equal(t, 1.25, result.AudioCharacteristics.Timing.Duration)
	assert.Equal(t, "The dog is making a bark sound with high intensity, suggesting a excited state.",
		result.Analysis.AIInterpretation)
}

func TestInterpretScenarios(t *testing.T) {
	assert.Equal(t, "The dog is making a bark sound with low intensity, suggesting a alert state.",
		Interpret(Classify(0, 0), extractors.DescribeIntensity(0)))
	assert.Equal(t, "The dog is making a growl sound with high intensity, suggesting a warning state.",
		Interpret(Classify(150, 0.9), extractors.DescribeIntensity(0.9)))
	assert.Equal(t, "The dog is making a whine sound with moderate intensity, suggesting a anxious state.",
		Interpret(Classify(1500, 0.5), extractors.DescribeIntensity(0.5)))
	assert.Equal(t, "The dog is making a bark sound with moderate intensity, suggesting a alert state.",
		Interpret(Classify(600, 0.5), extractors.DescribeIntensity(0.5)))
}

func TestResultJSONShape(t *testing.T) {
	result := Assemble(Classification{TypeGrowl, StateWarning},
		extractors.IntensityMeasure{Max: 0.1, Average: 0.05, Description: extractors.IntensityLow},
		2, time.Unix(0, 0))

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	ac := decoded["audioCharacteristics"].(map[string]any)
	classification := ac["classification"].(map[string]any)
	assert.Equal(t, "Growl", classification["barkType"])
	assert.Equal(t, "Warning", classification["emotionalState"])

	timing := ac["timing"].(map[string]any)
	assert.Equal(t, 2.0, timing["duration"])
	assert.Equal(t, "single", timing["pattern"])

	intensity := ac["intensity"].(map[string]any)
	assert.Equal(t, "Low", intensity["description"])
	assert.Contains(t, intensity, "max")
	assert.Contains(t, intensity, "average")

	analysis := decoded["analysis"].(map[string]any)
	assert.Contains(t, analysis, "aiInterpretation")
	assert.Equal(t, "1970-01-01T00:00:00.000Z", decoded["timestamp"])
}

func TestTaxonomyTables(t *testing.T) {
	profiles := VocalizationProfiles()
	require.Len(t, profiles, 6)
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Type
	}
	assert.Equal(t, []string{TypeBark, TypeGrowl, TypeWhine, TypeHowl, TypeYip, TypeWhimper}, names)

	yip, ok := LookupVocalization("yip")
	require.True(t, ok)
	assert.Equal(t, FrequencyRange{2000, 8000}, yip.FrequencyRange)

	_, ok = LookupVocalization("meow")
	assert.False(t, ok)

	assert.Len(t, EmotionalStatesByPolarity(PolarityPositive), 4)
	assert.Len(t, EmotionalStatesByPolarity(PolarityNegative), 4)
	assert.Len(t, EmotionalStatesByPolarity(PolarityNeutral), 3)
	assert.Len(t, EmotionalStates(), 11)

	aggressive, ok := LookupEmotionalState("AGGRESSIVE")
	require.True(t, ok)
	assert.Equal(t, EmotionalStateProfile{StateAggressive, PolarityNegative, 0.9, 0.2, 0.9}, aggressive)

	_, ok = LookupEmotionalState(StateWarning)
	assert.False(t, ok)
}

func TestTaxonomyAccessorsReturnCopies(t *testing.T) {
	profiles := VocalizationProfiles()
	profiles[0].Type = "Mutated"
	profiles[0].Emotions[0] = "mutated"

	states := EmotionalStates()
	states[0].Arousal = 42

	bark, ok := LookupVocalization(TypeBark)
	require.True(t, ok)
	assert.Equal(t, "alert", bark.Emotions[0])
	assert.Equal(t, TypeBark, VocalizationProfiles()[0].Type)
	assert.Equal(t, 0.7, EmotionalStates()[0].Arousal)
}

func TestConcurrentReads(t *testing.T) {
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_ = VocalizationProfiles()
				_, _ = LookupEmotionalState(StateAlert)
				_ = Interpret(Classify(600, 0.5), extractors.IntensityModerate)
			}
		}()
	}
	wg.Wait()
}

package analysis

import (
	"time"

	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/extractors"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/transcode"
	"github.com/RyanBlaney/barksync-analyzer/pkg/vocalization"
)

// Report is a result together with the intermediate measurements that
// produced it
type Report struct {
	Source     string                `json:"source" yaml:"source"`
	Result     *vocalization.Result  `json:"result" yaml:"result"`
	Features   *extractors.Features  `json:"features" yaml:"features"`
	SourceInfo *transcode.SourceInfo `json:"source_info" yaml:"source_info"`
	Reference  *ReferenceProfile     `json:"reference,omitempty" yaml:"reference,omitempty"`
	Timings    StageTimings          `json:"timings" yaml:"timings"`
}

// ReferenceProfile is taxonomy data looked up for the emitted labels.
// It is informational and plays no part in classification.
type ReferenceProfile struct {
	Vocalization *vocalization.VocalizationProfile   `json:"vocalization,omitempty" yaml:"vocalization,omitempty"`
	Affect       *vocalization.EmotionalStateProfile `json:"affect,omitempty" yaml:"affect,omitempty"`
}

// StageTimings records wall time spent in each pipeline stage
type StageTimings struct {
	Probe     time.Duration `json:"probe" yaml:"probe"`
	Normalize time.Duration `json:"normalize" yaml:"normalize"`
	Load      time.Duration `json:"load" yaml:"load"`
	Spectral  time.Duration `json:"spectral" yaml:"spectral"`
	Features  time.Duration `json:"features" yaml:"features"`
	Total     time.Duration `json:"total" yaml:"total"`
}

func lookupReference(c vocalization.Classification) *ReferenceProfile {
	ref := &ReferenceProfile{}
	if p, ok := vocalization.LookupVocalization(c.BarkType); ok {
		ref.Vocalization = &p
	}
	if s, ok := vocalization.LookupEmotionalState(c.EmotionalState); ok {
		ref.Affect = &s
	}
	return ref
}

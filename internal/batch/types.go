package batch

import (
	"time"

	"github.com/RyanBlaney/barksync-analyzer/internal/analysis"
)

// Item is the outcome of analyzing one file in a batch
type Item struct {
	Index     int              `json:"index" yaml:"index"`
	Path      string           `json:"path" yaml:"path"`
	Report    *analysis.Report `json:"report,omitempty" yaml:"report,omitempty"`
	Error     error            `json:"-" yaml:"-"`
	ErrorText string           `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorCode string           `json:"error_code,omitempty" yaml:"error_code,omitempty"`
	Elapsed   time.Duration    `json:"elapsed" yaml:"elapsed"`
}

// Succeeded reports whether the item produced a result
func (i *Item) Succeeded() bool {
	return i.Error == nil && i.Report != nil
}

// Summary aggregates a batch run
type Summary struct {
	Items         []*Item       `json:"items" yaml:"items"`
	Total         int           `json:"total" yaml:"total"`
	Successful    int           `json:"successful" yaml:"successful"`
	Failed        int           `json:"failed" yaml:"failed"`
	StartTime     time.Time     `json:"start_time" yaml:"start_time"`
	EndTime       time.Time     `json:"end_time" yaml:"end_time"`
	TotalDuration time.Duration `json:"total_duration" yaml:"total_duration"`
	Metrics       *Metrics      `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

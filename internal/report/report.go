// Package report summarizes a run: the artifacts it produced and what the
// filter did to the input.
package report

import (
	"time"

	"github.com/atikulmunna/sieve/internal/failure"
	"github.com/atikulmunna/sieve/internal/model"
)

// Report is a point-in-time summary of one run.
type Report struct {
	Sources   []string         `json:"sources"`
	Mode      string           `json:"mode"`
	Buffered  bool             `json:"buffered"`
	Artifacts []model.Artifact `json:"artifacts"`
	Stats     model.RunStats   `json:"stats"`
	Elapsed   string           `json:"elapsed"`
	OK        bool             `json:"ok"`
	Stage     string           `json:"failed_stage,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// New assembles a Report. err is the run's failure, if any; artifacts
// must already be limited to the completed ones.
func New(sources []string, spec model.FilterSpec, arts []model.Artifact, stats *model.RunStats, started time.Time, err error) Report {
	r := Report{
		Sources:   sources,
		Mode:      spec.Output.Kind.String(),
		Buffered:  spec.Buffered(),
		Artifacts: arts,
		Elapsed:   time.Since(started).Truncate(time.Millisecond).String(),
		OK:        err == nil,
	}
	if r.Artifacts == nil {
		r.Artifacts = []model.Artifact{}
	}
	if stats != nil {
		r.Stats = *stats
	}
	if err != nil {
		r.Error = err.Error()
		r.Stage = string(failure.StageOf(err))
	}
	return r
}

// TotalBytes sums the sizes of all artifacts.
func (r Report) TotalBytes() int64 {
	var n int64
	for _, a := range r.Artifacts {
		n += a.Bytes
	}
	return n
}

package model

import "encoding/json"

// Artifact describes one completed output file or the stdout stream.
type Artifact struct {
	Name  string `json:"name"`
	Lines int64  `json:"lines"`
	Bytes int64  `json:"bytes"`

	// Requested and Percent are only meaningful for percentage splits.
	// Percent is the share of lines actually received, rounded to one decimal.
	Requested  float64 `json:"requested_pct"`
	Percent    float64 `json:"actual_pct"`
	HasPercent bool    `json:"-"`
}

type artifactJSON struct {
	Name      string   `json:"name"`
	Lines     int64    `json:"lines"`
	Bytes     int64    `json:"bytes"`
	Requested *float64 `json:"requested_pct,omitempty"`
	Percent   *float64 `json:"actual_pct,omitempty"`
}

// MarshalJSON emits both percentages, zeros included, whenever the
// artifact belongs to a percentage split, and neither otherwise.
func (a Artifact) MarshalJSON() ([]byte, error) {
	out := artifactJSON{Name: a.Name, Lines: a.Lines, Bytes: a.Bytes}
	if a.HasPercent {
		out.Requested, out.Percent = &a.Requested, &a.Percent
	}
	return json.Marshal(out)
}

func (a *Artifact) UnmarshalJSON(data []byte) error {
	var in artifactJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*a = Artifact{Name: in.Name, Lines: in.Lines, Bytes: in.Bytes}
	if in.Requested != nil || in.Percent != nil {
		a.HasPercent = true
		if in.Requested != nil {
			a.Requested = *in.Requested
		}
		if in.Percent != nil {
			a.Percent = *in.Percent
		}
	}
	return nil
}

// RunStats counts what happened to the lines of a run.
type RunStats struct {
	Read       int64            `json:"lines_read"`
	Kept       int64            `json:"lines_kept"`
	Duplicates int64            `json:"duplicates_dropped"`
	Rejected   map[string]int64 `json:"rejected,omitempty"`
}

// NewRunStats returns zeroed stats ready for use.
func NewRunStats() *RunStats {
	return &RunStats{Rejected: make(map[string]int64)}
}

// Reject records a line dropped by the named predicate.
func (s *RunStats) Reject(predicate string) {
	if s.Rejected == nil {
		s.Rejected = make(map[string]int64)
	}
	s.Rejected[predicate]++
}

// Emitted is the number of lines handed to the output stage.
func (s *RunStats) Emitted() int64 { return s.Kept - s.Duplicates }

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atikulmunna/sieve/internal/failure"
	"github.com/atikulmunna/sieve/internal/model"
)

func sampleReport(err error) Report {
	stats := model.NewRunStats()
	stats.Read = 10
	stats.Kept = 7
	stats.Duplicates = 1
	stats.Rejected["length"] = 2
	stats.Rejected["digits"] = 1

	spec := model.FilterSpec{Output: model.OutputMode{Kind: model.OutputPercentSplit}}
	arts := []model.Artifact{
		{Name: "out_part_01.txt", Lines: 2, Bytes: 12, Requested: 33, Percent: 33.3, HasPercent: true},
		{Name: "out_part_02.txt", Lines: 4, Bytes: 24, Requested: 67, Percent: 66.7, HasPercent: true},
	}
	return New([]string{"words.txt"}, spec, arts, stats, time.Now(), err)
}

func TestNewReport(t *testing.T) {
	r := sampleReport(nil)

	if !r.OK {
		t.Error("expected OK report")
	}
	if r.Mode != "percent-split" || !r.Buffered {
		t.Errorf("unexpected mode %q buffered=%v", r.Mode, r.Buffered)
	}
	if r.TotalBytes() != 36 {
		t.Errorf("expected 36 total bytes, got %d", r.TotalBytes())
	}
}

func TestNewReportFailure(t *testing.T) {
	err := failure.New(failure.KindWriteFailure, failure.StageWrite, "out_part_03.txt", errors.New("disk full"))
	r := sampleReport(err)

	if r.OK {
		t.Error("expected failed report")
	}
	if r.Stage != "write" {
		t.Errorf("expected stage write, got %q", r.Stage)
	}
	if !strings.Contains(r.Error, "disk full") {
		t.Errorf("expected error text, got %q", r.Error)
	}
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextRenderer(&buf).Render(sampleReport(nil)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"out_part_01.txt", "out_part_02.txt",
		"33.0%", "33.3%", "66.7%",
		"read 10, kept 7, 1 duplicates dropped, wrote 6 line(s) to 2 artifact(s)",
		"rejected by length: 2, digits: 1",
		"done",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestTextRendererFailure(t *testing.T) {
	var buf bytes.Buffer
	err := failure.New(failure.KindSourceUnavailable, failure.StageRead, "words.txt", os.ErrNotExist)
	r := New([]string{"words.txt"}, model.FilterSpec{}, nil, nil, time.Now(), err)

	if err := NewTextRenderer(&buf).Render(r); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "failed read: source unavailable") {
		t.Errorf("expected failure line, got:\n%s", buf.String())
	}
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONRenderer(&buf).Render(sampleReport(nil)); err != nil {
		t.Fatal(err)
	}

	var got Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\nraw: %s", err, buf.String())
	}
	if len(got.Artifacts) != 2 || got.Artifacts[1].Percent != 66.7 {
		t.Errorf("unexpected artifacts %+v", got.Artifacts)
	}
	if got.Stats.Rejected["length"] != 2 {
		t.Errorf("expected rejected length 2, got %d", got.Stats.Rejected["length"])
	}
}

func TestSaveManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	if err := SaveManifest(path, sampleReport(nil)); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got Report
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if got.Sources[0] != "words.txt" || len(got.Artifacts) != 2 {
		t.Errorf("unexpected manifest %+v", got)
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the manifest in %s, found %d entries", dir, len(entries))
	}
}

package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestArtifactJSONPercentages(t *testing.T) {
	empty := Artifact{Name: "out_part_02.txt", Requested: 0, Percent: 0, HasPercent: true}
	data, err := json.Marshal(empty)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"requested_pct":0`, `"actual_pct":0`, `"lines":0`, `"bytes":0`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %s in %s", key, data)
		}
	}

	var back Artifact
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != empty {
		t.Errorf("expected %+v, got %+v", empty, back)
	}
}

func TestArtifactJSONWithoutPercentages(t *testing.T) {
	data, err := json.Marshal(Artifact{Name: "out.txt", Lines: 3, Bytes: 12})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "pct") {
		t.Errorf("expected no percentages for a plain artifact, got %s", data)
	}

	var back Artifact
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.HasPercent {
		t.Error("expected HasPercent to stay false")
	}
}

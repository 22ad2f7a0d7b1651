package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/heatmc/internal/storage"
)

const sampleScenario = `
name: quick-campaign
description: short smoke campaign
steps:
  - kind: run
    material: copper
    time: 0.1
    packets: 100
    q: 5
  - kind: compare
    materials: [silver, steel_stainless]
    time: 0.1
    packets: 100
    q: 5
    runs: 2
  - kind: sweep
    field: q
    values: [2, 8]
    time: 0.1
    packets: 100
    runs: 2
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := Load(writeScenario(t, sampleScenario))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "quick-campaign" {
		t.Errorf("name = %q", sc.Name)
	}
	if len(sc.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(sc.Steps))
	}
	if sc.Steps[1].Kind != "compare" || len(sc.Steps[1].Materials) != 2 {
		t.Errorf("compare step not parsed: %+v", sc.Steps[1])
	}
}

func TestLoadScenarioRejectsEmpty(t *testing.T) {
	if _, err := Load(writeScenario(t, "name: empty\nsteps: []\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
}

func TestLoadScenarioRejectsBadYAML(t *testing.T) {
	if _, err := Load(writeScenario(t, "steps: [kind: :::")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestScenarioRun(t *testing.T) {
	sc, err := Load(writeScenario(t, sampleScenario))
	if err != nil {
		t.Fatal(err)
	}

	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	results, err := sc.Run(context.Background(), st)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 step results, got %d", len(results))
	}

	if results[0].RunID == "" {
		t.Error("run step produced no run id")
	}
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 stored run, got %d", len(runs))
	}

	if len(results[1].Points) != 2 {
		t.Errorf("compare step produced %d points", len(results[1].Points))
	}
	if len(results[2].Points) != 2 {
		t.Errorf("sweep step produced %d points", len(results[2].Points))
	}
}

func TestScenarioRunUnknownKind(t *testing.T) {
	sc := &Scenario{Name: "bad", Steps: []ScenarioStep{{Kind: "teleport"}}}
	st := storage.New(t.TempDir())
	if _, err := sc.Run(context.Background(), st); err == nil {
		t.Error("expected error for unknown step kind")
	}
}

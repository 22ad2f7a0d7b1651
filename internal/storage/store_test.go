package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/heatmc/internal/config"
	"github.com/san-kum/heatmc/internal/sim"
)

func sampleResult(t *testing.T) *sim.RunResult {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.TMax = 0.1
	cfg.NPackets = 100
	cfg.Q = 5
	cfg.OutputInterval = 25

	engine, err := sim.New(cfg)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	result, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return result
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	result := sampleResult(t)
	runID, err := st.Save(result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Material != "copper" {
		t.Errorf("expected material 'copper', got '%s'", meta.Material)
	}
	if meta.Seed != result.Seed {
		t.Errorf("expected seed %d, got %d", result.Seed, meta.Seed)
	}
	if meta.Injected != result.Injected {
		t.Errorf("expected injected %d, got %d", result.Injected, meta.Injected)
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if len(series.Times) != result.Steps {
		t.Errorf("expected %d series rows, got %d", result.Steps, len(series.Times))
	}
	for i := range series.PacketCounts {
		if series.PacketCounts[i] != result.PacketCounts[i] {
			t.Fatalf("packet count mismatch at row %d: %d vs %d",
				i, series.PacketCounts[i], result.PacketCounts[i])
		}
	}

	field, err := st.LoadField(runID)
	if err != nil {
		t.Fatalf("load field failed: %v", err)
	}
	normalized := result.NormalizedField()
	if len(field) != normalized.Nx || len(field[0]) != normalized.Ny {
		t.Fatalf("field shape %dx%d, want %dx%d",
			len(field), len(field[0]), normalized.Nx, normalized.Ny)
	}
	for x := range field {
		for y := range field[x] {
			if field[x][y] != normalized.At(x, y) {
				t.Fatalf("field value mismatch at (%d,%d)", x, y)
			}
		}
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(sampleResult(t)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(sampleResult(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "series.csv", "field.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportJSONRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "run.json")

	result := sampleResult(t)
	if err := ExportJSON(path, result); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty export")
	}
}

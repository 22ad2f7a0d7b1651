// Package storage persists finished runs under a base directory, one
// subdirectory per run: metadata.json for the configuration and totals,
// series.csv for the per-step series, field.csv for the normalized
// temperature field.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/heatmc/internal/config"
	"github.com/san-kum/heatmc/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Material     string             `json:"material"`
	Engine       string             `json:"engine"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Alpha        float64            `json:"alpha"`
	Dt           float64            `json:"dt"`
	TMax         float64            `json:"t_max"`
	NPackets     int                `json:"n_packets"`
	Q            int                `json:"q"`
	Convection   float64            `json:"convection"`
	Boundary     string             `json:"boundary"`
	Steps        int                `json:"steps"`
	Injected     int                `json:"injected"`
	BoundaryLost int                `json:"boundary_lost"`
	Convected    int                `json:"convected"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Save writes one finished run and returns its generated ID.
func (s *Store) Save(result *sim.RunResult) (string, error) {
	cfg := result.Config
	material := config.MaterialName(cfg.Alpha)
	runID := fmt.Sprintf("%s_%d", material, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Material:     material,
		Engine:       cfg.Engine,
		Timestamp:    time.Now(),
		Seed:         result.Seed,
		Alpha:        cfg.Alpha,
		Dt:           cfg.Dt,
		TMax:         cfg.TMax,
		NPackets:     cfg.NPackets,
		Q:            cfg.Q,
		Convection:   cfg.Convection,
		Boundary:     cfg.Boundary,
		Steps:        result.Steps,
		Injected:     result.Injected,
		BoundaryLost: result.BoundaryLost,
		Convected:    result.Convected,
		Metrics:      result.Metrics,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := s.writeSeries(runDir, result); err != nil {
		return "", err
	}
	if err := s.writeField(runDir, result); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) writeSeries(runDir string, result *sim.RunResult) error {
	csvFile, err := os.Create(filepath.Join(runDir, "series.csv"))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"step", "time", "packets", "hotspot_temp"}); err != nil {
		return err
	}
	for i := range result.Times {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(result.Times[i], 'f', 6, 64),
			strconv.Itoa(result.PacketCounts[i]),
			strconv.FormatFloat(result.HotspotTemps[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// writeField stores the normalized field row by row, x down, y across.
func (s *Store) writeField(runDir string, result *sim.RunResult) error {
	csvFile, err := os.Create(filepath.Join(runDir, "field.csv"))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	field := result.NormalizedField()
	for x := 0; x < field.Nx; x++ {
		row := make([]string, field.Ny)
		for y := 0; y < field.Ny; y++ {
			row[y] = strconv.FormatFloat(field.At(x, y), 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// Series is the per-step record loaded back from series.csv.
type Series struct {
	Times        []float64
	PacketCounts []int
	HotspotTemps []float64
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	csvPath := filepath.Join(s.baseDir, runID, "series.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	series := &Series{}
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 4 {
			continue
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		packets, err := strconv.Atoi(record[2])
		if err != nil {
			continue
		}
		temp, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			continue
		}
		series.Times = append(series.Times, t)
		series.PacketCounts = append(series.PacketCounts, packets)
		series.HotspotTemps = append(series.HotspotTemps, temp)
	}

	return series, nil
}

func (s *Store) LoadField(runID string) ([][]float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, "field.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	field := make([][]float64, 0, len(records))
	for _, record := range records {
		row := make([]float64, 0, len(record))
		for _, cell := range record {
			val, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}
			row = append(row, val)
		}
		field = append(field, row)
	}

	return field, nil
}

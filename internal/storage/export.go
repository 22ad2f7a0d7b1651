package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/heatmc/internal/config"
	"github.com/san-kum/heatmc/internal/sim"
)

type ExportData struct {
	Material     string             `json:"material"`
	Engine       string             `json:"engine"`
	Seed         int64              `json:"seed"`
	Alpha        float64            `json:"alpha"`
	Dt           float64            `json:"dt"`
	TMax         float64            `json:"t_max"`
	Steps        int                `json:"steps"`
	Injected     int                `json:"injected"`
	BoundaryLost int                `json:"boundary_lost"`
	Convected    int                `json:"convected"`
	Times        []float64          `json:"times"`
	PacketCounts []int              `json:"packet_counts"`
	HotspotTemps []float64          `json:"hotspot_temps"`
	Field        [][]float64        `json:"field"`
	Metrics      map[string]float64 `json:"metrics"`
}

func newExportData(result *sim.RunResult) ExportData {
	cfg := result.Config
	field := result.NormalizedField()
	rows := make([][]float64, field.Nx)
	for x := 0; x < field.Nx; x++ {
		rows[x] = make([]float64, field.Ny)
		for y := 0; y < field.Ny; y++ {
			rows[x][y] = field.At(x, y)
		}
	}
	return ExportData{
		Material:     config.MaterialName(cfg.Alpha),
		Engine:       cfg.Engine,
		Seed:         result.Seed,
		Alpha:        cfg.Alpha,
		Dt:           cfg.Dt,
		TMax:         cfg.TMax,
		Steps:        result.Steps,
		Injected:     result.Injected,
		BoundaryLost: result.BoundaryLost,
		Convected:    result.Convected,
		Times:        result.Times,
		PacketCounts: result.PacketCounts,
		HotspotTemps: result.HotspotTemps,
		Field:        rows,
		Metrics:      result.Metrics,
	}
}

func exportJSON(w io.Writer, result *sim.RunResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(result))
}

func ExportJSON(path string, result *sim.RunResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return exportJSON(file, result)
}

func ExportJSONStdout(result *sim.RunResult) error {
	return exportJSON(os.Stdout, result)
}

package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/heatmc/internal/config"
	"github.com/san-kum/heatmc/internal/grid"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.TMax = 0.1
	cfg.NPackets = 100
	cfg.Q = 5
	cfg.OutputInterval = 25
	return cfg
}

func TestRenderFieldShape(t *testing.T) {
	field := grid.NewField(4, 6)
	field.Add(2, 3, 1.0)

	out := RenderField(field)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("expected 4 rows, got %d", len(lines))
	}
}

func TestRenderFieldNil(t *testing.T) {
	if out := RenderField(nil); out != "" {
		t.Error("expected empty output for nil field")
	}
}

func TestPlotSeries(t *testing.T) {
	out := PlotSeries([]float64{0, 1, 2, 1, 0}, "test")
	if !strings.Contains(out, "test") {
		t.Error("caption missing from plot")
	}
	if PlotSeries(nil, "x") != "" {
		t.Error("expected empty plot for no data")
	}
}

func TestModelAdvance(t *testing.T) {
	m := NewModel(testConfig())

	if m.injected != 10 {
		t.Fatalf("expected 10 seeded packets, got %d", m.injected)
	}

	m.advance()
	if m.step != 1 {
		t.Errorf("expected step 1, got %d", m.step)
	}
	if m.injected != 15 {
		t.Errorf("expected 15 injected after one step, got %d", m.injected)
	}
	if len(m.tempHistory) != 1 {
		t.Errorf("expected 1 history sample, got %d", len(m.tempHistory))
	}
}

func TestModelReset(t *testing.T) {
	m := NewModel(testConfig())
	for i := 0; i < 10; i++ {
		m.advance()
	}

	m.init()
	if m.step != 0 || m.injected != 10 || len(m.tempHistory) != 0 {
		t.Errorf("reset left state: step=%d injected=%d history=%d",
			m.step, m.injected, len(m.tempHistory))
	}
	if m.acc.Total() != 0 {
		t.Error("reset left deposits in the accumulator")
	}
}

func TestModelView(t *testing.T) {
	m := NewModel(testConfig())
	m.advance()

	view := m.View()
	if !strings.Contains(view, "copper") {
		t.Error("view missing material name")
	}
	if !strings.Contains(view, "q quit") {
		t.Error("view missing help line")
	}
}

package chart

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/rustyeddy/chartkit/indicators"
	"github.com/rustyeddy/chartkit/internal/logger"
	"github.com/rustyeddy/chartkit/market"
	"github.com/rustyeddy/chartkit/metrics"
	"github.com/rustyeddy/chartkit/pkg/id"
	"github.com/rustyeddy/chartkit/surface"
	"github.com/rustyeddy/chartkit/viewport"
)

var (
	// ErrUnknownIndicator is returned for ids the manager does not hold.
	ErrUnknownIndicator = errors.New("unknown indicator")
	// ErrUnknownKind is returned for kinds with no calculator.
	ErrUnknownKind = errors.New("unknown indicator kind")
)

// panelHeader is the space above a panel's plot kept for its label.
const panelHeader = 14

// Manager owns the indicator set of one chart. Indicators are kept in
// insertion order; that order is the overlay draw order and the panel
// stacking order.
type Manager struct {
	order []string
	items map[string]*series
	bars  []market.Bar

	theme   Theme
	log     *slog.Logger
	metrics *metrics.Metrics
	calcs   int
}

// NewManager returns an empty manager. Both arguments may be nil.
func NewManager(log *slog.Logger, m *metrics.Metrics) *Manager {
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{
		items:   make(map[string]*series),
		theme:   DefaultTheme(),
		log:     log,
		metrics: m,
	}
}

// SetTheme changes the colors used for panel chrome.
func (m *Manager) SetTheme(t Theme) { m.theme = t }

// Add validates cfg, fills defaults, assigns an id when cfg has none and
// calculates the indicator against the current bars. Zero Params mean the
// kind defaults.
func (m *Manager) Add(cfg Config) (string, error) {
	spec, err := lookupKind(cfg.Kind)
	if err != nil {
		return "", err
	}
	if cfg.Params == (indicators.Params{}) {
		cfg.Params = indicators.DefaultParams(cfg.Kind)
	}
	cfg.Params = cfg.Params.WithDefaults(cfg.Kind)
	if err := cfg.Params.Validate(cfg.Kind); err != nil {
		return "", fmt.Errorf("add %s: %w", cfg.Kind, err)
	}
	if cfg.ID == "" {
		cfg.ID = id.New()
	}
	if _, dup := m.items[cfg.ID]; dup {
		return "", fmt.Errorf("add %s: id %s already in use", cfg.Kind, cfg.ID)
	}
	cfg.Style = cfg.Style.merge(spec.style)
	if cfg.PanelHeight <= 0 {
		cfg.PanelHeight = spec.height
	}

	s := newSeries(cfg, spec, m.observe)
	m.items[cfg.ID] = s
	m.order = append(m.order, cfg.ID)
	if m.bars != nil {
		s.Calculate(m.bars)
	}
	m.metrics.Indicators(len(m.order))
	m.log.Debug("indicator added", "id", cfg.ID, "kind", cfg.Kind, "overlay", cfg.Overlay)
	return cfg.ID, nil
}

// Remove drops the indicator with the given id.
func (m *Manager) Remove(indID string) error {
	if _, ok := m.items[indID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownIndicator, indID)
	}
	delete(m.items, indID)
	for i, o := range m.order {
		if o == indID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.metrics.Indicators(len(m.order))
	m.log.Debug("indicator removed", "id", indID)
	return nil
}

// Get returns the indicator with the given id.
func (m *Manager) Get(indID string) (Indicator, bool) {
	s, ok := m.items[indID]
	return s, ok
}

// List returns the configs of all indicators in insertion order.
func (m *Manager) List() []Config {
	out := make([]Config, 0, len(m.order))
	for _, o := range m.order {
		out = append(out, m.items[o].cfg)
	}
	return out
}

// Len returns the number of indicators.
func (m *Manager) Len() int { return len(m.order) }

// SetParams validates p and recalculates only the indicator it belongs to.
func (m *Manager) SetParams(indID string, p indicators.Params) error {
	s, ok := m.items[indID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownIndicator, indID)
	}
	p = p.WithDefaults(s.cfg.Kind)
	if err := p.Validate(s.cfg.Kind); err != nil {
		return fmt.Errorf("set params %s: %w", indID, err)
	}
	s.cfg.Params = p
	if m.bars != nil {
		s.Calculate(m.bars)
	}
	return nil
}

// SetStyle restyles an indicator. Per-point colors are rederived from the
// cached values; the calculator does not run.
func (m *Manager) SetStyle(indID string, st Style) error {
	s, ok := m.items[indID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownIndicator, indID)
	}
	s.restyle(st)
	return nil
}

// SetVisible shows or hides an indicator. Hidden indicators keep their
// cache current so showing them again needs no recompute.
func (m *Manager) SetVisible(indID string, visible bool) error {
	s, ok := m.items[indID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownIndicator, indID)
	}
	s.cfg.Visible = visible
	return nil
}

// CalculateAll recomputes every indicator against bars. Call it once per
// bar series change.
func (m *Manager) CalculateAll(bars []market.Bar) {
	m.bars = bars
	for _, o := range m.order {
		m.items[o].Calculate(bars)
	}
}

// Calculations returns how many calculator runs the manager has made.
func (m *Manager) Calculations() int { return m.calcs }

func (m *Manager) observe(cfg Config, out indicators.Output) {
	m.calcs++
	m.metrics.Calculated(string(cfg.Kind))
	m.log.Debug("indicator calculated", "id", cfg.ID, "label", cfg.Label(), "points", out.Len())
}

// Partition splits the visible indicators into overlays and panels,
// preserving insertion order.
func (m *Manager) Partition() (overlays, panels []Indicator) {
	for _, o := range m.order {
		s := m.items[o]
		if !s.cfg.Visible {
			continue
		}
		if s.cfg.Overlay {
			overlays = append(overlays, s)
		} else {
			panels = append(panels, s)
		}
	}
	return overlays, panels
}

// PanelHeight is the total height requested by the visible panels.
func (m *Manager) PanelHeight() float64 {
	_, panels := m.Partition()
	h := 0.0
	for _, p := range panels {
		h += p.Config().PanelHeight
	}
	return h
}

// RenderOverlays draws the overlays with the price transform as given.
func (m *Manager) RenderOverlays(s surface.Surface, tr viewport.Transform) {
	overlays, _ := m.Partition()
	for _, ind := range overlays {
		ind.Render(s, tr)
	}
}

// RangeOverlays returns the value extent of visible overlays in [xMin, xMax].
func (m *Manager) RangeOverlays(xMin, xMax float64) (float64, float64, bool) {
	overlays, _ := m.Partition()
	lo, hi, found := math.Inf(1), math.Inf(-1), false
	for _, ind := range overlays {
		l, h, ok := ind.Range(xMin, xMax)
		if !ok {
			continue
		}
		lo, hi, found = math.Min(lo, l), math.Max(hi, h), true
	}
	return lo, hi, found
}

// RenderPanels stacks the visible panels top to bottom inside area, each in
// an equal band. Every panel is clipped to its band, separated by a rule
// line and scaled either to 0..100 or to its visible values.
func (m *Manager) RenderPanels(s surface.Surface, view viewport.Viewport, area viewport.Rect) {
	_, panels := m.Partition()
	if len(panels) == 0 || area.H <= 0 {
		return
	}
	bandH := area.H / float64(len(panels))

	for i, ind := range panels {
		band := viewport.Rect{X: area.X, Y: area.Y + float64(i)*bandH, W: area.W, H: bandH}
		s.Clip(band)

		s.SetAlpha(1)
		s.SetStroke(m.theme.Grid, 1, nil)
		s.BeginPath()
		s.MoveTo(band.X, band.Y)
		s.LineTo(band.Right(), band.Y)
		s.Stroke()

		plot := band
		if band.H > 2*panelHeader {
			plot.Y += panelHeader
			plot.H -= panelHeader
		}
		domain := m.panelDomain(ind, view)
		tr := viewport.New(domain, plot)

		m.drawThresholds(s, ind.Config(), tr)
		ind.Render(s, tr)

		s.SetFont(m.theme.FontSize)
		s.SetFill(m.theme.Text)
		s.FillText(ind.Config().Label(), band.X+4, band.Y+m.theme.FontSize+1)
		s.ResetClip()
	}
}

func (m *Manager) panelDomain(ind Indicator, view viewport.Viewport) viewport.Viewport {
	s := ind.(*series)
	if s.spec.fixed {
		return view.WithY(0, 100)
	}
	lo, hi, ok := ind.Range(view.XMin, view.XMax)
	if !ok {
		return view.WithY(0, 1)
	}
	lo, hi = viewport.Pad(lo, hi, 0.1)
	return viewport.Clamp(view.WithY(lo, hi), 0, math.Max(math.Abs(hi)*0.02, 1e-9))
}

// drawThresholds draws dashed overbought/oversold guides.
func (m *Manager) drawThresholds(s surface.Surface, cfg Config, tr viewport.Transform) {
	for _, level := range []float64{cfg.Params.Overbought, cfg.Params.Oversold} {
		if level == 0 || level < tr.View.YMin || level > tr.View.YMax {
			continue
		}
		y := tr.ToSurfaceY(level)
		s.SetAlpha(1)
		s.SetStroke(m.theme.Crosshair, 1, []float64{4, 4})
		s.BeginPath()
		s.MoveTo(tr.Area.X, y)
		s.LineTo(tr.Area.Right(), y)
		s.Stroke()
	}
}

// Readings returns the read-out values of all visible indicators at t.
func (m *Manager) Readings(t float64) []Reading {
	var out []Reading
	for _, o := range m.order {
		s := m.items[o]
		if !s.cfg.Visible {
			continue
		}
		out = append(out, s.PointerMove(t)...)
	}
	return out
}

package chart

// Style is how an indicator paints. Colors holds one color per output line
// in draw order; missing entries fall back to the kind default.
type Style struct {
	Colors    []string  `json:"colors,omitempty" yaml:"colors,omitempty"`
	Width     float64   `json:"width,omitempty" yaml:"width,omitempty"`
	Dash      []float64 `json:"dash,omitempty" yaml:"dash,omitempty"`
	UpColor   string    `json:"up_color,omitempty" yaml:"up_color,omitempty"`
	DownColor string    `json:"down_color,omitempty" yaml:"down_color,omitempty"`
	Opacity   float64   `json:"opacity,omitempty" yaml:"opacity,omitempty"`
}

// merge fills the zero fields of s from def.
func (s Style) merge(def Style) Style {
	colors := make([]string, max(len(s.Colors), len(def.Colors)))
	copy(colors, def.Colors)
	for i, c := range s.Colors {
		if c != "" {
			colors[i] = c
		}
	}
	s.Colors = colors

	if s.Width == 0 {
		s.Width = def.Width
	}
	if s.Dash == nil {
		s.Dash = def.Dash
	}
	if s.UpColor == "" {
		s.UpColor = def.UpColor
	}
	if s.DownColor == "" {
		s.DownColor = def.DownColor
	}
	if s.Opacity == 0 {
		s.Opacity = def.Opacity
	}
	return s
}

func (s Style) color(i int) string {
	if i < len(s.Colors) && s.Colors[i] != "" {
		return s.Colors[i]
	}
	return "#888888"
}

// Theme holds the colors of everything that is not an indicator.
type Theme struct {
	Background string  `json:"background" yaml:"background"`
	Grid       string  `json:"grid" yaml:"grid"`
	Text       string  `json:"text" yaml:"text"`
	Up         string  `json:"up" yaml:"up"`
	Down       string  `json:"down" yaml:"down"`
	Crosshair  string  `json:"crosshair" yaml:"crosshair"`
	FontSize   float64 `json:"font_size" yaml:"font_size"`
}

// DefaultTheme is a light theme.
func DefaultTheme() Theme {
	return Theme{
		Background: "#ffffff",
		Grid:       "#e6e9ef",
		Text:       "#4a4f5c",
		Up:         "#26a69a",
		Down:       "#ef5350",
		Crosshair:  "#9598a1",
		FontSize:   11,
	}
}

// DarkTheme is the dark counterpart of DefaultTheme.
func DarkTheme() Theme {
	t := DefaultTheme()
	t.Background = "#131722"
	t.Grid = "#2a2e39"
	t.Text = "#b2b5be"
	t.Crosshair = "#758696"
	return t
}

// ThemeByName returns the theme called name; anything but "dark" is light.
func ThemeByName(name string) Theme {
	if name == "dark" {
		return DarkTheme()
	}
	return DefaultTheme()
}

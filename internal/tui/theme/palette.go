package theme

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds the colors the timetable is drawn with, derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Current     lipgloss.Color
	Warning     lipgloss.Color

	// Course block backgrounds, indexed by grid color index.
	CourseBg     []lipgloss.Color
	CourseBgAlt  []lipgloss.Color // selected block
	CoursePastBg []lipgloss.Color // meetings already over this week
	TextOnCourse []lipgloss.Color

	TextOnWarning lipgloss.Color
	TextOnCurrent lipgloss.Color

	Modal ModalColors
}

// ModalColors are the colors of the course detail box.
type ModalColors struct {
	Bg        lipgloss.Color
	Border    lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
}

// NewPalette derives a Palette from t. A nil theme uses mocha.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load("mocha")
	}
	t.applyDefaults()

	p := &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Current:     lipgloss.Color(t.Current),
		Warning:     lipgloss.Color(t.Warning),

		TextOnWarning: lipgloss.Color(contrastText(t.Warning, t.Bg, t.Fg)),
		TextOnCurrent: lipgloss.Color(contrastText(t.Current, t.Bg, t.Fg)),

		Modal: ModalColors{
			Bg:        lipgloss.Color(t.BaseBg),
			Border:    same(t.ModalBorder),
			Text:      same(t.TextPrimary),
			Muted:     same(t.TextMuted),
			Highlight: same(t.Highlight),
		},
	}

	bg, _ := parseRGB(t.Bg)
	light := bg.luminance() > 0.55
	for _, hex := range t.Courses {
		base, selected, past := hex, hex, hex
		if c, ok := parseRGB(hex); ok {
			b, s, ps := blockShades(c, bg, light)
			base, selected, past = b.hex(), s.hex(), ps.hex()
		}
		p.CourseBg = append(p.CourseBg, lipgloss.Color(base))
		p.CourseBgAlt = append(p.CourseBgAlt, lipgloss.Color(selected))
		p.CoursePastBg = append(p.CoursePastBg, lipgloss.Color(past))
		p.TextOnCourse = append(p.TextOnCourse, lipgloss.Color(contrastText(base, t.Fg, t.Bg)))
	}
	return p
}

// CourseIndex wraps a grid color index into the palette.
func (p *Palette) CourseIndex(i int) int {
	n := len(p.CourseBg)
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}

var (
	black = rgb{}
	white = rgb{255, 255, 255}
)

// blockShades returns the normal, selected and past backgrounds of a course
// color. Dark themes dim the color, light themes wash it towards the
// background.
func blockShades(c, bg rgb, light bool) (base, selected, past rgb) {
	if light {
		base = c.mix(bg, 0.75)
		return base, base.mix(black, 0.10), c.mix(bg, 0.88)
	}
	base = c.scale(0.50, 40)
	return base, base.mix(white, 0.30), c.scale(0.30, 30)
}

// rgb is a color with 0..255 channels.
type rgb struct {
	r, g, b float64
}

// parseRGB reads a "#rrggbb" color.
func parseRGB(hex string) (rgb, bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return rgb{}, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{float64(v >> 16 & 0xff), float64(v >> 8 & 0xff), float64(v & 0xff)}, true
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", int(c.r), int(c.g), int(c.b))
}

// scale multiplies every channel by f, keeping each at least floor.
func (c rgb) scale(f, floor float64) rgb {
	ch := func(v float64) float64 { return max(math.Trunc(v*f), floor) }
	return rgb{ch(c.r), ch(c.g), ch(c.b)}
}

// mix moves c towards o by ratio (0 keeps c, 1 yields o).
func (c rgb) mix(o rgb, ratio float64) rgb {
	ratio = min(max(ratio, 0), 1)
	ch := func(a, b float64) float64 { return math.Trunc(a*(1-ratio) + b*ratio) }
	return rgb{ch(c.r, o.r), ch(c.g, o.g), ch(c.b, o.b)}
}

// luminance is the WCAG relative luminance.
func (c rgb) luminance() float64 {
	lin := func(v float64) float64 {
		v /= 255
		if v <= 0.04045 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.r) + 0.7152*lin(c.g) + 0.0722*lin(c.b)
}

func luminance(hex string) float64 {
	c, _ := parseRGB(hex)
	return c.luminance()
}

// contrastText returns whichever of a and b reads better on bg.
func contrastText(bg, a, b string) string {
	ratio := func(x, y float64) float64 {
		if x < y {
			x, y = y, x
		}
		return (x + 0.05) / (y + 0.05)
	}
	l := luminance(bg)
	if ratio(l, luminance(a)) >= ratio(l, luminance(b)) {
		return a
	}
	return b
}

func same(hex string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Dark: hex, Light: hex}
}

// Package settings models the drawing editor's tool settings as reactive
// values, so toolbar widgets and tools stay in sync without an event bus.
package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/vango-dev/inkpad/internal/errors"
	"github.com/vango-dev/inkpad/pkg/localization"
	"github.com/vango-dev/inkpad/pkg/reactive"
)

// Paths lists every setting Apply accepts.
var Paths = []string{
	"tool",
	"pen.color",
	"pen.thickness",
	"pen.kind",
	"pen.slider",
	"eraser.thickness",
	"text.font",
	"text.size",
	"text.color",
}

// Change describes one top-level setting that changed.
type Change struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// Editor holds the tool settings of one drawing.
//
// Apply and Restore are serialized, so concurrent callers never lose
// an acknowledged write and the field views always follow their style.
// Writes made directly on the exported values bypass that lock. Apply and
// Restore must not be called from a listener.
type Editor struct {
	Tool   *reactive.Value[ToolKind]
	Pen    *reactive.Value[PenStyle]
	Eraser *reactive.Value[EraserStyle]
	Text   *reactive.Value[TextStyle]

	// Field views, written back to their parent style.
	PenColor        *reactive.Value[Color]
	PenThickness    *reactive.Value[int]
	EraserThickness *reactive.Value[int]
	TextSize        *reactive.Value[int]

	// ThicknessSlider is the pen thickness as a 0..1 slider position.
	ThicknessSlider *reactive.Value[float64]

	// Summary is the status line shown under the toolbar.
	Summary reactive.ReactiveValue[string]

	strings *localization.Strings

	// mu serializes Apply and Restore, including their dispatch.
	mu sync.Mutex
}

// NewEditor creates an editor in the default state, labelled with s.
// A nil s means English.
func NewEditor(s *localization.Strings) *Editor {
	if s == nil {
		s = localization.English
	}
	d := DefaultSnapshot()
	e := &Editor{
		Tool:    reactive.FromInitialValue(d.Tool),
		Pen:     reactive.FromInitialValue(d.Pen),
		Eraser:  reactive.FromInitialValue(d.Eraser),
		Text:    reactive.FromInitialValue(d.Text),
		strings: s,
	}

	e.PenColor = reactive.FromPropertyMutable(e.Pen,
		func(p PenStyle) Color { return p.Color },
		func(p PenStyle, c Color) PenStyle { p.Color = c; return p },
	)
	e.PenThickness = reactive.FromPropertyMutable(e.Pen,
		func(p PenStyle) int { return p.Thickness },
		func(p PenStyle, n int) PenStyle { p.Thickness = n; return p },
	)
	e.EraserThickness = reactive.FromPropertyMutable(e.Eraser,
		func(st EraserStyle) int { return st.Thickness },
		func(st EraserStyle, n int) EraserStyle { st.Thickness = n; return st },
	)
	e.TextSize = reactive.FromPropertyMutable(e.Text,
		func(t TextStyle) int { return t.Size },
		func(t TextStyle, n int) TextStyle { t.Size = n; return t },
	)
	e.ThicknessSlider = reactive.MapMutable(e.PenThickness, thicknessToSlider, sliderToThickness)

	tool, pen, eraser := e.Tool, e.Pen, e.Eraser
	e.Summary = reactive.FromCallback(func() string {
		return summary(s, tool.Get(), pen.Get(), eraser.Get())
	}, tool, pen, eraser)

	return e
}

// summary renders the status line for the active tool.
func summary(s *localization.Strings, t ToolKind, pen PenStyle, eraser EraserStyle) string {
	line := s.ToolSelected(toolName(s, t))
	switch t {
	case ToolPen:
		line += " · " + s.ThicknessLabel(pen.Thickness)
	case ToolEraser:
		line += " · " + s.ThicknessLabel(eraser.Thickness)
	}
	return line
}

// SummaryIn renders the current status line with s instead of the
// editor's own labels.
func (e *Editor) SummaryIn(s *localization.Strings) string {
	if s == nil {
		s = e.strings
	}
	return summary(s, e.Tool.Get(), e.Pen.Get(), e.Eraser.Get())
}

// toolName returns the localized label of t.
func toolName(s *localization.Strings, t ToolKind) string {
	switch t {
	case ToolPen:
		return s.Pen
	case ToolEraser:
		return s.Eraser
	case ToolSelection:
		return s.Select
	case ToolText:
		return s.Text
	case ToolImage:
		return s.Image
	}
	return string(t)
}

// thicknessToSlider maps MinThickness..MaxThickness onto 0..1.
func thicknessToSlider(n int) float64 {
	return float64(n-MinThickness) / float64(MaxThickness-MinThickness)
}

// sliderToThickness is the rounding inverse of thicknessToSlider.
func sliderToThickness(s float64) int {
	s = math.Max(0, math.Min(1, s))
	return MinThickness + int(math.Round(s*float64(MaxThickness-MinThickness)))
}

// Strings returns the labels the editor was created with.
func (e *Editor) Strings() *localization.Strings {
	return e.strings
}

// Snapshot captures the current settings.
func (e *Editor) Snapshot() Snapshot {
	return Snapshot{
		Tool:   e.Tool.Get(),
		Pen:    e.Pen.Get(),
		Eraser: e.Eraser.Get(),
		Text:   e.Text.Get(),
	}
}

// Restore normalizes s and applies it. Unchanged parts do not notify.
func (e *Editor) Restore(s Snapshot) error {
	s, err := s.Normalize()
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.Tool.Set(s.Tool)
	e.Pen.Set(s.Pen)
	e.Eraser.Set(s.Eraser)
	e.Text.Set(s.Text)
	return nil
}

// Watch calls fn after every change to the tool or a style.
func (e *Editor) Watch(fn func(Change)) *reactive.Subscription {
	return reactive.Join(
		e.Tool.OnUpdate(func(t ToolKind) { fn(Change{Path: "tool", Value: t}) }),
		e.Pen.OnUpdate(func(p PenStyle) { fn(Change{Path: "pen", Value: p}) }),
		e.Eraser.OnUpdate(func(s EraserStyle) { fn(Change{Path: "eraser", Value: s}) }),
		e.Text.OnUpdate(func(t TextStyle) { fn(Change{Path: "text", Value: t}) }),
	)
}

// Apply sets the setting at path from its JSON encoding.
func (e *Editor) Apply(path string, raw json.RawMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(path, raw)
}

func (e *Editor) apply(path string, raw json.RawMessage) error {
	switch path {
	case "tool":
		s, err := decodeString(path, raw)
		if err != nil {
			return err
		}
		t, err := ParseTool(s)
		if err != nil {
			return invalid(path, err)
		}
		e.Tool.Set(t)

	case "pen.color", "text.color":
		s, err := decodeString(path, raw)
		if err != nil {
			return err
		}
		c, err := ParseColor(s)
		if err != nil {
			return invalid(path, err)
		}
		if path == "pen.color" {
			e.PenColor.Set(c)
		} else {
			e.Text.Update(func(t TextStyle) TextStyle { t.Color = c; return t })
		}

	case "pen.thickness", "eraser.thickness":
		n, err := decodeInt(path, raw, MinThickness, MaxThickness)
		if err != nil {
			return err
		}
		if path == "pen.thickness" {
			e.PenThickness.Set(n)
		} else {
			e.EraserThickness.Set(n)
		}

	case "pen.kind":
		s, err := decodeString(path, raw)
		if err != nil {
			return err
		}
		k, err := ParseStrokeKind(s)
		if err != nil {
			return invalid(path, err)
		}
		e.Pen.Update(func(p PenStyle) PenStyle { p.Kind = k; return p })

	case "pen.slider":
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return invalid(path, err)
		}
		if f < 0 || f > 1 || math.IsNaN(f) {
			return invalid(path, fmt.Errorf("%v is outside 0..1", f))
		}
		e.ThicknessSlider.Set(f)

	case "text.font":
		s, err := decodeString(path, raw)
		if err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return invalid(path, fmt.Errorf("font must not be empty"))
		}
		e.Text.Update(func(t TextStyle) TextStyle { t.Font = s; return t })

	case "text.size":
		n, err := decodeInt(path, raw, MinTextSize, MaxTextSize)
		if err != nil {
			return err
		}
		e.TextSize.Set(n)

	default:
		return errors.New("E101").
			WithDetail(path).
			WithSuggestion("Use one of: " + strings.Join(Paths, ", "))
	}
	return nil
}

func decodeString(path string, raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", invalid(path, err)
	}
	return s, nil
}

func decodeInt(path string, raw json.RawMessage, lo, hi int) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, invalid(path, err)
	}
	if err := checkRange(path, n, lo, hi); err != nil {
		return 0, err
	}
	return n, nil
}

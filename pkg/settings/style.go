package settings

import (
	"fmt"
	"strings"
)

// ToolKind identifies a toolbar tool.
type ToolKind string

const (
	ToolPen       ToolKind = "pen"
	ToolEraser    ToolKind = "eraser"
	ToolSelection ToolKind = "selection"
	ToolText      ToolKind = "text"
	ToolImage     ToolKind = "image"
)

// Tools lists every tool in toolbar order.
var Tools = []ToolKind{ToolPen, ToolEraser, ToolSelection, ToolText, ToolImage}

// ParseTool validates a tool name.
func ParseTool(s string) (ToolKind, error) {
	for _, t := range Tools {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tool %q", s)
}

// StrokeKind is the pen's stroke builder.
type StrokeKind string

const (
	StrokeFreehand  StrokeKind = "freehand"
	StrokeLine      StrokeKind = "line"
	StrokeRectangle StrokeKind = "rectangle"
	StrokeArrow     StrokeKind = "arrow"
)

var strokeKinds = []StrokeKind{StrokeFreehand, StrokeLine, StrokeRectangle, StrokeArrow}

// ParseStrokeKind validates a stroke kind name.
func ParseStrokeKind(s string) (StrokeKind, error) {
	for _, k := range strokeKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown stroke kind %q", s)
}

// Color is a normalized "#rrggbb" or "#rrggbbaa" hex color.
type Color string

// ParseColor validates a hex color and lowercases it.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "#") || (len(s) != 7 && len(s) != 9) {
		return "", fmt.Errorf("color %q must look like #rrggbb or #rrggbbaa", s)
	}
	for _, c := range s[1:] {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("color %q has a non-hex digit %q", s, c)
		}
	}
	return Color(s), nil
}

const (
	// MinThickness and MaxThickness bound pen and eraser thickness.
	MinThickness = 1
	MaxThickness = 100

	// MinTextSize and MaxTextSize bound the text tool's font size.
	MinTextSize = 4
	MaxTextSize = 256
)

// PenStyle configures the pen tool.
type PenStyle struct {
	Color     Color      `json:"color"`
	Thickness int        `json:"thickness"`
	Kind      StrokeKind `json:"kind"`
}

// EraserStyle configures the eraser tool.
type EraserStyle struct {
	Thickness int `json:"thickness"`
}

// TextStyle configures the text tool.
type TextStyle struct {
	Font  string `json:"font"`
	Size  int    `json:"size"`
	Color Color  `json:"color"`
}

// DefaultPen is the pen a new editor starts with.
var DefaultPen = PenStyle{Color: "#000000", Thickness: 4, Kind: StrokeFreehand}

// DefaultEraser is the eraser a new editor starts with.
var DefaultEraser = EraserStyle{Thickness: 10}

// DefaultText is the text style a new editor starts with.
var DefaultText = TextStyle{Font: "sans-serif", Size: 16, Color: "#000000"}

// Package localization holds the editor's user-visible strings.
//
// Each language is one Strings table with every label spelled out, plus a
// few formatting functions for labels that embed a number or a name.
package localization

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
)

// Strings is the full set of labels for one language.
type Strings struct {
	// Tag is the language this table is written in.
	Tag language.Tag

	Pen       string
	Eraser    string
	Select    string
	Text      string
	Image     string
	Undo      string
	Redo      string
	Thickness string
	Color     string
	Font      string
	Size      string

	Freehand  string
	Line      string
	Rectangle string
	Arrow     string

	// ThicknessLabel renders a stroke thickness, e.g. "Thickness: 4".
	ThicknessLabel func(thickness int) string

	// ZoomLabel renders a zoom factor as a percentage.
	ZoomLabel func(zoom float64) string

	// ToolSelected announces the active tool.
	ToolSelected func(toolName string) string
}

// English is the default table.
var English = &Strings{
	Tag:       language.English,
	Pen:       "Pen",
	Eraser:    "Eraser",
	Select:    "Select",
	Text:      "Text",
	Image:     "Image",
	Undo:      "Undo",
	Redo:      "Redo",
	Thickness: "Thickness",
	Color:     "Color",
	Font:      "Font",
	Size:      "Size",
	Freehand:  "Freehand",
	Line:      "Line",
	Rectangle: "Rectangle",
	Arrow:     "Arrow",

	ThicknessLabel: func(thickness int) string { return "Thickness: " + strconv.Itoa(thickness) },
	ZoomLabel:      func(zoom float64) string { return fmt.Sprintf("Zoom: %.0f%%", zoom*100) },
	ToolSelected:   func(toolName string) string { return toolName + " selected" },
}

// German is the German table.
var German = &Strings{
	Tag:       language.German,
	Pen:       "Stift",
	Eraser:    "Radierer",
	Select:    "Auswählen",
	Text:      "Text",
	Image:     "Bild",
	Undo:      "Rückgängig",
	Redo:      "Wiederholen",
	Thickness: "Dicke",
	Color:     "Farbe",
	Font:      "Schriftart",
	Size:      "Größe",
	Freehand:  "Freihand",
	Line:      "Linie",
	Rectangle: "Rechteck",
	Arrow:     "Pfeil",

	ThicknessLabel: func(thickness int) string { return "Dicke: " + strconv.Itoa(thickness) },
	ZoomLabel:      func(zoom float64) string { return fmt.Sprintf("Vergrößerung: %.0f %%", zoom*100) },
	ToolSelected:   func(toolName string) string { return toolName + " ausgewählt" },
}

// Spanish is the Spanish table.
var Spanish = &Strings{
	Tag:       language.Spanish,
	Pen:       "Lápiz",
	Eraser:    "Borrador",
	Select:    "Seleccionar",
	Text:      "Texto",
	Image:     "Imagen",
	Undo:      "Deshacer",
	Redo:      "Rehacer",
	Thickness: "Grosor",
	Color:     "Color",
	Font:      "Fuente",
	Size:      "Tamaño",
	Freehand:  "A mano alzada",
	Line:      "Línea",
	Rectangle: "Rectángulo",
	Arrow:     "Flecha",

	ThicknessLabel: func(thickness int) string { return "Grosor: " + strconv.Itoa(thickness) },
	ZoomLabel:      func(zoom float64) string { return fmt.Sprintf("Zoom: %.0f %%", zoom*100) },
	ToolSelected:   func(toolName string) string { return toolName + " seleccionado" },
}

// tables is in matcher order; the first entry is the fallback.
var tables = []*Strings{English, German, Spanish}

var matcher = language.NewMatcher([]language.Tag{English.Tag, German.Tag, Spanish.Tag})

// For returns the table best matching the given language preferences.
// Each argument may be a BCP 47 tag or an Accept-Language header value.
// Unknown or empty preferences get English.
func For(prefs ...string) *Strings {
	_, index := language.MatchStrings(matcher, prefs...)
	if index < 0 || index >= len(tables) {
		return English
	}
	return tables[index]
}

// Labels returns the static labels keyed by name, for clients that render
// the toolbar themselves.
func (s *Strings) Labels() map[string]string {
	return map[string]string{
		"language":  s.Tag.String(),
		"pen":       s.Pen,
		"eraser":    s.Eraser,
		"select":    s.Select,
		"text":      s.Text,
		"image":     s.Image,
		"undo":      s.Undo,
		"redo":      s.Redo,
		"thickness": s.Thickness,
		"color":     s.Color,
		"font":      s.Font,
		"size":      s.Size,
		"freehand":  s.Freehand,
		"line":      s.Line,
		"rectangle": s.Rectangle,
		"arrow":     s.Arrow,
	}
}

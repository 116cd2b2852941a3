package settings

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vango-dev/inkpad/internal/errors"
)

// Snapshot is the serializable state of an Editor.
type Snapshot struct {
	Tool   ToolKind    `json:"tool"`
	Pen    PenStyle    `json:"pen"`
	Eraser EraserStyle `json:"eraser"`
	Text   TextStyle   `json:"text"`
}

// DefaultSnapshot returns the state of a new editor.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Tool:   ToolPen,
		Pen:    DefaultPen,
		Eraser: DefaultEraser,
		Text:   DefaultText,
	}
}

// Validate checks every field of the snapshot.
func (s Snapshot) Validate() error {
	_, err := s.Normalize()
	return err
}

// Normalize validates every field and returns the snapshot in the form
// Apply would have stored it: colors trimmed and lowercased, font trimmed.
func (s Snapshot) Normalize() (Snapshot, error) {
	if _, err := ParseTool(string(s.Tool)); err != nil {
		return Snapshot{}, invalid("tool", err)
	}
	c, err := ParseColor(string(s.Pen.Color))
	if err != nil {
		return Snapshot{}, invalid("pen.color", err)
	}
	s.Pen.Color = c
	if err := checkRange("pen.thickness", s.Pen.Thickness, MinThickness, MaxThickness); err != nil {
		return Snapshot{}, err
	}
	if _, err := ParseStrokeKind(string(s.Pen.Kind)); err != nil {
		return Snapshot{}, invalid("pen.kind", err)
	}
	if err := checkRange("eraser.thickness", s.Eraser.Thickness, MinThickness, MaxThickness); err != nil {
		return Snapshot{}, err
	}
	s.Text.Font = strings.TrimSpace(s.Text.Font)
	if s.Text.Font == "" {
		return Snapshot{}, invalid("text.font", fmt.Errorf("font must not be empty"))
	}
	if err := checkRange("text.size", s.Text.Size, MinTextSize, MaxTextSize); err != nil {
		return Snapshot{}, err
	}
	if c, err = ParseColor(string(s.Text.Color)); err != nil {
		return Snapshot{}, invalid("text.color", err)
	}
	s.Text.Color = c
	return s, nil
}

// DecodeSnapshot parses a JSON snapshot and returns it normalized.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, errors.New("E102").WithDetail("snapshot").Wrap(err)
	}
	return s.Normalize()
}

func invalid(path string, err error) error {
	return errors.New("E102").WithDetail(path).Wrap(err)
}

func checkRange(path string, n, lo, hi int) error {
	if n < lo || n > hi {
		return invalid(path, fmt.Errorf("%d is outside %d..%d", n, lo, hi))
	}
	return nil
}

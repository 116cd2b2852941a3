package localization

import "testing"

func TestFor(t *testing.T) {
	tests := []struct {
		name  string
		prefs []string
		want  *Strings
	}{
		{"no preference", nil, English},
		{"english", []string{"en"}, English},
		{"regional german", []string{"de-AT"}, German},
		{"accept-language header", []string{"fr-CH, es;q=0.9, en;q=0.5"}, Spanish},
		{"unsupported", []string{"ja"}, English},
		{"garbage", []string{"!!"}, English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := For(tt.prefs...); got != tt.want {
				t.Errorf("For(%v) = %s, want %s", tt.prefs, got.Tag, tt.want.Tag)
			}
		})
	}
}

func TestFormatters(t *testing.T) {
	if got := English.ThicknessLabel(4); got != "Thickness: 4" {
		t.Errorf("ThicknessLabel = %q", got)
	}
	if got := English.ZoomLabel(1.5); got != "Zoom: 150%" {
		t.Errorf("ZoomLabel = %q", got)
	}
	if got := German.ToolSelected(German.Pen); got != "Stift ausgewählt" {
		t.Errorf("ToolSelected = %q", got)
	}
}

func TestTablesComplete(t *testing.T) {
	for _, s := range tables {
		for key, label := range s.Labels() {
			if label == "" {
				t.Errorf("%s: label %q is empty", s.Tag, key)
			}
		}
		if s.ThicknessLabel == nil || s.ZoomLabel == nil || s.ToolSelected == nil {
			t.Errorf("%s: missing formatter", s.Tag)
		}
	}
}

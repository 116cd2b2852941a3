package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "runtime error",
			code:    "E001",
			wantMsg: "Update listener panicked",
			wantCat: CategoryRuntime,
		},
		{
			name:    "settings error",
			code:    "E102",
			wantMsg: "Invalid setting value",
			wantCat: CategorySettings,
		},
		{
			name:    "store error",
			code:    "E201",
			wantMsg: "Snapshot not found",
			wantCat: CategoryStore,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryConfig, "file %q not found", "inkpad.json")
	if err.Message != `file "inkpad.json" not found` {
		t.Errorf("Message = %q, want %q", err.Message, `file "inkpad.json" not found`)
	}
	if err.Category != CategoryConfig {
		t.Errorf("Category = %q, want %q", err.Category, CategoryConfig)
	}
}

func TestInkError_Error(t *testing.T) {
	err := New("E101")
	if got, want := err.Error(), "E101: Unknown setting path"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err.WithDetail("pen.opacity")
	if got, want := err.Error(), "E101: Unknown setting path (pen.opacity)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &InkError{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestInkError_Wrap(t *testing.T) {
	inner := fmt.Errorf("connection reset")
	outer := New("E202").Wrap(inner)

	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
	if !stderrors.Is(outer, inner) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !strings.HasSuffix(outer.Error(), ": connection reset") {
		t.Errorf("Error() should include the cause, got %q", outer.Error())
	}
}

func TestCodeMatching(t *testing.T) {
	err := fmt.Errorf("saving doc: %w", New("E201").WithDetail("doc-1"))

	if got := CodeOf(err); got != "E201" {
		t.Errorf("CodeOf = %q, want E201", got)
	}
	if !HasCode(err, "E201") {
		t.Error("HasCode should match E201 through fmt wrapping")
	}
	if HasCode(err, "E202") {
		t.Error("HasCode should not match a different code")
	}
	if CodeOf(fmt.Errorf("plain")) != "" {
		t.Error("CodeOf of a plain error should be empty")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E001") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	ie := New("E101")
	if FromError(ie, "E202") != ie {
		t.Error("FromError should return InkError as-is")
	}
	if FromError(fmt.Errorf("ctx: %w", ie), "E202") != ie {
		t.Error("FromError should unwrap to an existing InkError")
	}

	stdErr := &testError{msg: "test error"}
	result := FromError(stdErr, "E202")
	if result.Wrapped != stdErr {
		t.Error("Standard error should be wrapped")
	}
	if result.Code != "E202" {
		t.Errorf("Code = %q, want E202", result.Code)
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func TestFormat(t *testing.T) {
	SetColor(false)
	defer SetColor(true)

	tests := []struct {
		name string
		err  *InkError
		want []string
	}{
		{
			name: "setting path",
			err: New("E102").
				WithDetail("pen.thickness").
				WithSuggestion("Use a value such as 4").
				Wrap(fmt.Errorf("400 is outside 1..100")),
			want: []string{
				"ERROR E102 [settings] Invalid setting value",
				"  Setting: pen.thickness\n",
				"  Cause:   400 is outside 1..100\n",
				"  Hint:    Use a value such as 4\n",
			},
		},
		{
			name: "document",
			err:  New("E201").WithDetail("doc-1"),
			want: []string{"ERROR E201 [store] Snapshot not found", "  Document: doc-1\n"},
		},
		{
			name: "free text detail",
			err:  New("E301").WithDetail("server.port must be between 0 and 65535"),
			want: []string{"ERROR E301 [config] Invalid configuration", "\n  server.port must be between 0 and 65535\n"},
		},
		{
			name: "uncoded",
			err:  Newf(CategoryCLI, "inkpad.json already exists"),
			want: []string{"ERROR [cli] inkpad.json already exists"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatted := tt.err.Format()
			for _, want := range tt.want {
				if !strings.Contains(formatted, want) {
					t.Errorf("Format should contain %q, got:\n%s", want, formatted)
				}
			}
		})
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		err  *InkError
		want string
	}{
		{New("E302"), "E302 [config] Configuration file not found"},
		{New("E101").WithDetail("pen.size"), "E101 [settings] Unknown setting path (setting pen.size)"},
		{New("E301").WithDetail("bad port"), "E301 [config] Invalid configuration"},
	}
	for _, tt := range tests {
		if got := tt.err.FormatCompact(); got != tt.want {
			t.Errorf("FormatCompact = %q, want %q", got, tt.want)
		}
	}
}

func TestFprint(t *testing.T) {
	SetColor(false)
	defer SetColor(true)

	var b strings.Builder
	Fprint(&b, fmt.Errorf("saving: %w", New("E202").WithDetail("s3 put inkpad/doc.json")))
	if !strings.Contains(b.String(), "Request: s3 put inkpad/doc.json") {
		t.Errorf("Fprint should format the wrapped InkError, got:\n%s", b.String())
	}

	b.Reset()
	Fprint(&b, fmt.Errorf("plain failure"))
	if !strings.Contains(b.String(), "ERROR plain failure") {
		t.Errorf("Fprint plain error, got:\n%s", b.String())
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	got = wrapText("", 10)
	if len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestSetColor(t *testing.T) {
	SetColor(true)
	if !strings.Contains(paint(colorRed, "test"), "\033[31m") {
		t.Error("paint should add the ANSI code when colors are enabled")
	}

	SetColor(false)
	if strings.Contains(paint(colorRed, "test"), "\033[") {
		t.Error("paint should not add ANSI codes when colors are disabled")
	}
	SetColor(true)
}

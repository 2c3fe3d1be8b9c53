package colors

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestInit(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	color.NoColor = true
	forceOn := true
	Init(&forceOn)
	if !Enabled() {
		t.Error("expected colors enabled when Init(true)")
	}

	forceOff := false
	Init(&forceOff)
	if Enabled() {
		t.Error("expected colors disabled when Init(false)")
	}

	Init(nil)
	if Enabled() {
		t.Error("Init(nil) should keep the current setting")
	}
}

func TestMark(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	color.NoColor = true
	tests := []struct {
		exported, promoted bool
		want               string
	}{
		{true, false, "[x]"},
		{true, true, "[x]"},
		{false, true, "[+]"},
		{false, false, "[ ]"},
	}
	for _, tt := range tests {
		if got := Mark(tt.exported, tt.promoted); got != tt.want {
			t.Errorf("Mark(%v, %v) = %q, want %q", tt.exported, tt.promoted, got, tt.want)
		}
	}

	color.NoColor = false
	if got := Mark(true, false); !strings.Contains(got, "\x1b[") {
		t.Errorf("expected ANSI codes when colors enabled, got: %q", got)
	}
}

// Package colors provides the terminal styles used by the intrinsics CLI.
//
// Colors are disabled when stdout is not a terminal; fatih/color detects
// that on its own. Init overrides the detection from the --color flag.
package colors

import "github.com/fatih/color"

// Init allows overriding the auto-detected color setting.
//   - forceColor == nil: keep the auto-detected value
//   - forceColor == true: force colors on
//   - forceColor == false: force colors off
func Init(forceColor *bool) {
	if forceColor != nil {
		color.NoColor = !*forceColor
	}
}

// Enabled returns true if colors are currently enabled.
func Enabled() bool {
	return !color.NoColor
}

func Bold() *color.Color  { return color.New(color.Bold) }
func Faint() *color.Color { return color.New(color.Faint) }

// Class styles Ruby class names.
func Class() *color.Color { return color.New(color.Bold, color.FgHiMagenta) }

// Symbol styles C symbol names.
func Symbol() *color.Color { return color.New(color.FgHiBlue) }

// File styles source paths.
func File() *color.Color { return color.New(color.Bold, color.FgHiCyan) }

// Exported marks methods already linkable from the binary.
func Exported() *color.Color { return color.New(color.Bold, color.FgHiGreen) }

// Promoted marks methods the visibility patch makes linkable.
func Promoted() *color.Color { return color.New(color.Bold, color.FgHiYellow) }

// Hidden marks methods that stay file static.
func Hidden() *color.Color { return color.New(color.Faint, color.FgRed) }

// Mark returns the styled check box for a method's visibility.
func Mark(exported, promoted bool) string {
	switch {
	case exported:
		return Exported().Sprint("[x]")
	case promoted:
		return Promoted().Sprint("[+]")
	default:
		return Hidden().Sprint("[ ]")
	}
}

package symbols

import "strings"

// MachOPrefix is the underscore the Mach-O toolchain puts in front of every C symbol.
const MachOPrefix = "_"

// Normalize returns the C spelling of a symbol table name: the platform
// prefix is removed along with any ELF symbol version suffix
// (e.g. rb_str_new@@RUBY_3.3).
func Normalize(name, prefix string) string {
	if prefix != "" {
		name = strings.TrimPrefix(name, prefix)
	}
	if i := strings.Index(name, "@"); i > 0 {
		name = name[:i]
	}
	return name
}

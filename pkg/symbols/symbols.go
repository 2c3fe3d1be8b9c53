// Package symbols collects the exported code symbols of a compiled binary.
package symbols

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"
)

// ErrMissingBinary is returned when the binary to inspect does not exist.
var ErrMissingBinary = errors.New("binary is missing")

// Backends that can list symbols.
const (
	BackendNM     = "nm"
	BackendNative = "native"
)

// Set is a set of symbol names.
type Set map[string]bool

// Add inserts name into the set.
func (s Set) Add(name string) {
	s[name] = true
}

// Contains reports whether name is in the set.
func (s Set) Contains(name string) bool {
	return s[name]
}

// Sorted returns the names in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Filter returns the sorted names containing substr.
func (s Set) Filter(substr string) []string {
	var out []string
	for _, name := range s.Sorted() {
		if strings.Contains(name, substr) {
			out = append(out, name)
		}
	}
	return out
}

// Config selects how the symbol table is read.
type Config struct {
	Backend string
	// NM is the nm executable used by the nm backend.
	NM string
	// StripPrefix is the C name mangling prefix removed from every symbol.
	StripPrefix string
}

// DefaultStripPrefix returns the C symbol prefix of the host platform.
func DefaultStripPrefix() string {
	if runtime.GOOS == "darwin" {
		return MachOPrefix
	}
	return ""
}

// Exported returns the defined, externally visible code symbols of binary.
func Exported(binary string, conf *Config) (Set, error) {
	if conf == nil {
		conf = &Config{}
	}
	if _, err := os.Stat(binary); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingBinary, binary)
		}
		return nil, err
	}
	switch conf.Backend {
	case "", BackendNM:
		nm := conf.NM
		if nm == "" {
			nm = "nm"
		}
		return RunNM(nm, binary, conf.StripPrefix)
	case BackendNative:
		return Native(binary)
	default:
		return nil, fmt.Errorf("unknown symbols backend %q", conf.Backend)
	}
}

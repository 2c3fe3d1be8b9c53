// Package intrinsics extracts native method registrations from the CRuby
// source tree and generates the C trampolines the compiler calls instead of
// going through the VM's method dispatch.
package intrinsics

import (
	"errors"
	"fmt"
)

// Calling conventions that rb_define_method encodes in its arity argument.
const (
	// ArgcVariadic functions are called as func(int argc, const VALUE *argv, VALUE self).
	ArgcVariadic = -1
	// ArgcArray functions are called as func(VALUE self, VALUE args) with a Ruby array.
	ArgcArray = -2
)

var (
	// ErrUnsupportedConvention is returned when a wrapped method uses the
	// ArgcArray calling convention.
	ErrUnsupportedConvention = errors.New("unsupported calling convention")
	// ErrArityMismatch is returned when methods sharing a C function declare
	// different arities.
	ErrArityMismatch = errors.New("arity mismatch")
)

// Method is a single rb_define_method registration.
type Method struct {
	Exported bool   `json:"exported"`
	File     string `json:"file"`
	Klass    string `json:"class"`
	RbName   string `json:"rb_name"`
	CName    string `json:"c_name"`
	Argc     int    `json:"argc"`
	// ArgcExpr holds the arity when it is not an integer literal, e.g.
	// UNLIMITED_ARGUMENTS. Argc is 0 for those.
	ArgcExpr string `json:"argc_expr,omitempty"`
}

// String returns the Ruby spelling of the method, e.g. String#upcase.
func (m *Method) String() string {
	return fmt.Sprintf("%s#%s", m.Klass, m.RbName)
}

// Visible reports whether the implementing symbol is linkable, either
// already or once the promoted symbols have been patched.
func (m *Method) Visible(promoted map[string]bool) bool {
	return m.Exported || promoted[m.CName]
}

// LiteralArgc reports whether the calling convention is known.
func (m *Method) LiteralArgc() bool {
	return m.ArgcExpr == ""
}

// Edit is a single line replacement in a source file.
type Edit struct {
	Orig   string
	Edited string
	Line   int // 1-based
}

// FileMethods are the methods found in one source file.
type FileMethods struct {
	File    string
	Methods []*Method
}

// Files is the scan result in file path order.
type Files []FileMethods

// Get returns the methods found in file.
func (fs Files) Get(file string) ([]*Method, bool) {
	for _, f := range fs {
		if f.File == file {
			return f.Methods, true
		}
	}
	return nil, false
}

// Filter returns the files whose path is in allow.
func (fs Files) Filter(allow []string) Files {
	set := make(map[string]bool, len(allow))
	for _, a := range allow {
		set[a] = true
	}
	var out Files
	for _, f := range fs {
		if set[f.File] {
			out = append(out, f)
		}
	}
	return out
}

// Class returns the methods of klass, dropping files left without any.
func (fs Files) Class(klass string) Files {
	var out Files
	for _, f := range fs {
		var methods []*Method
		for _, m := range f.Methods {
			if m.Klass == klass {
				methods = append(methods, m)
			}
		}
		if len(methods) > 0 {
			out = append(out, FileMethods{File: f.File, Methods: methods})
		}
	}
	return out
}

// Methods returns every method in scan order.
func (fs Files) Methods() []*Method {
	var out []*Method
	for _, f := range fs {
		out = append(out, f.Methods...)
	}
	return out
}

// Group is the set of registrations that share one C function.
type Group []*Method

// Representative is the first method seen for the C function; it decides
// the calling convention and eligibility of the whole group.
func (g Group) Representative() *Method {
	return g[0]
}

// LiteralArgc returns the members whose calling convention is known.
func (g Group) LiteralArgc() Group {
	var out Group
	for _, m := range g {
		if m.LiteralArgc() {
			out = append(out, m)
		}
	}
	return out
}

// GroupByCName groups methods by implementing symbol keeping first-seen order
// for both the groups and their members.
func GroupByCName(methods []*Method) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, m := range methods {
		if i, ok := index[m.CName]; ok {
			groups[i] = append(groups[i], m)
			continue
		}
		index[m.CName] = len(groups)
		groups = append(groups, Group{m})
	}
	return groups
}

package intrinsics

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"
)

// DefaultClasses are the classes the compiler knows how to call intrinsics on.
var DefaultClasses = []string{
	"Array",
	"Complex",
	"Enumerable",
	"File",
	"Float",
	"Hash",
	"Integer",
	"NilClass",
	"Range",
	"String",
}

const (
	DefaultPrefix     = "sorbet_int_"
	DefaultGuard      = "SORBET_LLVM_IMPORTED_INTRINSICS_H"
	DefaultRegenerate = "cd compiler/IREmitter/Intrinsics && make"
)

// WrapConfig controls which groups are wrapped and how the output is named.
type WrapConfig struct {
	Classes []string
	// Prefix is prepended to the C function name to name its trampoline.
	Prefix     string
	Guard      string
	Regenerate string
	// AllowArityMismatch trusts the first registration's arity when methods
	// sharing a C function disagree, instead of failing.
	AllowArityMismatch bool
}

// Generator emits the binding table and trampolines for a set of groups.
type Generator struct {
	conf     *WrapConfig
	promoted map[string]bool
}

// NewGenerator returns a generator that treats the C functions in promoted as
// exported.
func NewGenerator(conf *WrapConfig, promoted map[string]bool) *Generator {
	if conf == nil {
		conf = &WrapConfig{}
	}
	if conf.Classes == nil {
		conf.Classes = DefaultClasses
	}
	if conf.Prefix == "" {
		conf.Prefix = DefaultPrefix
	}
	if conf.Guard == "" {
		conf.Guard = DefaultGuard
	}
	if conf.Regenerate == "" {
		conf.Regenerate = DefaultRegenerate
	}
	if promoted == nil {
		promoted = make(map[string]bool)
	}
	return &Generator{conf: conf, promoted: promoted}
}

// ShouldWrap reports whether the group gets a trampoline.
func (g *Generator) ShouldWrap(group Group) bool {
	m := group.Representative()
	return m.Visible(g.promoted) && slices.Contains(g.conf.Classes, m.Klass)
}

// Wrapped returns the groups that get a trampoline, validating each of them.
func (g *Generator) Wrapped(groups []Group) ([]Group, error) {
	var out []Group
	for _, group := range groups {
		// registrations without a literal arity stay in the report only
		group = group.LiteralArgc()
		if len(group) == 0 || !g.ShouldWrap(group) {
			continue
		}
		if err := g.validate(group); err != nil {
			return nil, err
		}
		out = append(out, group)
	}
	return out, nil
}

func (g *Generator) validate(group Group) error {
	m := group.Representative()
	if m.Argc < ArgcVariadic {
		return fmt.Errorf("%s (%s): %w %d", m.CName, m, ErrUnsupportedConvention, m.Argc)
	}
	if g.conf.AllowArityMismatch {
		return nil
	}
	for _, other := range group[1:] {
		if other.Argc != m.Argc {
			return fmt.Errorf("%s: %w: %s declares %d, %s declares %d",
				m.CName, ErrArityMismatch, m, m.Argc, other, other.Argc)
		}
	}
	return nil
}

// TrampolineName returns the symbol of the generated trampoline for cname.
func (g *Generator) TrampolineName(cname string) string {
	return g.conf.Prefix + cname
}

func (g *Generator) banner(w io.Writer) {
	fmt.Fprintf(w, "// This file is autogenerated. Do not edit it by hand. Regenerate it with:\n")
	fmt.Fprintf(w, "//   %s\n", g.conf.Regenerate)
}

// WriteHeader writes the binding table rows consumed by the compiler.
func (g *Generator) WriteHeader(w io.Writer, groups []Group) error {
	wrapped, err := g.Wrapped(groups)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	g.banner(&buf)
	for _, group := range wrapped {
		m := group.Representative()
		fmt.Fprintf(&buf, "    {core::Symbols::%s(), ", m.Klass)
		fmt.Fprintf(&buf, "\"%s\", ", m.RbName)
		fmt.Fprintf(&buf, "\"%s\", Intrinsics::HandleBlock::Unhandled},\n", g.TrampolineName(m.CName))
	}

	_, err = w.Write(buf.Bytes())
	return err
}

// WriteWrapper writes the C source defining one trampoline per wrapped group.
func (g *Generator) WriteWrapper(w io.Writer, groups []Group) error {
	wrapped, err := g.Wrapped(groups)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "#ifndef %s\n", g.conf.Guard)
	fmt.Fprintf(&buf, "#define %s\n\n", g.conf.Guard)
	g.banner(&buf)
	buf.WriteString("\n#include \"ruby.h\"\n\n")
	buf.WriteString("typedef VALUE (*BlockFFIType)(VALUE firstYieldedArg, VALUE closure, int argCount, VALUE *args, VALUE blockArg);\n\n")

	for _, group := range wrapped {
		buf.WriteString("\n")
		emitForwardDecl(&buf, group)
		buf.WriteString("\n")
		g.emitTrampoline(&buf, group.Representative())
	}

	fmt.Fprintf(&buf, "#endif /* %s */\n", g.conf.Guard)

	_, err = w.Write(buf.Bytes())
	return err
}

// emitForwardDecl documents every Ruby method bound to the C function and
// declares it with the signature its calling convention implies.
func emitForwardDecl(buf *bytes.Buffer, group Group) {
	for _, m := range group {
		fmt.Fprintf(buf, "// %s\n", m)
	}
	m := group.Representative()
	fmt.Fprintf(buf, "// Calling convention: %d\n", m.Argc)

	fmt.Fprintf(buf, "extern VALUE %s(", m.CName)
	switch m.Argc {
	case ArgcVariadic:
		buf.WriteString("int argc, const VALUE *args, VALUE obj")
	default:
		args := []string{"VALUE obj"}
		for i := range m.Argc {
			args = append(args, fmt.Sprintf("VALUE arg_%d", i))
		}
		buf.WriteString(strings.Join(args, ", "))
	}
	buf.WriteString(");\n")
}

// emitTrampoline writes the fixed signature entry point. Unlike the -1
// convention the receiver comes first and the method ID is passed explicitly.
func (g *Generator) emitTrampoline(buf *bytes.Buffer, m *Method) {
	fmt.Fprintf(buf, "VALUE %s(", g.TrampolineName(m.CName))
	buf.WriteString("VALUE recv, ")
	buf.WriteString("ID fun, ")
	buf.WriteString("int argc, ")
	buf.WriteString("VALUE *const restrict args, BlockFFIType blk, VALUE closure) {\n")

	switch m.Argc {
	case ArgcVariadic:
		fmt.Fprintf(buf, "    return %s(argc, args, recv);\n", m.CName)
	default:
		fmt.Fprintf(buf, "    rb_check_arity(argc, %d, %d);\n", m.Argc, m.Argc)
		args := []string{"recv"}
		for i := range m.Argc {
			args = append(args, fmt.Sprintf("arg_%d", i))
			fmt.Fprintf(buf, "    VALUE arg_%d = args[%d];\n", i, i)
		}
		fmt.Fprintf(buf, "    return %s(%s);\n", m.CName, strings.Join(args, ", "))
	}

	buf.WriteString("}\n")
}

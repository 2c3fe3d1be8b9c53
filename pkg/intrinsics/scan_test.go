package intrinsics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stringC = `#include "ruby/ruby.h"

static VALUE
rb_str_upcase(int argc, VALUE *argv, VALUE str)
{
    return str;
}

VALUE
rb_str_length(VALUE str)
{
    return INT2FIX(0);
}

void
Init_String(void)
{
    rb_cString  = rb_define_class("String", rb_cObject);
    rb_define_method(rb_cString, "upcase", rb_str_upcase, -1);
    rb_define_method(rb_cString, "length", rb_str_length, 0);
    rb_define_method(rb_cString, "size", rb_str_length, 0);
    rb_define_method(rb_cSymbol, "to_s", rb_sym_to_s, 0);
    rb_define_method(rb_cString, "bogus", rb_str_bogus, UNLIMITED);
}
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestScanReader(t *testing.T) {
	s := NewScanner(nil, map[string]bool{"rb_str_length": true})

	methods, err := s.ScanReader("string.c", strings.NewReader(stringC))
	require.NoError(t, err)
	require.Len(t, methods, 4)

	assert.Equal(t, &Method{Exported: false, File: "string.c", Klass: "String", RbName: "upcase", CName: "rb_str_upcase", Argc: -1}, methods[0])
	assert.Equal(t, &Method{Exported: true, File: "string.c", Klass: "String", RbName: "length", CName: "rb_str_length", Argc: 0}, methods[1])
	assert.Equal(t, "String#size", methods[2].String())
	assert.Equal(t, &Method{File: "string.c", Klass: "String", RbName: "bogus", CName: "rb_str_bogus", ArgcExpr: "UNLIMITED"}, methods[3])
	assert.False(t, methods[3].LiteralArgc())
}

func TestScanReaderClassShapes(t *testing.T) {
	src := strings.Join([]string{
		`    rb_cFoo = rb_define_class("Foo", rb_cObject);`,
		`    rb_mBar = rb_define_module("Bar");`,
		`    rb_cBaz = rb_define_class_under(rb_mBar, "Baz", rb_cObject);`,
		`    rb_mQux = rb_define_module_under(rb_mBar, "Qux");`,
		`    rb_define_method(rb_cFoo, "a", foo_a, 1);`,
		`    rb_define_method(rb_mBar, "b", bar_b, 2);`,
		`    rb_define_method(rb_cBaz, "c", baz_c, -1);`,
		`    rb_define_method(rb_mQux, "d", qux_d, 0);`,
		`    rb_cFoo = rb_define_class("Foo2", rb_cObject);`,
		`    rb_define_method(rb_cFoo, "e", foo_e, 0);`,
	}, "\n")

	methods, err := NewScanner(&ScanConfig{Seeds: map[string]string{}}, nil).ScanReader("x.c", strings.NewReader(src))
	require.NoError(t, err)

	var got []string
	for _, m := range methods {
		got = append(got, m.String())
	}
	assert.Equal(t, []string{"Foo#a", "Bar#b", "Baz#c", "Qux#d", "Foo2#e"}, got)
	assert.Equal(t, 2, methods[1].Argc)
	assert.Equal(t, ArgcVariadic, methods[2].Argc)
}

func TestScanReaderSeedsAreSeparatePerFile(t *testing.T) {
	s := NewScanner(nil, nil)

	_, err := s.ScanReader("a.c", strings.NewReader(`rb_cString = rb_define_class("Str", rb_cObject);`))
	require.NoError(t, err)

	methods, err := s.ScanReader("b.c", strings.NewReader(`rb_define_method(rb_cString, "upcase", rb_str_upcase, 0);`))
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "String", methods[0].Klass)
}

func TestScan(t *testing.T) {
	root := writeTree(t, map[string]string{
		"string.c":            stringC,
		"array.c":             "rb_define_method(rb_cArray, \"push\", rb_ary_push_m, -1);\n",
		"empty.c":             "int main(void) { return 0; }\n",
		"string.h":            stringC,
		"spec/ruby/string.c":  stringC,
		"ext/json/parser.c":   stringC,
		"gems/foo/ext/foo.c":  stringC,
		"enc/trans/newline.c": "rb_define_method(rb_cIO, \"nl\", io_nl, 0);\n",
	})

	s := NewScanner(nil, map[string]bool{"rb_ary_push_m": true})

	paths, err := s.SourceFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"array.c", "empty.c", "enc/trans/newline.c", "string.c"}, paths)

	files, err := s.Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "array.c", files[0].File)
	assert.Equal(t, "enc/trans/newline.c", files[1].File)
	assert.Equal(t, "string.c", files[2].File)

	methods, ok := files.Get("array.c")
	require.True(t, ok)
	assert.True(t, methods[0].Exported)

	assert.Len(t, files.Methods(), 6)
	assert.Len(t, files.Filter(DefaultPatchFiles), 2)
}

func TestParseArgc(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: " 0);", want: 0},
		{in: " -1);", want: -1},
		{in: "-2);", want: -2},
		{in: " 12); /* many */", want: 12},
		{in: " UNLIMITED_ARGUMENTS);", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseArgc(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestArgcExpr(t *testing.T) {
	assert.Equal(t, "UNLIMITED_ARGUMENTS", argcExpr(" UNLIMITED_ARGUMENTS); /* varargs */"))
	assert.Equal(t, "N", argcExpr("N)"))
}

func TestGroupByCName(t *testing.T) {
	methods := []*Method{
		{Klass: "String", RbName: "length", CName: "rb_str_length"},
		{Klass: "String", RbName: "upcase", CName: "rb_str_upcase"},
		{Klass: "String", RbName: "size", CName: "rb_str_length"},
	}
	groups := GroupByCName(methods)
	require.Len(t, groups, 2)
	assert.Equal(t, "rb_str_length", groups[0].Representative().CName)
	assert.Len(t, groups[0], 2)
	assert.Equal(t, "size", groups[0][1].RbName)
	assert.Equal(t, "rb_str_upcase", groups[1].Representative().CName)
}

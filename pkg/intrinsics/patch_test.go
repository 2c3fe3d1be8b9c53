package intrinsics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpose(t *testing.T) {
	src := strings.Join([]string{
		"static VALUE",
		"rb_str_upcase(int argc, VALUE *argv, VALUE str)",
		"{",
		"    return rb_str_upcase_bang(argc, argv, str);",
		"}",
		"static VALUE rb_str_downcase(VALUE str)",
		"static inline long",
		"rb_str_hash(VALUE str)",
		"static VALUE",
		"rb_str_upcase_bang(int argc, VALUE *argv, VALUE s)",
	}, "\n") + "\n"

	hidden := []*Method{
		{CName: "rb_str_upcase_bang"},
		{CName: "rb_str_upcase"},
		{CName: "rb_str_downcase"},
		{CName: "rb_str_hash"},
	}

	edits, promoted, err := Expose(strings.NewReader(src), hidden)
	require.NoError(t, err)

	assert.Equal(t, []Edit{
		{Orig: "static VALUE", Edited: "VALUE", Line: 1},
		{Orig: "static VALUE rb_str_downcase(VALUE str)", Edited: "VALUE rb_str_downcase(VALUE str)", Line: 6},
		{Orig: "static VALUE", Edited: "VALUE", Line: 9},
	}, edits)
	assert.Equal(t, []string{"rb_str_upcase", "rb_str_downcase", "rb_str_upcase_bang"}, promoted)

	for _, e := range edits {
		assert.NotEqual(t, e.Orig, e.Edited)
	}
}

func TestExposeMatchesOnce(t *testing.T) {
	src := "static VALUE\nrb_ary_push_m(int argc, VALUE *argv, VALUE ary)\n{}\nstatic VALUE\nrb_ary_push_m(int argc, VALUE *argv, VALUE ary);\n"
	edits, promoted, err := Expose(strings.NewReader(src), []*Method{{CName: "rb_ary_push_m"}})
	require.NoError(t, err)
	assert.Len(t, edits, 1)
	assert.Equal(t, []string{"rb_ary_push_m"}, promoted)
}

func TestExposeRetriesUnrecognizedShapes(t *testing.T) {
	src := strings.Join([]string{
		"/* rb_int_plus is defined below */",
		"static VALUE",
		"rb_int_plus(VALUE x, VALUE y)",
	}, "\n")
	edits, _, err := Expose(strings.NewReader(src), []*Method{{CName: "rb_int_plus"}})
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, 2, edits[0].Line)
}

func TestExposeFilesAndWriteDiff(t *testing.T) {
	root := writeTree(t, map[string]string{
		"string.c": stringC,
		"array.c":  "VALUE\nrb_ary_push_m(VALUE ary)\n{}\n",
	})
	files := Files{
		{File: "array.c", Methods: []*Method{{File: "array.c", CName: "rb_ary_push_m"}}},
		{File: "string.c", Methods: []*Method{
			{File: "string.c", CName: "rb_str_upcase"},
			{File: "string.c", CName: "rb_str_length", Exported: true},
		}},
	}

	vis, err := ExposeFiles(root, files)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"rb_str_upcase": true}, vis.Promoted)
	require.Len(t, vis.Patches, 1)

	var buf bytes.Buffer
	require.NoError(t, WriteDiff(&buf, vis.Patches))
	assert.Equal(t, "--- string.c\n+++ string.c\n@@ -3 +3 @@\n-static VALUE\n+VALUE\n", buf.String())

	var unified bytes.Buffer
	require.NoError(t, WriteUnifiedDiff(&unified, root, vis.Patches))
	assert.Contains(t, unified.String(), "--- a/string.c\n+++ b/string.c\n")
	assert.Contains(t, unified.String(), "-static VALUE\n+VALUE\n rb_str_upcase(")
}

func TestApplyEdits(t *testing.T) {
	src := "static VALUE\r\nfoo(void)\r\n"
	got, err := ApplyEdits(src, []Edit{{Orig: "static VALUE", Edited: "VALUE", Line: 1}})
	require.NoError(t, err)
	assert.Equal(t, "VALUE\r\nfoo(void)\r\n", got)

	_, err = ApplyEdits(src, []Edit{{Orig: "static int", Edited: "int", Line: 1}})
	assert.Error(t, err)

	_, err = ApplyEdits(src, []Edit{{Orig: "x", Edited: "y", Line: 42}})
	assert.Error(t, err)
}

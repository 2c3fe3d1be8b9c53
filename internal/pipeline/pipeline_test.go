package pipeline_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/blacktop/intrinsics/internal/config"
	"github.com/blacktop/intrinsics/internal/pipeline"
	"github.com/blacktop/intrinsics/internal/pipeline/context"
	"github.com/blacktop/intrinsics/internal/pipeline/pipe/artifact"
	"github.com/blacktop/intrinsics/pkg/intrinsics"
	"github.com/blacktop/intrinsics/pkg/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stringC = `#include "ruby/ruby.h"

static VALUE
rb_str_upcase(VALUE str)
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
    rb_cString = rb_define_class("String", rb_cObject);
    rb_define_method(rb_cString, "upcase", rb_str_upcase, 0);
    rb_define_method(rb_cString, "length", rb_str_length, 0);
    rb_define_method(rb_cString, "size", rb_str_length, 0);
}
`

const threadC = `void
Init_Thread(void)
{
    rb_define_method(rb_cThread, "join", thread_join_m, -1);
}
`

type fixture struct {
	ruby   string
	source string
	output string
	nm     string
}

// newFixture lays out a ruby source tree, a stand-in binary and an nm
// replacement printing the given symbols.
func newFixture(t *testing.T, sources map[string]string, exported ...string) fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	dir := t.TempDir()
	f := fixture{
		ruby:   filepath.Join(dir, "ruby"),
		source: filepath.Join(dir, "src"),
		output: filepath.Join(dir, "out"),
		nm:     filepath.Join(dir, "nm"),
	}
	for name, content := range sources {
		path := filepath.Join(f.source, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	require.NoError(t, os.WriteFile(f.ruby, []byte("\x7fELF"), 0o755))

	var script strings.Builder
	script.WriteString("#!/bin/sh\ncat <<'EOF'\n")
	script.WriteString("                 U _abort\n")
	for _, sym := range exported {
		script.WriteString("0000000100001000 T _" + sym + "\n")
	}
	script.WriteString("EOF\n")
	require.NoError(t, os.WriteFile(f.nm, []byte(script.String()), 0o755))
	return f
}

func (f fixture) config(t *testing.T) config.Config {
	t.Helper()
	c := config.Config{
		Ruby:       f.ruby,
		RubySource: f.source,
		Output:     f.output,
		Symbols:    config.Symbols{NM: f.nm, StripPrefix: symbols.MachOPrefix},
	}
	require.NoError(t, c.Verify())
	return c
}

func readOutput(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		dat, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		out[e.Name()] = string(dat)
	}
	return out
}

func TestPipelineExposesAndWrapsStaticMethod(t *testing.T) {
	f := newFixture(t, map[string]string{
		"string.c": stringC,
		"thread.c": threadC,
	}, "rb_str_length", "thread_join_m")

	ctx := context.New(f.config(t))
	require.NoError(t, pipeline.Run(ctx))

	out := readOutput(t, f.output)
	require.Len(t, out, 4)

	assert.Contains(t, out["intrinsic-report.md"], "* [ ] `rb_str_upcase` (`String#upcase`)\n")
	assert.Contains(t, out["intrinsic-report.md"], "* [x] `rb_str_length` (`String#length`)\n")
	assert.Contains(t, out["intrinsic-report.md"], "* Total:   4\n* Visible: 3\n")

	assert.Equal(t, "--- string.c\n+++ string.c\n@@ -3 +3 @@\n-static VALUE\n+VALUE\n", out["export-intrinsics.patch"])

	header := out["WrappedIntrinsics.h"]
	assert.Contains(t, header, `{core::Symbols::String(), "upcase", "sorbet_int_rb_str_upcase", Intrinsics::HandleBlock::Unhandled},`)
	assert.Contains(t, header, `{core::Symbols::String(), "length", "sorbet_int_rb_str_length", Intrinsics::HandleBlock::Unhandled},`)
	assert.Equal(t, 1, strings.Count(header, "rb_str_length"), "aliases share one row")
	assert.NotContains(t, header, "thread_join_m", "Thread is not an allowed class")

	wrapper := out["PayloadIntrinsics.c"]
	assert.Contains(t, wrapper, "// String#length\n// String#size\n// Calling convention: 0\n")
	assert.Contains(t, wrapper, "    rb_check_arity(argc, 0, 0);\n    return rb_str_upcase(recv);\n")

	assert.True(t, ctx.Promoted()["rb_str_upcase"])
	assert.Len(t, ctx.Groups, 2)
}

func TestPipelineIsIdempotent(t *testing.T) {
	f := newFixture(t, map[string]string{"string.c": stringC}, "rb_str_length")

	require.NoError(t, pipeline.Run(context.New(f.config(t))))
	first := readOutput(t, f.output)

	require.NoError(t, pipeline.Run(context.New(f.config(t))))
	assert.Equal(t, first, readOutput(t, f.output))
}

func TestPipelineUnsupportedConventionWritesNothing(t *testing.T) {
	f := newFixture(t, map[string]string{
		"string.c": stringC,
		"hash.c": "rb_cHash = rb_define_class(\"Hash\", rb_cObject);\n" +
			"rb_define_method(rb_cHash, \"select\", rb_hash_select, -2);\n",
	}, "rb_str_length", "rb_hash_select")

	err := pipeline.Run(context.New(f.config(t)))
	require.ErrorIs(t, err, intrinsics.ErrUnsupportedConvention)

	_, err = os.Stat(f.output)
	assert.True(t, os.IsNotExist(err), "no artifact may be written")
}

func TestPipelineMissingBinary(t *testing.T) {
	f := newFixture(t, map[string]string{"string.c": stringC})
	c := f.config(t)
	c.Ruby = filepath.Join(t.TempDir(), "missing")

	err := pipeline.Run(context.New(c))
	require.ErrorIs(t, err, symbols.ErrMissingBinary)
	_, err = os.Stat(f.output)
	assert.True(t, os.IsNotExist(err))
}

func TestPipelineCheck(t *testing.T) {
	f := newFixture(t, map[string]string{"string.c": stringC}, "rb_str_length")
	require.NoError(t, pipeline.Run(context.New(f.config(t))))

	ctx := context.New(f.config(t))
	ctx.Check = true
	ctx.DiffTool = "go"
	require.NoError(t, pipeline.Run(ctx))
	assert.Empty(t, ctx.Stale)

	header := filepath.Join(f.output, "WrappedIntrinsics.h")
	require.NoError(t, os.WriteFile(header, []byte("stale\n"), 0o644))

	ctx = context.New(f.config(t))
	ctx.Check = true
	ctx.DiffTool = "go"
	err := pipeline.Run(ctx)
	require.ErrorIs(t, err, artifact.ErrStale)
	assert.Equal(t, []string{"WrappedIntrinsics.h"}, ctx.Stale)

	dat, err := os.ReadFile(header)
	require.NoError(t, err)
	assert.Equal(t, "stale\n", string(dat), "check mode must not write")
}

func TestPipelineUnifiedPatch(t *testing.T) {
	f := newFixture(t, map[string]string{"string.c": stringC}, "rb_str_length")
	c := f.config(t)
	c.Patch.Format = config.PatchFormatUnified

	require.NoError(t, pipeline.Run(context.New(c)))
	patch := readOutput(t, f.output)["export-intrinsics.patch"]
	assert.Contains(t, patch, "--- a/string.c\n+++ b/string.c\n")
	assert.Contains(t, patch, "-static VALUE\n+VALUE\n rb_str_upcase(VALUE str)\n")
}

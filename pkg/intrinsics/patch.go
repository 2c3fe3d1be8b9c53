package intrinsics

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aymanbagabas/go-udiff"
)

const (
	staticQualifier = "static "
	staticValue     = "static VALUE"
)

// DefaultPatchFiles are the sources the visibility patch is allowed to touch.
var DefaultPatchFiles = []string{"string.c", "array.c", "numeric.c"}

// Hidden returns the methods whose C function is not exported.
func Hidden(methods []*Method) []*Method {
	var hidden []*Method
	for _, m := range methods {
		if !m.Exported {
			hidden = append(hidden, m)
		}
	}
	return hidden
}

// Expose finds the declarations of the hidden methods in r and returns the
// edits that drop their static qualifier, along with the C functions those
// edits make visible. Each method is matched at most once.
func Expose(r io.Reader, hidden []*Method) ([]Edit, []string, error) {
	var (
		edits    []Edit
		promoted []string
		previous string
	)

	matchers := make([]*regexp.Regexp, len(hidden))
	for i, m := range hidden {
		matchers[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(m.CName) + `\b`)
	}
	done := make([]bool, len(hidden))

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for idx := 1; scanner.Scan(); idx++ {
		line := scanner.Text()
		for i, m := range hidden {
			if done[i] || !matchers[i].MatchString(line) {
				continue
			}
			if edit, ok := generateEdit(previous, line, idx); ok {
				edits = append(edits, edit)
				promoted = append(promoted, m.CName)
				done[i] = true
				break
			}
		}
		previous = line
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	return edits, promoted, nil
}

// generateEdit recognizes two declaration shapes:
//
//	static VALUE
//	rb_str_upcase(int argc, VALUE *argv, VALUE str)
//
// and
//
//	static VALUE rb_str_upcase(int argc, VALUE *argv, VALUE str)
func generateEdit(previous, line string, idx int) (Edit, bool) {
	if previous == staticValue {
		return Edit{
			Orig:   previous,
			Edited: strings.Replace(previous, staticQualifier, "", 1),
			Line:   idx - 1,
		}, true
	}
	if strings.Contains(line, staticValue) {
		return Edit{
			Orig:   line,
			Edited: strings.Replace(line, staticQualifier, "", 1),
			Line:   idx,
		}, true
	}
	return Edit{}, false
}

// Patch is the set of edits for one source file.
type Patch struct {
	File  string
	Edits []Edit
}

// Visibility is the outcome of exposing the hidden methods of a source tree.
type Visibility struct {
	Patches  []Patch
	Promoted map[string]bool
}

// ExposeFiles runs Expose over every file in files, reading sources from root.
func ExposeFiles(root string, files Files) (*Visibility, error) {
	vis := &Visibility{Promoted: make(map[string]bool)}
	for _, f := range files {
		hidden := Hidden(f.Methods)
		if len(hidden) == 0 {
			continue
		}
		edits, promoted, err := exposeFile(filepath.Join(root, filepath.FromSlash(f.File)), hidden)
		if err != nil {
			return nil, fmt.Errorf("failed to expose methods in %s: %w", f.File, err)
		}
		for _, sym := range promoted {
			vis.Promoted[sym] = true
		}
		if len(edits) > 0 {
			vis.Patches = append(vis.Patches, Patch{File: f.File, Edits: edits})
		}
	}
	return vis, nil
}

func exposeFile(path string, hidden []*Method) ([]Edit, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Expose(f, hidden)
}

// WriteDiff writes the patches as minimal single line chunks.
func WriteDiff(w io.Writer, patches []Patch) error {
	bw := bufio.NewWriter(w)
	for _, p := range patches {
		fmt.Fprintf(bw, "--- %s\n", p.File)
		fmt.Fprintf(bw, "+++ %s\n", p.File)
		for _, e := range p.Edits {
			fmt.Fprintf(bw, "@@ -%d +%d @@\n", e.Line, e.Line)
			fmt.Fprintf(bw, "-%s\n", e.Orig)
			fmt.Fprintf(bw, "+%s\n", e.Edited)
		}
	}
	return bw.Flush()
}

// WriteUnifiedDiff writes the patches as a git applicable unified diff with
// context, reading the original sources from root.
func WriteUnifiedDiff(w io.Writer, root string, patches []Patch) error {
	for _, p := range patches {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(p.File)))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p.File, err)
		}
		orig := string(data)
		patched, err := ApplyEdits(orig, p.Edits)
		if err != nil {
			return fmt.Errorf("failed to apply edits to %s: %w", p.File, err)
		}
		if _, err := io.WriteString(w, udiff.Unified("a/"+p.File, "b/"+p.File, orig, patched)); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEdits returns src with every edit applied. It fails if an edit does not
// match the line it targets.
func ApplyEdits(src string, edits []Edit) (string, error) {
	lines := strings.SplitAfter(src, "\n")
	for _, e := range edits {
		if e.Line < 1 || e.Line > len(lines) {
			return "", fmt.Errorf("line %d out of range", e.Line)
		}
		body, eol := splitEOL(lines[e.Line-1])
		if body != e.Orig {
			return "", fmt.Errorf("line %d: expected %q, found %q", e.Line, e.Orig, body)
		}
		lines[e.Line-1] = e.Edited + eol
	}
	return strings.Join(lines, ""), nil
}

func splitEOL(line string) (string, string) {
	if body, ok := strings.CutSuffix(line, "\r\n"); ok {
		return body, "\r\n"
	}
	if body, ok := strings.CutSuffix(line, "\n"); ok {
		return body, "\n"
	}
	return line, ""
}

package utils

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/go-git/go-git/v5"
	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/term"
)

type GitDiffConfig struct {
	Tool  string
	Color bool
}

var hunkHeader = regexp.MustCompile("(?m)^@@ .*$")

// GitDiff renders the difference between two versions of a file with the
// configured tool (delta, git or go), falling back to whatever is installed.
func GitDiff(src, dst string, conf *GitDiffConfig) (string, error) {
	switch conf.Tool {
	case "delta":
		return createDeltaDiffPatch(src, dst)
	case "git":
		return createGitDiffPatch(src, dst, conf)
	case "go", "":
		if conf.Tool == "" {
			if _, err := exec.LookPath("delta"); err == nil && conf.Color {
				return createDeltaDiffPatch(src, dst)
			} else if _, err := exec.LookPath("git"); err == nil {
				return createGitDiffPatch(src, dst, conf)
			}
		}
		return createGoDiff(src, dst), nil
	default:
		return "", fmt.Errorf("unknown diff tool %q (expected delta, git or go)", conf.Tool)
	}
}

func createGoDiff(src, dst string) string {
	dmp := diffmatchpatch.New()

	a, b, lines := dmp.DiffLinesToChars(src, dst)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)
	if len(diffs) > 2 {
		diffs = dmp.DiffCleanupSemanticLossless(diffs)
	}

	if len(diffs) == 0 || (len(diffs) == 1 && diffs[0].Type == diffmatchpatch.DiffEqual) {
		return ""
	}

	return dmp.DiffPrettyText(diffs)
}

func writeTemps(src, dst string) (string, string, func(), error) {
	tmpSrc, err := os.CreateTemp("", "src")
	if err != nil {
		return "", "", nil, err
	}
	tmpDst, err := os.CreateTemp("", "dst")
	if err != nil {
		tmpSrc.Close()
		os.Remove(tmpSrc.Name())
		return "", "", nil, err
	}
	cleanup := func() {
		os.Remove(tmpSrc.Name())
		os.Remove(tmpDst.Name())
	}
	_, err1 := tmpSrc.WriteString(src)
	_, err2 := tmpDst.WriteString(dst)
	if err := errors.Join(err1, err2, tmpSrc.Close(), tmpDst.Close()); err != nil {
		cleanup()
		return "", "", nil, err
	}
	return tmpSrc.Name(), tmpDst.Name(), cleanup, nil
}

func createGitDiffPatch(src, dst string, conf *GitDiffConfig) (string, error) {
	srcPath, dstPath, cleanup, err := writeTemps(src, dst)
	if err != nil {
		return "", err
	}
	defer cleanup()

	// git diff exits 1 when the files differ
	dat, _ := exec.Command("git", "diff", "--no-index", srcPath, dstPath).CombinedOutput()

	out := string(dat)
	// strip the diff/index/---/+++ header lines
	for range 4 {
		_, out, _ = strings.Cut(out, "\n")
	}
	out = hunkHeader.ReplaceAllString(out, "")
	if conf.Color {
		return Highlight(out, "diff")
	}
	return out, nil
}

// Highlight colorizes src for a 256 color terminal.
func Highlight(src, lexer string) (string, error) {
	b := new(strings.Builder)
	if err := quick.Highlight(b, src, lexer, "terminal256", "nord"); err != nil {
		return "", err
	}
	return b.String(), nil
}

func createDeltaDiffPatch(src, dst string) (string, error) {
	srcPath, dstPath, cleanup, err := writeTemps(src, dst)
	if err != nil {
		return "", err
	}
	defer cleanup()

	width := 120
	if term.IsTerminal(0) {
		twidth, _, err := term.GetSize(0)
		if err != nil {
			return "", err
		}
		width = twidth
	}

	out, _ := exec.Command(
		"delta",
		"--dark",
		"--side-by-side",
		"--file-style", "omit",
		"--hunk-header-style", "omit",
		"--syntax-theme", "Nord",
		"--width", strconv.Itoa(width),
		srcPath,
		dstPath,
	).CombinedOutput()

	return string(out), nil
}

// SourceRevision returns the HEAD commit of the git checkout containing dir.
func SourceRevision(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	return head.Hash().String(), nil
}

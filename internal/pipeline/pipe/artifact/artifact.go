// Package artifact writes the rendered artifacts to the output directory,
// or compares them with it in check mode.
package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/blacktop/intrinsics/internal/colors"
	"github.com/blacktop/intrinsics/internal/pipeline/context"
	"github.com/blacktop/intrinsics/internal/utils"
	"github.com/dustin/go-humanize"
)

// ErrStale is returned in check mode when an artifact on disk differs from
// the freshly generated one.
var ErrStale = errors.New("artifacts are out of date")

// Pipe for the artifacts.
type Pipe struct{}

func (Pipe) String() string                 { return "writing artifacts" }
func (Pipe) Skip(ctx *context.Context) bool { return len(ctx.Artifacts) == 0 }

// Run writes every artifact, each through a temp file renamed into place.
func (Pipe) Run(ctx *context.Context) error {
	if ctx.Check {
		return check(ctx)
	}
	if err := os.MkdirAll(ctx.Config.Output, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, a := range ctx.Artifacts {
		path := filepath.Join(ctx.Config.Output, a.Name)
		if err := utils.WriteFileAtomic(path, a.Content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.WithFields(log.Fields{
			"file": path,
			"size": humanize.Bytes(uint64(len(a.Content))),
		}).Info("wrote")
	}
	return nil
}

func check(ctx *context.Context) error {
	ctx.Stale = nil
	for _, a := range ctx.Artifacts {
		path := filepath.Join(ctx.Config.Output, a.Name)
		current, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if bytes.Equal(current, a.Content) {
			log.WithField("file", path).Debug("up to date")
			continue
		}
		ctx.Stale = append(ctx.Stale, a.Name)
		log.WithField("file", colors.File().Sprint(path)).Warn("out of date")

		out, err := utils.GitDiff(string(current), string(a.Content), &utils.GitDiffConfig{
			Tool:  ctx.DiffTool,
			Color: colors.Enabled(),
		})
		if err != nil {
			return fmt.Errorf("failed to diff %s: %w", path, err)
		}
		if out != "" {
			fmt.Println(out)
		}
	}
	if len(ctx.Stale) > 0 {
		return fmt.Errorf("%w: %s", ErrStale, strings.Join(ctx.Stale, ", "))
	}
	log.Info("all artifacts are up to date")
	return nil
}

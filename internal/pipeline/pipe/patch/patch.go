// Package patch renders the patch removing static from hidden methods.
package patch

import (
	"bytes"
	"strings"

	"github.com/apex/log"
	"github.com/blacktop/intrinsics/internal/config"
	"github.com/blacktop/intrinsics/internal/pipeline/context"
	"github.com/blacktop/intrinsics/internal/pipeline/pipe"
	"github.com/blacktop/intrinsics/pkg/intrinsics"
)

// Pipe for the visibility patch.
type Pipe struct{}

func (Pipe) String() string { return "exposing hidden methods" }

// Run computes the edits for the allow-listed files and records the symbols
// they promote.
func (Pipe) Run(ctx *context.Context) error {
	files := ctx.Files.Filter(ctx.Config.Patch.Files)

	vis, err := intrinsics.ExposeFiles(ctx.Config.RubySource, files)
	if err != nil {
		return err
	}
	ctx.Visibility = vis

	var buf bytes.Buffer
	switch ctx.Config.Patch.Format {
	case config.PatchFormatUnified:
		err = intrinsics.WriteUnifiedDiff(&buf, ctx.Config.RubySource, vis.Patches)
	default:
		err = intrinsics.WriteDiff(&buf, vis.Patches)
	}
	if err != nil {
		return err
	}
	ctx.Artifacts.Add(ctx.Config.Artifacts.Patch, buf.Bytes())

	if len(vis.Patches) == 0 {
		return pipe.Skipf("no hidden methods to expose in %s", strings.Join(ctx.Config.Patch.Files, ", "))
	}
	for _, p := range vis.Patches {
		log.WithFields(log.Fields{
			"file":  p.File,
			"edits": len(p.Edits),
		}).Info("exposed methods")
	}
	log.WithField("count", len(vis.Promoted)).Debug("promoted symbols")
	return nil
}

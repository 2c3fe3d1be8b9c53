// Package scan finds the native method registrations in the ruby sources.
package scan

import (
	"fmt"

	"github.com/apex/log"
	"github.com/blacktop/intrinsics/internal/pipeline/context"
	"github.com/blacktop/intrinsics/internal/utils"
	"github.com/blacktop/intrinsics/pkg/intrinsics"
)

// Pipe for scanning sources.
type Pipe struct{}

func (Pipe) String() string { return "scanning ruby sources" }

// Run walks the source tree and records every registered method.
func (Pipe) Run(ctx *context.Context) error {
	root := ctx.Config.RubySource
	if root == "" {
		return fmt.Errorf("no ruby source directory configured")
	}

	if rev, err := utils.SourceRevision(root); err != nil {
		log.WithError(err).Debug("could not read source revision")
	} else {
		ctx.Revision = rev
		log.WithField("revision", rev).Info("ruby source")
	}

	files, err := intrinsics.NewScanner(ctx.Config.ScanConfig(), ctx.Exported).Scan(root)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", root, err)
	}
	ctx.Files = files

	stats := files.Count()
	log.WithFields(log.Fields{
		"files":    len(files),
		"methods":  stats.Total,
		"exported": stats.Visible,
	}).Info("found method registrations")
	return nil
}

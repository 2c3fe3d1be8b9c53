// Package pipeline provides the steps of intrinsics wrap.
package pipeline

import (
	"fmt"

	"github.com/blacktop/intrinsics/internal/pipeline/context"
	"github.com/blacktop/intrinsics/internal/pipeline/middleware/errhandler"
	"github.com/blacktop/intrinsics/internal/pipeline/middleware/logging"
	"github.com/blacktop/intrinsics/internal/pipeline/middleware/skip"
	"github.com/blacktop/intrinsics/internal/pipeline/pipe/artifact"
	"github.com/blacktop/intrinsics/internal/pipeline/pipe/exports"
	"github.com/blacktop/intrinsics/internal/pipeline/pipe/patch"
	"github.com/blacktop/intrinsics/internal/pipeline/pipe/report"
	"github.com/blacktop/intrinsics/internal/pipeline/pipe/scan"
	"github.com/blacktop/intrinsics/internal/pipeline/pipe/wrap"
)

// Piper defines a step, which can be part of a pipeline (a series of steps).
type Piper interface {
	fmt.Stringer

	// Run the step
	Run(ctx *context.Context) error
}

// Pipeline contains all steps in order. Only the last one touches the
// output directory.
var Pipeline = []Piper{
	exports.Pipe{},
	scan.Pipe{},
	report.Pipe{},
	patch.Pipe{},
	wrap.Pipe{},
	artifact.Pipe{},
}

// Run executes every step, stopping at the first error or cancellation.
func Run(ctx *context.Context) error {
	for _, step := range Pipeline {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := skip.Maybe(
			step,
			logging.Log(
				step.String(),
				errhandler.Handle(step.Run),
			),
		)(ctx); err != nil {
			return err
		}
	}
	return nil
}

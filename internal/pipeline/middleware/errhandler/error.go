// Package errhandler downgrades skipped steps to warnings.
package errhandler

import (
	"github.com/apex/log"
	"github.com/blacktop/intrinsics/internal/pipeline/context"
	"github.com/blacktop/intrinsics/internal/pipeline/middleware"
	"github.com/blacktop/intrinsics/internal/pipeline/pipe"
)

// Handle handles an action error, ignoring and logging skipped steps.
func Handle(action middleware.Action) middleware.Action {
	return func(ctx *context.Context) error {
		err := action(ctx)
		if err == nil {
			return nil
		}
		if pipe.IsSkip(err) {
			log.WithField("reason", err.Error()).Warn("step skipped")
			return nil
		}
		return err
	}
}

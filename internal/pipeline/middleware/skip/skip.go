// Package skip can skip an entire pipeline step.
package skip

import (
	"fmt"

	"github.com/apex/log"
	"github.com/blacktop/intrinsics/internal/pipeline/context"
	"github.com/blacktop/intrinsics/internal/pipeline/middleware"
)

// Skipper defines a method to skip an entire step.
type Skipper interface {
	// Skip returns true if the step should be skipped.
	Skip(ctx *context.Context) bool
	fmt.Stringer
}

// Maybe returns an action that skips immediately if the given step is a
// Skipper and its Skip method returns true.
func Maybe(step any, next middleware.Action) middleware.Action {
	if skipper, ok := step.(Skipper); ok {
		return func(ctx *context.Context) error {
			if skipper.Skip(ctx) {
				log.Debugf("skipped %s", skipper.String())
				return nil
			}
			return next(ctx)
		}
	}
	return next
}

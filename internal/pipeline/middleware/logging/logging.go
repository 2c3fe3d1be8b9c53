// Package logging prints the title of each pipeline step and indents
// whatever the step logs.
package logging

import (
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/blacktop/intrinsics/internal/colors"
	"github.com/blacktop/intrinsics/internal/pipeline/context"
	"github.com/blacktop/intrinsics/internal/pipeline/middleware"
)

// Padding values for the cli handler.
const (
	DefaultInitialPadding = 3
	ExtraPadding          = DefaultInitialPadding * 2
)

// Log pretty prints the given action and its title.
func Log(title string, next middleware.Action) middleware.Action {
	return func(ctx *context.Context) error {
		defer func() {
			cli.Default.Padding = DefaultInitialPadding
		}()
		cli.Default.Padding = DefaultInitialPadding
		log.Info(colors.Bold().Sprint(title))
		cli.Default.Padding = ExtraPadding
		return next(ctx)
	}
}

// Package exports collects the symbols the ruby binary already exports.
package exports

import (
	"fmt"

	"github.com/apex/log"
	"github.com/blacktop/intrinsics/internal/pipeline/context"
	"github.com/blacktop/intrinsics/pkg/symbols"
)

// Pipe for exported symbols.
type Pipe struct{}

func (Pipe) String() string { return "collecting exported symbols" }

// Run reads the symbol table of the configured ruby binary.
func (Pipe) Run(ctx *context.Context) error {
	if ctx.Config.Ruby == "" {
		return fmt.Errorf("%w: no ruby binary configured", symbols.ErrMissingBinary)
	}
	exported, err := symbols.Exported(ctx.Config.Ruby, ctx.Config.SymbolsConfig())
	if err != nil {
		return err
	}
	ctx.Exported = exported
	log.WithFields(log.Fields{
		"binary":  ctx.Config.Ruby,
		"backend": ctx.Config.Symbols.Backend,
		"count":   len(exported),
	}).Info("read symbol table")
	return nil
}

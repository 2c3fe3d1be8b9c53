// Package wrap renders the binding table and the trampolines.
package wrap

import (
	"bytes"

	"github.com/apex/log"
	"github.com/blacktop/intrinsics/internal/pipeline/context"
	"github.com/blacktop/intrinsics/pkg/intrinsics"
)

// Pipe for the wrappers.
type Pipe struct{}

func (Pipe) String() string { return "generating wrappers" }

// Run groups the methods by C function and renders both wrapper artifacts.
// Nothing is recorded unless both render.
func (Pipe) Run(ctx *context.Context) error {
	g := intrinsics.NewGenerator(ctx.Config.WrapConfig(), ctx.Promoted())
	groups := intrinsics.GroupByCName(ctx.Files.Methods())

	wrapped, err := g.Wrapped(groups)
	if err != nil {
		return err
	}

	var header, wrapper bytes.Buffer
	if err := g.WriteHeader(&header, wrapped); err != nil {
		return err
	}
	if err := g.WriteWrapper(&wrapper, wrapped); err != nil {
		return err
	}
	ctx.Groups = wrapped
	ctx.Artifacts.Add(ctx.Config.Artifacts.Header, header.Bytes())
	ctx.Artifacts.Add(ctx.Config.Artifacts.Wrapper, wrapper.Bytes())

	for _, group := range wrapped {
		m := group.Representative()
		log.WithFields(log.Fields{
			"method": m.String(),
			"argc":   m.Argc,
			"sym":    g.TrampolineName(m.CName),
		}).Debug("wrapped")
	}
	log.WithFields(log.Fields{
		"groups":  len(groups),
		"wrapped": len(wrapped),
	}).Info("generated trampolines")
	return nil
}

// Package context provides the intrinsics context which is passed through
// the pipeline.
//
// The context extends the standard library context and adds the state the
// pipes hand to each other, so each step can use data gathered by previous
// steps without knowing about them.
package context

import (
	stdctx "context"
	"time"

	"github.com/blacktop/intrinsics/internal/config"
	"github.com/blacktop/intrinsics/pkg/intrinsics"
	"github.com/blacktop/intrinsics/pkg/symbols"
)

// Artifact is a rendered output file waiting to be written.
type Artifact struct {
	Name    string
	Content []byte
}

// Artifacts are kept in the order they were rendered.
type Artifacts []*Artifact

// Add records rendered content under the given file name.
func (as *Artifacts) Add(name string, content []byte) {
	*as = append(*as, &Artifact{Name: name, Content: content})
}

// Context carries along some data through the pipes.
type Context struct {
	stdctx.Context
	Config config.Config
	Date   time.Time

	// Check renders artifacts and compares them with the output directory
	// instead of writing them.
	Check    bool
	DiffTool string
	Stale    []string

	Revision   string
	Exported   symbols.Set
	Files      intrinsics.Files
	Visibility *intrinsics.Visibility
	Groups     []intrinsics.Group
	Artifacts  Artifacts
}

// New context.
func New(config config.Config) *Context {
	return Wrap(stdctx.Background(), config)
}

// NewWithTimeout new context with the given timeout.
func NewWithTimeout(config config.Config, timeout time.Duration) (*Context, stdctx.CancelFunc) {
	if timeout <= 0 {
		ctx, cancel := stdctx.WithCancel(stdctx.Background())
		return Wrap(ctx, config), cancel
	}
	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), timeout)
	return Wrap(ctx, config), cancel
}

// Wrap wraps an existing context.
func Wrap(ctx stdctx.Context, config config.Config) *Context {
	return &Context{
		Context:  ctx,
		Config:   config,
		Exported: symbols.Set{},
		Date:     time.Now(),
	}
}

// Promoted returns the symbols the visibility patch makes exported.
func (ctx *Context) Promoted() map[string]bool {
	if ctx.Visibility == nil {
		return nil
	}
	return ctx.Visibility.Promoted
}

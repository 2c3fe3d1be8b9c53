package middleware_test

import (
	"errors"
	"testing"

	"github.com/apex/log/handlers/cli"
	"github.com/blacktop/intrinsics/internal/config"
	"github.com/blacktop/intrinsics/internal/pipeline/context"
	"github.com/blacktop/intrinsics/internal/pipeline/middleware/errhandler"
	"github.com/blacktop/intrinsics/internal/pipeline/middleware/logging"
	"github.com/blacktop/intrinsics/internal/pipeline/middleware/skip"
	"github.com/blacktop/intrinsics/internal/pipeline/pipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	skip bool
	err  error
	ran  bool
}

func (s *step) String() string                 { return "step" }
func (s *step) Skip(ctx *context.Context) bool { return s.skip }
func (s *step) Run(ctx *context.Context) error {
	s.ran = true
	return s.err
}

func TestErrHandler(t *testing.T) {
	ctx := context.New(config.Default())

	require.NoError(t, errhandler.Handle((&step{err: pipe.Skip("nothing to do")}).Run)(ctx))

	boom := errors.New("boom")
	assert.ErrorIs(t, errhandler.Handle((&step{err: boom}).Run)(ctx), boom)
}

func TestSkipMaybe(t *testing.T) {
	ctx := context.New(config.Default())

	s := &step{skip: true}
	require.NoError(t, skip.Maybe(s, s.Run)(ctx))
	assert.False(t, s.ran)

	s = &step{}
	require.NoError(t, skip.Maybe(s, s.Run)(ctx))
	assert.True(t, s.ran)
}

func TestLoggingRestoresPadding(t *testing.T) {
	ctx := context.New(config.Default())
	var padding int
	err := logging.Log("step", func(ctx *context.Context) error {
		padding = cli.Default.Padding
		return nil
	})(ctx)
	require.NoError(t, err)
	assert.Equal(t, logging.ExtraPadding, padding)
	assert.Equal(t, logging.DefaultInitialPadding, cli.Default.Padding)
}

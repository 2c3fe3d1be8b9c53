// Package middleware define middlewares for pipeline steps.
package middleware

import "github.com/blacktop/intrinsics/internal/pipeline/context"

// Action is a function that takes a context and returns an error.
// Every pipeline step's Run is an Action, decorated by the middlewares
// below it.
type Action func(ctx *context.Context) error

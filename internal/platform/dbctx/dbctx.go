// Package dbctx threads a request context and an optional open transaction
// through repository calls.
package dbctx

import (
	"context"

	"gorm.io/gorm"
)

type Context struct {
	Ctx context.Context
	// Tx, when set, is used instead of the repository's own handle.
	Tx *gorm.DB
}

// With keeps the transaction and swaps the context.
func (c Context) With(ctx context.Context) Context {
	return Context{Ctx: ctx, Tx: c.Tx}
}

// DB resolves the handle a repository should query through, bound to Ctx.
func (c Context) DB(fallback *gorm.DB) *gorm.DB {
	handle := fallback
	if c.Tx != nil {
		handle = c.Tx
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return handle.WithContext(ctx)
}

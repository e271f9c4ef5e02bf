// Package ctxutil carries request-scoped identifiers through context.Context.
//
// The logger reads them to tag every entry:
//
//	ctx, traceID := ctxutil.EnsureTraceID(ctx)
//	ctx = ctxutil.SetPaginatorID(ctx, p.ID())
//	logger.Infof(ctx, "loading page %d", page)
//	// {"trace_id": "...", "paginator": "...", "msg": "loading page 2"}
package ctxutil

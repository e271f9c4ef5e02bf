// Package paging provides cursor-based pagination over document sources.
//
// The Paginator keeps a growing local window of results. Each call to
// LoadNextPage fetches the page after the current cursor and merges it into
// the window. With ListenForUpdates set, every page stays subscribed and later
// changes to it are merged as they arrive. The merged window is published on a
// single stream of full result lists.
//
// # Basic Usage
//
//	p, err := paging.NewPaginator(src, &paging.Config{
//	    PageSize:         20,
//	    ListenForUpdates: true,
//	}, paging.Documents)
//	if err != nil {
//	    return err
//	}
//	defer p.Dispose(context.Background())
//
//	page, err := p.LoadNextPage(ctx) // [a b ... t]
//	page, err = p.LoadNextPage(ctx)  // [a b ... t u ... ]
//	more := p.HasMorePages()
//
// # Merge Rules
//
//   - A document whose id is already in the window replaces the old one in
//     place; its position never changes.
//   - A new id is appended in the order the source delivered it.
//   - The cursor and the exhausted flag only move on the first batch of each
//     request. A first batch shorter than PageSize marks the source exhausted.
//
// # Single Flight
//
// While a page is loading, further LoadNextPage calls return the current
// results at once and issue no fetch. The same holds once the source is
// exhausted.
//
// # Errors
//
// An error before the first batch of a request is returned from that
// LoadNextPage call as a *SourceFetchError, and the paginator stays retryable.
// An error on a live subscription after its page loaded has no caller waiting
// for it, so it is published on the results stream as Update.Err and passed
// to the handler set with WithErrorHandler.
//
// # One-shot Pages
//
// Paginate serves request/response style pages with an opaque cursor:
//
//	result, err := paging.Paginate(ctx, src, paging.Params{
//	    Cursor: r.URL.Query().Get("cursor"),
//	    Limit:  20,
//	}, order, paging.Documents)
//	// {items: [...], next: "...", has_next: true}
package paging

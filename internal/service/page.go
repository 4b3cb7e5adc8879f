package service

import (
	"github.com/avray/eventreg-server/internal/model"
)

// buildPage assembles one page from a bounded scan. HasNextPage is
// inferred from a full page; on the exact boundary where the next page
// would be empty this under-reports, never over-reports.
func buildPage[T any](items []T, total int64, pageSize int, cursorOf func(T) model.Cursor) model.Page[T] {
	page := model.Page[T]{
		Items:       items,
		TotalCount:  total,
		PageSize:    pageSize,
		HasNextPage: len(items) == pageSize,
	}
	if len(items) > 0 {
		page.NextCursor = cursorOf(items[len(items)-1]).Encode()
	}
	return page
}

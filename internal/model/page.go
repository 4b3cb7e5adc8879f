package model

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// TotalCountUnknown is reported on cursor-based pages: a total requires
// a full-scope scan, which is only paid on the first page of a listing.
const TotalCountUnknown int64 = -1

// Page size bounds enforced by the services.
const (
	MinPageSize     = 1
	MaxPageSize     = 100
	DefaultPageSize = 20
)

// Ordering selects the scan direction over the fixed (sort column, id) key.
type Ordering string

const (
	OrderAsc  Ordering = "asc"
	OrderDesc Ordering = "desc"
)

// Page is one bounded slice of an ordered scan.
//
// HasNextPage is inferred from len(Items) == PageSize. It can
// under-report exactly at the boundary where the next page would be
// empty; it never over-reports.
type Page[T any] struct {
	Items       []T
	TotalCount  int64
	PageSize    int
	HasNextPage bool
	NextCursor  string
}

// Cursor is the decoded keyset position: the (sort value, id) pair of
// the last row of the previous page. The id breaks ties on the sort
// value, keeping the scan key strictly monotonic.
type Cursor struct {
	SortValue time.Time `json:"s"`
	LastID    int64     `json:"id"`
}

// Encode serializes the cursor into an opaque URL-safe token.
func (c Cursor) Encode() string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a token produced by Encode. An empty token yields
// a nil cursor, meaning first page.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("malformed cursor: %w", err)
	}
	if c.LastID <= 0 {
		return nil, fmt.Errorf("malformed cursor: non-positive id")
	}
	return &c, nil
}

// NormalizePageSize clamps a requested page size into [MinPageSize, MaxPageSize].
func NormalizePageSize(pageSize int) int {
	switch {
	case pageSize < MinPageSize:
		return DefaultPageSize
	case pageSize > MaxPageSize:
		return MaxPageSize
	default:
		return pageSize
	}
}

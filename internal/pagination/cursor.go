package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloo-solutions/searchbench/internal/domain"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Cursor points at the next unread item of one batch.
type Cursor struct {
	BatchID string
	Offset  int
}

// PageResult represents a paginated result set
type PageResult[T any] struct {
	Items   []T    `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

// EncodeCursor creates a base64-encoded cursor for offset within batchID
func EncodeCursor(batchID string, offset int) string {
	if batchID == "" {
		return ""
	}
	raw := batchID + "|" + strconv.Itoa(offset)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor decodes a cursor created by EncodeCursor. An empty cursor
// decodes to nil.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, domain.ErrInvalidCursor
	}

	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[0] == "" {
		return nil, domain.ErrInvalidCursor
	}

	offset, err := strconv.Atoi(parts[1])
	if err != nil || offset < 0 {
		return nil, domain.ErrInvalidCursor
	}

	return &Cursor{BatchID: parts[0], Offset: offset}, nil
}

// ClampLimit maps a requested page size into [1, MaxLimit], using
// DefaultLimit when none was given.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

// Page slices items of batchID starting at cursor. A cursor issued for a
// different batch is rejected since offsets do not carry over.
func Page[T any](items []T, batchID string, cursor *Cursor, limit int) (PageResult[T], error) {
	limit = ClampLimit(limit)

	start := 0
	if cursor != nil {
		if cursor.BatchID != batchID {
			return PageResult[T]{}, fmt.Errorf("%w: cursor belongs to batch %s", domain.ErrInvalidCursor, cursor.BatchID)
		}
		start = min(cursor.Offset, len(items))
	}

	end := min(start+limit, len(items))
	page := PageResult[T]{
		Items:   items[start:end],
		HasMore: end < len(items),
	}
	if page.HasMore {
		page.Cursor = EncodeCursor(batchID, end)
	}
	return page, nil
}

package catalog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iventshq/ivents/internal/model"
)

func numbered(n int) []model.Event {
	events := make([]model.Event, n)
	for i := range events {
		events[i] = ev(fmt.Sprintf("event-%02d", i))
	}
	return events
}

func TestPaginateFirstPage(t *testing.T) {
	page, meta := Paginate(numbered(30), 1, 12)
	require.Len(t, page, 12)
	assert.Equal(t, "event-00", page[0].Title)
	assert.Equal(t, model.PageMeta{Page: 1, PerPage: 12, TotalItems: 30, TotalPages: 3}, meta)
}

func TestPaginateLastPartialPage(t *testing.T) {
	page, meta := Paginate(numbered(30), 3, 12)
	require.Len(t, page, 6)
	assert.Equal(t, "event-24", page[0].Title)
	assert.Equal(t, 3, meta.Page)
}

func TestPaginateClampsOutOfRange(t *testing.T) {
	events := numbered(30)

	page, meta := Paginate(events, 99, 12)
	assert.Equal(t, 3, meta.Page, "pages past the end serve the last page")
	assert.Len(t, page, 6)

	page, meta = Paginate(events, 0, 12)
	assert.Equal(t, 1, meta.Page, "pages below one serve the first page")
	assert.Len(t, page, 12)
}

func TestPaginateEmptyCollection(t *testing.T) {
	page, meta := Paginate(nil, 5, 12)
	assert.Empty(t, page)
	assert.Equal(t, model.PageMeta{Page: 1, PerPage: 12, TotalItems: 0, TotalPages: 1}, meta)
}

func TestPaginateDefaultsPerPage(t *testing.T) {
	_, meta := Paginate(numbered(24), 1, 0)
	assert.Equal(t, DefaultPageSize, meta.PerPage)
	assert.Equal(t, 2, meta.TotalPages)
}

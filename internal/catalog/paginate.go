package catalog

import "github.com/iventshq/ivents/internal/model"

// DefaultPageSize is the number of events per listing page.
const DefaultPageSize = 12

// Paginate slices an ordered collection into one fixed-size page and
// returns it with page metadata. Out-of-range pages clamp rather than
// error: page < 1 serves the first page, page beyond the end serves the
// last. An empty collection still reports one (empty) page so clients can
// render consistent pagination controls.
func Paginate(events []model.Event, page, perPage int) ([]model.Event, model.PageMeta) {
	if perPage < 1 {
		perPage = DefaultPageSize
	}

	total := len(events)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	meta := model.PageMeta{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}
	return events[start:end], meta
}

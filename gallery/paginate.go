package gallery

type Page[T any] struct {
	Items          []T   `json:"items"`
	Number         int   `json:"number"`
	NumPages       int   `json:"num_pages"`
	Count          int   `json:"count"`
	HasNext        bool  `json:"has_next"`
	HasPrevious    bool  `json:"has_previous"`
	NextNumber     int   `json:"next_page_number,omitempty"`
	PreviousNumber int   `json:"previous_page_number,omitempty"`
	Range          []int `json:"page_range"`
}

// IsPaginated is true when there is more than one page to move between
func (p Page[T]) IsPaginated() bool {
	return p.NumPages > 1
}

// Paginate returns page number (1-based) of items split into pages of
// pageSize. An empty list still has one (empty) page. A pageSize below 1
// puts everything on a single page.
func Paginate[T any](items []T, pageSize, number int) (page Page[T], err error) {
	count := len(items)
	if pageSize < 1 {
		pageSize = count
		if pageSize == 0 {
			pageSize = 1
		}
	}
	numPages := (count + pageSize - 1) / pageSize
	if numPages == 0 {
		numPages = 1
	}
	if number < 1 || number > numPages {
		return page, ErrInvalidPage
	}
	start := (number - 1) * pageSize
	end := min(start+pageSize, count)
	page = Page[T]{
		Items:       items[start:end],
		Number:      number,
		NumPages:    numPages,
		Count:       count,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
		Range:       make([]int, numPages),
	}
	if page.HasNext {
		page.NextNumber = number + 1
	}
	if page.HasPrevious {
		page.PreviousNumber = number - 1
	}
	for i := range page.Range {
		page.Range[i] = i + 1
	}
	return page, nil
}

// Package paginate slices ordered lists into fixed-size pages.
package paginate

// Page is one slice of a paginated list plus its navigation state.
type Page[T any] struct {
	Items       []T
	CurrentPage int
	TotalPages  int
	TotalItems  int
	PerPage     int
	HasPrev     bool
	HasNext     bool
	PrevPage    int
	NextPage    int
}

// Paginate returns page number page (1-based) of items. perPage <= 0 is
// treated as 1 and page < 1 as 1. Pages past the end have no items.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = 1
	}
	if page < 1 {
		page = 1
	}
	total := len(items)
	pages := TotalPages(total, perPage)

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	p := Page[T]{
		Items:       items[start:end:end],
		CurrentPage: page,
		TotalPages:  pages,
		TotalItems:  total,
		PerPage:     perPage,
		HasPrev:     page > 1,
		HasNext:     page < pages,
	}
	if p.HasPrev {
		p.PrevPage = page - 1
	}
	if p.HasNext {
		p.NextPage = page + 1
	}
	return p
}

// TotalPages is ceil(total/perPage).
func TotalPages(total, perPage int) int {
	if perPage <= 0 {
		perPage = 1
	}
	if total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// PageNumbers lists 1..TotalPages(total, perPage).
func PageNumbers(total, perPage int) []int {
	n := TotalPages(total, perPage)
	nums := make([]int, n)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

// All returns every page of items. An empty list still yields one empty page
// so listing pages always exist.
func All[T any](items []T, perPage int) []Page[T] {
	n := max(TotalPages(len(items), perPage), 1)
	pages := make([]Page[T], 0, n)
	for i := 1; i <= n; i++ {
		pages = append(pages, Paginate(items, i, perPage))
	}
	return pages
}

package listing

type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages is ceil(total/limit); zero when there is nothing to show.
func (p Pagination) TotalPages(total int) int {
	if p.Limit <= 0 || total <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// Page is one slice of a list query together with the exact total.
type Page[T any] struct {
	Items []T
	Total int
	Pagination
}

// Slice cuts the [offset, offset+limit) window out of an already filtered
// and ordered result.
func Slice[T any](all []T, p Pagination) Page[T] {
	out := Page[T]{Total: len(all), Pagination: p, Items: []T{}}
	start := p.Offset()
	if start < 0 || start >= len(all) {
		return out
	}
	end := min(start+p.Limit, len(all))
	out.Items = append(out.Items, all[start:end]...)
	return out
}

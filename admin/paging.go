package admin

import "context"

// PageFunc fetches one page and reports how many items it held.
type PageFunc func(ctx context.Context, page int) (int, error)

// PageUntilEmpty calls fetch for page 1, 2, ... until a page is empty or
// fetch fails. It returns the number of non-empty pages seen and the
// failure, if any.
func PageUntilEmpty(ctx context.Context, fetch PageFunc) (int, error) {
	pages := 0
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		n, err := fetch(ctx, page)
		if err != nil {
			return pages, err
		}
		if n == 0 {
			return pages, nil
		}
		pages++
	}
}

// PageByCount is ceil(total/limit).
func PageByCount(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

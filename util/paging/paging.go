package paging

// Size is the number of items per page on every listing.
const Size = 8

// Slice returns the 1-based page of items. Pages below 1 are treated as 1 and
// pages past the end are empty.
func Slice[T any](items []T, page int) []T {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * Size
	if start >= len(items) {
		return []T{}
	}
	end := start + Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Pages is the number of pages n items span.
func Pages(n int) int { return (n + Size - 1) / Size }

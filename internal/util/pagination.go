package util

const DefaultPageSize = 20

// Clamp normalizes a caller-supplied limit/skip pair.
func Clamp(limit, skip int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = DefaultPageSize
	}
	if skip < 0 {
		skip = 0
	}
	return limit, skip
}

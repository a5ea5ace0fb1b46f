// Package collection holds generic slice helpers.
//
//	open := collection.Filter(orders, func(o models.Order) bool { return o.Status != models.OrderCanceled })
//	ids := collection.Unique(in.FoodIDs)
package collection

// Filter returns the elements of s for which fn returns true. The result is
// never nil.
func Filter[T any](s []T, fn func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// Unique returns s with later duplicates removed, order kept.
func Unique[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	out := make([]T, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

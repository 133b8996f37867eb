package f

type Set[T comparable] map[T]struct{}

func NewSet[T comparable](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, item := range items {
		s.Add(item)
	}
	return s
}

func (s Set[T]) Add(item T) {
	s[item] = struct{}{}
}

func (s Set[T]) Contains(item T) bool {
	_, found := s[item]
	return found
}

func Map[T, U any](ts []T, f func(T) U) []U {
	us := make([]U, len(ts))
	for i, t := range ts {
		us[i] = f(t)
	}
	return us
}

func Filtered[T any](ts []T, f func(T) bool) []T {
	filtered := make([]T, 0)
	for _, t := range ts {
		if f(t) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// RemoveDuplicates returns a new slice holding the first occurrence of
// every item, in order. sliceList is left untouched.
func RemoveDuplicates[T comparable](sliceList []T) []T {
	seen := NewSet[T]()
	unique := make([]T, 0, len(sliceList))
	for _, t := range sliceList {
		if seen.Contains(t) {
			continue
		}
		seen.Add(t)
		unique = append(unique, t)
	}
	return unique
}

func Find[T any](slice []T, findFunc func(T) bool) (T, bool) {
	for _, item := range slice {
		if findFunc(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

package utils

func Map[T any, U any](src []T, mapper func(T) U) []U {
	dst := make([]U, 0, len(src))
	for _, item := range src {
		dst = append(dst, mapper(item))
	}
	return dst
}

func GroupBy[T any, K comparable](items []T, keyFunc func(T) K) map[K][]T {
	result := make(map[K][]T)
	for _, item := range items {
		key := keyFunc(item)
		result[key] = append(result[key], item)
	}
	return result
}

func Ptr[T any](v T) *T {
	return &v
}

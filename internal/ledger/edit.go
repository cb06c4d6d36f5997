package ledger

// Draft is an in-progress edit: the position it will overwrite and a copy of
// the entry to modify. A nil *Draft in the store means the list is not being
// edited.
type Draft[T any] struct {
	Index int
	Entry T
}

func beginEdit[T any](list []T, index int) (*Draft[T], bool) {
	if index < 0 || index >= len(list) {
		return nil, false
	}
	return &Draft[T]{Index: index, Entry: list[index]}, true
}

func removeAt[T any](list []T, index int) ([]T, bool) {
	if index < 0 || index >= len(list) {
		return list, false
	}
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...), true
}

func replaceAt[T any](list []T, index int, v T) ([]T, bool) {
	if index < 0 || index >= len(list) {
		return list, false
	}
	out := make([]T, len(list))
	copy(out, list)
	out[index] = v
	return out, true
}

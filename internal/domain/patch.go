package domain

// Patch is a tagged optional update for a single field: either Unchanged
// or SetTo(value). Avoids null-means-no-change ambiguity on updates.
type Patch[T any] struct {
	value T
	set   bool
}

func SetTo[T any](v T) Patch[T] {
	return Patch[T]{value: v, set: true}
}

func Unchanged[T any]() Patch[T] {
	return Patch[T]{}
}

func (p Patch[T]) Get() (T, bool) {
	return p.value, p.set
}

func (p Patch[T]) IsSet() bool {
	return p.set
}

package video

// Element wraps an underlying image or video element, the way sketching
// libraries hand out their own objects around a native one. The classifier
// unwraps it when probing arguments.
type Element struct {
	Elt any
}

// Element returns the wrapped value.
func (e Element) Element() any {
	return e.Elt
}

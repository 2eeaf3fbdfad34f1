package dashboard

// view holds the last committed result of one data view. Requests are
// numbered when issued; a result is committed only if no later request for
// the same view has committed already, so a slow stale response can never
// overwrite a newer one.
type view[T any] struct {
	issued  uint64
	applied uint64

	loaded bool
	key    string
	value  T
	err    error
}

// begin numbers a new request.
func (v *view[T]) begin() uint64 {
	v.issued++
	return v.issued
}

// commit stores the result of request seq and reports whether it was kept.
func (v *view[T]) commit(seq uint64, key string, value T, err error) bool {
	if seq <= v.applied {
		return false
	}
	v.applied = seq
	v.loaded = true
	v.key = key
	v.value = value
	v.err = err
	return true
}

// reset clears the view and fences off every request issued so far.
func (v *view[T]) reset() {
	var zero T
	v.issued++
	v.applied = v.issued
	v.loaded = false
	v.key = ""
	v.value = zero
	v.err = nil
}

// current returns the committed result if it belongs to key, and the zero
// value otherwise.
func (v *view[T]) current(key string) (T, error) {
	if !v.loaded || v.key != key {
		var zero T
		return zero, nil
	}
	return v.value, v.err
}

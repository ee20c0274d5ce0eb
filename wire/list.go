package wire

// ReadList reads a list of elements of type elem. A list with a different
// element type on the wire is skipped and an empty list returned. The
// result is never nil, so a present-but-empty list stays distinguishable
// from an absent one.
func ReadList[T any](r *Reader, elem CompactType, read func() T) []T {
	got, length := r.ReadListHeader()
	if length == 0 {
		return []T{}
	}
	if elemType(got) != elem {
		r.SkipMany(length, got, TypeStop)
		return []T{}
	}

	out := make([]T, 0, min(length, 1024))
	for i := 0; i < length && !r.stalled(); i++ {
		out = append(out, read())
	}
	return out
}

// ReadSet reads a set. Sets share the list encoding; duplicate elements on
// the wire collapse into one entry.
func ReadSet[T comparable](r *Reader, elem CompactType, read func() T) map[T]struct{} {
	got, length := r.ReadListHeader()
	if length == 0 {
		return map[T]struct{}{}
	}
	if elemType(got) != elem {
		r.SkipMany(length, got, TypeStop)
		return map[T]struct{}{}
	}

	out := make(map[T]struct{}, min(length, 1024))
	for i := 0; i < length && !r.stalled(); i++ {
		out[read()] = struct{}{}
	}
	return out
}

// elemType maps the tag found in a collection header onto the tag used for
// comparison. Some writers mark bool elements with the true tag.
func elemType(t CompactType) CompactType {
	if t == TypeBooleanTrue {
		return TypeBool
	}
	return t
}

// WriteList writes a list header followed by each element.
func WriteList[T any](w *Writer, elem CompactType, list []T, write func(T)) {
	w.WriteListHeader(elem, len(list))
	for _, v := range list {
		write(v)
	}
}

// WriteSet writes a set using the list encoding.
func WriteSet[T comparable](w *Writer, elem CompactType, set map[T]struct{}, write func(T)) {
	w.WriteListHeader(elem, len(set))
	for v := range set {
		write(v)
	}
}

// StructReader is implemented by generated structs.
type StructReader interface {
	Read(r *Reader) error
}

// StructWriter is implemented by generated structs that include writers.
type StructWriter interface {
	Write(w *Writer) error
}

// ReadStruct decodes into v and returns it, so nested structs can be read
// in expression position. Failures stay recorded on r.
func ReadStruct[T StructReader](r *Reader, v T) T {
	_ = v.Read(r)
	return v
}

// WriteStruct encodes v. Failures stay recorded on w.
func WriteStruct[T StructWriter](w *Writer, v T) {
	_ = v.Write(w)
}

// Ptr returns a pointer to a copy of v. Generated code uses it for
// optional scalar fields.
func Ptr[T any](v T) *T {
	return &v
}

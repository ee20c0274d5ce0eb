package wire

// ReadMap reads a map whose key and value element types are packed into
// mkey. When the header carries different types the entries are skipped and
// an empty map is returned: the data is valid, just not of the declared
// shape.
func ReadMap[K comparable, V any](r *Reader, mkey byte, readKey func() K, readValue func() V) map[K]V {
	got, length := r.ReadMapHeader()
	if length == 0 {
		return make(map[K]V)
	}
	kt, vt := UnpackMapKey(got)
	if PackMapKey(elemType(kt), elemType(vt)) != mkey {
		r.skipEntries(length, kt, vt)
		return make(map[K]V)
	}

	m := make(map[K]V, min(length, 64))
	for i := 0; i < length && !r.stalled(); i++ {
		k := readKey()
		m[k] = readValue()
	}
	return m
}

// WriteMap writes m with the packed element types mkey. Entries are written
// in Go map iteration order.
func WriteMap[K comparable, V any](w *Writer, mkey byte, m map[K]V, writeKey func(K), writeValue func(V)) {
	w.WriteMapHeader(mkey, len(m))
	for k, v := range m {
		writeKey(k)
		writeValue(v)
	}
}

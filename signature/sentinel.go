package signature

// omitted marks an optional argument the caller did not supply. It has a field so that
// distinct allocations can never share an address.
type omitted struct{ _ byte }

func (*omitted) String() string { return "<omitted>" }

func (o *omitted) GoString() string { return o.String() }

var sentinel = &omitted{}

// Omitted returns the process-wide marker used as the synthesized default of optional
// slots. Callers may pass it explicitly to mean "not supplied".
func Omitted() any { return sentinel }

// IsOmitted compares v against the marker by identity. No other value, nil included,
// is ever reported as omitted.
func IsOmitted(v any) bool {
	p, ok := v.(*omitted)
	return ok && p == sentinel
}

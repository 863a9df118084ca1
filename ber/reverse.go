package ber

// ReverseBuilder is a reallocating encoder that writes from the tail of
// its buffer backward, matching §4.1's "reverse, reallocating" contract
// and §5's buffer-ownership rule: once any encoding call (Integer,
// OctetString, OID, WrapSequence, ...) reallocates, any slice obtained from
// a Bytes() call made *before* that call is no longer valid and must not
// be retained. To make that structurally impossible rather than merely
// documented, ReverseBuilder never hands out a slice at all outside of the
// final Bytes() call -- every intermediate state is observed only through
// Len(), which survives reallocation.
type ReverseBuilder struct {
	buf    []byte
	offset int // encoded bytes occupy buf[len(buf)-offset : len(buf)]
	grow   bool
}

// NewReverseBuilder creates a builder with the given initial capacity. If
// allowGrow is false, the builder never reallocates and encoding calls fail
// once the initial capacity is exhausted -- the reverse analogue of a
// forward Writer's fixed buffer.
func NewReverseBuilder(initialCap int, allowGrow bool) *ReverseBuilder {
	return &ReverseBuilder{buf: make([]byte, initialCap), grow: allowGrow}
}

// Len returns the number of bytes encoded so far.
func (b *ReverseBuilder) Len() int { return b.offset }

// Bytes returns the encoded bytes in forward order. It is only meaningful
// to call once encoding is complete; calling it mid-sequence and then
// continuing to encode is safe (it always returns the current committed
// span) but the returned slice must be treated as invalidated by any
// subsequent encoding call, per the buffer-ownership rule -- callers should
// call Bytes() exactly once, at the end.
func (b *ReverseBuilder) Bytes() []byte {
	return b.buf[len(b.buf)-b.offset:]
}

// reserve ensures at least n more bytes are available ahead of the
// current tail-anchored region, reallocating (growing by at least n, plus
// headroom) if necessary and allowed.
func (b *ReverseBuilder) reserve(n int) bool {
	if b.offset+n <= len(b.buf) {
		return true
	}
	if !b.grow {
		return false
	}
	newCap := len(b.buf)*2 + n
	if newCap < len(b.buf)+n {
		newCap = len(b.buf) + n
	}
	grown := make([]byte, newCap)
	copy(grown[newCap-b.offset:], b.buf[len(b.buf)-b.offset:])
	b.buf = grown
	return true
}

// prependRaw writes content immediately before the current tail-anchored
// region, growing first if needed.
func (b *ReverseBuilder) prependRaw(content []byte) bool {
	if !b.reserve(len(content)) {
		return false
	}
	start := len(b.buf) - b.offset - len(content)
	copy(b.buf[start:], content)
	b.offset += len(content)
	return true
}

// prependLength writes the minimal-form length octets for n immediately
// before the current tail-anchored region.
func (b *ReverseBuilder) prependLength(n int) bool {
	return b.prependRaw(appendLength(nil, n))
}

// prependIdentifier writes the single identifier octet for tag.
func (b *ReverseBuilder) prependIdentifier(tag Tag) bool {
	return b.prependRaw([]byte{byte(tag)})
}

// prependTLV writes content octets, then its length, then its tag,
// building outward-in so that the finished region reads tag|length|content
// in forward order.
func (b *ReverseBuilder) prependTLV(tag Tag, content []byte) bool {
	if !b.prependRaw(content) {
		return false
	}
	if !b.prependLength(len(content)) {
		return false
	}
	return b.prependIdentifier(tag)
}

func (b *ReverseBuilder) Integer(tag Tag, v int64) bool {
	return b.prependTLV(tag, minimalSignedBytes(v))
}

func (b *ReverseBuilder) Unsigned(tag Tag, v uint64) bool {
	return b.prependTLV(tag, minimalUnsignedBytes(v))
}

func (b *ReverseBuilder) OctetString(tag Tag, v []byte) bool {
	return b.prependTLV(tag, v)
}

func (b *ReverseBuilder) Null() bool {
	return b.prependTLV(TagNull, nil)
}

func (b *ReverseBuilder) OID(v []uint32) bool {
	return b.prependTLV(TagObjectId, encodeOIDContent(v))
}

func (b *ReverseBuilder) BitString(v []byte) bool {
	return b.prependTLV(TagBitString, v)
}

func (b *ReverseBuilder) Counter64(v Counter64) bool {
	return b.prependTLV(TagCounter64, minimalUnsignedBytes(v.Value()))
}

func (b *ReverseBuilder) OpaqueCounter64(v Counter64) bool {
	return b.prependOpaque(TagCounter64, minimalUnsignedBytes(v.Value()))
}

func (b *ReverseBuilder) prependOpaque(innerTag Tag, content []byte) bool {
	return b.prependTLV(TagOpaque, composeOpaqueEnvelope(innerTag, content))
}

func (b *ReverseBuilder) OpaqueUnsigned64(v uint64) bool {
	return b.prependOpaque(OpaqueUnsigned64, minimalUnsignedBytes(v))
}

func (b *ReverseBuilder) OpaqueInt64(v int64) bool {
	return b.prependOpaque(OpaqueInt64, minimalSignedBytes(v))
}

func (b *ReverseBuilder) OpaqueFloat(v float32) bool {
	content := make([]byte, 4)
	putFloat32(content, v)
	return b.prependOpaque(OpaqueFloat, content)
}

func (b *ReverseBuilder) OpaqueDouble(v float64) bool {
	content := make([]byte, 8)
	putFloat64(content, v)
	return b.prependOpaque(OpaqueDouble, content)
}

// WrapSequence prepends a SEQUENCE header around everything written by fn,
// which receives the same builder and must only prepend (never touch
// bytes already committed before the call). Because this is a reverse
// builder, "wrapping" a body that hasn't been written yet is natural: fn
// runs first (its content lands directly before whatever was already
// there), then the sequence header is prepended in front of it.
func (b *ReverseBuilder) WrapSequence(fn func() bool) bool {
	before := b.offset
	if !fn() {
		return false
	}
	bodyLen := b.offset - before
	if !b.prependLength(bodyLen) {
		return false
	}
	return b.prependIdentifier(TagSequence)
}

package ber

import "github.com/pkg/errors"

// ParseSequenceHeader decodes a SEQUENCE header, returning the content
// bytes of the sequence (its elements, back to back) and whatever follows
// the sequence in the input.
func ParseSequenceHeader(buf []byte) (content, tail []byte, err error) {
	hdr, rest, err := ParseHeader(buf)
	if err != nil {
		return nil, nil, err
	}
	if hdr.Type != TagSequence {
		return nil, nil, errors.Wrapf(ErrBadTag, "want Sequence got %#x", hdr.Type)
	}
	content, tail = contents(rest, hdr.ContentsLen)
	return content, tail, nil
}

// BuildSequenceHeader forward-encodes a SEQUENCE header for a body of the
// given length; the caller is expected to already have encoded the body
// separately (forward building of a sequence therefore normally proceeds
// by encoding the elements into a scratch buffer first, then calling this
// with len(body) before copying body in -- or, more simply, by measuring
// how much a Writer has produced and wrapping it, see Writer.WrapSequence).
func BuildSequenceHeader(buf []byte, bodyLen int) ([]byte, bool) {
	need := 1 + lengthSize(bodyLen)
	if len(buf) < need {
		return nil, false
	}
	w := appendIdentifier(buf[:0:0], TagSequence)
	w = appendLength(w, bodyLen)
	copy(buf, w)
	return buf[need:], true
}

// Writer is a forward encoder over a fixed-capacity buffer. It tracks how
// many bytes have been committed and never writes past the buffer it was
// given, matching §4.1's "never truncates" contract: every encoding call
// either fully succeeds or leaves the Writer unchanged and reports false.
type Writer struct {
	buf []byte
	n   int
}

// NewWriter wraps buf as a fixed-capacity forward encoding target.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// Bytes returns the bytes committed so far.
func (w *Writer) Bytes() []byte { return w.buf[:w.n] }

// Remaining returns the number of bytes still available.
func (w *Writer) Remaining() int { return len(w.buf) - w.n }

func (w *Writer) commit(tail []byte, ok bool) bool {
	if !ok {
		return false
	}
	w.n = len(w.buf) - len(tail)
	return true
}

func (w *Writer) Integer(tag Tag, v int64) bool {
	tail, ok := BuildInteger(w.buf[w.n:], tag, v)
	return w.commit(tail, ok)
}

func (w *Writer) Unsigned(tag Tag, v uint64) bool {
	tail, ok := BuildUnsigned(w.buf[w.n:], tag, v)
	return w.commit(tail, ok)
}

func (w *Writer) OctetString(tag Tag, v []byte) bool {
	tail, ok := BuildOctetString(w.buf[w.n:], tag, v)
	return w.commit(tail, ok)
}

func (w *Writer) Null() bool {
	tail, ok := BuildNull(w.buf[w.n:])
	return w.commit(tail, ok)
}

func (w *Writer) OID(v []uint32) bool {
	tail, ok := BuildOID(w.buf[w.n:], v)
	return w.commit(tail, ok)
}

func (w *Writer) BitString(v []byte) bool {
	tail, ok := BuildBitString(w.buf[w.n:], v)
	return w.commit(tail, ok)
}

// WrapSequence inserts a SEQUENCE header in front of the bytes written by
// fn, which must only use w starting from its current position. Since
// forward building cannot know a length before writing the body, this
// writes the body into a scratch Writer first, then commits the header
// and body together -- the one place this package deviates from strict
// single-pass forward writing, and only because a SEQUENCE header must
// precede a body of as-yet-unknown length.
func (w *Writer) WrapSequence(fn func(body *Writer) bool) bool {
	scratch := NewWriter(make([]byte, len(w.buf)-w.n))
	if !fn(scratch) {
		return false
	}
	body := scratch.Bytes()
	tail, ok := BuildSequenceHeader(w.buf[w.n:], len(body))
	if !ok || len(tail) < len(body) {
		return false
	}
	copy(tail, body)
	w.n = len(w.buf) - (len(tail) - len(body))
	return true
}

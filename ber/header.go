package ber

import "github.com/pkg/errors"

// Header describes the identifier and length octets of a decoded BER
// object.
type Header struct {
	Type Tag
	// ContentsLen is the number of content octets that follow the header.
	ContentsLen int
}

// ParseHeader decodes the identifier and length octets at the front of buf,
// returning the header, the remaining bytes covering exactly the object's
// contents followed by any trailing input, and an error.
//
// Identifier octets using the extension-id marker (low five bits all set)
// are accepted and collapsed to the resolved Tag; this protocol never
// emits a tag number requiring the extension form, but a tolerant decoder
// accepts it.
func ParseHeader(buf []byte) (hdr Header, tail []byte, err error) {
	if len(buf) < 2 {
		return Header{}, nil, errors.Wrap(ErrTruncated, "header")
	}

	idOctet := buf[0]
	rest := buf[1:]

	var tagNumber int
	if idOctet&tagNumberMask == extensionID {
		// Extension form: one or more 7-bit continuation octets follow.
		tagNumber = 0
		for {
			if len(rest) == 0 {
				return Header{}, nil, errors.Wrap(ErrTruncated, "extended tag")
			}
			b := rest[0]
			rest = rest[1:]
			tagNumber = tagNumber<<7 | int(b&0x7F)
			if b&continuationBit == 0 {
				break
			}
		}
	} else {
		tagNumber = int(idOctet & tagNumberMask)
	}

	resolved := Tag((idOctet & (classMask | constructedBit)) | byte(tagNumber))

	if len(rest) == 0 {
		return Header{}, nil, errors.Wrap(ErrTruncated, "length")
	}

	lenOctet := rest[0]
	rest = rest[1:]

	var contentsLen int
	if lenOctet&longLenBit == 0 {
		contentsLen = int(lenOctet)
	} else {
		n := int(lenOctet &^ longLenBit)
		if n == 0 {
			return Header{}, nil, errors.Wrap(ErrBadLength, "indefinite length unsupported")
		}
		if n > 4 {
			return Header{}, nil, errors.Wrap(ErrBadLength, "length too wide")
		}
		if len(rest) < n {
			return Header{}, nil, errors.Wrap(ErrTruncated, "length octets")
		}
		for i := 0; i < n; i++ {
			contentsLen = contentsLen<<8 | int(rest[i])
		}
		rest = rest[n:]
	}

	if contentsLen < 0 || contentsLen > len(rest) {
		return Header{}, nil, errors.Wrap(ErrTruncated, "contents")
	}

	return Header{Type: resolved, ContentsLen: contentsLen}, rest, nil
}

// contents splits tail (as returned by ParseHeader) into the object's
// content bytes and whatever follows it.
func contents(tail []byte, n int) (content, rest []byte) {
	return tail[:n], tail[n:]
}

// appendIdentifier appends the identifier octet(s) for tag to buf. Every
// tag recognized by this package fits in a single octet (number <= 30),
// so the extension form is never emitted on encode, matching the note in
// ParseHeader.
func appendIdentifier(buf []byte, tag Tag) []byte {
	return append(buf, byte(tag))
}

// appendLength appends the minimal-form length octets for n to buf.
func appendLength(buf []byte, n int) []byte {
	if n < 0x80 {
		return append(buf, byte(n))
	}
	var tmp [4]byte
	w := 0
	v := n
	for v > 0 {
		tmp[w] = byte(v)
		v >>= 8
		w++
	}
	buf = append(buf, longLenBit|byte(w))
	for i := w - 1; i >= 0; i-- {
		buf = append(buf, tmp[i])
	}
	return buf
}

// lengthSize returns the number of octets appendLength would emit for n.
func lengthSize(n int) int {
	if n < 0x80 {
		return 1
	}
	w := 0
	v := n
	for v > 0 {
		v >>= 8
		w++
	}
	return 1 + w
}

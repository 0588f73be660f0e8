package document

import (
	"fmt"
	"strings"
)

// fingerprintPrefix marks an array-element segment in the string form of
// an address, e.g. "parameters[fp:3b2a…]".
const fingerprintPrefix = "fp:"

// Segment is one step in an [Address]. It is a tagged variant: object
// members are addressed by key name, array elements by content fingerprint.
// The two modes are kept explicit rather than collapsed into one generic
// path string, because they have different identity semantics (see the
// package documentation).
type Segment struct {
	key         string
	fingerprint string
	isElem      bool
}

// Key creates a segment addressing an object member by name.
func Key(name string) Segment {
	return Segment{key: name}
}

// Elem creates a segment addressing an array element by content fingerprint.
func Elem(fingerprint string) Segment {
	return Segment{fingerprint: fingerprint, isElem: true}
}

// IsElem reports whether the segment addresses an array element.
func (s Segment) IsElem() bool { return s.isElem }

// KeyName returns the object key for a key segment ("" for element segments).
func (s Segment) KeyName() string { return s.key }

// Fingerprint returns the element fingerprint for an element segment
// ("" for key segments).
func (s Segment) Fingerprint() string { return s.fingerprint }

// String returns the display form of a single segment.
func (s Segment) String() string {
	if s.isElem {
		return "[" + fingerprintPrefix + s.fingerprint + "]"
	}
	return escapeKey(s.key)
}

// Address is an ordered sequence of segments from the document root.
// Addresses are unique within one document snapshot.
type Address []Segment

// Child returns a new address extending a by seg. The receiver is not
// modified and the result does not alias its backing array.
func (a Address) Child(seg Segment) Address {
	out := make(Address, len(a)+1)
	copy(out, a)
	out[len(a)] = seg
	return out
}

// Parent returns the address with the final segment removed,
// and false when a is the root.
func (a Address) Parent() (Address, bool) {
	if len(a) == 0 {
		return nil, false
	}
	return a[:len(a)-1], true
}

// Equal reports whether two addresses are identical segment for segment.
func (a Address) Equal(b Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String renders the address in dotted form, with array-element segments
// appended in bracket notation:
//
//	paths./items.get.parameters[fp:9f86d081…].schema.format
//
// Literal '.', '[', ']' and '\' characters in object keys are escaped with
// a backslash so the form round-trips through [ParseAddress].
func (a Address) String() string {
	var sb strings.Builder
	for i, seg := range a {
		if seg.isElem {
			sb.WriteString(seg.String())
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(seg.String())
	}
	return sb.String()
}

// ParseAddress parses the string form produced by [Address.String].
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return Address{}, nil
	}
	var (
		addr    Address
		current strings.Builder
		started bool
	)
	flush := func() {
		if started || current.Len() > 0 {
			addr = append(addr, Key(current.String()))
			current.Reset()
			started = false
		}
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			if i+1 >= len(s) {
				return nil, fmt.Errorf("document: invalid address %q: trailing escape", s)
			}
			i++
			current.WriteByte(s[i])
			started = true
		case '.':
			flush()
			started = true // an empty key between dots is a valid key
		case '[':
			flush()
			end := indexUnescaped(s[i+1:], ']')
			if end < 0 {
				return nil, fmt.Errorf("document: invalid address %q: unterminated element segment", s)
			}
			body := s[i+1 : i+1+end]
			if !strings.HasPrefix(body, fingerprintPrefix) {
				return nil, fmt.Errorf("document: invalid address %q: element segment %q is not fingerprint-based", s, body)
			}
			addr = append(addr, Elem(strings.TrimPrefix(body, fingerprintPrefix)))
			i += end + 1
		case ']':
			return nil, fmt.Errorf("document: invalid address %q: unexpected ']'", s)
		default:
			current.WriteByte(c)
			started = true
		}
	}
	flush()
	return addr, nil
}

// indexUnescaped returns the index of the first c in s, or -1.
func indexUnescaped(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

// escapeKey backslash-escapes characters that are structural in the
// address string form.
func escapeKey(key string) string {
	if !strings.ContainsAny(key, `.[]\`) {
		return key
	}
	var sb strings.Builder
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.', '[', ']', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteByte(key[i])
	}
	return sb.String()
}

package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressString(t *testing.T) {
	addr := Address{Key("paths"), Key("/items"), Key("get")}
	assert.Equal(t, "paths./items.get", addr.String())

	withElem := Address{Key("parameters"), Elem("9f86d081"), Key("schema")}
	assert.Equal(t, "parameters[fp:9f86d081].schema", withElem.String())
}

func TestAddressStringEscapesStructuralCharacters(t *testing.T) {
	addr := Address{Key("a.b"), Key(`c[d]`), Key(`e\f`)}
	s := addr.String()
	assert.Equal(t, `a\.b.c\[d\].e\\f`, s)

	parsed, err := ParseAddress(s)
	require.NoError(t, err)
	assert.True(t, addr.Equal(parsed))
}

func TestParseAddressRoundTrip(t *testing.T) {
	addrs := []Address{
		{},
		{Key("info")},
		{Key("paths"), Key("/object/item/{id}"), Key("get")},
		{Key("tags"), Elem(strings.Repeat("ab", 32))},
		{Key("paths"), Key("/a"), Key("get"), Key("parameters"), Elem("00ff"), Key("schema"), Key("format")},
	}
	for _, addr := range addrs {
		parsed, err := ParseAddress(addr.String())
		require.NoError(t, err, "address %q", addr.String())
		assert.True(t, addr.Equal(parsed), "round trip of %q gave %q", addr.String(), parsed.String())
	}
}

func TestParseAddressErrors(t *testing.T) {
	for _, s := range []string{
		`a[fp:12`,       // unterminated element segment
		`a[12ab]`,       // element segment without fingerprint marker
		`a]b`,           // stray closing bracket
		`trailing\`,     // dangling escape
		`a[fp:12]]`,     // double close
	} {
		_, err := ParseAddress(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestAddressChildDoesNotAlias(t *testing.T) {
	base := Address{Key("a"), Key("b")}
	c1 := base.Child(Key("c"))
	c2 := base.Child(Key("d"))
	assert.Equal(t, "a.b.c", c1.String())
	assert.Equal(t, "a.b.d", c2.String())
	assert.Equal(t, "a.b", base.String())
}

func TestAddressParent(t *testing.T) {
	addr := Address{Key("a"), Elem("ff")}
	parent, ok := addr.Parent()
	require.True(t, ok)
	assert.Equal(t, "a", parent.String())

	_, ok = Address{}.Parent()
	assert.False(t, ok)
}

func TestSegmentAccessors(t *testing.T) {
	k := Key("name")
	assert.False(t, k.IsElem())
	assert.Equal(t, "name", k.KeyName())
	assert.Empty(t, k.Fingerprint())

	e := Elem("abcd")
	assert.True(t, e.IsElem())
	assert.Equal(t, "abcd", e.Fingerprint())
	assert.Empty(t, e.KeyName())
}

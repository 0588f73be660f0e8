package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectSetPreservesInsertionOrder(t *testing.T) {
	obj := NewObject()
	obj.Set("zebra", NewScalar(1))
	obj.Set("alpha", NewScalar(2))
	obj.Set("mango", NewScalar(3))
	assert.Equal(t, []string{"zebra", "alpha", "mango"}, obj.Keys())

	// Replacing a value keeps the key's position.
	obj.Set("alpha", NewScalar(99))
	assert.Equal(t, []string{"zebra", "alpha", "mango"}, obj.Keys())
	assert.Equal(t, 99, obj.Field("alpha").Value)
}

func TestObjectDelete(t *testing.T) {
	obj := NewObject()
	obj.Set("a", NewScalar(1))
	obj.Set("b", NewScalar(2))
	obj.Set("c", NewScalar(3))

	assert.True(t, obj.Delete("b"))
	assert.Equal(t, []string{"a", "c"}, obj.Keys())
	assert.Nil(t, obj.Field("b"))
	assert.False(t, obj.Delete("b"))
}

func TestSetPanicsOnNonObject(t *testing.T) {
	arr := NewArray()
	assert.Panics(t, func() { arr.Set("k", NewScalar(1)) })
}

func TestCloneIsDeep(t *testing.T) {
	doc, err := Parse([]byte(`{"a":{"b":[1,2]},"c":"x"}`))
	require.NoError(t, err)

	clone := doc.Root().Clone()
	clone.Field("a").Field("b").Items[0] = NewScalar(42)
	clone.Set("c", NewScalar("changed"))

	assert.Equal(t, 1, doc.Root().Field("a").Field("b").Items[0].Value)
	assert.Equal(t, "x", doc.Root().Field("c").Value)
	assert.Equal(t, 42, clone.Field("a").Field("b").Items[0].Value)
}

func TestEqualIgnoresObjectKeyOrder(t *testing.T) {
	a, err := Parse([]byte(`{"x":1,"y":{"p":true,"q":null}}`))
	require.NoError(t, err)
	b, err := Parse([]byte(`{"y":{"q":null,"p":true},"x":1}`))
	require.NoError(t, err)
	assert.True(t, a.Root().Equal(b.Root()))
}

func TestEqualArrayOrderSignificant(t *testing.T) {
	a, err := Parse([]byte(`{"v":[1,2]}`))
	require.NoError(t, err)
	b, err := Parse([]byte(`{"v":[2,1]}`))
	require.NoError(t, err)
	assert.False(t, a.Root().Equal(b.Root()))
}

func TestEqualUnifiesNumericTypes(t *testing.T) {
	assert.True(t, NewScalar(1).Equal(NewScalar(float64(1))))
	assert.True(t, NewScalar(int64(7)).Equal(NewScalar(7)))
	assert.False(t, NewScalar(1).Equal(NewScalar("1")))
	assert.False(t, NewScalar(1).Equal(NewScalar(2)))
}

func TestFromValueSortsMapKeys(t *testing.T) {
	n := FromValue(map[string]any{"b": 1, "a": []any{"x", true, nil}})
	require.Equal(t, KindObject, n.Kind)
	assert.Equal(t, []string{"a", "b"}, n.Keys())
	require.Equal(t, KindArray, n.Field("a").Kind)
	assert.Equal(t, 3, n.Field("a").Len())
}

func TestInterfaceRoundTrip(t *testing.T) {
	doc, err := Parse([]byte(`{"s":"v","n":3,"b":false,"arr":[1],"obj":{"k":null}}`))
	require.NoError(t, err)

	v := doc.Root().Interface()
	m, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "v", m["s"])
	assert.Equal(t, false, m["b"])
	assert.Nil(t, m["obj"].(map[string]any)["k"])
}

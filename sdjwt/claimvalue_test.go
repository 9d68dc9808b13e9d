package sdjwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValuePreservesKeyOrder(t *testing.T) {
	v, err := ParseValue([]byte(`{"z":1,"a":2,"m":3}`))
	require.NoError(t, err)

	obj, ok := v.AsObject()
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys())
}

func TestParseValuePreservesNumberLiteral(t *testing.T) {
	v, err := ParseValue([]byte(`{"n":1.50}`))
	require.NoError(t, err)

	obj, _ := v.AsObject()
	n, ok := obj.Get("n")
	require.True(t, ok)
	assert.Equal(t, "1.50", n.Number)
}

func TestParseValueRejectsTrailingData(t *testing.T) {
	_, err := ParseValue([]byte(`{"a":1} garbage`))
	assert.Error(t, err)
}

func TestOrderedMapSetPreservesPositionOnUpdate(t *testing.T) {
	m := NewOrderedMap()
	m.Set("a", NumberValue("1"))
	m.Set("b", NumberValue("2"))
	m.Set("a", NumberValue("3"))

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	v, _ := m.Get("a")
	assert.Equal(t, "3", v.Number)
}

func TestOrderedMapDelete(t *testing.T) {
	m := NewOrderedMap()
	m.Set("a", NumberValue("1"))
	m.Set("b", NumberValue("2"))
	m.Delete("a")

	assert.Equal(t, []string{"b"}, m.Keys())
	assert.False(t, m.Has("a"))
}

func TestValueCloneIsDeep(t *testing.T) {
	obj := NewOrderedMap()
	obj.Set("arr", ArrayValue([]Value{StringValue("x")}))
	v := ObjectValue(obj)

	clone := v.Clone()
	cloneObj, _ := clone.AsObject()
	cloneObj.Set("extra", BoolValue(true))

	assert.False(t, obj.Has("extra"))
}

package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeMeasure_RoundTrip(t *testing.T) {
	var rm RuntimeMeasure
	require.NoError(t, json.Unmarshal([]byte(`[10,2,4096]`), &rm))
	assert.Equal(t, RuntimeMeasure{RunTime: 10, GCTime: 2, Bytes: 4096}, rm)

	data, err := json.Marshal(rm)
	require.NoError(t, err)
	assert.JSONEq(t, `[10,2,4096]`, string(data))
}

func TestRuntimeMeasure_RejectsShortArray(t *testing.T) {
	var rm RuntimeMeasure
	err := json.Unmarshal([]byte(`[10,2]`), &rm)
	require.Error(t, err)
}

func TestRelGroup_DecodesPositionalArray(t *testing.T) {
	raw := `["people", "p", [["person", ["name","age"], ["stringcase","integer"], "usage text", [], "a person"]]]`
	var g RelGroup
	require.NoError(t, json.Unmarshal([]byte(raw), &g))
	assert.Equal(t, "people", g.Name)
	assert.Equal(t, "p", g.Symbol)
	require.Len(t, g.Elements, 1)
	assert.Equal(t, "person", g.Elements[0].Name)
	assert.Equal(t, []string{"name", "age"}, g.Elements[0].SignatureNames)
}

func TestRelElement_RejectsShortArray(t *testing.T) {
	var e RelElement
	err := json.Unmarshal([]byte(`["only-name"]`), &e)
	require.Error(t, err)
}

func TestTypeCategoryOf_AndAcceptsValue(t *testing.T) {
	assert.Equal(t, TypeInteger, typeCategoryOf("integer"))
	assert.Equal(t, TypeString, typeCategoryOf("stringnocase"))
	assert.Equal(t, TypeDateTime, typeCategoryOf("timestamp"))
	assert.Equal(t, TypeAny, typeCategoryOf("unknown-server-type"))

	assert.True(t, acceptsValue(TypeInteger, 5))
	assert.False(t, acceptsValue(TypeInteger, "5"))
	assert.True(t, acceptsValue(TypeDouble, 5))
	assert.True(t, acceptsValue(TypeDouble, 5.5))
	assert.True(t, acceptsValue(TypeString, "x"))
	assert.False(t, acceptsValue(TypeBoolean, "true"))
	assert.True(t, acceptsValue(TypeAny, struct{}{}))
}

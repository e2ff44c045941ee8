package idl

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalPreservesKeyOrder(t *testing.T) {
	v, err := Unmarshal([]byte(`{"version":"0.1.0","name":"clubhouse","instructions":[],"accounts":[],"types":[]}`))
	require.NoError(t, err)

	obj, ok := v.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"version", "name", "instructions", "accounts", "types"}, obj.Keys())
}

func TestUnmarshalVariants(t *testing.T) {
	v, err := Unmarshal([]byte(`{"n":null,"b":false,"i":18446744073709551615,"f":-1.5e3,"s":"x","a":[1,[2],{}]}`))
	require.NoError(t, err)

	expected := NewObject(
		P("n", Null{}),
		P("b", Bool(false)),
		P("i", Number("18446744073709551615")),
		P("f", Number("-1.5e3")),
		P("s", String("x")),
		P("a", Array{Number("1"), Array{Number("2")}, NewObject()}),
	)
	assert.True(t, Equal(expected, v))

	// Number text is kept verbatim, not rounded through float64
	obj := v.(*Object)
	i, _ := obj.Get("i")
	assert.Equal(t, Number("18446744073709551615"), i)
}

func TestUnmarshalScalarRoot(t *testing.T) {
	v, err := Unmarshal([]byte(`  "pubkey"  `))
	require.NoError(t, err)
	assert.Equal(t, String("pubkey"), v)
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"truncated object", `{"a":1`},
		{"truncated array", `[1,2`},
		{"trailing value", `{} {}`},
		{"trailing garbage", `{} x`},
		{"bad literal", `{"a":tru}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestMarshalRoundTripKeepsOrder(t *testing.T) {
	input := `{"z":1,"a":{"y":[true,null,"s"],"b":2.50},"m":"<&>"}`
	v, err := Unmarshal([]byte(input))
	require.NoError(t, err)

	out, err := Marshal(v)
	require.NoError(t, err)
	// No HTML escaping, number text untouched
	assert.Equal(t, input, string(out))
}

func TestMarshalLineSeparatorsRaw(t *testing.T) {
	v := NewObject(P("docs", String("a\u2028b\u2029c")), P("path", String(`\u2028`)))

	out, err := Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "{\"docs\":\"a\u2028b\u2029c\",\"path\":\"\\\\u2028\"}", string(out))

	indented, err := MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(indented), "\"a\u2028b\u2029c\"")
}

func TestMarshalIndent(t *testing.T) {
	v := NewObject(
		P("name", String("House")),
		P("fields", Array{NewObject(P("type", String("publicKey")))}),
		P("empty", Array{}),
	)

	out, err := MarshalIndent(v, "", "  ")
	require.NoError(t, err)

	expected := strings.Join([]string{
		`{`,
		`  "name": "House",`,
		`  "fields": [`,
		`    {`,
		`      "type": "publicKey"`,
		`    }`,
		`  ],`,
		`  "empty": []`,
		`}`,
	}, "\n")
	assert.Equal(t, expected, string(out))
}

func TestMarshalRejectsInvalidNumber(t *testing.T) {
	_, err := Marshal(Array{Number("1.2.3")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array[0]")
}

func TestMarshalRejectsNilValue(t *testing.T) {
	_, err := Marshal(NewObject(P("a", nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"a"`)
}

func TestObjectJSONInterop(t *testing.T) {
	type envelope struct {
		Data *Object `json:"data"`
	}

	in := envelope{Data: NewObject(P("b", Number("1")), P("a", String("x")))}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"b":1,"a":"x"}}`, string(data))

	var out envelope
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, []string{"b", "a"}, out.Data.Keys())

	var wrong envelope
	err = json.Unmarshal([]byte(`{"data":[1]}`), &wrong)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected JSON object")
}

package transform

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/idlsdk/internal/idl"
)

// mustParse decodes a JSON literal, failing the test on error.
func mustParse(t *testing.T, s string) idl.Value {
	t.Helper()
	v, err := idl.Unmarshal([]byte(s))
	require.NoError(t, err)
	return v
}

// assertJSON compares v against an expected JSON literal, ignoring key order.
func assertJSON(t *testing.T, expected string, v idl.Value) {
	t.Helper()
	data, err := idl.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, expected, string(data))
}

func TestNormalizeReferences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare tag", `{"type":"pubkey"}`, `{"type":"publicKey"}`},
		{"option wrapper", `{"type":{"option":"pubkey"}}`, `{"type":{"option":"publicKey"}}`},
		{"other field name untouched", `{"notType":"pubkey"}`, `{"notType":"pubkey"}`},
		{"vec wrapper untouched", `{"type":{"vec":"pubkey"}}`, `{"type":{"vec":"pubkey"}}`},
		{"nested option untouched", `{"type":{"option":{"vec":"pubkey"}}}`, `{"type":{"option":{"vec":"pubkey"}}}`},
		{"other tags untouched", `{"type":"u64"}`, `{"type":"u64"}`},
		{
			"deep in arrays",
			`{"fields":[{"name":"a","type":"pubkey"},{"name":"b","type":{"option":"pubkey"}}]}`,
			`{"fields":[{"name":"a","type":"publicKey"},{"name":"b","type":{"option":"publicKey"}}]}`,
		},
		{"scalar root", `"pubkey"`, `"pubkey"`},
		{"array root", `[{"type":"pubkey"},1,null]`, `[{"type":"publicKey"},1,null]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertJSON(t, tt.expected, NormalizeReferences(mustParse(t, tt.input)))
		})
	}
}

func TestNormalizeReferencesKeepsOptionSiblings(t *testing.T) {
	out := NormalizeReferences(mustParse(t, `{"type":{"option":"pubkey","docs":["x"]}}`))

	obj := out.(*idl.Object)
	typ, ok := obj.GetObject("type")
	require.True(t, ok)
	assert.Equal(t, []string{"option", "docs"}, typ.Keys())
	assertJSON(t, `{"type":{"option":"publicKey","docs":["x"]}}`, out)
}

func TestSimplifyReferences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"field type", `{"type":{"defined":{"name":"Foo"}}}`, `{"type":{"defined":"Foo"}}`},
		{"extra inner fields dropped", `{"type":{"defined":{"name":"Foo","generics":[]}}}`, `{"type":{"defined":"Foo"}}`},
		{"any field name", `{"option":{"defined":{"name":"Foo"}}}`, `{"option":{"defined":"Foo"}}`},
		{
			"nested wrapper",
			`{"type":{"option":{"defined":{"name":"Cfg"}}}}`,
			`{"type":{"option":{"defined":"Cfg"}}}`,
		},
		{
			"siblings of defined kept",
			`{"type":{"defined":{"name":"Foo"},"docs":"d"}}`,
			`{"type":{"defined":"Foo","docs":"d"}}`,
		},
		{"already simplified", `{"type":{"defined":"Foo"}}`, `{"type":{"defined":"Foo"}}`},
		{"defined without name", `{"type":{"defined":{"id":"Foo"}}}`, `{"type":{"defined":{"id":"Foo"}}}`},
		{"empty name", `{"type":{"defined":{"name":""}}}`, `{"type":{"defined":{"name":""}}}`},
		{"non-string name", `{"type":{"defined":{"name":3}}}`, `{"type":{"defined":{"name":3}}}`},
		{"root is not a candidate", `{"defined":{"name":"Foo"}}`, `{"defined":{"name":"Foo"}}`},
		{
			"array elements are not candidates",
			`{"fields":[{"defined":{"name":"Foo"}}]}`,
			`{"fields":[{"defined":{"name":"Foo"}}]}`,
		},
		{
			"fields of array elements are",
			`{"fields":[{"type":{"defined":{"name":"Foo"}}}]}`,
			`{"fields":[{"type":{"defined":"Foo"}}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertJSON(t, tt.expected, SimplifyReferences(mustParse(t, tt.input)))
		})
	}
}

func TestPassesAreIdempotent(t *testing.T) {
	doc := mustParse(t, `{
		"types":[{"name":"A","type":{"kind":"struct","fields":[
			{"name":"k","type":"pubkey"},
			{"name":"o","type":{"option":"pubkey"}},
			{"name":"d","type":{"defined":{"name":"B"}}}
		]}}]
	}`)

	once := NormalizeReferences(doc)
	assert.True(t, idl.Equal(once, NormalizeReferences(once)))

	simplified := SimplifyReferences(doc)
	assert.True(t, idl.Equal(simplified, SimplifyReferences(simplified)))
}

func TestWalkPreservesStructure(t *testing.T) {
	input := `{"b":[1,2.50,"x",true,null,[],{}],"a":{"z":{"y":"pubkey"}}}`
	doc := mustParse(t, input)

	out := Walk(doc, func(*idl.Object) {})

	data, err := idl.Marshal(out)
	require.NoError(t, err)
	// Byte-identical: key order, array order and number text survive
	assert.Equal(t, input, string(data))
}

func TestWalkDoesNotAlias(t *testing.T) {
	doc := mustParse(t, `{"list":[{"type":"pubkey"}],"inner":{"k":"v"}}`)
	before, err := idl.Marshal(doc)
	require.NoError(t, err)

	out := Walk(doc, func(*idl.Object) {}).(*idl.Object)

	inOuter := doc.(*idl.Object)
	inInner, _ := inOuter.GetObject("inner")
	outInner, _ := out.GetObject("inner")
	assert.NotSame(t, inOuter, out)
	assert.NotSame(t, inInner, outInner)

	// Mutating the output must not reach the input
	outInner.Set("k", idl.String("changed"))
	list, _ := out.Get("list")
	list.(idl.Array)[0].(*idl.Object).Set("type", idl.String("mutated"))
	list.(idl.Array)[0] = idl.Null{}

	after, err := idl.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestPassesDoNotMutateInput(t *testing.T) {
	input := `{
		"types":[{"name":"A","x":{"type":"pubkey"},"d":{"defined":{"name":"B"}}}],
		"accounts":[{"name":"A","y":2}]
	}`
	doc := mustParse(t, input)
	before, err := idl.Marshal(doc)
	require.NoError(t, err)

	out, err := Transform(doc)
	require.NoError(t, err)

	after, err := idl.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	// Merged account fields are copies, not shared with types
	root := out.(*idl.Object)
	accounts, _ := root.Get("accounts")
	account := accounts.(idl.Array)[0].(*idl.Object)
	x, _ := account.GetObject("x")
	x.Set("type", idl.String("mutated"))

	types, _ := root.Get("types")
	typeX, _ := types.(idl.Array)[0].(*idl.Object).GetObject("x")
	typ, _ := typeX.GetString("type")
	assert.Equal(t, "publicKey", typ)
}

func TestMergeTypesIntoAccounts(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"adds type fields",
			`{"types":[{"name":"A","x":1}],"accounts":[{"name":"A","y":2}]}`,
			`{"types":[{"name":"A","x":1}],"accounts":[{"name":"A","y":2,"x":1}]}`,
		},
		{
			"no matching type",
			`{"types":[{"name":"A","x":1}],"accounts":[{"name":"B"}]}`,
			`{"types":[{"name":"A","x":1}],"accounts":[{"name":"B"}]}`,
		},
		{
			"account fields win",
			`{"types":[{"name":"A","x":1,"docs":["type"]}],"accounts":[{"name":"A","docs":["account"]}]}`,
			`{"types":[{"name":"A","x":1,"docs":["type"]}],"accounts":[{"name":"A","docs":["account"],"x":1}]}`,
		},
		{
			"shallow merge replaces nested objects",
			`{"types":[{"name":"A","type":{"kind":"struct","fields":[]}}],"accounts":[{"name":"A","type":{"kind":"enum"}}]}`,
			`{"types":[{"name":"A","type":{"kind":"struct","fields":[]}}],"accounts":[{"name":"A","type":{"kind":"enum"}}]}`,
		},
		{
			"last duplicate type wins",
			`{"types":[{"name":"A","x":1},{"name":"A","z":3}],"accounts":[{"name":"A"}]}`,
			`{"types":[{"name":"A","x":1},{"name":"A","z":3}],"accounts":[{"name":"A","z":3}]}`,
		},
		{
			"missing types",
			`{"accounts":[{"name":"A"}],"instructions":[]}`,
			`{"accounts":[{"name":"A"}],"instructions":[]}`,
		},
		{
			"missing accounts",
			`{"types":[{"name":"A","x":1}]}`,
			`{"types":[{"name":"A","x":1}]}`,
		},
		{
			"null accounts",
			`{"types":[{"name":"A"}],"accounts":null}`,
			`{"types":[{"name":"A"}],"accounts":null}`,
		},
		{
			"empty names never match",
			`{"types":[{"name":"","x":1}],"accounts":[{"name":"","y":2}]}`,
			`{"types":[{"name":"","x":1}],"accounts":[{"name":"","y":2}]}`,
		},
		{
			"empty account name skipped among named",
			`{"types":[{"name":"A","x":1},{"name":"","z":3}],"accounts":[{"name":""},{"name":"A"}]}`,
			`{"types":[{"name":"A","x":1},{"name":"","z":3}],"accounts":[{"name":""},{"name":"A","x":1}]}`,
		},
		{"scalar root", `42`, `42`},
		{
			"order of accounts kept",
			`{"types":[{"name":"B","b":1},{"name":"A","a":1}],"accounts":[{"name":"A"},{"name":"C"},{"name":"B"}]}`,
			`{"types":[{"name":"B","b":1},{"name":"A","a":1}],"accounts":[{"name":"A","a":1},{"name":"C"},{"name":"B","b":1}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MergeTypesIntoAccounts(mustParse(t, tt.input))
			require.NoError(t, err)
			assertJSON(t, tt.expected, out)
		})
	}
}

func TestMergeKeyOrder(t *testing.T) {
	out, err := MergeTypesIntoAccounts(mustParse(t,
		`{"types":[{"name":"A","x":1}],"accounts":[{"name":"A","y":2}]}`))
	require.NoError(t, err)

	root := out.(*idl.Object)
	assert.Equal(t, []string{"types", "accounts"}, root.Keys())

	accounts, _ := root.Get("accounts")
	account := accounts.(idl.Array)[0].(*idl.Object)
	assert.Equal(t, []string{"name", "y", "x"}, account.Keys())
}

func TestMergeInvalidShape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		path  string
	}{
		{"types not array", `{"types":{},"accounts":[]}`, "types"},
		{"accounts not array", `{"types":[],"accounts":"x"}`, "accounts"},
		{"type not object", `{"types":[1],"accounts":[]}`, "types[0]"},
		{"account not object", `{"types":[],"accounts":[{"name":"A"},[]]}`, "accounts[1]"},
		{"type without name", `{"types":[{"x":1}],"accounts":[]}`, "types[0].name"},
		{"account name not string", `{"types":[],"accounts":[{"name":7}]}`, "accounts[0].name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.input)

			_, err := MergeTypesIntoAccounts(doc)
			require.Error(t, err)
			assert.True(t, IsShapeError(err))

			var se *ShapeError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, InvalidShape, se.Kind)
			assert.Equal(t, tt.path, se.Path)

			assert.Equal(t, err.Error(), CheckShape(doc).Error())
		})
	}
}

func TestMergeShapeIgnoredWhenEitherFieldAbsent(t *testing.T) {
	doc := mustParse(t, `{"types":"not an array"}`)

	out, err := MergeTypesIntoAccounts(doc)
	require.NoError(t, err)
	assertJSON(t, `{"types":"not an array"}`, out)
	assert.NoError(t, CheckShape(doc))
}

func TestTransformEndToEnd(t *testing.T) {
	// pk is not under a "type" key, so its tag is not rewritten
	doc := mustParse(t, `{
		"types":[{"name":"Bar","field":{"defined":{"name":"Pk"}},"pk":"pubkey"}],
		"accounts":[{"name":"Bar"}]
	}`)

	out, err := Transform(doc)
	require.NoError(t, err)
	assertJSON(t, `{
		"types":[{"name":"Bar","field":{"defined":"Pk"},"pk":"pubkey"}],
		"accounts":[{"name":"Bar","field":{"defined":"Pk"},"pk":"pubkey"}]
	}`, out)
}

func TestTransformWithoutDefinitions(t *testing.T) {
	out, err := Transform(mustParse(t, `{"instructions":[{"args":[{"name":"a","type":"pubkey"}]}]}`))
	require.NoError(t, err)
	assertJSON(t, `{"instructions":[{"args":[{"name":"a","type":"publicKey"}]}]}`, out)
}

func TestTransformShapeError(t *testing.T) {
	_, err := Transform(mustParse(t, `{"types":[{"name":"A"}],"accounts":[{}]}`))
	require.Error(t, err)
	assert.True(t, IsShapeError(err))
	assert.Contains(t, err.Error(), "merge types into accounts")
	assert.Contains(t, err.Error(), "accounts[0].name")
}

func TestPipelineReport(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "clubhouse.json"))
	require.NoError(t, err)
	doc, err := idl.Unmarshal(data)
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	result, err := NewPipeline(WithLogger(logger)).Run(doc)
	require.NoError(t, err)

	assert.Equal(t, Report{
		NormalizedTags: 7,
		SimplifiedRefs: 4,
		MergedAccounts: 3,
	}, result.Report)

	assert.Contains(t, logs.String(), "pass=normalize")
	assert.Contains(t, logs.String(), "pass=simplify")
	assert.Contains(t, logs.String(), "pass=merge")
	assert.Contains(t, logs.String(), "transform complete")
}

func TestWithLoggerNilKeepsDefault(t *testing.T) {
	p := NewPipeline(WithLogger(nil))
	require.NotNil(t, p.logger)
}

func TestClubhouseGolden(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "clubhouse.json"))
	require.NoError(t, err)
	doc, err := idl.Unmarshal(data)
	require.NoError(t, err)

	out, err := Transform(doc)
	require.NoError(t, err)

	rendered, err := idl.MarshalIndent(out, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "clubhouse", rendered)
}

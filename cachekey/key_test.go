package cachekey_test

import (
	"testing"

	"github.com/on-the-ground/memoized_go/cachekey"
	"github.com/on-the-ground/memoized_go/signature"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildKey(t *testing.T, shape signature.Shape, args signature.Args) cachekey.Key {
	t.Helper()
	b, err := shape.Bind(args)
	require.NoError(t, err)
	k, err := cachekey.Build(b)
	require.NoError(t, err)
	return k
}

func TestBuildTotalScenario(t *testing.T) {
	shape := signature.Synthesize(signature.MustClassify(signature.Req("a"), signature.Opt("b", 10)))

	omitted := buildKey(t, shape, signature.Call(5))
	explicitDefault := buildKey(t, shape, signature.Call(5, 10))
	other := buildKey(t, shape, signature.Call(5, 11))

	assert.Equal(t, []any{5}, omitted.Positional())
	assert.Empty(t, omitted.Keyword())
	assert.True(t, omitted.Equal(explicitDefault))
	assert.Equal(t, omitted.Hash(), explicitDefault.Hash())

	assert.Equal(t, []any{5, 11}, other.Positional())
	assert.False(t, omitted.Equal(other))
	assert.Equal(t, "([5 11] map[])", other.Short())
}

func TestBuildAllKinds(t *testing.T) {
	shape := signature.Synthesize(signature.MustClassify(
		signature.Req("required"),
		signature.Opt("optional", 3),
		signature.Rest("rest"),
		signature.KeyReq("req_keyword"),
		signature.Key("opt_keyword", 11),
		signature.KeyRest("keyrest"),
	))

	k := buildKey(t, shape, signature.Call(2, 3, 5, 5).WithKeywords(map[string]any{
		"req_keyword": 7, "opt_keyword": 11, "first": 13, "second": 13,
	}))
	assert.Equal(t, []any{2, 3, 5, 5}, k.Positional())
	// opt_keyword was passed with its default, so it collapses out of the key.
	assert.Equal(t, map[string]any{"req_keyword": 7, "first": 13, "second": 13}, k.Keyword())

	other := buildKey(t, shape, signature.Call(2, 9, 5).WithKeywords(map[string]any{
		"req_keyword": 7, "opt_keyword": 121, "first": 13,
	}))
	assert.False(t, k.Equal(other))
}

func TestKeywordOrderIndependent(t *testing.T) {
	a, err := cachekey.New(nil, map[string]any{"b": 2, "a": 1, "c": 3})
	require.NoError(t, err)
	b, err := cachekey.New(nil, map[string]any{"c": 3, "a": 1, "b": 2})
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.String(), b.String())
}

func TestRestLengthSensitive(t *testing.T) {
	shape := signature.Synthesize(signature.MustClassify(signature.Rest("xs")))

	one := buildKey(t, shape, signature.Call(1))
	two := buildKey(t, shape, signature.Call(1, 1))
	none := buildKey(t, shape, signature.Call())

	assert.False(t, one.Equal(two))
	assert.False(t, none.Equal(one))
}

func TestKeyDiscrimination(t *testing.T) {
	tests := []struct {
		name string
		a, b []any
	}{
		{"int vs int64", []any{10}, []any{int64(10)}},
		{"int vs string", []any{1}, []any{"1"}},
		{"nil vs zero", []any{nil}, []any{0}},
		{"nil slice vs empty slice", []any{[]int(nil)}, []any{[]int{}}},
		{"nested slice order", []any{[]int{1, 2}}, []any{[]int{2, 1}}},
		{"string boundary", []any{"a,b"}, []any{"a", "b"}},
		{"split vs joined", []any{[]any{1, 2}}, []any{1, 2}},
		{"struct fields", []any{struct{ A, B int }{1, 2}}, []any{struct{ A, B int }{2, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka, err := cachekey.New(tt.a, nil)
			require.NoError(t, err)
			kb, err := cachekey.New(tt.b, nil)
			require.NoError(t, err)
			assert.False(t, ka.Equal(kb), "%s == %s", ka, kb)
		})
	}
}

func TestEqualValuesShareKey(t *testing.T) {
	ka, err := cachekey.New([]any{[]int{1, 2}, map[string]int{"x": 1, "y": 2}}, nil)
	require.NoError(t, err)
	kb, err := cachekey.New([]any{[]int{1, 2}, map[string]int{"y": 2, "x": 1}}, nil)
	require.NoError(t, err)
	assert.True(t, ka.Equal(kb))
}

func TestPointersKeyByIdentity(t *testing.T) {
	x, y := 1, 1
	kx, err := cachekey.New([]any{&x}, nil)
	require.NoError(t, err)
	kx2, err := cachekey.New([]any{&x}, nil)
	require.NoError(t, err)
	ky, err := cachekey.New([]any{&y}, nil)
	require.NoError(t, err)

	assert.True(t, kx.Equal(kx2))
	assert.False(t, kx.Equal(ky))
}

type account struct {
	id   int
	name *string
}

func (a account) MemoKey() any { return a.id }

func TestKeyerOverridesEncoding(t *testing.T) {
	n1, n2 := "a", "b"
	ka, err := cachekey.New([]any{account{id: 7, name: &n1}}, nil)
	require.NoError(t, err)
	kb, err := cachekey.New([]any{account{id: 7, name: &n2}}, nil)
	require.NoError(t, err)
	assert.True(t, ka.Equal(kb))
}

func TestUnkeyableValues(t *testing.T) {
	_, err := cachekey.New([]any{func() {}}, nil)
	assert.ErrorIs(t, err, cachekey.ErrUnkeyable)

	_, err = cachekey.New(nil, map[string]any{"cb": func() {}})
	assert.ErrorIs(t, err, cachekey.ErrUnkeyable)

	loop := []any{nil}
	loop[0] = loop
	_, err = cachekey.New([]any{loop}, nil)
	assert.ErrorIs(t, err, cachekey.ErrUnkeyable)
}

func TestKeyCopiesInputs(t *testing.T) {
	pos := []any{1, 2}
	kw := map[string]any{"a": 1}
	k, err := cachekey.New(pos, kw)
	require.NoError(t, err)

	pos[0] = 99
	kw["a"] = 99
	assert.Equal(t, []any{1, 2}, k.Positional())
	assert.Equal(t, map[string]any{"a": 1}, k.Keyword())
}

package signature_test

import (
	"testing"

	"github.com/on-the-ground/memoized_go/signature"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allKinds() []signature.Param {
	return []signature.Param{
		signature.Req("required"),
		signature.Opt("optional", 3),
		signature.Rest("rest"),
		signature.KeyReq("req_keyword"),
		signature.Key("opt_keyword", 11),
		signature.KeyRest("keyrest"),
	}
}

func TestClassifyEmitsCanonicalOrder(t *testing.T) {
	sig, err := signature.Classify(
		signature.KeyRest("opts"),
		signature.Key("o", 1),
		signature.Req("a"),
		signature.KeyReq("k"),
		signature.Rest("xs"),
		signature.Opt("b", 10),
		signature.Req("c"),
	)
	require.NoError(t, err)

	assert.Equal(t, []signature.Descriptor{
		{Kind: signature.Required, Name: "a"},
		{Kind: signature.Required, Name: "c"},
		{Kind: signature.Optional, Name: "b"},
		{Kind: signature.RestPositional, Name: "xs"},
		{Kind: signature.RequiredKeyword, Name: "k"},
		{Kind: signature.OptionalKeyword, Name: "o"},
		{Kind: signature.RestKeyword, Name: "opts"},
	}, sig.Describe())
	assert.Equal(t, 7, sig.Len())
	assert.False(t, sig.IsNiladic())
}

func TestClassifyRejectsCallback(t *testing.T) {
	_, err := signature.Classify(signature.Req("a"), signature.Block("blk"))
	assert.ErrorIs(t, err, signature.ErrUnsupportedParameter)
}

func TestClassifyRejectsUnknownKind(t *testing.T) {
	_, err := signature.Classify(signature.Param{Kind: signature.Kind(99), Name: "x"})
	assert.ErrorIs(t, err, signature.ErrUnsupportedParameter)
}

func TestClassifyRejectsMultipleRest(t *testing.T) {
	_, err := signature.Classify(signature.Rest("a"), signature.Rest("b"))
	assert.ErrorIs(t, err, signature.ErrInvalidSignature)

	_, err = signature.Classify(signature.KeyRest("a"), signature.KeyRest("b"))
	assert.ErrorIs(t, err, signature.ErrInvalidSignature)
}

func TestClassifyRejectsBadNames(t *testing.T) {
	_, err := signature.Classify(signature.Req(""))
	assert.ErrorIs(t, err, signature.ErrInvalidSignature)

	_, err = signature.Classify(signature.Req("a"), signature.KeyReq("a"))
	assert.ErrorIs(t, err, signature.ErrInvalidSignature)
}

func TestMustClassifyPanics(t *testing.T) {
	assert.Panics(t, func() { signature.MustClassify(signature.Block("b")) })
}

func TestNiladicSignature(t *testing.T) {
	sig, err := signature.Classify()
	require.NoError(t, err)
	assert.True(t, sig.IsNiladic())
	assert.Equal(t, 0, sig.Arity())
	assert.Empty(t, sig.Describe())
}

func TestArity(t *testing.T) {
	tests := []struct {
		name   string
		params []signature.Param
		want   int
	}{
		{"none", nil, 0},
		{"two required", []signature.Param{signature.Req("a"), signature.Req("b")}, 2},
		{"splat", []signature.Param{signature.Rest("args")}, -1},
		{"required and optional", []signature.Param{signature.Req("a"), signature.Opt("b", "default")}, -2},
		{"required and splat", []signature.Param{signature.Req("a"), signature.Rest("args")}, -2},
		{"all kinds", allKinds(), -3},
		{"only keyword rest", []signature.Param{signature.KeyRest("kw")}, -1},
		{"only required keyword", []signature.Param{signature.KeyReq("k")}, 1},
		{"required keyword and optional keyword", []signature.Param{signature.KeyReq("k"), signature.Key("o", 1)}, 1},
		{"optional keyword", []signature.Param{signature.Req("a"), signature.Key("o", 1)}, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := signature.MustClassify(tt.params...)
			assert.Equal(t, tt.want, sig.Arity())
			assert.Equal(t, tt.want, signature.Synthesize(sig).Arity())
		})
	}
}

func TestParseParam(t *testing.T) {
	p, err := signature.ParseParam("opt:b=10")
	require.NoError(t, err)
	assert.Equal(t, signature.Opt("b", 10), p)

	p, err = signature.ParseParam(`key:mode="fast"`)
	require.NoError(t, err)
	assert.Equal(t, signature.Key("mode", "fast"), p)

	p, err = signature.ParseParam("keyrest:opts")
	require.NoError(t, err)
	assert.Equal(t, signature.KeyRest("opts"), p)

	_, err = signature.ParseParam("req:a=1")
	assert.ErrorIs(t, err, signature.ErrInvalidSignature)

	_, err = signature.ParseParam("nope")
	assert.ErrorIs(t, err, signature.ErrInvalidSignature)

	_, err = signature.ParseParam("lambda:f")
	assert.ErrorIs(t, err, signature.ErrUnsupportedParameter)
}

func TestKindRoundTrip(t *testing.T) {
	for _, k := range []signature.Kind{
		signature.Required, signature.Optional, signature.RestPositional,
		signature.RequiredKeyword, signature.OptionalKeyword, signature.RestKeyword,
		signature.Callback,
	} {
		parsed, err := signature.ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
}

func TestSignatureString(t *testing.T) {
	sig := signature.MustClassify(allKinds()...)
	assert.Equal(t, "required, optional = 3, *rest, req_keyword:, opt_keyword: 11, **keyrest", sig.String())
}

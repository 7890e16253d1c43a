// Package cachekey builds canonical cache keys from bound call arguments.
//
// A Key is the pair (positional values, keyword values) of one call, after omitted
// optional arguments have been dropped. Keys compare by a canonical, type-tagged text
// encoding: positional sequences are length-sensitive and keyword maps are compared
// without regard to order.
package cachekey

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/on-the-ground/memoized_go/signature"
)

// ErrUnkeyable is returned for argument values with no stable representation, such as funcs.
var ErrUnkeyable = errors.New("cachekey: value cannot be part of a cache key")

// Key is the canonical form of one call's effective arguments.
type Key struct {
	positional []any
	keyword    map[string]any
	canonical  string
}

// Build derives the key of a bound call:
// required values are pushed, optional values are pushed unless omitted, rest values
// are spliced in, required keywords are inserted, optional keywords are inserted unless
// omitted and keyword rest entries are merged.
func Build(b signature.Bound) (Key, error) {
	var positional []any
	keyword := make(map[string]any)

	for _, p := range b.Signature().Params() {
		switch p.Kind {
		case signature.Required:
			v, _ := b.Raw(p.Name)
			positional = append(positional, v)
		case signature.Optional:
			if v, _ := b.Raw(p.Name); !signature.IsOmitted(v) {
				positional = append(positional, v)
			}
		case signature.RestPositional:
			positional = append(positional, b.Rest()...)
		case signature.RequiredKeyword:
			keyword[p.Name], _ = b.Raw(p.Name)
		case signature.OptionalKeyword:
			if v, _ := b.Raw(p.Name); !signature.IsOmitted(v) {
				keyword[p.Name] = v
			}
		case signature.RestKeyword:
			maps.Copy(keyword, b.KeyRest())
		}
	}
	return New(positional, keyword)
}

// New builds a key directly from positional and keyword values.
func New(positional []any, keyword map[string]any) (Key, error) {
	var e encoder
	e.sb.WriteByte('(')
	if err := e.value(reflect.ValueOf(nonNilSlice(positional)), 0); err != nil {
		return Key{}, err
	}
	e.sb.WriteByte(' ')
	if err := e.value(reflect.ValueOf(nonNil(keyword)), 0); err != nil {
		return Key{}, err
	}
	e.sb.WriteByte(')')

	return Key{
		positional: slices.Clone(positional),
		keyword:    maps.Clone(keyword),
		canonical:  e.sb.String(),
	}, nil
}

// Positional returns a copy of the positional part of the key.
func (k Key) Positional() []any { return slices.Clone(k.positional) }

// Keyword returns a copy of the keyword part of the key.
func (k Key) Keyword() map[string]any { return maps.Clone(nonNil(k.keyword)) }

// Equal reports whether both keys describe the same effective arguments.
func (k Key) Equal(other Key) bool { return k.canonical == other.canonical }

// String returns the canonical encoding. It is stable across processes for value types.
func (k Key) String() string { return k.canonical }

// Hash returns the xxhash64 of the canonical encoding.
func (k Key) Hash() uint64 { return xxhash.Sum64String(k.canonical) }

// Short renders the key for logs, e.g. "([5 11] map[])".
func (k Key) Short() string {
	return fmt.Sprintf("(%v %v)", nonNilSlice(k.positional), nonNil(k.keyword))
}

func nonNilSlice(s []any) []any {
	if s == nil {
		return []any{}
	}
	return s
}

func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

package signature

import "maps"

// Args is one call's actual arguments, as the caller would pass them to the original callable.
type Args struct {
	Positional []any
	Keyword    map[string]any
}

// Call builds Args from positional values.
func Call(positional ...any) Args {
	return Args{Positional: positional}
}

// With returns a copy of a with the keyword name set to v.
func (a Args) With(name string, v any) Args {
	kw := make(map[string]any, len(a.Keyword)+1)
	maps.Copy(kw, a.Keyword)
	kw[name] = v
	return Args{Positional: a.Positional, Keyword: kw}
}

// WithKeywords returns a copy of a with every entry of kw merged in.
func (a Args) WithKeywords(kw map[string]any) Args {
	merged := make(map[string]any, len(a.Keyword)+len(kw))
	maps.Copy(merged, a.Keyword)
	maps.Copy(merged, kw)
	return Args{Positional: a.Positional, Keyword: merged}
}

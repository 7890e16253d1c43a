package signature

import "fmt"

// Kind classifies a single parameter of a memoizable callable.
type Kind int

const (
	// Required is a positional parameter the caller must supply.
	Required Kind = iota + 1
	// Optional is a positional parameter with a default value.
	Optional
	// RestPositional collects any remaining positional values.
	RestPositional
	// RequiredKeyword is a named parameter the caller must supply.
	RequiredKeyword
	// OptionalKeyword is a named parameter with a default value.
	OptionalKeyword
	// RestKeyword collects any remaining named values.
	RestKeyword
	// Callback is a continuation parameter. It has no stable cache key
	// representation and is always rejected by Classify.
	Callback
)

var kindNames = map[Kind]string{
	Required:        "req",
	Optional:        "opt",
	RestPositional:  "rest",
	RequiredKeyword: "keyreq",
	OptionalKeyword: "key",
	RestKeyword:     "keyrest",
	Callback:        "block",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown parameter kind %q", ErrUnsupportedParameter, s)
}

// IsPositional reports whether values for k are passed by position.
func (k Kind) IsPositional() bool {
	return k == Required || k == Optional || k == RestPositional
}

// IsKeyword reports whether values for k are passed by name.
func (k Kind) IsKeyword() bool {
	return k == RequiredKeyword || k == OptionalKeyword || k == RestKeyword
}

// HasDefault reports whether a parameter of kind k may be omitted in favor of its default.
func (k Kind) HasDefault() bool {
	return k == Optional || k == OptionalKeyword
}

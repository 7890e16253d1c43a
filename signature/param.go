package signature

import (
	"fmt"
	"strconv"
	"strings"
)

// Param describes one declared parameter of a callable.
//
// Default is only meaningful for Optional and OptionalKeyword parameters: it is the
// value the original callable would use when the caller omits the argument.
type Param struct {
	Kind    Kind
	Name    string
	Default any
}

func (p Param) String() string {
	switch p.Kind {
	case Required:
		return p.Name
	case Optional:
		return fmt.Sprintf("%s = %#v", p.Name, p.Default)
	case RestPositional:
		return "*" + p.Name
	case RequiredKeyword:
		return p.Name + ":"
	case OptionalKeyword:
		return fmt.Sprintf("%s: %#v", p.Name, p.Default)
	case RestKeyword:
		return "**" + p.Name
	case Callback:
		return "&" + p.Name
	default:
		return fmt.Sprintf("%s(%s)", p.Kind, p.Name)
	}
}

// Req declares a required positional parameter.
func Req(name string) Param { return Param{Kind: Required, Name: name} }

// Opt declares an optional positional parameter with its default.
func Opt(name string, def any) Param { return Param{Kind: Optional, Name: name, Default: def} }

// Rest declares the positional rest parameter.
func Rest(name string) Param { return Param{Kind: RestPositional, Name: name} }

// KeyReq declares a required keyword parameter.
func KeyReq(name string) Param { return Param{Kind: RequiredKeyword, Name: name} }

// Key declares an optional keyword parameter with its default.
func Key(name string, def any) Param { return Param{Kind: OptionalKeyword, Name: name, Default: def} }

// KeyRest declares the keyword rest parameter.
func KeyRest(name string) Param { return Param{Kind: RestKeyword, Name: name} }

// Block declares a callback parameter, which Classify rejects.
func Block(name string) Param { return Param{Kind: Callback, Name: name} }

// ParseParam reads the textual form "<kind>:<name>[=<default>]", e.g. "opt:b=10".
//
// Default literals are read as int, float, bool, nil, or otherwise as a string
// (surrounding double quotes are stripped).
func ParseParam(s string) (Param, error) {
	kindStr, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Param{}, fmt.Errorf("%w: %q is not <kind>:<name>", ErrInvalidSignature, s)
	}
	kind, err := ParseKind(kindStr)
	if err != nil {
		return Param{}, err
	}
	name, lit, hasDefault := strings.Cut(rest, "=")
	p := Param{Kind: kind, Name: name}
	if hasDefault {
		if !kind.HasDefault() {
			return Param{}, fmt.Errorf("%w: %s parameter %q cannot declare a default", ErrInvalidSignature, kind, name)
		}
		p.Default = parseLiteral(lit)
	}
	return p, nil
}

// ParseParams applies ParseParam to every element.
func ParseParams(ss []string) ([]Param, error) {
	params := make([]Param, 0, len(ss))
	for _, s := range ss {
		p, err := ParseParam(s)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

func parseLiteral(lit string) any {
	if lit == "nil" {
		return nil
	}
	if i, err := strconv.Atoi(lit); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(lit, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(lit); err == nil {
		return b
	}
	if unq, err := strconv.Unquote(lit); err == nil {
		return unq
	}
	return lit
}

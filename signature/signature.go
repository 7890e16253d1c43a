package signature

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedParameter is returned when a parameter kind has no stable cache key
	// representation (callbacks) or is not a known kind at all.
	ErrUnsupportedParameter = errors.New("signature: unsupported parameter")

	// ErrInvalidSignature is returned for malformed parameter lists.
	ErrInvalidSignature = errors.New("signature: invalid signature")
)

// Signature is a classified parameter list. The zero value is the niladic signature.
//
// Source order is not validated, but Params always emits the canonical order:
// required, optional, rest, required keyword, optional keyword, keyword rest.
type Signature struct {
	required []Param
	optional []Param
	rest     []Param
	keyReq   []Param
	keyOpt   []Param
	keyRest  []Param
}

// Classify sorts params into the six parameter buckets and validates the result.
func Classify(params ...Param) (Signature, error) {
	var sig Signature
	seen := make(map[string]struct{}, len(params))

	for _, p := range params {
		if p.Name == "" {
			return Signature{}, fmt.Errorf("%w: %s parameter without a name", ErrInvalidSignature, p.Kind)
		}
		if _, dup := seen[p.Name]; dup {
			return Signature{}, fmt.Errorf("%w: duplicate parameter %q", ErrInvalidSignature, p.Name)
		}
		seen[p.Name] = struct{}{}

		switch p.Kind {
		case Required:
			sig.required = append(sig.required, p)
		case Optional:
			sig.optional = append(sig.optional, p)
		case RestPositional:
			sig.rest = append(sig.rest, p)
		case RequiredKeyword:
			sig.keyReq = append(sig.keyReq, p)
		case OptionalKeyword:
			sig.keyOpt = append(sig.keyOpt, p)
		case RestKeyword:
			sig.keyRest = append(sig.keyRest, p)
		case Callback:
			return Signature{}, fmt.Errorf("%w: cannot memoize a callable that takes a callback (%s)", ErrUnsupportedParameter, p.Name)
		default:
			return Signature{}, fmt.Errorf("%w: %s for %q", ErrUnsupportedParameter, p.Kind, p.Name)
		}
	}

	if len(sig.rest) > 1 || len(sig.keyRest) > 1 {
		return Signature{}, fmt.Errorf("%w: multiple rest or keyword rest parameters", ErrInvalidSignature)
	}
	return sig, nil
}

// MustClassify is the panic-on-failure variant of Classify.
func MustClassify(params ...Param) Signature {
	sig, err := Classify(params...)
	if err != nil {
		panic(err)
	}
	return sig
}

// Params returns the parameters in canonical order.
func (s Signature) Params() []Param {
	out := make([]Param, 0, s.Len())
	out = append(out, s.required...)
	out = append(out, s.optional...)
	out = append(out, s.rest...)
	out = append(out, s.keyReq...)
	out = append(out, s.keyOpt...)
	out = append(out, s.keyRest...)
	return out
}

func (s Signature) Len() int {
	return len(s.required) + len(s.optional) + len(s.rest) +
		len(s.keyReq) + len(s.keyOpt) + len(s.keyRest)
}

// IsNiladic reports whether the signature declares no parameters at all.
func (s Signature) IsNiladic() bool { return s.Len() == 0 }

func (s Signature) Required() []Param        { return clone(s.required) }
func (s Signature) Optional() []Param        { return clone(s.optional) }
func (s Signature) RequiredKeyword() []Param { return clone(s.keyReq) }
func (s Signature) OptionalKeyword() []Param { return clone(s.keyOpt) }

// Rest returns the positional rest parameter, if any.
func (s Signature) Rest() (Param, bool) {
	if len(s.rest) == 0 {
		return Param{}, false
	}
	return s.rest[0], true
}

// KeyRest returns the keyword rest parameter, if any.
func (s Signature) KeyRest() (Param, bool) {
	if len(s.keyRest) == 0 {
		return Param{}, false
	}
	return s.keyRest[0], true
}

// Arity counts arguments the way the original runtime reports it: required positionals,
// plus one when any keyword is required. The result is negated (-n-1) when the callable
// also accepts a variable number of arguments.
func (s Signature) Arity() int {
	n := len(s.required)
	if len(s.keyReq) > 0 {
		n++
	}
	variable := len(s.optional) > 0 || len(s.rest) > 0 ||
		(len(s.keyReq) == 0 && (len(s.keyOpt) > 0 || len(s.keyRest) > 0))
	if variable {
		return -n - 1
	}
	return n
}

func (s Signature) String() string {
	params := s.Params()
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

func clone(ps []Param) []Param {
	if len(ps) == 0 {
		return nil
	}
	return append([]Param(nil), ps...)
}

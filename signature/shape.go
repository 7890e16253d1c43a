package signature

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

var (
	// ErrArity is returned when the number of positional arguments does not fit the shape.
	ErrArity = errors.New("signature: wrong number of arguments")

	// ErrMissingKeyword is returned when a required keyword is not supplied.
	ErrMissingKeyword = errors.New("signature: missing keyword")

	// ErrUnknownKeyword is returned for keywords the shape cannot accept.
	ErrUnknownKeyword = errors.New("signature: unknown keyword")
)

// Descriptor is the introspectable part of a parameter: its kind and name.
type Descriptor struct {
	Kind Kind
	Name string
}

// Describe lists the parameters as (kind, name) pairs in canonical order.
func (s Signature) Describe() []Descriptor {
	params := s.Params()
	out := make([]Descriptor, len(params))
	for i, p := range params {
		out[i] = Descriptor{Kind: p.Kind, Name: p.Name}
	}
	return out
}

// Shape is the call surface synthesized for a memoized wrapper. It accepts exactly the
// arguments the original callable accepts, with Omitted as the default of every optional slot.
type Shape struct {
	sig   Signature
	slots []Param
}

// Synthesize mirrors sig as a call surface.
func Synthesize(sig Signature) Shape {
	slots := sig.Params()
	for i := range slots {
		if slots[i].Kind.HasDefault() {
			slots[i].Default = Omitted()
		}
	}
	return Shape{sig: sig, slots: slots}
}

// Signature returns the classified signature the shape was synthesized from.
func (s Shape) Signature() Signature { return s.sig }

// Params returns the synthesized slots; optional slots default to Omitted.
func (s Shape) Params() []Param { return slices.Clone(s.slots) }

// Describe lists the slots as (kind, name) pairs. It equals the signature's description.
func (s Shape) Describe() []Descriptor {
	out := make([]Descriptor, len(s.slots))
	for i, p := range s.slots {
		out[i] = Descriptor{Kind: p.Kind, Name: p.Name}
	}
	return out
}

// Arity equals the arity of the original signature.
func (s Shape) Arity() int { return s.sig.Arity() }

func (s Shape) String() string {
	parts := make([]string, len(s.slots))
	for i, p := range s.slots {
		switch p.Kind {
		case Optional:
			parts[i] = p.Name + " = <omitted>"
		case OptionalKeyword:
			parts[i] = p.Name + ": <omitted>"
		default:
			parts[i] = p.String()
		}
	}
	return strings.Join(parts, ", ")
}

// Bind matches a call's arguments to the slots of the shape.
//
// Optional arguments that are not supplied, or that are supplied with a nil or scalar value
// equal to their declared default, are bound as Omitted. A positional optional only collapses to
// Omitted when every later positional optional is omitted too and no rest values were passed,
// so no two distinct calls bind identically.
func (s Shape) Bind(args Args) (Bound, error) {
	sig := s.sig
	pos := args.Positional
	nreq, nopt := len(sig.required), len(sig.optional)
	_, hasRest := sig.Rest()
	_, hasKeyRest := sig.KeyRest()

	if len(pos) < nreq || (!hasRest && len(pos) > nreq+nopt) {
		return Bound{}, fmt.Errorf("%w (given %d, expected %s)", ErrArity, len(pos), expected(nreq, nopt, hasRest))
	}

	b := Bound{sig: sig, values: make(map[string]any, sig.Len())}
	for i, p := range sig.required {
		if IsOmitted(pos[i]) {
			return Bound{}, fmt.Errorf("%w: required argument %q cannot be omitted", ErrArity, p.Name)
		}
		b.values[p.Name] = pos[i]
	}
	for i, p := range sig.optional {
		if at := nreq + i; at < len(pos) {
			b.values[p.Name] = pos[at]
		} else {
			b.values[p.Name] = Omitted()
		}
	}
	if hasRest && len(pos) > nreq+nopt {
		b.rest = slices.Clone(pos[nreq+nopt:])
	}

	var missing []string
	for _, p := range sig.keyReq {
		v, ok := args.Keyword[p.Name]
		if !ok || IsOmitted(v) {
			missing = append(missing, p.Name)
			continue
		}
		b.values[p.Name] = v
	}
	if len(missing) > 0 {
		return Bound{}, fmt.Errorf("%w: %s", ErrMissingKeyword, strings.Join(missing, ", "))
	}
	for _, p := range sig.keyOpt {
		if v, ok := args.Keyword[p.Name]; ok {
			b.values[p.Name] = v
		} else {
			b.values[p.Name] = Omitted()
		}
	}

	var unknown []string
	for name, v := range args.Keyword {
		if s.acceptsKeyword(name) {
			continue
		}
		if !hasKeyRest {
			unknown = append(unknown, name)
			continue
		}
		if b.keyRest == nil {
			b.keyRest = make(map[string]any)
		}
		b.keyRest[name] = v
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return Bound{}, fmt.Errorf("%w: %s", ErrUnknownKeyword, strings.Join(unknown, ", "))
	}

	b.collapseDefaults()
	return b, nil
}

func (s Shape) acceptsKeyword(name string) bool {
	for _, p := range s.sig.keyReq {
		if p.Name == name {
			return true
		}
	}
	for _, p := range s.sig.keyOpt {
		if p.Name == name {
			return true
		}
	}
	return false
}

func expected(nreq, nopt int, hasRest bool) string {
	switch {
	case hasRest:
		return fmt.Sprintf("%d+", nreq)
	case nopt > 0:
		return fmt.Sprintf("%d..%d", nreq, nreq+nopt)
	default:
		return fmt.Sprint(nreq)
	}
}

// Bound holds one call's arguments matched to a shape's slots.
type Bound struct {
	sig     Signature
	values  map[string]any
	rest    []any
	keyRest map[string]any
}

func (b *Bound) collapseDefaults() {
	for _, p := range b.sig.keyOpt {
		if v := b.values[p.Name]; !IsOmitted(v) && equalsDefault(v, p.Default) {
			b.values[p.Name] = Omitted()
		}
	}
	// An explicit Omitted followed by a supplied positional cannot be dropped without
	// shifting later values, so it takes the declared default instead.
	last := len(b.sig.optional) - 1
	if len(b.rest) == 0 {
		for last >= 0 && IsOmitted(b.values[b.sig.optional[last].Name]) {
			last--
		}
	}
	for _, p := range b.sig.optional[:last+1] {
		if IsOmitted(b.values[p.Name]) {
			b.values[p.Name] = cloneDefault(p.Default)
		}
	}
	if len(b.rest) > 0 {
		return
	}
	for i := len(b.sig.optional) - 1; i >= 0; i-- {
		p := b.sig.optional[i]
		v := b.values[p.Name]
		if IsOmitted(v) {
			continue
		}
		if !equalsDefault(v, p.Default) {
			return
		}
		b.values[p.Name] = Omitted()
	}
}

// equalsDefault reports whether an explicit argument can be bound as omitted: both are nil,
// or both are scalars of the same type and value. Pointers, slices, maps and structs never
// collapse, since cache keys compare references by identity.
func equalsDefault(v, def any) bool {
	if v == nil || def == nil {
		return v == nil && def == nil
	}
	t := reflect.TypeOf(v)
	if t != reflect.TypeOf(def) {
		return false
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return v == def
	}
	return false
}

// Signature returns the signature the arguments were bound against.
func (b Bound) Signature() Signature { return b.sig }

// Raw returns the bound value of a named slot, Omitted included.
func (b Bound) Raw(name string) (any, bool) {
	v, ok := b.values[name]
	return v, ok
}

// Omitted reports whether the optional slot name was left to its default.
func (b Bound) Omitted(name string) bool {
	v, ok := b.values[name]
	return ok && IsOmitted(v)
}

// Get returns the effective value of name: the bound value, the declared default for an
// omitted optional, the rest values or the keyword rest map. Unknown names yield nil.
func (b Bound) Get(name string) any {
	if v, ok := b.values[name]; ok {
		if IsOmitted(v) {
			return b.defaultOf(name)
		}
		return v
	}
	if p, ok := b.sig.Rest(); ok && p.Name == name {
		return b.Rest()
	}
	if p, ok := b.sig.KeyRest(); ok && p.Name == name {
		return b.KeyRest()
	}
	return nil
}

func (b Bound) defaultOf(name string) any {
	for _, p := range b.sig.optional {
		if p.Name == name {
			return cloneDefault(p.Default)
		}
	}
	for _, p := range b.sig.keyOpt {
		if p.Name == name {
			return cloneDefault(p.Default)
		}
	}
	return nil
}

// cloneDefault copies slice and map defaults so one computation cannot modify the
// default another computation sees.
func cloneDefault(def any) any {
	v := reflect.ValueOf(def)
	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			return def
		}
		c := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(c, v)
		return c.Interface()
	case reflect.Map:
		if v.IsNil() {
			return def
		}
		c := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			c.SetMapIndex(iter.Key(), iter.Value())
		}
		return c.Interface()
	}
	return def
}

// Rest returns a copy of the values collected by the positional rest slot.
func (b Bound) Rest() []any { return slices.Clone(b.rest) }

// KeyRest returns a copy of the entries collected by the keyword rest slot.
func (b Bound) KeyRest() map[string]any {
	if b.keyRest == nil {
		return map[string]any{}
	}
	return maps.Clone(b.keyRest)
}

// Args rebuilds the call as the original callable sees it: omitted optionals are dropped
// so that the original applies its own defaults.
func (b Bound) Args() Args {
	var args Args
	for _, p := range b.sig.required {
		args.Positional = append(args.Positional, b.values[p.Name])
	}
	for _, p := range b.sig.optional {
		v := b.values[p.Name]
		if IsOmitted(v) {
			break
		}
		args.Positional = append(args.Positional, v)
	}
	args.Positional = append(args.Positional, b.rest...)

	kw := make(map[string]any)
	for _, p := range b.sig.keyReq {
		kw[p.Name] = b.values[p.Name]
	}
	for _, p := range b.sig.keyOpt {
		if v := b.values[p.Name]; !IsOmitted(v) {
			kw[p.Name] = v
		}
	}
	maps.Copy(kw, b.keyRest)
	if len(kw) > 0 {
		args.Keyword = kw
	}
	return args
}

package cachekey

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// maxDepth bounds nesting so self-referencing containers fail instead of recursing forever.
const maxDepth = 64

// Keyer lets a type choose the value it is keyed by, e.g. to key a struct holding
// pointers by content rather than by identity.
type Keyer interface {
	MemoKey() any
}

var keyerType = reflect.TypeOf((*Keyer)(nil)).Elem()

type encoder struct {
	sb strings.Builder
}

func (e *encoder) value(v reflect.Value, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("%w: nested deeper than %d levels", ErrUnkeyable, maxDepth)
	}
	if !v.IsValid() {
		e.sb.WriteString("nil")
		return nil
	}

	t := v.Type()
	if t.Implements(keyerType) && v.CanInterface() && !isNilPointer(v) {
		e.sb.WriteString("keyer:")
		e.sb.WriteString(typeName(t))
		e.sb.WriteByte('(')
		if err := e.value(reflect.ValueOf(v.Interface().(Keyer).MemoKey()), depth+1); err != nil {
			return err
		}
		e.sb.WriteByte(')')
		return nil
	}

	e.sb.WriteString(typeName(t))
	e.sb.WriteByte(':')

	switch v.Kind() {
	case reflect.Bool:
		e.sb.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.sb.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.sb.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		e.sb.WriteString(strconv.FormatFloat(v.Float(), 'g', -1, 64))
	case reflect.Complex64, reflect.Complex128:
		e.sb.WriteString(strconv.FormatComplex(v.Complex(), 'g', -1, 128))
	case reflect.String:
		e.sb.WriteString(strconv.Quote(v.String()))

	case reflect.Slice:
		if v.IsNil() {
			e.sb.WriteString("nil")
			return nil
		}
		return e.sequence(v, depth)
	case reflect.Array:
		return e.sequence(v, depth)

	case reflect.Map:
		if v.IsNil() {
			e.sb.WriteString("nil")
			return nil
		}
		return e.mapping(v, depth)

	case reflect.Struct:
		e.sb.WriteByte('{')
		for i := range v.NumField() {
			if i > 0 {
				e.sb.WriteByte(',')
			}
			e.sb.WriteString(t.Field(i).Name)
			e.sb.WriteByte('=')
			if err := e.value(v.Field(i), depth+1); err != nil {
				return err
			}
		}
		e.sb.WriteByte('}')

	case reflect.Interface:
		if v.IsNil() {
			e.sb.WriteString("nil")
			return nil
		}
		return e.value(v.Elem(), depth+1)

	case reflect.Pointer, reflect.Chan:
		// Identity, like any reference without a content-based key.
		if v.IsNil() {
			e.sb.WriteString("nil")
			return nil
		}
		fmt.Fprintf(&e.sb, "@%#x", v.Pointer())

	case reflect.Func, reflect.UnsafePointer:
		return fmt.Errorf("%w: %s has no stable representation", ErrUnkeyable, t)

	default:
		return fmt.Errorf("%w: unsupported kind %s", ErrUnkeyable, v.Kind())
	}
	return nil
}

func (e *encoder) sequence(v reflect.Value, depth int) error {
	n := v.Len()
	fmt.Fprintf(&e.sb, "[%d|", n)
	for i := range n {
		if i > 0 {
			e.sb.WriteByte(',')
		}
		if err := e.value(v.Index(i), depth+1); err != nil {
			return err
		}
	}
	e.sb.WriteByte(']')
	return nil
}

// mapping writes entries sorted by their encoded key, so map iteration order never leaks
// into the key.
func (e *encoder) mapping(v reflect.Value, depth int) error {
	type entry struct{ k, v string }
	entries := make([]entry, 0, v.Len())

	iter := v.MapRange()
	for iter.Next() {
		var ke, ve encoder
		if err := ke.value(iter.Key(), depth+1); err != nil {
			return err
		}
		if err := ve.value(iter.Value(), depth+1); err != nil {
			return err
		}
		entries = append(entries, entry{k: ke.sb.String(), v: ve.sb.String()})
	}
	slices.SortFunc(entries, func(a, b entry) int { return strings.Compare(a.k, b.k) })

	fmt.Fprintf(&e.sb, "{%d|", len(entries))
	for i, en := range entries {
		if i > 0 {
			e.sb.WriteByte(',')
		}
		e.sb.WriteString(en.k)
		e.sb.WriteString("=>")
		e.sb.WriteString(en.v)
	}
	e.sb.WriteByte('}')
	return nil
}

func typeName(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

func isNilPointer(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}

package memoized

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/on-the-ground/memoized_go/cachekey"
	"github.com/on-the-ground/memoized_go/observe"
	"github.com/on-the-ground/memoized_go/shared/helper"
	"github.com/on-the-ground/memoized_go/signature"
)

// Func is the original callable of a member. args holds the bound call; args.Get returns
// the declared default of an omitted optional parameter.
type Func[O Ownable, V any] func(ctx context.Context, owner O, args signature.Bound) (V, error)

// callable is an implementation stored in the indirection table.
type callable interface {
	invoke(ctx context.Context, owner Ownable, args signature.Args) (any, error)
	shape() signature.Shape
}

// Method is a memoized member of a class.
type Method[O Ownable, V any] struct {
	class  *Class
	name   string
	sig    signature.Signature
	shp    signature.Shape
	fn     Func[O, V]
	member observe.Member
}

// Memoize installs a memoized version of fn on class under name and keeps fn reachable
// as UnmemoizedPrefix+name. Memoizing a name that class already memoized returns the
// existing method and ignores sig and fn; if the existing method has different owner or
// result types, ErrAlreadyMemoized is returned.
func Memoize[O Ownable, V any](class *Class, name string, sig signature.Signature, fn Func[O, V]) (*Method[O, V], error) {
	if name == "" || strings.HasPrefix(name, UnmemoizedPrefix) {
		return nil, fmt.Errorf("%w: member %q", ErrInvalidName, name)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: nil func for member %s", ErrInvalidName, name)
	}

	r := class.registry
	txn := r.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tableMember, indexClassMember, class.name, name)
	if err != nil {
		return nil, err
	}
	if existing, ok := helper.GetTypedValueOf2[*memberRecord](func() (any, bool) { return raw, raw != nil }); ok {
		if m, ok := existing.impl.(*Method[O, V]); ok {
			return m, nil
		}
		return nil, fmt.Errorf("%w: %s#%s", ErrAlreadyMemoized, class.name, name)
	}

	m := &Method[O, V]{
		class:  class,
		name:   name,
		sig:    sig,
		shp:    signature.Synthesize(sig),
		fn:     fn,
		member: observe.Member{Class: class.name, Name: name},
	}
	records := []*memberRecord{
		{ID: uuid.NewString(), Class: class.name, Name: UnmemoizedPrefix + name, impl: original[O, V]{m}},
		{ID: uuid.NewString(), Class: class.name, Name: name, Memoized: true, impl: m},
	}
	for _, rec := range records {
		if err := txn.Insert(tableMember, rec); err != nil {
			return nil, err
		}
	}
	txn.Commit()

	r.logger.Debug("member memoized",
		zap.String("class", class.name),
		zap.String("member", name),
		zap.Stringer("shape", m.shp),
		zap.Int("arity", m.shp.Arity()),
	)
	return m, nil
}

// Name returns the member name the method is installed under.
func (m *Method[O, V]) Name() string { return m.name }

// Class returns the class the method was memoized on.
func (m *Method[O, V]) Class() *Class { return m.class }

// Shape returns the call surface of the memoized method. It describes the same
// parameters and arity as the original signature.
func (m *Method[O, V]) Shape() signature.Shape { return m.shp }

func (m *Method[O, V]) shape() signature.Shape { return m.shp }

// Invoke calls the method with positional arguments only.
func (m *Method[O, V]) Invoke(ctx context.Context, owner O, positional ...any) (V, error) {
	return m.Call(ctx, owner, signature.Call(positional...))
}

// Call returns the cached result for the effective arguments of args, calling the
// original callable on a miss. Binding errors are returned before any lookup.
// Errors of the original callable are returned unchanged and nothing is cached.
func (m *Method[O, V]) Call(ctx context.Context, owner O, args signature.Args) (V, error) {
	var zero V

	memo, err := m.ownerOf(owner)
	if err != nil {
		return zero, err
	}
	bound, err := m.shp.Bind(args)
	if err != nil {
		return zero, fmt.Errorf("%s#%s: %w", m.class.name, m.name, err)
	}

	var key *cachekey.Key
	if !m.sig.IsNiladic() {
		k, err := cachekey.Build(bound)
		if err != nil {
			return zero, fmt.Errorf("%s#%s: %w", m.class.name, m.name, err)
		}
		key = &k
	}

	r := m.class.registry
	logger := r.logger.With(
		zap.String("class", m.class.name),
		zap.String("member", m.name),
		zap.Stringer("owner", memo.id),
	)
	if key != nil {
		logger = logger.With(
			zap.String("args", key.Short()),
			zap.String("key", fmt.Sprintf("%016x", key.Hash())),
		)
	}

	v, loaded, err := memo.store.GetOrCompute(ctx, m.name, key, func(ctx context.Context) (any, error) {
		start := time.Now()
		v, err := m.fn(ctx, owner, bound)
		elapsed := time.Since(start)
		r.recorder.Computed(ctx, m.member, elapsed, err)
		if err != nil {
			logger.Warn("memoized computation failed", zap.Duration("elapsed", elapsed), zap.Error(err))
			return nil, err
		}
		logger.Debug("memo miss", zap.Duration("elapsed", elapsed))
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	if loaded {
		r.recorder.Hit(ctx, m.member)
		logger.Debug("memo hit")
	}

	res, err := helper.GetTypedValueOf[V](func() (any, error) { return v, nil })
	if errors.Is(err, helper.ErrUnexpectedType) {
		return zero, fmt.Errorf("%w: %s#%s: %v", ErrResultType, m.class.name, m.name, err)
	}
	return res, err
}

// Original returns the unmemoized callable. Omitted optional arguments take their
// declared defaults, exactly as through Call.
func (m *Method[O, V]) Original() func(ctx context.Context, owner O, args signature.Args) (V, error) {
	return func(ctx context.Context, owner O, args signature.Args) (V, error) {
		var zero V
		if _, err := m.ownerOf(owner); err != nil {
			return zero, err
		}
		bound, err := m.shp.Bind(args)
		if err != nil {
			return zero, fmt.Errorf("%s#%s: %w", m.class.name, m.name, err)
		}
		return m.fn(ctx, owner, bound)
	}
}

func (m *Method[O, V]) ownerOf(owner O) (*Owner, error) {
	memo := memoOf(owner)
	if memo == nil {
		return nil, fmt.Errorf("%w: nil owner for %s#%s", ErrForeignOwner, m.class.name, m.name)
	}
	if !memo.class.IsA(m.class) {
		return nil, fmt.Errorf("%w: %s is not a %s", ErrForeignOwner, memo.class.name, m.class.name)
	}
	return memo, nil
}

func (m *Method[O, V]) invoke(ctx context.Context, owner Ownable, args signature.Args) (any, error) {
	o, ok := owner.(O)
	if !ok {
		return nil, fmt.Errorf("%w: %T cannot call %s#%s", ErrForeignOwner, owner, m.class.name, m.name)
	}
	return m.Call(ctx, o, args)
}

// original is the indirection table entry of the unmemoized callable.
type original[O Ownable, V any] struct {
	m *Method[O, V]
}

func (o original[O, V]) shape() signature.Shape { return o.m.shp }

func (o original[O, V]) invoke(ctx context.Context, owner Ownable, args signature.Args) (any, error) {
	typed, ok := owner.(O)
	if !ok {
		return nil, fmt.Errorf("%w: %T cannot call %s#%s", ErrForeignOwner, owner, o.m.class.name, UnmemoizedPrefix+o.m.name)
	}
	return o.m.Original()(ctx, typed, args)
}

package memoized

import (
	"context"
	"reflect"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/on-the-ground/memoized_go/memostore"
	"github.com/on-the-ground/memoized_go/observe"
)

// Ownable is implemented by types that embed *Owner.
type Ownable interface {
	Memo() *Owner
}

// memoOf returns the Owner behind owner, or nil when owner is nil or a nil pointer.
func memoOf(owner Ownable) *Owner {
	if owner == nil {
		return nil
	}
	if v := reflect.ValueOf(owner); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	return owner.Memo()
}

// Owner carries the memoization state of one instance. Embed it in the owning type:
//
//	type Report struct {
//		*memoized.Owner
//		rows []int
//	}
//
//	r := &Report{Owner: reportClass.NewOwner()}
type Owner struct {
	id    uuid.UUID
	class *Class
	store *memostore.Store
}

// Memo returns o; it makes every type embedding *Owner an Ownable.
func (o *Owner) Memo() *Owner { return o }

// ID identifies the owner in logs.
func (o *Owner) ID() uuid.UUID { return o.id }

// Class returns the class the owner was created from.
func (o *Owner) Class() *Class { return o.class }

// Inspect reports the cache state of member on this owner.
func (o *Owner) Inspect(member string) memostore.Entry {
	return o.store.Inspect(member)
}

// Unmemoize clears every cached value of member on this owner. Clearing a member that
// holds nothing, or that is not memoized at all, is a no-op.
func (o *Owner) Unmemoize(ctx context.Context, member string) {
	if o.store.Invalidate(member) {
		o.invalidated(ctx, member)
	}
}

// UnmemoizeAll clears every member memoized on the owner's class or its ancestors,
// whether or not it has been called.
func (o *Owner) UnmemoizeAll(ctx context.Context) error {
	members, err := o.class.Members()
	if err != nil {
		return err
	}
	for _, member := range o.store.InvalidateAll(members...) {
		o.invalidated(ctx, member)
	}
	return nil
}

func (o *Owner) invalidated(ctx context.Context, member string) {
	r := o.class.registry
	r.recorder.Invalidated(ctx, observe.Member{Class: o.class.name, Name: member})
	r.logger.Debug("memo invalidated",
		zap.String("class", o.class.name),
		zap.String("member", member),
		zap.Stringer("owner", o.id),
	)
}

package memoized

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/on-the-ground/memoized_go/memostore"
	"github.com/on-the-ground/memoized_go/signature"
)

// Class is a named owner type. Its members live in the registry's indirection table.
type Class struct {
	registry *Registry
	id       uuid.UUID
	name     string
	parent   *Class
}

// Name returns the name the class was defined under.
func (c *Class) Name() string { return c.name }

// ID returns the identifier of the class's registry record.
func (c *Class) ID() uuid.UUID { return c.id }

// Parent returns the class c extends, or nil.
func (c *Class) Parent() *Class { return c.parent }

// IsA reports whether c is other or one of its descendants.
func (c *Class) IsA(other *Class) bool {
	for k := c; k != nil; k = k.parent {
		if k == other {
			return true
		}
	}
	return false
}

// NewOwner creates an owner of class c with an empty cache.
func (c *Class) NewOwner() *Owner {
	return &Owner{id: uuid.New(), class: c, store: memostore.New()}
}

// MemberInfo describes one entry of the indirection table.
type MemberInfo struct {
	// Class is the class that defines the member, which may be an ancestor of the class looked up.
	Class    string
	Name     string
	Memoized bool
	Params   []signature.Descriptor
	Arity    int
}

// Lookup resolves name through c and its ancestors.
func (c *Class) Lookup(name string) (MemberInfo, error) {
	rec, err := c.resolve(name)
	if err != nil {
		return MemberInfo{}, err
	}
	shape := rec.impl.shape()
	return MemberInfo{
		Class:    rec.Class,
		Name:     rec.Name,
		Memoized: rec.Memoized,
		Params:   shape.Describe(),
		Arity:    shape.Arity(),
	}, nil
}

// Invoke calls the member registered under name on owner, walking the class chain
// from c. The original callable is reachable as UnmemoizedPrefix+name.
func (c *Class) Invoke(ctx context.Context, owner Ownable, name string, args signature.Args) (any, error) {
	rec, err := c.resolve(name)
	if err != nil {
		return nil, err
	}
	return rec.impl.invoke(ctx, owner, args)
}

// Invoke dispatches name through the class of owner.
func Invoke(ctx context.Context, owner Ownable, name string, args signature.Args) (any, error) {
	memo := memoOf(owner)
	if memo == nil {
		return nil, fmt.Errorf("%w: nil owner", ErrForeignOwner)
	}
	return memo.class.Invoke(ctx, owner, name, args)
}

// Members lists the memoized member names of c and its ancestors.
func (c *Class) Members() ([]string, error) {
	var names []string
	for k := c; k != nil; k = k.parent {
		recs, err := c.registry.members(k.name)
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			if rec.Memoized && !slices.Contains(names, rec.Name) {
				names = append(names, rec.Name)
			}
		}
	}
	slices.Sort(names)
	return names, nil
}

func (c *Class) resolve(name string) (*memberRecord, error) {
	for k := c; k != nil; k = k.parent {
		rec, err := c.registry.member(k.name, name)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%w: %s#%s", ErrUnknownMember, c.name, name)
}

func (c *Class) String() string {
	var chain []string
	for k := c; k != nil; k = k.parent {
		chain = append(chain, k.name)
	}
	return strings.Join(chain, " < ")
}

package memoized

import "errors"

var (
	// ErrInvalidName is returned for an empty class or member name.
	ErrInvalidName = errors.New("memoized: invalid name")

	// ErrClassExists is returned when a class name is defined twice in one registry.
	ErrClassExists = errors.New("memoized: class already defined")

	// ErrUnknownClass is returned for a class that is not defined in the registry.
	ErrUnknownClass = errors.New("memoized: unknown class")

	// ErrAlreadyMemoized is returned when a member is memoized again with different types.
	ErrAlreadyMemoized = errors.New("memoized: member already memoized with different types")

	// ErrForeignOwner is returned when a method is called on an owner of an unrelated class.
	ErrForeignOwner = errors.New("memoized: owner does not belong to the class")

	// ErrUnknownMember is returned when no class in the lookup chain defines the member.
	ErrUnknownMember = errors.New("memoized: unknown member")

	// ErrResultType is returned when a cached value does not have the method's result type.
	ErrResultType = errors.New("memoized: cached value has unexpected type")
)

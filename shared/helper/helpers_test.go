package helper_test

import (
	"errors"
	"testing"

	"github.com/on-the-ground/memoized_go/shared/helper"

	"github.com/stretchr/testify/assert"
)

func TestGetTypedValueOf(t *testing.T) {
	v, err := helper.GetTypedValueOf[int](func() (any, error) { return 7, nil })
	assert.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = helper.GetTypedValueOf[string](func() (any, error) { return 7, nil })
	assert.ErrorIs(t, err, helper.ErrUnexpectedType)

	boom := errors.New("boom")
	_, err = helper.GetTypedValueOf[int](func() (any, error) { return nil, boom })
	assert.Same(t, boom, err)
}

func TestGetTypedValueOfNil(t *testing.T) {
	v, err := helper.GetTypedValueOf[error](func() (any, error) { return nil, nil })
	assert.NoError(t, err)
	assert.Nil(t, v)

	p, err := helper.GetTypedValueOf[*int](func() (any, error) { return (*int)(nil), nil })
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestGetTypedValueOf2(t *testing.T) {
	v, ok := helper.GetTypedValueOf2[string](func() (any, bool) { return "x", true })
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = helper.GetTypedValueOf2[string](func() (any, bool) { return 1, true })
	assert.False(t, ok)

	_, ok = helper.GetTypedValueOf2[string](func() (any, bool) { return nil, false })
	assert.False(t, ok)
}

func TestMustGetTypedValuePanics(t *testing.T) {
	assert.Panics(t, func() {
		helper.MustGetTypedValue[int](func() (any, error) { return "nope", nil })
	})
}

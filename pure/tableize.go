package pure

import (
	"context"

	"github.com/on-the-ground/memoized_go/cachekey"
	"github.com/on-the-ground/memoized_go/memostore"
	"github.com/on-the-ground/memoized_go/shared/helper"
)

func TableizeI1O1[I1, O1 any](pureFn func(I1) O1) func(I1) O1 {
	tableized := tableize(func(args ...any) O1 {
		return pureFn(arg[I1](args[0]))
	})
	return func(i1 I1) O1 {
		return tableized(i1)
	}
}

func TableizeI2O1[I1, I2, O1 any](pureFn func(I1, I2) O1) func(I1, I2) O1 {
	tableized := tableize(func(args ...any) O1 {
		return pureFn(arg[I1](args[0]), arg[I2](args[1]))
	})
	return func(i1 I1, i2 I2) O1 {
		return tableized(i1, i2)
	}
}

func TableizeI3O1[I1, I2, I3, O1 any](pureFn func(I1, I2, I3) O1) func(I1, I2, I3) O1 {
	tableized := tableize(func(args ...any) O1 {
		return pureFn(arg[I1](args[0]), arg[I2](args[1]), arg[I3](args[2]))
	})
	return func(i1 I1, i2 I2, i3 I3) O1 {
		return tableized(i1, i2, i3)
	}
}

func TableizeI4O1[I1, I2, I3, I4, O1 any](pureFn func(I1, I2, I3, I4) O1) func(I1, I2, I3, I4) O1 {
	tableized := tableize(func(args ...any) O1 {
		return pureFn(arg[I1](args[0]), arg[I2](args[1]), arg[I3](args[2]), arg[I4](args[3]))
	})
	return func(i1 I1, i2 I2, i3 I3, i4 I4) O1 {
		return tableized(i1, i2, i3, i4)
	}
}

// table is the name of the single member a tableized function stores under.
const table = "table"

func tableize[O any](pureFn func(...any) O) func(...any) O {
	memo := memostore.New()
	return func(args ...any) O {
		key, err := cachekey.New(args, nil)
		if err != nil {
			panic(err)
		}
		return helper.MustGetTypedValue[O](func() (any, error) {
			v, _, err := memo.GetOrCompute(context.Background(), table, &key,
				func(context.Context) (any, error) {
					return pureFn(args...), nil
				})
			return v, err
		})
	}
}

// arg recovers a typed argument; a nil interface argument comes back as the zero T.
func arg[T any](v any) T {
	t, _ := v.(T)
	return t
}

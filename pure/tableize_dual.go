package pure

func TableizeI1O2[I1, O1, O2 any](pureFn func(I1) (O1, O2)) func(I1) (O1, O2) {
	tableized := tableizeDualOutput(func(args ...any) (O1, O2) {
		return pureFn(arg[I1](args[0]))
	})
	return func(i1 I1) (O1, O2) {
		return tableized(i1)
	}
}

func TableizeI2O2[I1, I2, O1, O2 any](pureFn func(I1, I2) (O1, O2)) func(I1, I2) (O1, O2) {
	tableized := tableizeDualOutput(func(args ...any) (O1, O2) {
		return pureFn(arg[I1](args[0]), arg[I2](args[1]))
	})
	return func(i1 I1, i2 I2) (O1, O2) {
		return tableized(i1, i2)
	}
}

func TableizeI3O2[I1, I2, I3, O1, O2 any](pureFn func(I1, I2, I3) (O1, O2)) func(I1, I2, I3) (O1, O2) {
	tableized := tableizeDualOutput(func(args ...any) (O1, O2) {
		return pureFn(arg[I1](args[0]), arg[I2](args[1]), arg[I3](args[2]))
	})
	return func(i1 I1, i2 I2, i3 I3) (O1, O2) {
		return tableized(i1, i2, i3)
	}
}

func TableizeI4O2[I1, I2, I3, I4, O1, O2 any](pureFn func(I1, I2, I3, I4) (O1, O2)) func(I1, I2, I3, I4) (O1, O2) {
	tableized := tableizeDualOutput(func(args ...any) (O1, O2) {
		return pureFn(arg[I1](args[0]), arg[I2](args[1]), arg[I3](args[2]), arg[I4](args[3]))
	})
	return func(i1 I1, i2 I2, i3 I3, i4 I4) (O1, O2) {
		return tableized(i1, i2, i3, i4)
	}
}

type pair[O1, O2 any] struct {
	first  O1
	second O2
}

func tableizeDualOutput[O1, O2 any](pureFn func(...any) (O1, O2)) func(...any) (O1, O2) {
	tableized := tableize(func(args ...any) pair[O1, O2] {
		o1, o2 := pureFn(args...)
		return pair[O1, O2]{o1, o2}
	})
	return func(args ...any) (O1, O2) {
		p := tableized(args...)
		return p.first, p.second
	}
}

package legacy

func rangeValue(xs []int) []func() int {
	var fs []func() int
	for _, x := range xs {
		fs = append(fs, func() int {
			return x // want "closure captures x, which is shared by every loop iteration"
		})
	}
	return fs
}

func rangeKey(xs []int) []func() int {
	var fs []func() int
	for i := range xs {
		fs = append(fs, func() int {
			return i // want "closure captures i, which is shared by every loop iteration"
		})
	}
	return fs
}

func forClause(n int) []func() int {
	var fs []func() int
	for i := 0; i < n; i++ {
		fs = append(fs, func() int {
			return i // want "closure captures i, which is shared by every loop iteration"
		})
	}
	return fs
}

func bodyCopy(xs []int) []func() int {
	var fs []func() int
	for _, x := range xs {
		v := x
		fs = append(fs, func() int { return v })
	}
	return fs
}

func bodyReassigned(xs []int) []func() int {
	var fs []func() int
	for _, x := range xs {
		v := x
		fs = append(fs, func() int {
			return v // want "closure captures v, which is reassigned after the closure is created"
		})
		v = 0
	}
	return fs
}

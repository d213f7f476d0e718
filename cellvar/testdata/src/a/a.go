package a

import "fmt"

var global int

type printer interface{}

func sharedBinding(printers []printer) {
	var actions []func()
	var p printer
	for i := range printers {
		if printers[i] == nil {
			continue
		}
		p = printers[i]
		actions = append(actions, func() {
			fmt.Println(p) // want "closure captures p, which is shared by every loop iteration"
		})
		p = "something"
		fmt.Println(p)
	}
	for _, action := range actions {
		action()
	}
}

func perIterationReassigned(printers []printer) {
	var actions []func()
	for _, p := range printers {
		if p == nil {
			continue
		}
		action := func() {
			fmt.Println(p) // want "closure captures p, which is reassigned after the closure is created"
		}
		actions = append(actions, action)
		p = "something"
		fmt.Println(p)
	}
	for _, action := range actions {
		action()
	}
}

func snapshot(printers []printer) {
	var actions []func()
	for _, p := range printers {
		v := p
		actions = append(actions, func() {
			fmt.Println(v)
		})
		p = "something"
		fmt.Println(p)
	}
	for _, action := range actions {
		action()
	}
}

func perIterationUnchanged(xs []int) []func() int {
	var fs []func() int
	for _, x := range xs {
		fs = append(fs, func() int { return x })
	}
	return fs
}

func reassignedBefore(xs []int) []func() int {
	var fs []func() int
	for _, x := range xs {
		x *= 2
		fs = append(fs, func() int { return x })
	}
	return fs
}

func forClause(n int) []func() int {
	var fs []func() int
	for i := 0; i < n; i++ {
		fs = append(fs, func() int {
			return i // want "closure captures i, which is reassigned after the closure is created"
		})
		i++
	}
	return fs
}

func rangeAssign(xs []int) []func() int {
	var fs []func() int
	var x int
	for _, x = range xs {
		fs = append(fs, func() int {
			return x // want "closure captures x, which is shared by every loop iteration"
		})
	}
	return fs
}

func outerPost(n int) []func() int {
	var fs []func() int
	var i int
	for i = 0; i < n; i++ {
		fs = append(fs, func() int {
			return i // want "closure captures i, which is shared by every loop iteration"
		})
	}
	return fs
}

func outerUnchanged(xs []int) []func() int {
	var fs []func() int
	base := 10
	for _, x := range xs {
		fs = append(fs, func() int { return base + x })
	}
	return fs
}

func immediatelyCalled(xs []int) int {
	var sum int
	var cur int
	for _, x := range xs {
		cur = x
		func() {
			sum += cur
		}()
	}
	return sum
}

func deferred(xs []string) {
	var cur string
	for _, s := range xs {
		cur = s
		defer func() {
			fmt.Println(cur) // want "closure captures cur, which is shared by every loop iteration"
		}()
	}
}

func goroutine(xs []string, done chan<- string) {
	for _, s := range xs {
		go func() {
			done <- s // want "closure captures s, which is reassigned after the closure is created"
		}()
		s = ""
	}
}

func goroutineArgument(xs []string, done chan<- string) {
	var cur string
	for _, s := range xs {
		cur = s
		go func(v string) {
			done <- v
		}(cur)
	}
}

func counterInsideClosure(xs []int) []func() int {
	var fs []func() int
	n := 0
	for range xs {
		fs = append(fs, func() int {
			n++
			return n
		})
	}
	return fs
}

func globals(xs []int) []func() int {
	var fs []func() int
	for _, x := range xs {
		global = x
		fs = append(fs, func() int { return global })
	}
	return fs
}

type box struct{ v int }

func fields(xs []int) []func() int {
	var fs []func() int
	var b box
	for _, x := range xs {
		b.v = x
		fs = append(fs, func() int { return b.v })
	}
	return fs
}

// Package cellvar defines an analyzer that reports function literals in a loop
// that capture a variable the loop keeps changing.
//
// A closure built inside a loop and called after the iteration that built it
// sees the variable's value at call time. That is a problem when the loop
// assigns the variable after the closure is created, or when the variable is
// declared outside the loop and so is shared by every iteration:
//
//	var p any
//	for _, in := range inputs {
//		p = in
//		actions = append(actions, func() { fmt.Println(p) })
//		p = "something"
//	}
package cellvar

import (
	"go/ast"
	"go/token"
	"go/types"
	"go/version"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

const Doc = `report closures in loops that capture a variable the loop reassigns

A function literal inside a for or range statement that is not called
immediately captures variables by reference. Each captured local variable is
reported if it is declared in the loop and assigned again later in the same
iteration, or if it is declared before the loop and assigned anywhere in it.
In files older than go1.22 the variables declared by the for or range clause
count as declared before the loop. Copy the value into a new variable before creating the closure instead.`

var Analyzer = &analysis.Analyzer{
	Name:     "cellvar",
	Doc:      Doc,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// span is a half-open source range.
type span struct {
	pos, end token.Pos
}

func (s span) contains(p token.Pos) bool {
	return s.pos <= p && p < s.end
}

func nodeSpan(n ast.Node) span {
	return span{n.Pos(), n.End()}
}

// loop is the part of a for or range statement that runs every iteration.
type loop struct {
	stmt span
	// writes outside the body that repeat each iteration
	header []ast.Node
	body   *ast.BlockStmt
	// before go1.22 one variable serves every iteration
	sharedClause bool
	// variables a pre-go1.22 range clause declares and reassigns
	rangeVars []*ast.Ident
}

func newLoop(n ast.Node, sharedClause bool) loop {
	switch n := n.(type) {
	case *ast.ForStmt:
		l := loop{stmt: nodeSpan(n), body: n.Body, sharedClause: sharedClause}
		if n.Post != nil {
			l.header = append(l.header, n.Post)
		}
		return l
	case *ast.RangeStmt:
		l := loop{stmt: nodeSpan(n), body: n.Body, sharedClause: sharedClause}
		for _, e := range []ast.Expr{n.Key, n.Value} {
			if e == nil {
				continue
			}
			switch {
			case n.Tok == token.ASSIGN:
				// for k, v = range xs assigns k and v each iteration
				l.header = append(l.header, e)
			case sharedClause:
				if id, ok := e.(*ast.Ident); ok && id.Name != "_" {
					l.rangeVars = append(l.rangeVars, id)
				}
			}
		}
		return l
	}
	panic("not a loop")
}

// perIteration reports whether v, declared somewhere in the loop, is a fresh
// variable in every iteration.
func (l loop) perIteration(v *types.Var) bool {
	if !l.stmt.contains(v.Pos()) {
		return false
	}
	return !l.sharedClause || nodeSpan(l.body).contains(v.Pos())
}

// sharesLoopVars reports whether f predates per-iteration loop variables. An
// unknown version counts as current.
func sharesLoopVars(info *types.Info, f *ast.File) bool {
	v := info.FileVersions[f]
	return version.IsValid(v) && version.Compare(v, "go1.22") < 0
}

func fileOf(pass *analysis.Pass, pos token.Pos) *ast.File {
	for _, f := range pass.Files {
		if f.FileStart <= pos && pos <= f.FileEnd {
			return f
		}
	}
	return nil
}

// assignedVar returns the local variable written through lhs, if lhs is a
// plain identifier.
func assignedVar(info *types.Info, lhs ast.Expr) *types.Var {
	id, ok := ast.Unparen(lhs).(*ast.Ident)
	if !ok || id.Name == "_" {
		return nil
	}
	// := may define some of its left-hand sides and assign the rest
	if _, defined := info.Defs[id]; defined {
		return nil
	}
	v, _ := info.Uses[id].(*types.Var)
	return v
}

// writes collects the position of every assignment to a variable in n.
func writes(info *types.Info, n ast.Node, into map[*types.Var][]token.Pos) {
	record := func(lhs ast.Expr) {
		if v := assignedVar(info, lhs); v != nil {
			into[v] = append(into[v], lhs.Pos())
		}
	}
	if e, ok := n.(ast.Expr); ok {
		record(e)
		return
	}
	ast.Inspect(n, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.AssignStmt:
			for _, lhs := range n.Lhs {
				record(lhs)
			}
		case *ast.IncDecStmt:
			record(n.X)
		case *ast.RangeStmt:
			if n.Tok == token.ASSIGN {
				if n.Key != nil {
					record(n.Key)
				}
				if n.Value != nil {
					record(n.Value)
				}
			}
		}
		return true
	})
}

// deferredLits returns the function literals in body that may run after the
// statement creating them. A literal that is called on the spot only runs
// later when the call is in a go or defer statement.
func deferredLits(body *ast.BlockStmt) []*ast.FuncLit {
	immediate := make(map[*ast.FuncLit]bool)
	var lits []*ast.FuncLit
	ast.Inspect(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.GoStmt, *ast.DeferStmt:
			var call *ast.CallExpr
			if g, ok := n.(*ast.GoStmt); ok {
				call = g.Call
			} else {
				call = n.(*ast.DeferStmt).Call
			}
			if lit, ok := ast.Unparen(call.Fun).(*ast.FuncLit); ok {
				immediate[lit] = false
			}
		case *ast.CallExpr:
			if lit, ok := ast.Unparen(n.Fun).(*ast.FuncLit); ok {
				if _, seen := immediate[lit]; !seen {
					immediate[lit] = true
				}
			}
		case *ast.FuncLit:
			if !immediate[n] {
				lits = append(lits, n)
			}
		}
		return true
	})
	return lits
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	reported := make(map[token.Pos]bool)

	nodeFilter := []ast.Node{
		(*ast.ForStmt)(nil),
		(*ast.RangeStmt)(nil),
	}
	inspect.Preorder(nodeFilter, func(n ast.Node) {
		f := fileOf(pass, n.Pos())
		l := newLoop(n, f != nil && sharesLoopVars(pass.TypesInfo, f))
		if l.body == nil {
			return
		}
		bodyWrites := make(map[*types.Var][]token.Pos)
		writes(pass.TypesInfo, l.body, bodyWrites)
		headerWrites := make(map[*types.Var][]token.Pos)
		for _, h := range l.header {
			writes(pass.TypesInfo, h, headerWrites)
		}
		for _, id := range l.rangeVars {
			if v, ok := pass.TypesInfo.Defs[id].(*types.Var); ok {
				headerWrites[v] = append(headerWrites[v], id.Pos())
			}
		}

		for _, lit := range deferredLits(l.body) {
			checkLit(pass, l, lit, bodyWrites, headerWrites, reported)
		}
	})
	return nil, nil
}

func checkLit(pass *analysis.Pass, l loop, lit *ast.FuncLit,
	bodyWrites, headerWrites map[*types.Var][]token.Pos,
	reported map[token.Pos]bool) {
	litSpan := nodeSpan(lit)
	pkgScope := pass.Pkg.Scope()
	ast.Inspect(lit.Body, func(n ast.Node) bool {
		id, ok := n.(*ast.Ident)
		if !ok || reported[id.Pos()] {
			return true
		}
		v, ok := pass.TypesInfo.Uses[id].(*types.Var)
		if !ok || v.IsField() || v.Parent() == pkgScope || v.Pkg() != pass.Pkg {
			return true
		}
		if litSpan.contains(v.Pos()) {
			return true
		}
		if l.perIteration(v) {
			for _, w := range bodyWrites[v] {
				if w >= lit.End() && !litSpan.contains(w) {
					reported[id.Pos()] = true
					pass.Reportf(id.Pos(),
						"closure captures %s, which is reassigned after the closure is created",
						id.Name)
					return true
				}
			}
			return true
		}
		shared := len(headerWrites[v]) > 0
		for _, w := range bodyWrites[v] {
			if !litSpan.contains(w) {
				shared = true
				break
			}
		}
		if shared {
			reported[id.Pos()] = true
			pass.Reportf(id.Pos(),
				"closure captures %s, which is shared by every loop iteration",
				id.Name)
		}
		return true
	})
}

// Cellvar reports closures in loops that capture a variable the loop keeps
// reassigning.
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/goose-lang/loopcapture/cellvar"
)

func main() {
	singlechecker.Main(cellvar.Analyzer)
}

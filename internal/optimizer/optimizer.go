// Package optimizer rewrites parsed templates into smaller equivalent
// statement lists before code generation.
package optimizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hassan/volt/internal/parser/ast"
)

// Pass is one rewrite over a statement list.
//
// Run returns the rewritten list and whether anything changed. A pass may
// modify the nodes it is given; callers must not rely on the input list
// afterwards.
type Pass interface {
	// Name returns a human-readable name for this pass
	Name() string

	// Run rewrites stmts, including nested bodies
	Run(stmts []ast.Stmt) ([]ast.Stmt, bool)
}

// defaultMaxIterations bounds the fixed-point loop.
const defaultMaxIterations = 10

// Optimizer runs a sequence of passes until none of them changes the
// template or maxIterations rounds have run.
type Optimizer struct {
	passes        []Pass
	maxIterations int
	logger        zerolog.Logger
	stats         *Stats
}

// NewOptimizer creates an optimizer with the default passes.
//
// DEFAULT PASS ORDER:
//  1. Constant folding, which can turn conditions into literals
//  2. Constant conditions, which splices the taken branch of if true/false
//  3. Dead code, which drops statements after break, continue and return
//  4. Raw merging, which joins the literal text the other passes left
//     adjacent
func NewOptimizer() *Optimizer {
	return &Optimizer{
		passes: []Pass{
			&ConstantFoldingPass{},
			&ConstantConditionPass{},
			&DeadCodePass{},
			&MergeRawPass{},
		},
		maxIterations: defaultMaxIterations,
		logger:        zerolog.Nop(),
		stats:         NewStats(),
	}
}

// AddPass appends a pass.
func (o *Optimizer) AddPass(pass Pass) {
	o.passes = append(o.passes, pass)
}

// SetMaxIterations sets the maximum number of rounds over all passes.
func (o *Optimizer) SetMaxIterations(max int) {
	o.maxIterations = max
}

// SetLogger sets the logger that reports pass activity at debug level.
func (o *Optimizer) SetLogger(logger zerolog.Logger) {
	o.logger = logger
}

// Stats returns what the optimizer did so far.
func (o *Optimizer) Stats() *Stats {
	return o.stats
}

// Optimize runs the passes over stmts.
//
// ALGORITHM:
//  1. Run every pass once, in order
//  2. Repeat while some pass reported a change, at most maxIterations times
//
// DESIGN CHOICE: fixed-point iteration because:
//   - Folding a condition to a literal enables ConstantCondition
//   - Splicing a branch can put two raw fragments next to each other for
//     MergeRaw
func (o *Optimizer) Optimize(stmts []ast.Stmt) []ast.Stmt {
	for i := 0; i < o.maxIterations; i++ {
		o.stats.Iterations++

		changed := false
		for _, pass := range o.passes {
			var ok bool
			stmts, ok = pass.Run(stmts)
			if !ok {
				continue
			}
			changed = true
			o.stats.PassChanges[pass.Name()]++
			o.logger.Debug().Str("pass", pass.Name()).Int("iteration", i+1).Msg("pass changed template")
		}

		if !changed {
			break
		}
	}
	return stmts
}

// Stats tracks what the optimizer did.
type Stats struct {
	// Iterations is the number of rounds over all passes
	Iterations int

	// PassChanges counts, per pass, the rounds in which it changed something
	PassChanges map[string]int
}

// NewStats creates an empty stats tracker.
func NewStats() *Stats {
	return &Stats{PassChanges: make(map[string]int)}
}

// String returns a human-readable summary.
func (s *Stats) String() string {
	names := make([]string, 0, len(s.PassChanges))
	for name := range s.PassChanges {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Optimization Stats:\n  Iterations: %d\n", s.Iterations)
	for _, name := range names {
		fmt.Fprintf(&b, "  %s: %d\n", name, s.PassChanges[name])
	}
	return b.String()
}

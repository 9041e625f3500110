// Package expression is the FHIRPath expression tree (spec.md §4.2): a
// closed set of node types, each exposing a single Eval dispatcher, built
// purely functionally over an immutable resource and repository.
package expression

import (
	"fmt"

	"github.com/fhirtools/fhirtools/model"
	"github.com/fhirtools/fhirtools/repository"
)

// Resolver resolves a Reference-valued element to its target (spec.md §4.6).
// Implemented by package reference; declared here to avoid expression
// importing reference (reference needs expression's model types, not the
// other way around).
type Resolver interface {
	Resolve(ctx *EvalContext, ref model.Element) (model.Element, error)
}

// Validator runs the conformance validator against a single element and
// reports whether the highest severity found is below error, for the
// `conformsTo` function (spec.md §4.2 "FHIR supplements").
type Validator interface {
	ConformsTo(ctx *EvalContext, el model.Element, profileURL string) (bool, error)
}

// EvalContext carries the state an expression tree needs beyond the input
// collection flowing through it: the repository for type resolution, the
// original context element ($this at the top level), and hooks for
// `resolve()`/`conformsTo()` (spec.md §6.2 "Evaluator boundary").
type EvalContext struct {
	Repo     *repository.Repository
	Resolver Resolver
	Validator Validator

	// ContextRoot is the element %context should return when no element
	// marked as a context root is found before the tree root (spec.md §4.2).
	ContextRoot model.Element

	// Vars holds external constants (%name) registered by the host beyond
	// the fixed set (%context/%resource/%rootResource/%ucum/$this).
	Vars map[string]model.Collection
}

// NewEvalContext builds an EvalContext over the given repository and root.
func NewEvalContext(repo *repository.Repository, root model.Element) *EvalContext {
	return &EvalContext{Repo: repo, ContextRoot: root, Vars: make(map[string]model.Collection)}
}

// Expression is one node of the compiled FHIRPath tree (spec.md §9
// "single virtual eval dispatcher"). Evaluation is bottom-up: Eval receives
// the current context collection and returns the node's result.
type Expression interface {
	Eval(ctx *EvalContext, input model.Collection) (model.Collection, error)
}

// EvalError is returned by Eval for incompatible operand types or an empty
// input where a singleton was mandatory (spec.md §7 "Expression errors").
type EvalError struct {
	Op  string
	Msg string
}

func (e *EvalError) Error() string {
	if e.Op == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func errf(op, format string, args ...any) error {
	return &EvalError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

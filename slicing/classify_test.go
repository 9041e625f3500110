package slicing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhirtools/fhirtools/model"
	"github.com/fhirtools/fhirtools/repository"
)

// fixedCondition matches elements by reference identity, letting tests
// classify a slice of model.Element without building a real discriminator.
type fixedCondition struct{ want model.Element }

func (c fixedCondition) Matches(_ *MatchContext, el model.Element) (bool, error) {
	return el == c.want, nil
}

func newBoolElement(v bool) model.Element { return model.NewBooleanLiteral(v) }

func TestClassifyMatchesFirstDeclaredSlice(t *testing.T) {
	a, b := newBoolElement(true), newBoolElement(false)
	compiled := &Compiled{
		Rules: repository.RulesOpen,
		Slices: []*CompiledSlice{
			{Name: "a", Conditions: []Condition{fixedCondition{want: a}}},
			{Name: "b", Conditions: []Condition{fixedCondition{want: b}}},
		},
	}
	results := compiled.Classify(nil, []model.Element{a, b})
	require.Len(t, results, 2)
	assert.Equal(t, OutcomeMatched, results[0].Outcome)
	assert.Equal(t, "a", results[0].Slice.Name)
	assert.Equal(t, OutcomeMatched, results[1].Outcome)
	assert.Equal(t, "b", results[1].Slice.Name)
}

func TestClassifyUnmatchedRulesClosedIsViolation(t *testing.T) {
	a, stray := newBoolElement(true), newBoolElement(false)
	compiled := &Compiled{
		Rules:  repository.RulesClosed,
		Slices: []*CompiledSlice{{Name: "a", Conditions: []Condition{fixedCondition{want: a}}}},
	}
	results := compiled.Classify(nil, []model.Element{a, stray})
	assert.Equal(t, OutcomeMatched, results[0].Outcome)
	assert.Equal(t, OutcomeViolation, results[1].Outcome)
}

func TestClassifyUnmatchedRulesOpenIsPermitted(t *testing.T) {
	a, stray := newBoolElement(true), newBoolElement(false)
	compiled := &Compiled{
		Rules:  repository.RulesOpen,
		Slices: []*CompiledSlice{{Name: "a", Conditions: []Condition{fixedCondition{want: a}}}},
	}
	results := compiled.Classify(nil, []model.Element{a, stray})
	assert.Equal(t, OutcomeUnclassifiedOpen, results[1].Outcome)
}

func TestClassifyOrderedOutOfOrderIsViolation(t *testing.T) {
	a, b := newBoolElement(true), newBoolElement(false)
	compiled := &Compiled{
		Rules:   repository.RulesOpen,
		Ordered: true,
		Slices: []*CompiledSlice{
			{Name: "a", Conditions: []Condition{fixedCondition{want: a}}},
			{Name: "b", Conditions: []Condition{fixedCondition{want: b}}},
		},
	}
	// b (slice index 1) matches before a (slice index 0) is seen again — the
	// second occurrence of a is an out-of-order match under Ordered slicing.
	results := compiled.Classify(nil, []model.Element{b, a})
	assert.Equal(t, OutcomeMatched, results[0].Outcome)
	assert.Equal(t, OutcomeViolation, results[1].Outcome, "matching an earlier-declared slice after a later one violates Ordered slicing")
}

func TestCardinalityCountsTalliesMatchedSlices(t *testing.T) {
	classifications := []Classification{
		{Outcome: OutcomeMatched, Slice: &CompiledSlice{Name: "a"}},
		{Outcome: OutcomeMatched, Slice: &CompiledSlice{Name: "a"}},
		{Outcome: OutcomeUnclassifiedOpen},
	}
	counts := CardinalityCounts(classifications)
	assert.Equal(t, 2, counts["a"])
}

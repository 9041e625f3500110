package slicing

import (
	"fmt"

	"github.com/fhirtools/fhirtools/model"
	"github.com/fhirtools/fhirtools/repository"
)

// Outcome is the per-member result of classification.
type Outcome int

// Outcome values.
const (
	// OutcomeMatched means the member matched a declared slice, at Slice index.
	OutcomeMatched Outcome = iota
	// OutcomeUnclassifiedOpen means no slice matched but rules=open permits it.
	OutcomeUnclassifiedOpen
	// OutcomeUnclassifiedOpenAtEnd means no slice matched and the member trails
	// the last matched slice, permitted under rules=openAtEnd.
	OutcomeUnclassifiedOpenAtEnd
	// OutcomeViolation means no slice matched and rules=closed forbids it, or
	// an ordered slicing saw slice indices run out of order.
	OutcomeViolation
	// OutcomeReportOther means no slice matched and rules=reportOther requires
	// the caller to emit a diagnostic (but not a validation error).
	OutcomeReportOther
)

// Classification is one array member's classification result.
type Classification struct {
	Index   int // position within the runtime array
	Outcome Outcome
	Slice   *CompiledSlice // nil unless Outcome == OutcomeMatched
	Err     error          // non-nil only for a Condition evaluation failure
}

// Classify assigns each member of elements to the first slice whose
// conditions match, in declaration order (spec.md §4.4 step 3: "the first
// slice (in declaration order) whose condition matches the member wins").
// When c.Ordered, a match against an earlier-declared slice than the
// highest slice index seen so far is itself a violation (spec.md §4.4 step 3:
// "ordered slicing requires that matched slice indices never decrease").
func (c *Compiled) Classify(mctx *MatchContext, elements []model.Element) []Classification {
	results := make([]Classification, len(elements))
	highestSliceSeen := -1
	lastMatchedEnd := -1

	for i, el := range elements {
		matchedAt := -1
		var matchErr error
		for si, slice := range c.Slices {
			ok, err := slice.Matches(mctx, el)
			if err != nil {
				matchErr = fmt.Errorf("element %d against slice %q: %w", i, slice.Name, err)
				break
			}
			if ok {
				matchedAt = si
				break
			}
		}

		switch {
		case matchErr != nil:
			results[i] = Classification{Index: i, Outcome: OutcomeViolation, Err: matchErr}
		case matchedAt >= 0:
			if c.Ordered && matchedAt < highestSliceSeen {
				results[i] = Classification{Index: i, Outcome: OutcomeViolation, Slice: c.Slices[matchedAt]}
				continue
			}
			highestSliceSeen = matchedAt
			lastMatchedEnd = i
			results[i] = Classification{Index: i, Outcome: OutcomeMatched, Slice: c.Slices[matchedAt]}
		default:
			results[i] = Classification{Index: i, Outcome: c.unmatchedOutcome(i, lastMatchedEnd)}
		}
	}
	return results
}

// unmatchedOutcome applies the rules=open/closed/openAtEnd/reportOther
// semantics to a member that matched no declared slice (spec.md §4.4 step 3).
func (c *Compiled) unmatchedOutcome(index, lastMatchedEnd int) Outcome {
	switch c.Rules {
	case repository.RulesClosed:
		return OutcomeViolation
	case repository.RulesOpenAtEnd:
		if index > lastMatchedEnd {
			return OutcomeUnclassifiedOpenAtEnd
		}
		return OutcomeViolation
	case repository.RulesReportOther:
		return OutcomeReportOther
	default: // open
		return OutcomeUnclassifiedOpen
	}
}

// CardinalityCounts tallies, per slice name, how many members were
// classified to it — the validator combines this with each slice's own
// declared cardinality bound (spec.md §4.4 step 2: "the synthesized slice
// StructureDefinition's root element carries the slice's own min/max").
func CardinalityCounts(classifications []Classification) map[string]int {
	counts := make(map[string]int)
	for _, cl := range classifications {
		if cl.Outcome == OutcomeMatched {
			counts[cl.Slice.Name]++
		}
	}
	return counts
}

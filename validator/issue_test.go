package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighestSeverityIsDebugWhenEmpty(t *testing.T) {
	var r Results
	assert.Equal(t, SeverityDebug, r.HighestSeverity())
	assert.True(t, r.IsValid())
}

func TestHighestSeverityTracksWorstIssue(t *testing.T) {
	var r Results
	r.Add(Issue{Severity: SeverityWarning, Code: CodeCardinality})
	r.Add(Issue{Severity: SeverityInfo, Code: CodeStructure})
	assert.Equal(t, SeverityWarning, r.HighestSeverity())
	assert.True(t, r.IsValid(), "warning does not invalidate")

	r.Add(Issue{Severity: SeverityError, Code: CodeRequired})
	assert.Equal(t, SeverityError, r.HighestSeverity())
	assert.False(t, r.IsValid())
}

func TestMergeAppendsIssuesFromOther(t *testing.T) {
	var a, b Results
	a.Addf(SeverityError, CodeValue, "Patient.gender", "", "bad code %q", "x")
	b.Addf(SeverityWarning, CodeTooLong, "Patient.name", "", "too long")
	a.Merge(&b)
	assert.Len(t, a.Issues, 2)
	assert.Equal(t, SeverityError, a.HighestSeverity())
}

func TestMergeNilIsNoop(t *testing.T) {
	var a Results
	a.Addf(SeverityInfo, CodeStructure, "Patient", "", "fyi")
	a.Merge(nil)
	assert.Len(t, a.Issues, 1)
}

func TestSeverityOrdering(t *testing.T) {
	assert.True(t, SeverityFatal > SeverityError)
	assert.True(t, SeverityError > SeverityWarning)
	assert.True(t, SeverityWarning > SeverityInfo)
	assert.True(t, SeverityInfo > SeverityDebug)
}

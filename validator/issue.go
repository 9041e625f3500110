// Package validator implements the conformance validator: a pre-order walk
// of a resource element tree against one or more activated profiles,
// accumulating issues rather than aborting on the first failure (spec.md
// §4.5). Grounded on gofhir-validator/pkg/validator/validator.go's phase
// sequence and pkg/issue's Issue/Result shape, generalized from JSON-map
// traversal to model.Element traversal against this repository's own
// ElementDefinition data instead of a second, JSON-only structure index.
package validator

import "fmt"

// Severity orders validation issues from least to most severe (spec.md §4.5
// "ValidationResults"): "debug < info < warning < error < fatal".
type Severity int

// Severity values, in increasing order of severity.
const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Code classifies the kind of issue, aligned with FHIR's IssueType value set
// (pkg/issue/issue.go's Code constants).
type Code string

// Code values used by this validator's phases.
const (
	CodeStructure  Code = "structure"
	CodeRequired   Code = "required"
	CodeCardinality Code = "cardinality"
	CodeValue      Code = "value"
	CodeInvariant  Code = "invariant"
	CodeCodeInvalid Code = "code-invalid"
	CodeTooLong    Code = "too-long"
	CodeNotFound   Code = "not-found"
	CodeException  Code = "exception"
)

// Issue is a single validation finding.
type Issue struct {
	Severity    Severity
	Code        Code
	Path        string // FHIRPath-style location, e.g. "Patient.name[0].given"
	ProfileURL  string
	Diagnostics string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", i.Severity, i.Code, i.Path, i.Diagnostics)
}

// Results accumulates every Issue raised while validating a resource against
// one or more profiles (spec.md §4.5: "The validator does not throw on data
// errors; it accumulates").
type Results struct {
	Issues []Issue
}

// Add appends one issue.
func (r *Results) Add(i Issue) {
	r.Issues = append(r.Issues, i)
}

// Addf appends one issue built from a format string.
func (r *Results) Addf(sev Severity, code Code, path, profileURL, format string, args ...any) {
	r.Add(Issue{Severity: sev, Code: code, Path: path, ProfileURL: profileURL, Diagnostics: fmt.Sprintf(format, args...)})
}

// HighestSeverity returns the most severe issue's severity, or SeverityDebug
// if Results holds no issues (the minimum, vacuously "nothing wrong").
func (r *Results) HighestSeverity() Severity {
	highest := SeverityDebug
	for _, i := range r.Issues {
		if i.Severity > highest {
			highest = i.Severity
		}
	}
	return highest
}

// IsValid reports whether the highest severity found is below error — the
// definition `conformsTo()` and the `profile` slicing discriminator both use
// (spec.md §4.4 step 1, §4.2 "FHIR supplements").
func (r *Results) IsValid() bool {
	return r.HighestSeverity() < SeverityError
}

// Merge appends another Results' issues onto r.
func (r *Results) Merge(other *Results) {
	if other == nil {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
}

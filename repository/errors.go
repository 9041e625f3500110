package repository

import (
	"fmt"
	"strings"
)

// Issue is one unresolved reference or structural problem found during
// Repository.Verify (spec.md §4.1 "Failure model").
type Issue struct {
	URL          string
	Version      string
	ElementName  string
	Message      string
	Fatal        bool
}

func (i Issue) String() string {
	loc := i.URL
	if i.Version != "" {
		loc += "|" + i.Version
	}
	if i.ElementName != "" {
		loc += "#" + i.ElementName
	}
	return fmt.Sprintf("%s: %s", loc, i.Message)
}

// LoadError aggregates every fatal Issue found while loading or verifying a
// Repository (spec.md §7 "Repository errors"). Non-fatal issues are carried
// alongside for logging but do not, by themselves, make HasFatal true.
type LoadError struct {
	Issues []Issue
}

func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "repository verification failed with %d issue(s):\n", len(e.Issues))
	for _, issue := range e.Issues {
		b.WriteString("  - ")
		b.WriteString(issue.String())
		b.WriteString("\n")
	}
	return b.String()
}

// HasFatal reports whether any collected issue is fatal.
func (e *LoadError) HasFatal() bool {
	for _, i := range e.Issues {
		if i.Fatal {
			return true
		}
	}
	return false
}

// add appends an issue.
func (e *LoadError) add(issue Issue) { e.Issues = append(e.Issues, issue) }

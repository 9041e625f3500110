package fhirpath

import (
	"fmt"

	"github.com/fhirtools/fhirtools/cache"
	"github.com/fhirtools/fhirtools/expression"
	"github.com/fhirtools/fhirtools/repository"
)

// defaultCacheCapacity bounds how many distinct (repository, source) pairs
// stay compiled; adapted from gofhir-validator's cache.New call sites, which
// size caches for a single long-lived process rather than per-request.
const defaultCacheCapacity = 1024

var compiled = cache.New[string, expression.Expression](defaultCacheCapacity)

// Compile parses src into an expression tree, reusing a previously compiled
// tree for the same (repository, source) pair. repo only participates in
// the cache key. No load-time pass compiles the repository's constraint
// expressions: package validator calls Compile for a constraint the first
// time it evaluates it, and reports a compile failure as an issue.
func Compile(repo *repository.Repository, src string) (expression.Expression, error) {
	key := fmt.Sprintf("%p\x00%s", repo, src)
	if expr, ok := compiled.Get(key); ok {
		return expr, nil
	}
	expr, err := Parse(src)
	if err != nil {
		return nil, err
	}
	compiled.Set(key, expr)
	return expr, nil
}

package engine

import (
	"runtime"
	"sync"

	"github.com/fhirtools/fhirtools/model"
	"github.com/fhirtools/fhirtools/validator"
)

// BatchResult is one resource's outcome within a BatchValidate call.
type BatchResult struct {
	Index   int
	Results *validator.Results
	Err     error
}

// BatchValidate validates every resource in resources against profileURLs,
// fanning the work out across a bounded worker pool (adapted from
// gofhir-validator/worker/pool.go's goroutine-pool shape, simplified here to
// a single fixed-size fan-out/fan-in since every worker shares one
// immutable *repository.Repository and needs no per-job lifecycle beyond
// Validate itself). Results are returned in the same order as resources.
// workers <= 0 defaults to runtime.NumCPU(), matching worker.NewPool.
func (e *Engine) BatchValidate(resources []model.Element, workers int, profileURLs ...string) []BatchResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(resources) {
		workers = len(resources)
	}
	if workers == 0 {
		return nil
	}

	jobs := make(chan int)
	out := make([]BatchResult, len(resources))

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				results, err := e.Validate(resources[i], profileURLs...)
				out[i] = BatchResult{Index: i, Results: results, Err: err}
			}
		}()
	}

	for i := range resources {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return out
}

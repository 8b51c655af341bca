// Package fanout runs independent fetch tasks concurrently and folds
// each failure into that task's default value. Dashboard aggregation is
// best effort: partial results are always shown, nothing is retried,
// and no task blocks another.
package fanout

import (
	"context"
	"sync"
)

// Task is one named, independent fetch. Default is used when Run
// returns an error.
type Task struct {
	Name    string
	Default any
	Run     func(ctx context.Context) (any, error)
}

// Result holds the outcome of a single task
type Result struct {
	Value  any
	Err    error
	Failed bool
}

// Gather runs all tasks concurrently and returns a result per task
// name. A failed task contributes its default value and keeps its error
// for callers that want to log it; the gather itself never fails.
func Gather(ctx context.Context, tasks []Task) map[string]Result {
	results := make([]Result, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			value, err := task.Run(ctx)
			if err != nil {
				results[i] = Result{Value: task.Default, Err: err, Failed: true}
				return
			}
			results[i] = Result{Value: value}
		}(i, task)
	}
	wg.Wait()

	out := make(map[string]Result, len(tasks))
	for i, task := range tasks {
		out[task.Name] = results[i]
	}
	return out
}

// Values flattens a gather into name to value, which is usually all a
// dashboard response needs
func Values(results map[string]Result) map[string]any {
	out := make(map[string]any, len(results))
	for name, r := range results {
		out[name] = r.Value
	}
	return out
}

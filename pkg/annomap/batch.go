package annomap

import (
	"fmt"
	"io"
	"runtime"
	"sync"
)

// BatchOptions controls parallel rendering and error handling.
type BatchOptions struct {
	// Options are shared by every pass. Hooks and Logger must be safe for
	// concurrent use when Parallel is set.
	Options Options

	// Parallel renders inputs on a pool of worker goroutines.
	Parallel bool

	// Workers is the pool size. If 0, defaults to runtime.NumCPU().
	Workers int

	// SkipErrors keeps rendering when an input fails. Failed inputs leave a
	// nil entry in the result. When false, the first error stops the batch.
	SkipErrors bool

	// Progress is called after each input with the number done so far.
	Progress func(done, total int)

	// ErrorLog receives one line per failed input.
	ErrorLog io.Writer
}

// DefaultBatchOptions returns batch options with sensible defaults.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{
		Options:    DefaultOptions(),
		Parallel:   true,
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
	}
}

// RenderBatch renders independent inputs. The maps are returned in input
// order. Each pass owns its placement context, so labels of one input never
// displace labels of another.
//
// Example:
//
//	maps, errs := annomap.RenderBatch(inputs, annomap.BatchOptions{
//	    Options:    annomap.DefaultOptions(),
//	    Parallel:   true,
//	    SkipErrors: true,
//	    Progress: func(done, total int) {
//	        fmt.Printf("\rRendering: %d/%d", done, total)
//	    },
//	})
func RenderBatch(inputs []Input, opts BatchOptions) ([]*Map, []error) {
	if len(inputs) == 0 {
		return []*Map{}, nil
	}
	if !opts.Parallel {
		return renderSerial(inputs, opts)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	type result struct {
		index int
		m     *Map
		err   error
	}

	jobs := make(chan int, len(inputs))
	results := make(chan result, len(inputs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				m, err := Render(inputs[index], opts.Options)
				results <- result{index: index, m: m, err: err}
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	maps := make([]*Map, len(inputs))
	var errs []error
	done := 0
	for r := range results {
		done++
		if opts.Progress != nil {
			opts.Progress(done, len(inputs))
		}

		if r.err != nil {
			err := fmt.Errorf("input %d: %w", r.index, r.err)
			if opts.ErrorLog != nil {
				fmt.Fprintf(opts.ErrorLog, "Error rendering map: %v\n", err)
			}
			if !opts.SkipErrors {
				// Remaining workers drain into the buffered channel.
				return nil, []error{err}
			}
			errs = append(errs, err)
			continue
		}
		maps[r.index] = r.m
	}

	return maps, errs
}

// renderSerial renders inputs one at a time (fallback when Parallel=false).
func renderSerial(inputs []Input, opts BatchOptions) ([]*Map, []error) {
	maps := make([]*Map, len(inputs))
	var errs []error

	for i, in := range inputs {
		m, err := Render(in, opts.Options)
		if opts.Progress != nil {
			opts.Progress(i+1, len(inputs))
		}
		if err != nil {
			err = fmt.Errorf("input %d: %w", i, err)
			if opts.ErrorLog != nil {
				fmt.Fprintf(opts.ErrorLog, "Error rendering map: %v\n", err)
			}
			if !opts.SkipErrors {
				return nil, []error{err}
			}
			errs = append(errs, err)
			continue
		}
		maps[i] = m
	}

	return maps, errs
}

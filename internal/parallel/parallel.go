// Package parallel spreads independent rows of work across goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Config controls how rows are split between workers.
type Config struct {
	Workers int // Goroutines to start; fewer than 2 runs on the caller.
	Chunk   int // Rows a worker claims at a time; batches smaller than this stay on the caller.
}

// DefaultConfig uses one worker per CPU.
func DefaultConfig() Config {
	return Config{
		Workers: runtime.NumCPU(),
		Chunk:   16,
	}
}

// Sequential returns a Config that runs every row on the calling goroutine.
func Sequential() Config {
	return Config{}
}

func (c Config) chunk() int {
	return max(c.Chunk, 1)
}

// Rows calls f(i) for every i in [0, n). Once a row fails no new chunks are
// started, and Rows returns the error of the lowest-numbered failed row.
// f must be safe to call concurrently for distinct i.
func Rows(n int, cfg Config, f func(i int) error) error {
	chunk := cfg.chunk()
	if cfg.Workers < 2 || n <= chunk {
		for i := 0; i < n; i++ {
			if err := f(i); err != nil {
				return err
			}
		}
		return nil
	}

	var (
		next     atomic.Int64
		failed   atomic.Bool
		mu       sync.Mutex
		firstRow = n
		firstErr error
		wg       sync.WaitGroup
	)
	workers := min(cfg.Workers, (n+chunk-1)/chunk)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !failed.Load() {
				start := int(next.Add(int64(chunk))) - chunk
				if start >= n {
					return
				}
				for i := start; i < min(start+chunk, n); i++ {
					if err := f(i); err != nil {
						mu.Lock()
						if i < firstRow {
							firstRow, firstErr = i, err
						}
						mu.Unlock()
						failed.Store(true)
						break
					}
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}

package drift

import (
	"runtime"
	"sync"
)

// minChunk is the smallest slice of particles worth handing to a goroutine.
const minChunk = 64

// ParallelFor splits [0, n) into contiguous chunks and runs fn on each chunk
// concurrently. It blocks until all chunks complete. workers <= 0 selects
// GOMAXPROCS. Small ranges run inline on the calling goroutine.
func ParallelFor(n, workers int, fn func(start, end int)) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if n <= minChunk || workers == 1 {
		fn(0, n)
		return
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}

		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

package agglo

import "sync"

// FillParallel fills m like Fill but spreads the rows over numWorkers
// goroutines. dist must be safe for concurrent calls. If numWorkers <= 1 it
// falls back to the sequential Fill.
//
// The result is bitwise identical to Fill: every pair is computed exactly
// once, by exactly one goroutine.
func (m *TriangularMatrix) FillParallel(dist func(i, j int) float64, numWorkers int) {
	n := m.n
	if numWorkers <= 1 || n <= 2 {
		m.Fill(dist)
		return
	}

	// Row x holds x entries, so equal row counts would leave the last worker
	// with most of the work. Cut the rows where the running pair count
	// crosses each worker's share instead.
	total := triangleSize(n)
	share := (total + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	start := 1
	for start < n {
		end := start
		for end < n && triangleIndex(end+1)-triangleIndex(start) < share {
			end++
		}
		if end == start {
			end++
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fillRows(m, dist, start, end)
		}(start, end)
		start = end
	}

	wg.Wait()
}

package parallel

import "sync"

// Rows calls fn once for every row in [0, n) on the pool and returns the
// first error any call reported. All rows run even after an error; rows
// are independent spans and a failed row leaves the others valid.
func (p *Pool) Rows(n int, fn func(row int) error) error {
	var (
		once     sync.Once
		firstErr error
	)
	tasks := make([]func(), n)
	for y := range tasks {
		tasks[y] = func() {
			if err := fn(y); err != nil {
				once.Do(func() { firstErr = err })
			}
		}
	}
	p.Run(tasks)
	return firstErr
}

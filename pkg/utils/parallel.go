package utils

import "sync"

// ParallelMap 使用最多 workers 个协程并发执行 fn，返回结果与 input 顺序一一对应。
// input 只有 0/1 个元素或 workers <= 1 时直接串行执行。
func ParallelMap[T any, R any](input []T, workers int, fn func(T) R) []R {
	results := make([]R, len(input))
	if len(input) == 0 {
		return results
	}
	if len(input) == 1 || workers <= 1 {
		for i, v := range input {
			results[i] = fn(v)
		}
		return results
	}
	if workers > len(input) {
		workers = len(input)
	}

	indexes := make(chan int, len(input))
	for i := range input {
		indexes <- i
	}
	close(indexes)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = fn(input[i]) // 每个下标只写一次，无需加锁
			}
		}()
	}
	wg.Wait()
	return results
}

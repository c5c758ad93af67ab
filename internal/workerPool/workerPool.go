package workerPool

import (
	"errors"
	"runtime"
	"sync"
)

var (
	ErrQueueFull = errors.New("global queue is full, wait for tasks to finish or increase the buffer")
	ErrRoomFull  = errors.New("room buffer is full, collect results or increase the room size")
)

type Config struct {
	WorkerCount  int // < 1: three workers per CPU
	GlobalBuffer int // < 1: 10000 queued tasks
}

// WorkerPool runs tasks of any Room on a fixed set of goroutines.
type WorkerPool struct {
	config    Config
	taskQueue chan func()
	workers   sync.WaitGroup
	closeOnce sync.Once
}

func NewWorkerPool(config Config) *WorkerPool {
	if config.WorkerCount < 1 {
		config.WorkerCount = runtime.NumCPU() * 3
	}
	if config.GlobalBuffer < 1 {
		config.GlobalBuffer = 10000
	}

	wp := &WorkerPool{
		config:    config,
		taskQueue: make(chan func(), config.GlobalBuffer),
	}
	wp.workers.Add(config.WorkerCount)
	for i := 0; i < config.WorkerCount; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.workers.Done()
	for task := range wp.taskQueue {
		task()
	}
}

// Close stops the workers after the queued tasks ran. No task may be added
// afterwards.
func (wp *WorkerPool) Close() {
	wp.closeOnce.Do(func() {
		close(wp.taskQueue)
		wp.workers.Wait()
	})
}

// Room groups tasks whose results are collected together.
type Room[T any] struct {
	wp      *WorkerPool
	results chan T
	wg      sync.WaitGroup
}

func NewRoom[T any](wp *WorkerPool, size int) *Room[T] {
	return &Room[T]{wp: wp, results: make(chan T, size)}
}

// NewTaskWaitForFreeSlot queues job, blocking while the global queue is full.
func (ro *Room[T]) NewTaskWaitForFreeSlot(job func() T) {
	ro.wg.Add(1)
	ro.wp.taskQueue <- func() {
		defer ro.wg.Done()
		ro.results <- job()
	}
}

// NewTask queues job or fails right away if either buffer is full.
func (ro *Room[T]) NewTask(job func() T) error {
	if len(ro.wp.taskQueue) == cap(ro.wp.taskQueue) {
		return ErrQueueFull
	}
	if len(ro.results) == cap(ro.results) {
		return ErrRoomFull
	}
	ro.NewTaskWaitForFreeSlot(job)
	return nil
}

// Collect waits for every queued task of the room and returns the results in
// completion order.
func (ro *Room[T]) Collect() []T {
	go func() {
		ro.wg.Wait()
		close(ro.results)
	}()

	results := make([]T, 0, cap(ro.results))
	for r := range ro.results {
		results = append(results, r)
	}
	return results
}

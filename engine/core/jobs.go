package core

import (
	"errors"
	"sync"
)

var ErrNoWorkers = errors.New("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = errors.New("job system is shut down")

// JobTask is a unit of CPU work. Run executes on a worker goroutine; the callbacks execute on
// the goroutine calling Update, which is the one that owns the GPU context.
type JobTask struct {
	Name       string
	Run        func() (any, error)
	OnComplete func(result any)
	OnFailure  func(err error)
}

type jobResult struct {
	task   JobTask
	result any
	err    error
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup
	pending    sync.WaitGroup

	mu       sync.Mutex
	finished []jobResult

	// held for reading while a job is enqueued so Shutdown never closes a queue being sent to
	queueMu sync.RWMutex
	closed  bool
}

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}
	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}
	js.start()
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				res := jobResult{task: job}
				if job.Run != nil {
					res.result, res.err = job.Run()
				}
				if res.err != nil {
					LogError("job %q failed: %s", job.Name, res.err)
				}
				js.mu.Lock()
				js.finished = append(js.finished, res)
				js.mu.Unlock()
				js.pending.Done()
			}
		}()
	}
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while the queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	js.queueMu.RLock()
	defer js.queueMu.RUnlock()
	if js.closed {
		return ErrJobSystemClosed
	}
	js.pending.Add(1)
	js.jobQueue <- jt
	return nil
}

/**
 * @brief Runs the callbacks of every job finished since the last call. Should happen once an
 * update cycle, on the owning goroutine.
 * @returns the number of jobs processed.
 */
func (js *JobSystem) Update() int {
	js.mu.Lock()
	done := js.finished
	js.finished = nil
	js.mu.Unlock()

	for _, r := range done {
		if r.err != nil {
			if r.task.OnFailure != nil {
				r.task.OnFailure(r.err)
			}
			continue
		}
		if r.task.OnComplete != nil {
			r.task.OnComplete(r.result)
		}
	}
	return len(done)
}

// Wait blocks until every submitted job has run, then processes their callbacks.
func (js *JobSystem) Wait() int {
	js.pending.Wait()
	return js.Update()
}

/**
 * @brief Shuts the job system down. Queued jobs still run; their callbacks are dropped unless
 * Update is called afterwards.
 */
func (js *JobSystem) Shutdown() error {
	js.queueMu.Lock()
	if js.closed {
		js.queueMu.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.queueMu.Unlock()
	js.wg.Wait()
	return nil
}

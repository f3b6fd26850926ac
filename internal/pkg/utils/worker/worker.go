package worker

// Task represents a unit of work to be processed by a worker
type Task func()

// Worker is a goroutine that processes tasks from a buffered queue
type Worker struct {
	taskQueue chan Task
	stop      chan struct{}
	done      chan struct{}
}

func NewWorker(queueSize int) *Worker {
	return &Worker{
		taskQueue: make(chan Task, queueSize),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start runs the worker loop. A panicking task does not kill the worker.
func (w *Worker) Start() {
	go func() {
		defer close(w.done)
		for {
			select {
			case task := <-w.taskQueue:
				runTask(task)
			case <-w.stop:
				// drain what was already queued
				for {
					select {
					case task := <-w.taskQueue:
						runTask(task)
					default:
						return
					}
				}
			}
		}
	}()
}

func runTask(task Task) {
	defer func() { _ = recover() }()
	task()
}

// Stop signals the worker and waits for queued tasks to finish.
func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
}

func (w *Worker) Submit(task Task) {
	w.taskQueue <- task
}

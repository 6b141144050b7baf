package grbl

import "sync"

// Priority tags a queued line with how it was submitted.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityLow
	PriorityProgram
)

func (p Priority) String() string {
	switch p {
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	case PriorityProgram:
		return "program"
	}
	return "unknown"
}

type pendingCommand struct {
	line     string
	priority Priority
}

// commandQueue is an unbounded FIFO shared by producers and the worker.
type commandQueue struct {
	mx    sync.Mutex
	items []pendingCommand

	// notify holds at most one wakeup for the worker.
	notify chan struct{}
}

func newCommandQueue() *commandQueue {
	return &commandQueue{notify: make(chan struct{}, 1)}
}

func (q *commandQueue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *commandQueue) push(cmds ...pendingCommand) {
	if len(cmds) == 0 {
		return
	}
	q.mx.Lock()
	q.items = append(q.items, cmds...)
	queueDepth.Set(float64(len(q.items)))
	q.mx.Unlock()
	q.signal()
}

// pushIfEmpty queues cmd only when nothing is waiting.
func (q *commandQueue) pushIfEmpty(cmd pendingCommand) bool {
	q.mx.Lock()
	if len(q.items) > 0 {
		q.mx.Unlock()
		return false
	}
	q.items = append(q.items, cmd)
	queueDepth.Set(1)
	q.mx.Unlock()
	q.signal()
	return true
}

func (q *commandQueue) pop() (pendingCommand, bool) {
	q.mx.Lock()
	defer q.mx.Unlock()
	if len(q.items) == 0 {
		return pendingCommand{}, false
	}
	cmd := q.items[0]
	q.items[0] = pendingCommand{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	queueDepth.Set(float64(len(q.items)))
	return cmd, true
}

func (q *commandQueue) len() int {
	q.mx.Lock()
	defer q.mx.Unlock()
	return len(q.items)
}

package machine

// An Adapter represents the minimal CNC machine interface.
//
// Submissions never block and never fail.
type Adapter interface {
	// Send queues a single line.
	Send(line string)
	// SendLowPriority queues line only if nothing else is waiting.
	SendLowPriority(line string) bool
	// SendProgram queues every non-empty line of program in order
	// and returns how many were queued.
	SendProgram(program string) int

	Status() Status
	Updates() <-chan Status
	Output() <-chan string

	// Idle reports whether nothing is queued or in flight.
	Idle() bool
}

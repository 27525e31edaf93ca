package pipeline

// Events are the one-way channel from the background run to the
// presentation layer. The pipeline goroutine only sends; the consumer only
// receives. Exactly one terminal event (Completed, Cancelled or Failed) is
// emitted per run, always followed by Done so the consumer can reset its
// running state deterministically.

// EventType discriminates Event payloads.
type EventType int

const (
	// EventStatus carries a human-readable phase description.
	EventStatus EventType = iota
	// EventProgressReset announces the total before enforcement begins.
	EventProgressReset
	// EventProgress reports one part fully resolved; Current is 1-based and
	// strictly increasing, one event per part.
	EventProgress
	// EventCompleted is the success outcome; Parts holds the final paths.
	EventCompleted
	// EventCancelled is the cooperative-abort outcome.
	EventCancelled
	// EventFailed is the error outcome; Message holds the reason.
	EventFailed
	// EventDone is the finalization signal after any terminal event.
	EventDone
)

// Event is a single pipeline notification.
type Event struct {
	Type    EventType
	Message string
	Current int
	Total   int
	Parts   []string
}

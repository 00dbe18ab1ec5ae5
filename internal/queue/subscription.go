package queue

const eventBufferSize = 16

// Change is emitted after every write to the store.
type Change struct {
	Previous State
	Current  State
}

// ErrorEvent is emitted when a background operation fails, typically a
// prefetch started by Skip. Foreground operations return their errors.
type ErrorEvent struct {
	Operation string // e.g. "prefetch"
	Err       error
}

// Subscription provides event channels for an observer of a Store.
type Subscription struct {
	Changed <-chan Change
	Errors  <-chan ErrorEvent
	Done    <-chan struct{}

	changeCh chan Change
	errorCh  chan ErrorEvent
	doneCh   chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		changeCh: make(chan Change, eventBufferSize),
		errorCh:  make(chan ErrorEvent, eventBufferSize),
		doneCh:   make(chan struct{}),
	}
	s.Changed = s.changeCh
	s.Errors = s.errorCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

// sendChange never blocks. When the buffer is full the oldest pending
// change is dropped so the latest state always reaches the observer.
func (s *Subscription) sendChange(c Change) {
	for {
		select {
		case s.changeCh <- c:
			return
		default:
		}
		select {
		case <-s.changeCh:
		default:
		}
	}
}

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}

package services

import (
	"log"
	"sync"
	"time"

	"retail-console/internal/pkg/metrics"
)

// Notification is an error message shown to the operator
type Notification struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationService is the global error-notification sink.
// Notify never blocks; messages are dropped when the queue is full.
type NotificationService struct {
	queue    chan Notification
	capacity int
	stopChan chan struct{}
	done     chan struct{}

	mu     sync.RWMutex
	recent []Notification
}

// NewNotificationService creates a sink keeping the last capacity messages
func NewNotificationService(capacity int) *NotificationService {
	if capacity <= 0 {
		capacity = 100
	}
	return &NotificationService{
		queue:    make(chan Notification, capacity),
		capacity: capacity,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the consumer goroutine
func (s *NotificationService) Start() {
	go s.run()
}

// Stop drains pending messages and stops the consumer
func (s *NotificationService) Stop() {
	close(s.stopChan)
	<-s.done
}

// Notify queues message for the operator
func (s *NotificationService) Notify(message string) {
	select {
	case s.queue <- Notification{Message: message, CreatedAt: time.Now()}:
	default:
		metrics.NotificationsDropped.Inc()
	}
}

func (s *NotificationService) run() {
	defer close(s.done)
	for {
		select {
		case n := <-s.queue:
			s.record(n)
		case <-s.stopChan:
			for {
				select {
				case n := <-s.queue:
					s.record(n)
				default:
					return
				}
			}
		}
	}
}

func (s *NotificationService) record(n Notification) {
	log.Printf("⚠️ Notify: %s", n.Message)

	s.mu.Lock()
	s.recent = append(s.recent, n)
	if len(s.recent) > s.capacity {
		s.recent = s.recent[len(s.recent)-s.capacity:]
	}
	s.mu.Unlock()
}

// Recent returns a page of recorded messages, newest first, and the total count
func (s *NotificationService) Recent(offset, limit int) ([]Notification, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.recent)
	if limit < 0 {
		limit = 0
	}
	out := make([]Notification, 0, limit)
	for i := total - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.recent[i])
	}
	return out, int64(total)
}

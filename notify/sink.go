package notify

import (
	"log"
	"sync"
	"time"
)

// FeedSize is the default number of notifications kept by a feed.
const FeedSize = 64

// Feed keeps the latest notifications in memory for clients to poll.
type Feed struct {
	mu   sync.Mutex
	size int
	ns   []Notification
}

// NewFeed returns a feed keeping up to size notifications; size <= 0 means FeedSize.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = FeedSize
	}
	return &Feed{size: size}
}

// Show adds n, or replaces the notification with the same id keeping its position.
func (f *Feed) Show(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.ns {
		if f.ns[i].ID == n.ID {
			f.ns[i] = n
			return
		}
	}

	f.ns = append(f.ns, n)
	if len(f.ns) > f.size {
		f.ns = f.ns[len(f.ns)-f.size:]
	}
}

// List returns a copy of the notifications, oldest first.
func (f *Feed) List() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]Notification{}, f.ns...)
}

// Active returns the notifications still displayed at now, oldest first.
func (f *Feed) Active(now time.Time) []Notification {
	ret := []Notification{}
	for _, n := range f.List() {
		if n.Active(now) {
			ret = append(ret, n)
		}
	}
	return ret
}

// LogSink writes notifications to the standard logger.
type LogSink struct{}

// Show logs n.
func (LogSink) Show(n Notification) {
	if n.Link != "" {
		log.Printf("[%s] %s %s %s", n.Kind, n.Text, n.Label, n.Link)
		return
	}
	log.Printf("[%s] %s", n.Kind, n.Text)
}

// Multi shows notifications on all its sinks.
type Multi []Sink

// Show shows n on every sink.
func (m Multi) Show(n Notification) {
	for _, s := range m {
		s.Show(n)
	}
}

// Publisher publishes notifications to a message broker.
type Publisher interface {
	SendNotification(n Notification) error
}

// BrokerSink publishes notifications so other front-ends can display them. Publishing errors are only logged.
type BrokerSink struct {
	P Publisher
}

// Show publishes n.
func (b BrokerSink) Show(n Notification) {
	if err := b.P.SendNotification(n); err != nil {
		log.Printf("Error publishing notification %s:%v", n.ID, err)
	}
}

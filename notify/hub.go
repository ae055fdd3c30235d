// Package notify keeps one unread-notification poller per viewer and fans its
// results out to every open stream of that viewer.
package notify

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultInterval is the unread count refresh period.
const DefaultInterval = 30 * time.Second

// FetchFunc returns the current unread count of one viewer.
type FetchFunc func(ctx context.Context) (int64, error)

// Update is one successful unread count fetch.
type Update struct {
	Count int64     `json:"count"`
	At    time.Time `json:"at"`
}

// Hub owns the pollers. The zero value is not usable; use NewHub.
type Hub struct {
	interval time.Duration
	log      *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pollers map[string]*poller
	closed  bool
}

type poller struct {
	subject string
	stop    context.CancelFunc
	nudge   chan struct{}
	subs    map[chan Update]FetchFunc
	// order lists subscribers oldest first; the newest one's fetch is used.
	order []chan Update
	last  *Update
}

// current returns the fetch func of the newest subscriber. Callers hold h.mu.
func (p *poller) current() FetchFunc {
	if len(p.order) == 0 {
		return nil
	}
	return p.subs[p.order[len(p.order)-1]]
}

// NewHub creates a hub polling every interval. A non-positive interval uses
// DefaultInterval.
func NewHub(interval time.Duration, logger *log.Logger) *Hub {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		interval: interval,
		log:      logger,
		ctx:      ctx,
		cancel:   cancel,
		pollers:  make(map[string]*poller),
	}
}

// Subscribe joins the poller of subject, starting it when it is not running
// yet; the first fetch happens immediately. The poller always fetches with
// the fetch func of its newest remaining subscriber. The returned channel
// holds at most the latest update and is closed by the cancel func or by
// Close. Cancel is idempotent; the last cancel of a subject stops its poller.
func (h *Hub) Subscribe(subject string, fetch FetchFunc) (<-chan Update, func()) {
	ch := make(chan Update, 1)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	p, ok := h.pollers[subject]
	if !ok {
		ctx, stop := context.WithCancel(h.ctx)
		p = &poller{
			subject: subject,
			stop:    stop,
			nudge:   make(chan struct{}, 1),
			subs:    make(map[chan Update]FetchFunc),
		}
		h.pollers[subject] = p
		h.wg.Add(1)
		go h.run(ctx, p)
	}
	p.subs[ch] = fetch
	p.order = append(p.order, ch)
	if p.last != nil {
		ch <- *p.last
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() { h.unsubscribe(p, ch) })
	}
}

func (h *Hub) unsubscribe(p *poller, ch chan Update) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := p.subs[ch]; !ok {
		return
	}
	delete(p.subs, ch)
	for i, c := range p.order {
		if c == ch {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	close(ch)
	if len(p.subs) == 0 {
		p.stop()
		if h.pollers[p.subject] == p {
			delete(h.pollers, p.subject)
		}
	}
}

// Nudge makes the poller of subject fetch now instead of at its next tick.
// It does nothing when nobody is subscribed.
func (h *Hub) Nudge(subject string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.pollers[subject]
	if !ok {
		return
	}
	select {
	case p.nudge <- struct{}{}:
	default:
	}
}

// Active returns the number of running pollers.
func (h *Hub) Active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pollers)
}

// Close stops every poller, closes every subscriber channel and waits for the
// pollers to exit.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.cancel()
	for subject, p := range h.pollers {
		for ch := range p.subs {
			close(ch)
		}
		p.subs = nil
		p.order = nil
		delete(h.pollers, subject)
	}
	h.mu.Unlock()
	h.wg.Wait()
}

func (h *Hub) run(ctx context.Context, p *poller) {
	defer h.wg.Done()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		h.poll(ctx, p)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-p.nudge:
		}
	}
}

func (h *Hub) poll(ctx context.Context, p *poller) {
	h.mu.Lock()
	fetch := p.current()
	h.mu.Unlock()
	if fetch == nil {
		return
	}
	n, err := fetch(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("subject", p.subject).Warn("unread count poll failed")
		return
	}
	u := Update{Count: n, At: time.Now()}

	h.mu.Lock()
	defer h.mu.Unlock()
	p.last = &u
	for ch := range p.subs {
		select {
		case ch <- u:
		default:
			// drop the stale value so the subscriber sees the newest one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- u:
			default:
			}
		}
	}
}

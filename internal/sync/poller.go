// Package sync keeps the notification badge current by polling the backend
// in the background and delivering results to the Bubble Tea runtime.
package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/model"
)

// PollState represents the current state of the poller.
type PollState int

const (
	PollIdle PollState = iota
	PollRunning
	PollError
)

// Status is a snapshot of the poller.
type Status struct {
	State    PollState
	LastPoll time.Time
	Error    error
}

// NotificationsMsg is a tea.Msg sent after every poll.
type NotificationsMsg struct {
	Notifications []model.Notification
	Unread        int
	Error         error
	// AuthExpired is set when the poll was rejected with a 401.
	AuthExpired bool
	// Source is the poller that produced the result. Results from a
	// stopped poller may still be buffered when a new one starts.
	Source *Poller
}

// Fetcher loads a user's notifications.
type Fetcher interface {
	Notifications(ctx context.Context, userID model.ID) ([]model.Notification, error)
}

// fetchTimeout is the maximum time allowed for a single poll.
const fetchTimeout = 30 * time.Second

// Poller periodically fetches the current user's notifications.
type Poller struct {
	fetcher   Fetcher
	userID    model.ID
	interval  time.Duration
	status    Status
	resultCh  chan NotificationsMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// New creates a Poller for userID. A non-positive interval defaults to
// one minute.
func New(f Fetcher, userID model.ID, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{
		fetcher:   f,
		userID:    userID,
		interval:  interval,
		resultCh:  make(chan NotificationsMsg, 4),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the polling goroutine and returns a tea.Cmd that waits for
// the first result. Starting twice is a no-op.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()

	return p.WaitForNextResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate poll.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A poll is already pending.
	}
}

// Status returns the current poll status.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.poll()
		case <-p.triggerCh:
			p.poll()
		}
	}
}

// poll performs a single fetch and publishes the result.
func (p *Poller) poll() {
	p.setStatus(PollRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	ns, err := p.fetcher.Notifications(ctx, p.userID)
	if err != nil {
		p.setStatus(PollError, err)
		log.WithError(err).WithField("user_id", p.userID).Warn("polling notifications failed")
		p.send(NotificationsMsg{Error: err, AuthExpired: api.IsAuthError(err)})
		return
	}

	p.setStatus(PollIdle, nil)
	p.send(NotificationsMsg{Notifications: ns, Unread: model.CountUnread(ns)})
}

func (p *Poller) setStatus(state PollState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == PollIdle {
		p.status.LastPoll = time.Now()
	}
}

// send publishes msg, replacing a stale unread result when the buffer is
// full.
func (p *Poller) send(msg NotificationsMsg) {
	msg.Source = p
	for {
		select {
		case p.resultCh <- msg:
			return
		default:
		}
		select {
		case <-p.resultCh:
		default:
		}
	}
}

// WaitForNextResult returns a tea.Cmd that blocks until the next poll
// result. Call it again after handling each NotificationsMsg to keep
// listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-p.resultCh:
			return msg
		case <-p.stopCh:
			return nil
		}
	}
}

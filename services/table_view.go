package services

import (
	"errors"
	"sync"
	"time"

	"tunnel-dashboard/internal/models"
)

var (
	ErrViewClosed = errors.New("table view closed")
	ErrStaleProbe = errors.New("health probe result is stale")
)

const subscriberBuffer = 64

// EventPublisher fans view events out to subscribers
type EventPublisher interface {
	Publish(ev models.ViewEvent)
}

// TableStore owns the live table. Snapshots replace every row, health probes
// patch only Status/StatusSource. All mutation happens under mu and events are
// published under the same lock so subscribers see them in mutation order.
type TableStore struct {
	mu     sync.RWMutex
	view   models.TableView
	closed bool

	subsMu sync.Mutex
	subs   map[chan models.ViewEvent]*subscriber
}

// subscriber 丢过表格事件后, 下一次表格事件改发完整快照
type subscriber struct {
	resync bool
}

func NewTableStore() *TableStore {
	return &TableStore{
		subs: make(map[chan models.ViewEvent]*subscriber),
	}
}

/**
 * Build view rows from a status snapshot
 * @param {*models.StatusResponse} resp - Body of GET /status
 * @returns {[]models.TunnelRow} One row per entry, in source order
 * @description
 * - Identity comes from tunnel_id, or from the display name when the backend omits it
 * - Status is "UP" only for status == "up"
 */
func RowsFromSnapshot(resp *models.StatusResponse) []models.TunnelRow {
	rows := make([]models.TunnelRow, 0, len(resp.Tunnels))
	for i := range resp.Tunnels {
		t := &resp.Tunnels[i]
		id, ok := t.ResolveID()
		rows = append(rows, models.TunnelRow{
			TunnelID:     id,
			HasID:        ok,
			Position:     i,
			Name:         t.Tunnel,
			Port:         string(t.Port),
			Status:       models.StateFromStatus(t.Status),
			StatusSource: models.SourceSnapshot,
			TimeAlive:    t.TimeAlive,
			Entrypoint:   t.Entrypoint,
			EntrypointIP: t.EntrypointIP,
			Exitpoint:    t.Exitpoint,
			ExitpointIP:  t.ExitpointIP,
			Memory:       t.Memory,
		})
	}
	return rows
}

func copyView(v *models.TableView) *models.TableView {
	out := *v
	out.Rows = make([]models.TunnelRow, len(v.Rows))
	copy(out.Rows, v.Rows)
	return &out
}

// Snapshot returns a copy of the current table.
func (s *TableStore) Snapshot() *models.TableView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyView(&s.view)
}

// Generation returns the number of snapshots applied so far.
func (s *TableStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.Generation
}

/**
 * Replace the whole table with a snapshot
 * @param {*models.StatusResponse} resp - Body of GET /status
 * @param {time.Time} at - Refresh time
 * @returns {uint64} New generation
 * @returns {error} ErrViewClosed after Close
 * @description
 * - Discards every existing row, nothing from the previous snapshot survives
 * - Updates total memory, the only place it changes
 */
func (s *TableStore) ReplaceAll(resp *models.StatusResponse, at time.Time) (uint64, error) {
	rows := RowsFromSnapshot(resp)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrViewClosed
	}
	s.view.Generation++
	s.view.Rows = rows
	s.view.TotalMemoryMB = resp.TotalMemoryMB
	s.view.RefreshedAt = at

	s.publishLocked(models.ViewEvent{
		Kind:       models.EventSnapshot,
		Generation: s.view.Generation,
		View:       copyView(&s.view),
	})
	return s.view.Generation, nil
}

/**
 * Patch the status column from a health probe
 * @param {map[int]bool} health - tunnel_id -> is_healthy
 * @param {uint64} generation - Generation observed when the probe started
 * @param {*Guard} guard - Snapshot guard, a held guard rejects the patch
 * @param {time.Time} at - Probe time
 * @returns {int} Number of rows patched
 * @returns {error} ErrStaleProbe or ErrViewClosed
 * @description
 * - Present and healthy -> UP, present and unhealthy -> DOWN, absent -> DOWN
 * - Rows without a tunnel id keep the status their snapshot gave them
 * - Every other field of every row is left as is
 */
func (s *TableStore) PatchHealth(health map[int]bool, generation uint64, guard *Guard, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrViewClosed
	}
	if guard.Held() || s.view.Generation != generation {
		return 0, ErrStaleProbe
	}

	patched := 0
	states := make(map[int]models.TunnelState, len(s.view.Rows))
	for i := range s.view.Rows {
		row := &s.view.Rows[i]
		if !row.HasID {
			continue
		}
		state := models.StateDown
		if healthy, ok := health[row.TunnelID]; ok {
			state = models.StateFromHealth(healthy)
		}
		states[row.TunnelID] = state
		row.Status = state
		row.StatusSource = models.SourceProbe
		patched++
	}
	s.view.ProbedAt = at

	s.publishLocked(models.ViewEvent{
		Kind:       models.EventHealth,
		Generation: s.view.Generation,
		Health:     states,
	})
	return patched, nil
}

// Subscribe registers for view events. The returned func unsubscribes.
func (s *TableStore) Subscribe() (<-chan models.ViewEvent, func()) {
	ch := make(chan models.ViewEvent, subscriberBuffer)
	s.subsMu.Lock()
	s.subs[ch] = &subscriber{}
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			if _, ok := s.subs[ch]; ok {
				delete(s.subs, ch)
				close(ch)
			}
			s.subsMu.Unlock()
		})
	}
}

// Publish forwards a non-table event (notifications) to subscribers.
func (s *TableStore) Publish(ev models.ViewEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	s.publishLocked(ev)
}

/**
 * Fan an event out without blocking
 * @param {models.ViewEvent} ev - Event to deliver
 * @description
 * - A subscriber with a full buffer misses the event
 * - After missing a snapshot or health event, the subscriber's next table event
 *   is replaced by a full snapshot of the current view, so it never patches rows
 *   of a generation it has not seen
 * - Notification events do not need the view and may be published under RLock
 */
func (s *TableStore) publishLocked(ev models.ViewEvent) {
	table := ev.Kind == models.EventSnapshot || ev.Kind == models.EventHealth
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch, sub := range s.subs {
		out := ev
		if table && sub.resync && out.Kind != models.EventSnapshot {
			out = models.ViewEvent{
				Kind:       models.EventSnapshot,
				Generation: s.view.Generation,
				View:       copyView(&s.view),
			}
		}
		select {
		case ch <- out:
			if out.Kind == models.EventSnapshot {
				sub.resync = false
			}
		default:
			eventsDropped.Inc()
			if table {
				sub.resync = true
			}
		}
	}
}

// Close stops all further mutation and closes every subscriber channel.
func (s *TableStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.subsMu.Lock()
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
	s.subsMu.Unlock()
}

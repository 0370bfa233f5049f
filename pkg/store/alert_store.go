package store

import (
	"container/heap"
	"sort"
	"sync"
	"time"

	"github.com/borgmon/lightwalker/pkg/models"
)

type pendingAlert struct {
	alert  models.ActivityAlert
	fireAt time.Time
	index  int
}

// alertQueue is a min-heap of pending alerts ordered by fire time, then id.
type alertQueue []*pendingAlert

func (q alertQueue) Len() int { return len(q) }

func (q alertQueue) Less(i, j int) bool {
	if q[i].fireAt.Equal(q[j].fireAt) {
		return q[i].alert.ID < q[j].alert.ID
	}
	return q[i].fireAt.Before(q[j].fireAt)
}

func (q alertQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *alertQueue) Push(x any) {
	p := x.(*pendingAlert)
	p.index = len(*q)
	*q = append(*q, p)
}

func (q *alertQueue) Pop() any {
	old := *q
	n := len(old)
	p := old[n-1]
	old[n-1] = nil
	p.index = -1
	*q = old[:n-1]
	return p
}

// AlertStore holds pending alerts indexed by alert id and ordered by fire time.
// At most one entry exists per id.
type AlertStore struct {
	mu sync.Mutex

	// Map of alert ID to queued entry for quick lookup
	alertsByID map[string]*pendingAlert
	queue      alertQueue
}

// NewAlertStore creates an empty AlertStore.
func NewAlertStore() *AlertStore {
	return &AlertStore{alertsByID: make(map[string]*pendingAlert)}
}

// Put queues alert, replacing any pending entry with the same id.
func (as *AlertStore) Put(alert models.ActivityAlert) (replaced bool) {
	as.mu.Lock()
	defer as.mu.Unlock()

	replaced = as.remove(alert.ID)
	p := &pendingAlert{alert: alert, fireAt: alert.AlertTime()}
	heap.Push(&as.queue, p)
	as.alertsByID[alert.ID] = p
	return replaced
}

// Remove drops the pending alert with id.
func (as *AlertStore) Remove(id string) bool {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.remove(id)
}

func (as *AlertStore) remove(id string) bool {
	p, exists := as.alertsByID[id]
	if !exists {
		return false
	}
	heap.Remove(&as.queue, p.index)
	delete(as.alertsByID, id)
	return true
}

// RemoveActivity drops every pending alert of a timeline activity and returns their ids.
func (as *AlertStore) RemoveActivity(timelineActivityID string) []string {
	as.mu.Lock()
	defer as.mu.Unlock()

	var removed []string
	for id, p := range as.alertsByID {
		if p.alert.TimelineActivityID == timelineActivityID {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		as.remove(id)
	}
	sort.Strings(removed)
	return removed
}

// RemoveAll empties the store and returns the removed ids.
func (as *AlertStore) RemoveAll() []string {
	as.mu.Lock()
	defer as.mu.Unlock()

	ids := make([]string, 0, len(as.alertsByID))
	for id := range as.alertsByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	as.alertsByID = make(map[string]*pendingAlert)
	as.queue = nil
	return ids
}

// PopDue removes and returns every alert due at or before now, earliest first.
func (as *AlertStore) PopDue(now time.Time) []models.ActivityAlert {
	as.mu.Lock()
	defer as.mu.Unlock()

	var due []models.ActivityAlert
	for as.queue.Len() > 0 && !as.queue[0].fireAt.After(now) {
		p := heap.Pop(&as.queue).(*pendingAlert)
		delete(as.alertsByID, p.alert.ID)
		due = append(due, p.alert)
	}
	return due
}

// Next returns the earliest fire time.
func (as *AlertStore) Next() (time.Time, bool) {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.queue.Len() == 0 {
		return time.Time{}, false
	}
	return as.queue[0].fireAt, true
}

// Get returns the pending alert with id.
func (as *AlertStore) Get(id string) (models.ActivityAlert, bool) {
	as.mu.Lock()
	defer as.mu.Unlock()

	p, ok := as.alertsByID[id]
	if !ok {
		return models.ActivityAlert{}, false
	}
	return p.alert, true
}

// All returns pending alerts sorted by fire time.
func (as *AlertStore) All() []models.ActivityAlert {
	as.mu.Lock()
	defer as.mu.Unlock()

	result := make([]*pendingAlert, len(as.queue))
	copy(result, as.queue)
	sort.Slice(result, func(i, j int) bool {
		return alertQueue(result).Less(i, j)
	})

	out := make([]models.ActivityAlert, len(result))
	for i, p := range result {
		out[i] = p.alert
	}
	return out
}

// Len returns the number of pending alerts.
func (as *AlertStore) Len() int {
	as.mu.Lock()
	defer as.mu.Unlock()
	return len(as.alertsByID)
}

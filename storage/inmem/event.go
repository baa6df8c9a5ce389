package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/himanshhhhuv/studentinfo/core"
	"github.com/himanshhhhuv/studentinfo/core/event"
)

type eventRepository struct {
	db *DB
}

var _ event.Repository = (*eventRepository)(nil)

func NewEventRepository(db *DB) *eventRepository {
	return &eventRepository{db: db}
}

func (repo *eventRepository) CreateEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if evt.ID == "" {
		evt.ID = uuid.New().String()
	}
	repo.db.events[evt.ID] = &evt
	return evt, nil
}

func (repo *eventRepository) QueryEvents(ctx context.Context, filter *event.QueryFilter, ordering []core.Ordering) ([]event.Event, error) {
	repo.db.mutex.RLock()
	events := make([]event.Event, 0, len(repo.db.events))
	for _, evt := range repo.db.events {
		events = append(events, *evt)
	}
	repo.db.mutex.RUnlock()

	if filter != nil && filter.Search != "" {
		search := strings.ToLower(filter.Search)
		matched := events[:0]
		for _, evt := range events {
			if strings.Contains(strings.ToLower(evt.Title), search) ||
				strings.Contains(strings.ToLower(evt.Description), search) ||
				strings.Contains(strings.ToLower(evt.Location), search) {
				matched = append(matched, evt)
			}
		}
		events = matched
	}

	sort.SliceStable(events, func(a, b int) bool {
		if events[a].Date != events[b].Date {
			return events[a].Date < events[b].Date
		}
		return events[a].Time < events[b].Time
	})
	return events, nil
}

func (repo *eventRepository) DeleteEvent(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.events[id]; !ok {
		return event.ErrNotFound
	}
	delete(repo.db.events, id)
	return nil
}

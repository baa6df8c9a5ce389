package event

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/himanshhhhuv/studentinfo/core"
)

var ErrNotFound = errors.New("event not found")

type (
	// Repository abstracts the `events` collection of the document store.
	Repository interface {
		CreateEvent(ctx context.Context, evt Event) (Event, error)
		QueryEvents(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]Event, error)
		DeleteEvent(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, actorID string, ne NewEvent) (Event, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]Event, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, actorID string, ne NewEvent) (Event, error) {
	evt := Event{
		Title:       ne.Title,
		Description: ne.Description,
		Date:        ne.Date,
		Time:        ne.Time,
		Location:    ne.Location,
		CreatedBy:   actorID,
		CreatedAt:   time.Now().UTC(),
	}
	evt, err := svc.repo.CreateEvent(ctx, evt)
	if err != nil {
		return Event{}, errors.Wrap(err, "creating event")
	}
	return evt, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]Event, error) {
	return svc.repo.QueryEvents(ctx, filter, ordering)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteEvent(ctx, id)
}

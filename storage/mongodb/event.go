package mongodb

import (
	"context"
	"regexp"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/himanshhhhuv/studentinfo/core"
	"github.com/himanshhhhuv/studentinfo/core/event"
)

type eventRepository struct {
	col *mongo.Collection
}

var _ event.Repository = (*eventRepository)(nil)

func NewEventRepository(db *mongo.Database) *eventRepository {
	return &eventRepository{col: db.Collection(eventsCollection)}
}

func (repo *eventRepository) CreateEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	if evt.ID == "" {
		evt.ID = uuid.New().String()
	}
	if _, err := repo.col.InsertOne(ctx, evt); err != nil {
		return event.Event{}, errors.Wrap(err, "inserting event")
	}
	return evt, nil
}

func (repo *eventRepository) QueryEvents(ctx context.Context, filter *event.QueryFilter, ordering []core.Ordering) ([]event.Event, error) {
	match := bson.M{}
	if filter != nil && filter.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		match["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"location": re},
		}
	}

	opts := options.Find().SetCollation(caseInsensitive)
	if len(ordering) > 0 {
		sort := bson.D{}
		for _, ord := range ordering {
			dir := 1
			if !ord.Ascending {
				dir = -1
			}
			sort = append(sort, bson.E{Key: eventSortField(ord.Field), Value: dir})
		}
		opts = opts.SetSort(sort)
	} else {
		opts = opts.SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	}

	cur, err := repo.col.Find(ctx, match, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	events := make([]event.Event, 0)
	if err = cur.All(ctx, &events); err != nil {
		return nil, errors.Wrap(err, "decoding events")
	}
	return events, nil
}

func eventSortField(field string) string {
	switch field {
	case "created_at":
		return "createdAt"
	case "id":
		return "_id"
	default:
		return field
	}
}

func (repo *eventRepository) DeleteEvent(ctx context.Context, id string) error {
	res, err := repo.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting event")
	}
	if res.DeletedCount == 0 {
		return event.ErrNotFound
	}
	return nil
}

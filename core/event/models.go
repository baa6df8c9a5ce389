package event

import (
	"context"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/himanshhhhuv/studentinfo/core"
)

// Event is a bulletin board entry. Date and Time are kept as the submitted
// form strings; they are display fields, not scheduling data.
type Event struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Date        string    `json:"date" bson:"date"`
	Time        string    `json:"time" bson:"time"`
	Location    string    `json:"location" bson:"location"`
	CreatedBy   string    `json:"created_by" bson:"createdBy"`
	CreatedAt   time.Time `json:"created_at" bson:"createdAt"` // UTC
}

// NewEvent contains information needed to post a new Event.
type NewEvent struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,datetime=15:04"`
	Location    string `json:"location" validate:"required"`
}

func (ne *NewEvent) Validate(ctx context.Context, validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.Date = core.CleanString(ne.Date)
	ne.Time = core.CleanString(ne.Time)
	ne.Location = core.CleanString(ne.Location)
	return validate.StructCtx(ctx, ne)
}

// QueryFilter narrows List results. Search is a case-insensitive substring
// match on title, description and location.
type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

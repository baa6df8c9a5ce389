package student

import (
	"context"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/himanshhhhuv/studentinfo/core"
)

// Info is a student's one-time intake record. It lives in its own
// `studentinfo` collection and is never deleted, even when the owning
// account is removed.
type Info struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	UserID     string    `json:"user_id" bson:"userId"`
	Name       string    `json:"name" bson:"name"`
	Enrollment string    `json:"enrollment" bson:"enrollment"`
	Program    string    `json:"program" bson:"program"`
	Semester   string    `json:"semester" bson:"semester"`
	Section    string    `json:"section" bson:"section"`
	Gender     string    `json:"gender" bson:"gender"`
	Club       string    `json:"club" bson:"club"`
	CreatedAt  time.Time `json:"created_at" bson:"createdAt"` // UTC
}

// NewInfo contains the intake form fields.
type NewInfo struct {
	Name       string `json:"name" validate:"required"`
	Enrollment string `json:"enrollment" validate:"required,alphanum_"`
	Program    string `json:"program" validate:"required,oneof=cs ee me"`
	Semester   string `json:"semester" validate:"required,oneof=1 2 3 4 5 6 7 8"`
	Section    string `json:"section" validate:"required"`
	Gender     string `json:"gender" validate:"required,oneof=male female other"`
	Club       string `json:"club"`
}

func (ni *NewInfo) Validate(ctx context.Context, validate *validator.Validate) error {
	ni.Name = core.CleanString(ni.Name)
	ni.Enrollment = core.CleanString(ni.Enrollment)
	ni.Program = core.CleanString(ni.Program, true /* lower */)
	ni.Semester = core.CleanString(ni.Semester)
	ni.Section = core.CleanString(ni.Section)
	ni.Gender = core.CleanString(ni.Gender, true /* lower */)
	if ni.Club = core.CleanString(ni.Club); ni.Club == "" {
		ni.Club = "default"
	}
	return validate.StructCtx(ctx, ni)
}

package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/himanshhhhuv/studentinfo/core/user"
)

var (
	ErrNotFound         = errors.New("student info not found")
	ErrAlreadySubmitted = errors.New("intake form already submitted")
)

type (
	// Repository abstracts the `studentinfo` collection.
	Repository interface {
		CreateInfo(ctx context.Context, info Info) (Info, error)
		GetInfoByUserID(ctx context.Context, uid string) (Info, error)
	}

	ServiceInterface interface {
		Submit(ctx context.Context, usr user.User, ni NewInfo) (Info, error)
		GetByUserID(ctx context.Context, uid string) (Info, error)
	}

	service struct {
		repo    Repository
		userSvc user.ServiceInterface
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, userSvc user.ServiceInterface) *service {
	return &service{repo: repo, userSvc: userSvc}
}

// Submit persists an intake record and flips the submitter's formFilled flag.
// The flag is monotonic: a second submission is rejected before any write.
func (svc *service) Submit(ctx context.Context, usr user.User, ni NewInfo) (Info, error) {
	if usr.FormFilled {
		return Info{}, ErrAlreadySubmitted
	}
	if _, err := svc.repo.GetInfoByUserID(ctx, usr.ID); err == nil {
		// record exists but the flag write failed earlier; repair the flag
		_, _ = svc.userSvc.SetFormFilled(ctx, usr)
		return Info{}, ErrAlreadySubmitted
	} else if err != ErrNotFound {
		return Info{}, err
	}

	info := Info{
		UserID:     usr.ID,
		Name:       ni.Name,
		Enrollment: ni.Enrollment,
		Program:    ni.Program,
		Semester:   ni.Semester,
		Section:    ni.Section,
		Gender:     ni.Gender,
		Club:       ni.Club,
		CreatedAt:  time.Now().UTC(),
	}
	info, err := svc.repo.CreateInfo(ctx, info)
	if err != nil {
		return Info{}, errors.Wrap(err, "creating student info")
	}

	// the record exists; if the flag write fails the next submit attempt
	// retries it rather than duplicating the record
	if _, err = svc.userSvc.SetFormFilled(ctx, usr); err != nil {
		return info, errors.Wrap(err, "setting formFilled")
	}
	return info, nil
}

func (svc *service) GetByUserID(ctx context.Context, uid string) (Info, error) {
	return svc.repo.GetInfoByUserID(ctx, uid)
}

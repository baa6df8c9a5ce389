package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/himanshhhhuv/studentinfo/core/student"
)

type studentInfoRepository struct {
	db *DB
}

var _ student.Repository = (*studentInfoRepository)(nil)

func NewStudentInfoRepository(db *DB) *studentInfoRepository {
	return &studentInfoRepository{db: db}
}

func (repo *studentInfoRepository) CreateInfo(ctx context.Context, info student.Info) (student.Info, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if info.ID == "" {
		info.ID = uuid.New().String()
	}
	repo.db.studentInfo[info.ID] = &info
	return info, nil
}

func (repo *studentInfoRepository) GetInfoByUserID(ctx context.Context, uid string) (student.Info, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, info := range repo.db.studentInfo {
		if info.UserID == uid {
			return *info, nil
		}
	}
	return student.Info{}, student.ErrNotFound
}

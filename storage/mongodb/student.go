package mongodb

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/himanshhhhuv/studentinfo/core/student"
)

type studentInfoRepository struct {
	col *mongo.Collection
}

var _ student.Repository = (*studentInfoRepository)(nil)

func NewStudentInfoRepository(db *mongo.Database) *studentInfoRepository {
	return &studentInfoRepository{col: db.Collection(studentInfoCollection)}
}

func (repo *studentInfoRepository) CreateInfo(ctx context.Context, info student.Info) (student.Info, error) {
	if info.ID == "" {
		info.ID = uuid.New().String()
	}
	if _, err := repo.col.InsertOne(ctx, info); err != nil {
		return student.Info{}, errors.Wrap(err, "inserting student info")
	}
	return info, nil
}

func (repo *studentInfoRepository) GetInfoByUserID(ctx context.Context, uid string) (student.Info, error) {
	var info student.Info
	err := repo.col.FindOne(ctx, bson.M{"userId": uid}).Decode(&info)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return student.Info{}, student.ErrNotFound
	}
	if err != nil {
		return student.Info{}, errors.Wrap(err, "finding student info")
	}
	return info, nil
}

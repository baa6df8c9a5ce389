package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/himanshhhhuv/studentinfo/core/user"
)

// ownedDataRepository cascades a user's posts and comments during account
// deletion. Student intake records are deliberately not covered: they are
// retained after account removal.
type ownedDataRepository struct {
	db *mongo.Database
}

var _ user.OwnedDataRepository = (*ownedDataRepository)(nil)

func NewOwnedDataRepository(db *mongo.Database) *ownedDataRepository {
	return &ownedDataRepository{db: db}
}

func (repo *ownedDataRepository) DeleteOwnedDocuments(ctx context.Context, uid string) error {
	for _, col := range []string{postsCollection, commentsCollection} {
		if _, err := repo.db.Collection(col).DeleteMany(ctx, bson.M{"userId": uid}); err != nil {
			return errors.Wrapf(err, "deleting %s", col)
		}
	}
	return nil
}

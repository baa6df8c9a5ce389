package inmemdb

import (
	"context"

	"github.com/himanshhhhuv/studentinfo/core/user"
)

type ownedDataRepository struct {
	db *DB
}

var _ user.OwnedDataRepository = (*ownedDataRepository)(nil)

func NewOwnedDataRepository(db *DB) *ownedDataRepository {
	return &ownedDataRepository{db: db}
}

// AddOwnedDocument seeds a post/comment document ID for tests.
func (repo *ownedDataRepository) AddOwnedDocument(uid, docID string) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.ownedDocs[uid] = append(repo.db.ownedDocs[uid], docID)
}

// OwnedDocuments returns the remaining document IDs for a user.
func (repo *ownedDataRepository) OwnedDocuments(uid string) []string {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]string(nil), repo.db.ownedDocs[uid]...)
}

func (repo *ownedDataRepository) DeleteOwnedDocuments(ctx context.Context, uid string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.ownedDocs, uid)
	return nil
}

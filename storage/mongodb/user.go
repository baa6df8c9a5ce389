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
	"github.com/himanshhhhuv/studentinfo/core/user"
)

// caseInsensitive makes string sorts and equality ignore case.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type userRepository struct {
	col *mongo.Collection
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *mongo.Database) *userRepository {
	return &userRepository{col: db.Collection(usersCollection)}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	filter := bson.M{"email": email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		filter["_id"] = bson.M{"$nin": ids}
	}
	n, err := repo.col.CountDocuments(ctx, filter, options.Count().SetCollation(caseInsensitive))
	if err != nil {
		return errors.Wrap(err, "counting users by email")
	}
	if n > 0 {
		return user.ErrUserExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	if _, err := repo.col.InsertOne(ctx, usr); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrUserExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var match bson.M
	switch {
	case filter.ID != "":
		match = bson.M{"_id": filter.ID}
	case filter.Email != "":
		match = bson.M{"email": filter.Email}
	default:
		return user.User{}, user.ErrNotFound
	}

	var usr user.User
	err := repo.col.FindOne(ctx, match, options.FindOne().SetCollation(caseInsensitive)).Decode(&usr)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.Ordering) ([]user.User, error) {
	match := bson.M{}
	if filter != nil {
		if filter.Role != "" {
			match["role"] = filter.Role
		}
		if filter.Search != "" {
			re := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
			match["$or"] = bson.A{
				bson.M{"firstName": re},
				bson.M{"lastName": re},
				bson.M{"email": re},
				bson.M{"phoneNumber": re},
			}
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
			sort = append(sort, bson.E{Key: userSortField(ord.Field), Value: dir})
		}
		opts = opts.SetSort(sort)
	}

	cur, err := repo.col.Find(ctx, match, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0)
	if err = cur.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decoding users")
	}
	return users, nil
}

// userSortField maps API ordering fields onto document fields.
func userSortField(field string) string {
	switch field {
	case "first_name", "name":
		return "firstName"
	case "last_name":
		return "lastName"
	case "phone_number":
		return "phoneNumber"
	case "created_at":
		return "createdAt"
	case "last_login":
		return "lastLogin"
	case "id":
		return "_id"
	default:
		return field
	}
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.col.ReplaceOne(ctx, bson.M{"_id": usr.ID}, usr)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrUserExists
		}
		return user.User{}, errors.Wrap(err, "replacing user")
	}
	if res.MatchedCount == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	_, err := repo.col.ReplaceOne(ctx, bson.M{"_id": usr.ID}, usr, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrUserExists
		}
		return user.User{}, errors.Wrap(err, "upserting user")
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(res.DeletedCount), nil
}

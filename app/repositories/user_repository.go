package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/foodineye/app/models"
	"github.com/shashiranjanraj/foodineye/pkg/apperr"
)

// UserRepository handles persistence for User. Login ids are unique at the
// store level.
type UserRepository struct {
	docs Collection[models.User]
	now  func() time.Time
}

func NewUserRepository(docs Collection[models.User]) *UserRepository {
	return &UserRepository{docs: docs, now: time.Now}
}

// Create inserts user and sets its id. A taken login id is a DuplicateError.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := r.now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	id, err := r.docs.Create(ctx, user)
	if err != nil {
		if errors.Is(err, apperr.ErrDuplicate) {
			return apperr.E(apperr.KindDuplicate, "The id is already in use", err)
		}
		return err
	}
	user.ID = id
	return nil
}

// FindByID looks up a user by internal id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.docs.FindByID(ctx, id)
}

// FindByLoginID looks up a user by login id.
func (r *UserRepository) FindByLoginID(ctx context.Context, loginID string) (*models.User, error) {
	return r.docs.FindOne(ctx, "id", loginID)
}

// LoginIDTaken reports whether loginID is already registered.
func (r *UserRepository) LoginIDTaken(ctx context.Context, loginID string) (bool, error) {
	_, err := r.FindByLoginID(ctx, loginID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperr.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Update sets fields on the user and bumps updated_at.
func (r *UserRepository) Update(ctx context.Context, id string, fields bson.M) error {
	fields["updated_at"] = r.now().UTC()
	return r.docs.UpdateByID(ctx, id, fields)
}

// SetRefreshToken overwrites the single refresh-token slot. An empty token
// clears it.
func (r *UserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	return r.docs.UpdateFieldByID(ctx, id, "R_Token", token)
}

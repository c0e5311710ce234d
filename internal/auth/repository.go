package auth

import (
	"context"
	"errors"

	"parkly/internal/users"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the account store. Emails reach it already normalized.
type Repository interface {
	// CreateUser relies on the unique email index, so concurrent sign-ups with one address cannot both succeed.
	CreateUser(ctx context.Context, user *users.User) error
	GetUserByEmail(ctx context.Context, email string) (*users.User, error)
	GetUserByID(ctx context.Context, id string) (*users.User, error)
	UpdateUserPassword(ctx context.Context, userID string, hashedPassword string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateUser(ctx context.Context, user *users.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUserAlreadyExists
	}
	return err
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.findUser(ctx, "email = ?", email)
}

// GetUserByID treats a malformed id like an unknown one; ids come from token claims.
func (r *repository) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return r.findUser(ctx, "id = ?", parsed.String())
}

func (r *repository) findUser(ctx context.Context, query string, arg string) (*users.User, error) {
	var user users.User
	err := r.db.WithContext(ctx).Where(query, arg).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) UpdateUserPassword(ctx context.Context, userID string, hashedPassword string) error {
	result := r.db.WithContext(ctx).Model(&users.User{}).
		Where("id = ?", userID).
		Update("password", hashedPassword)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

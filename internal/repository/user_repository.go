package repository

import (
	"context"
	"errors"

	"github.com/bazaarchi/storefront/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines data access for user accounts
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	UpsertByPhone(ctx context.Context, phone string) (*models.User, error)
}

// GormUserRepository implements UserRepository on MySQL
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new user repository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByID returns a user by primary key
func (r *GormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByPhone returns a user by normalized phone number
func (r *GormUserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpsertByPhone returns the account for phone, creating a customer record on
// first sign-in
func (r *GormUserRepository) UpsertByPhone(ctx context.Context, phone string) (*models.User, error) {
	user := models.User{Phone: phone, Role: models.RoleCustomer}
	err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

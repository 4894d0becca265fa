package repository

import (
	"context"

	"github.com/bora-tech/crm-api/internal/domain"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmailAndRealm looks up a login identity within one realm
func (r *UserRepository) GetByEmailAndRealm(ctx context.Context, email string, realm domain.Realm) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("email = ? AND realm = ?", email, realm).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

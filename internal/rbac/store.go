package rbac

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ubateam/uba-backend/internal/models"
)

var (
	ErrUserNotFound       = errors.New("rbac: user not found")
	ErrRoleNotFound       = errors.New("rbac: role not found")
	ErrDefaultRoleMissing = errors.New("rbac: default role missing")
)

// Store is the lookup surface the resolver needs. Users come back with roles
// and their permission sets loaded in the same fetch; roles come back with
// their permissions.
type Store interface {
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	FindRoleByID(ctx context.Context, id uint) (*models.Role, error)
	FindRoleByName(ctx context.Context, name string) (*models.Role, error)
}

type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Preload("Roles.Permissions").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) FindRoleByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := s.DB.WithContext(ctx).Preload("Permissions").First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (s *GormStore) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := s.DB.WithContext(ctx).Preload("Permissions").Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

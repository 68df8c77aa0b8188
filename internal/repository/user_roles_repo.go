package repository

import (
	"CampusLink/internal/model"
	"context"

	"gorm.io/gorm"
)

type UserRolesRepo interface {
	GetUserRoles(ctx context.Context, userId uint64) ([]*model.Role, error)
	GetUserIDsByRoles(ctx context.Context, roleNames []string) ([]uint64, error)
}

type UserRolesRepoImpl struct {
	db *gorm.DB
}

func NewUserRolesRepo(db *gorm.DB) UserRolesRepo {
	return &UserRolesRepoImpl{db: db}
}

func (s *UserRolesRepoImpl) GetUserRoles(ctx context.Context, userId uint64) ([]*model.Role, error) {
	var roles []*model.Role
	err := s.db.WithContext(ctx).
		Table("roles").
		Select("roles.*").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userId).
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// GetUserIDsByRoles 角色谓词：每次调用实时解析当前持有任一指定角色的用户集合
func (s *UserRolesRepoImpl) GetUserIDsByRoles(ctx context.Context, roleNames []string) ([]uint64, error) {
	if len(roleNames) == 0 {
		return nil, nil
	}
	var ids []uint64
	err := s.db.WithContext(ctx).
		Table("user_roles").
		Distinct("user_roles.user_id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Joins("JOIN users ON users.id = user_roles.user_id").
		Where("roles.name IN ? AND users.is_ban = 0 AND users.is_delete = 0", roleNames).
		Pluck("user_roles.user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

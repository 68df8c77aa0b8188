package repository

import (
	"CampusLink/internal/model"
	"context"

	"gorm.io/gorm"
)

type UserRepo interface {
	GetSimpleByIDs(ctx context.Context, ids []uint64) (map[uint64]*model.User, error)
	Exists(ctx context.Context, id uint64) (bool, error)
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepoImpl{db: db}
}

// GetSimpleByIDs 批量获取用户基础信息，用于收件箱补全对端昵称头像
func (s *userRepoImpl) GetSimpleByIDs(ctx context.Context, ids []uint64) (map[uint64]*model.User, error) {
	if len(ids) == 0 {
		return map[uint64]*model.User{}, nil
	}
	var users []*model.User
	err := s.db.WithContext(ctx).
		Where("id IN ? AND is_delete = 0", ids).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	res := make(map[uint64]*model.User, len(users))
	for _, u := range users {
		res[u.ID] = u
	}
	return res, nil
}

// Exists 检查目标用户是否有效
func (s *userRepoImpl) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND is_ban = 0 AND is_delete = 0", id).
		Count(&count).Error
	return count > 0, err
}

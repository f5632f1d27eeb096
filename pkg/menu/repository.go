package menu

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrGroupNotFound  = errors.New("user group not found")
	ErrAlreadyDeleted = errors.New("record already soft-deleted")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&UserModel{},
		&UserGroupModel{},
		&MenuItemModel{},
		&GroupMenuModel{},
		&PermissionModel{},
		&GroupPermissionModel{},
	)
}

func (r *Repository) ListUsers(ctx context.Context) ([]UserModel, error) {
	var users []UserModel
	result := r.db.WithContext(ctx).
		Where("deleted = ?", false).
		Order("username ASC").
		Find(&users)
	return users, result.Error
}

func (r *Repository) ListUsersByGroup(ctx context.Context, groupCode string) ([]UserModel, error) {
	var users []UserModel
	result := r.db.WithContext(ctx).
		Where("group_code = ? AND deleted = ?", groupCode, false).
		Order("username ASC").
		Find(&users)
	return users, result.Error
}

func (r *Repository) FindUser(ctx context.Context, username string, withDeleted bool) (*UserModel, error) {
	query := r.db.WithContext(ctx).Where("username = ?", username)
	if !withDeleted {
		query = query.Where("deleted = ?", false)
	}
	var user UserModel
	err := query.First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) SaveUser(ctx context.Context, user *UserModel) error {
	user.UpdatedAt = time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = user.UpdatedAt
	}
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *Repository) MarkUserDeleted(ctx context.Context, username string) error {
	return r.db.WithContext(ctx).Model(&UserModel{}).Where("username = ?", username).Updates(map[string]interface{}{
		"deleted":    true,
		"updated_at": time.Now().UTC(),
	}).Error
}

func (r *Repository) ListGroups(ctx context.Context) ([]UserGroupModel, error) {
	var groups []UserGroupModel
	result := r.db.WithContext(ctx).
		Where("deleted = ?", false).
		Order("code ASC").
		Find(&groups)
	return groups, result.Error
}

func (r *Repository) FindGroup(ctx context.Context, code string, withDeleted bool) (*UserGroupModel, error) {
	query := r.db.WithContext(ctx).Where("code = ?", code)
	if !withDeleted {
		query = query.Where("deleted = ?", false)
	}
	var group UserGroupModel
	err := query.First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *Repository) SaveGroup(ctx context.Context, group *UserGroupModel) error {
	group.UpdatedAt = time.Now().UTC()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = group.UpdatedAt
	}
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *Repository) MarkGroupDeleted(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Model(&UserGroupModel{}).Where("code = ?", code).Updates(map[string]interface{}{
		"deleted":    true,
		"updated_at": time.Now().UTC(),
	}).Error
}

// SaveGroupWithPermissions stores the group and replaces its
// permission set in one transaction. An empty permission list keeps
// the existing assignments.
func (r *Repository) SaveGroupWithPermissions(ctx context.Context, group *UserGroupModel, permissionIDs []int) error {
	group.UpdatedAt = time.Now().UTC()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = group.UpdatedAt
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(group).Error; err != nil {
			return err
		}
		if len(permissionIDs) == 0 {
			return nil
		}
		if err := tx.Where("group_code = ?", group.Code).Delete(&GroupPermissionModel{}).Error; err != nil {
			return err
		}
		for _, permissionID := range permissionIDs {
			assignment := GroupPermissionModel{GroupCode: group.Code, PermissionID: permissionID}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) ListPermissionsByGroup(ctx context.Context, groupCode string) ([]PermissionModel, error) {
	var permissions []PermissionModel
	result := r.db.WithContext(ctx).
		Joins("JOIN group_permissions ON group_permissions.permission_id = permissions.id").
		Where("group_permissions.group_code = ?", groupCode).
		Order("permissions.name ASC").
		Find(&permissions)
	return permissions, result.Error
}

func (r *Repository) SavePermission(ctx context.Context, permission *PermissionModel) error {
	return r.db.WithContext(ctx).Save(permission).Error
}

func (r *Repository) SaveMenuItem(ctx context.Context, item *MenuItemModel) error {
	return r.db.WithContext(ctx).Save(item).Error
}

type menuRow struct {
	MenuItemModel
	Active bool
}

// MenuForGroup joins the group's menu bindings onto the item catalog,
// ordered by position.
func (r *Repository) MenuForGroup(ctx context.Context, groupCode string) ([]menuRow, error) {
	var rows []menuRow
	result := r.db.WithContext(ctx).Model(&MenuItemModel{}).
		Select("menu_items.*, group_menus.active").
		Joins("JOIN group_menus ON group_menus.item_code = menu_items.code").
		Where("group_menus.group_code = ?", groupCode).
		Order("menu_items.position ASC").
		Scan(&rows)
	return rows, result.Error
}

// ReplaceGroupMenu swaps a group's bindings for the given set in one
// transaction (delete then insert).
func (r *Repository) ReplaceGroupMenu(ctx context.Context, groupCode string, bindings []GroupMenuModel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_code = ?", groupCode).Delete(&GroupMenuModel{}).Error; err != nil {
			return err
		}
		for i := range bindings {
			bindings[i].ID = 0
			bindings[i].GroupCode = groupCode
			if err := tx.Create(&bindings[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

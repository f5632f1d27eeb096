package menu

import (
	"time"

	"github.com/caretide-health/platform/pkg/common/models"
)

type UserModel struct {
	Username    string    `gorm:"primaryKey;column:username"`
	Description string    `gorm:"column:description"`
	GroupCode   string    `gorm:"column:group_code;index"`
	Deleted     bool      `gorm:"column:deleted;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (UserModel) TableName() string {
	return "users"
}

type UserGroupModel struct {
	Code        string    `gorm:"primaryKey;column:code"`
	Description string    `gorm:"column:description"`
	Deleted     bool      `gorm:"column:deleted;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (UserGroupModel) TableName() string {
	return "user_groups"
}

type MenuItemModel struct {
	Code        string `gorm:"primaryKey;column:code"`
	ButtonLabel string `gorm:"column:button_label"`
	AltLabel    string `gorm:"column:alt_label"`
	Tooltip     string `gorm:"column:tooltip"`
	Shortcut    string `gorm:"column:shortcut;size:1"`
	SubmenuOf   string `gorm:"column:submenu_of;index"`
	IsSubmenu   bool   `gorm:"column:is_submenu"`
	Position    int    `gorm:"column:position"`
}

func (MenuItemModel) TableName() string {
	return "menu_items"
}

type GroupMenuModel struct {
	ID        int    `gorm:"primaryKey;autoIncrement;column:id"`
	GroupCode string `gorm:"column:group_code;index"`
	ItemCode  string `gorm:"column:item_code;index"`
	Active    bool   `gorm:"column:active"`
}

func (GroupMenuModel) TableName() string {
	return "group_menus"
}

type PermissionModel struct {
	ID          int    `gorm:"primaryKey;autoIncrement;column:id"`
	Name        string `gorm:"uniqueIndex;column:name"`
	Description string `gorm:"column:description"`
}

func (PermissionModel) TableName() string {
	return "permissions"
}

type GroupPermissionModel struct {
	ID           int    `gorm:"primaryKey;autoIncrement;column:id"`
	GroupCode    string `gorm:"column:group_code;index"`
	PermissionID int    `gorm:"column:permission_id;index"`
}

func (GroupPermissionModel) TableName() string {
	return "group_permissions"
}

func mapUserModel(u UserModel) models.User {
	return models.User{
		Username:    u.Username,
		Description: u.Description,
		GroupCode:   u.GroupCode,
		Deleted:     u.Deleted,
	}
}

func mapUserGroupModel(g UserGroupModel) models.UserGroup {
	return models.UserGroup{
		Code:        g.Code,
		Description: g.Description,
		Deleted:     g.Deleted,
	}
}

package menu

import (
	"context"
	"fmt"

	"github.com/caretide-health/platform/pkg/common/models"
)

type Service struct {
	repo  *Repository
	cache Cache
}

func NewService(repo *Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) GetUsers(ctx context.Context) ([]models.User, error) {
	records, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(records))
	for _, record := range records {
		users = append(users, mapUserModel(record))
	}
	return users, nil
}

func (s *Service) GetUsersByGroup(ctx context.Context, groupCode string) ([]models.User, error) {
	records, err := s.repo.ListUsersByGroup(ctx, groupCode)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(records))
	for _, record := range records {
		users = append(users, mapUserModel(record))
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, username string) (models.User, error) {
	record, err := s.repo.FindUser(ctx, username, false)
	if err != nil {
		return models.User{}, err
	}
	return mapUserModel(*record), nil
}

func (s *Service) NewUser(ctx context.Context, user models.User) (models.User, error) {
	if user.Username == "" {
		return models.User{}, fmt.Errorf("username required")
	}
	if _, err := s.repo.FindGroup(ctx, user.GroupCode, false); err != nil {
		return models.User{}, err
	}
	record := &UserModel{
		Username:    user.Username,
		Description: user.Description,
		GroupCode:   user.GroupCode,
	}
	if err := s.repo.SaveUser(ctx, record); err != nil {
		return models.User{}, err
	}
	return mapUserModel(*record), nil
}

func (s *Service) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	if err := s.ensureUserNotDeleted(ctx, user.Username); err != nil {
		return models.User{}, err
	}
	record, err := s.repo.FindUser(ctx, user.Username, false)
	if err != nil {
		return models.User{}, err
	}
	record.Description = user.Description
	record.GroupCode = user.GroupCode
	if err := s.repo.SaveUser(ctx, record); err != nil {
		return models.User{}, err
	}
	s.invalidateUsers(ctx, []string{user.Username})
	return mapUserModel(*record), nil
}

func (s *Service) DeleteUser(ctx context.Context, username string) error {
	if err := s.ensureUserNotDeleted(ctx, username); err != nil {
		return err
	}
	if err := s.repo.MarkUserDeleted(ctx, username); err != nil {
		return err
	}
	s.invalidateUsers(ctx, []string{username})
	return nil
}

func (s *Service) GetUserGroups(ctx context.Context) ([]models.UserGroup, error) {
	records, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	groups := make([]models.UserGroup, 0, len(records))
	for _, record := range records {
		groups = append(groups, mapUserGroupModel(record))
	}
	return groups, nil
}

func (s *Service) GetUserGroup(ctx context.Context, code string) (models.UserGroup, error) {
	record, err := s.repo.FindGroup(ctx, code, false)
	if err != nil {
		return models.UserGroup{}, err
	}
	return mapUserGroupModel(*record), nil
}

// NewUserGroup creates a group, optionally with an initial permission
// set, in one transaction.
func (s *Service) NewUserGroup(ctx context.Context, group models.UserGroup, permissionIDs []int) (models.UserGroup, error) {
	if group.Code == "" {
		return models.UserGroup{}, fmt.Errorf("group code required")
	}
	record := &UserGroupModel{
		Code:        group.Code,
		Description: group.Description,
	}
	if err := s.repo.SaveGroupWithPermissions(ctx, record, permissionIDs); err != nil {
		return models.UserGroup{}, err
	}
	return mapUserGroupModel(*record), nil
}

// UpdateUserGroup updates the group and, when a non-empty permission
// list is supplied, replaces the group's permissions with it.
func (s *Service) UpdateUserGroup(ctx context.Context, group models.UserGroup, permissionIDs []int) (models.UserGroup, error) {
	record, err := s.repo.FindGroup(ctx, group.Code, true)
	if err != nil {
		return models.UserGroup{}, err
	}
	if record.Deleted && group.Deleted {
		return models.UserGroup{}, ErrAlreadyDeleted
	}
	record.Description = group.Description
	record.Deleted = group.Deleted
	if err := s.repo.SaveGroupWithPermissions(ctx, record, permissionIDs); err != nil {
		return models.UserGroup{}, err
	}
	s.invalidateGroup(ctx, group.Code)
	return mapUserGroupModel(*record), nil
}

func (s *Service) DeleteUserGroup(ctx context.Context, code string) error {
	record, err := s.repo.FindGroup(ctx, code, true)
	if err != nil {
		return err
	}
	if record.Deleted {
		return ErrAlreadyDeleted
	}
	if err := s.repo.MarkGroupDeleted(ctx, code); err != nil {
		return err
	}
	s.invalidateGroup(ctx, code)
	return nil
}

func (s *Service) GetGroupPermissions(ctx context.Context, groupCode string) ([]PermissionModel, error) {
	return s.repo.ListPermissionsByGroup(ctx, groupCode)
}

// MenuForUser composes the user's menu from their group's bindings,
// serving from cache when possible.
func (s *Service) MenuForUser(ctx context.Context, username string) ([]models.MenuItem, error) {
	if s.cache != nil {
		if items, ok := s.cache.Get(ctx, username); ok {
			return items, nil
		}
	}

	user, err := s.repo.FindUser(ctx, username, false)
	if err != nil {
		return nil, err
	}
	items, err := s.MenuForGroup(ctx, user.GroupCode)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, username, items)
	}
	return items, nil
}

// MenuForGroup returns the group's menu items ordered by position.
func (s *Service) MenuForGroup(ctx context.Context, groupCode string) ([]models.MenuItem, error) {
	if _, err := s.repo.FindGroup(ctx, groupCode, false); err != nil {
		return nil, err
	}
	rows, err := s.repo.MenuForGroup(ctx, groupCode)
	if err != nil {
		return nil, err
	}
	items := make([]models.MenuItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.MenuItem{
			Code:        row.Code,
			ButtonLabel: row.ButtonLabel,
			AltLabel:    row.AltLabel,
			Tooltip:     row.Tooltip,
			Shortcut:    row.Shortcut,
			SubmenuOf:   row.SubmenuOf,
			IsSubmenu:   row.IsSubmenu,
			Position:    row.Position,
			Active:      row.Active,
		})
	}
	return items, nil
}

// SetGroupMenu replaces the group's bindings atomically and drops the
// cached compositions of every user in the group.
func (s *Service) SetGroupMenu(ctx context.Context, groupCode string, items []models.MenuItem) error {
	if _, err := s.repo.FindGroup(ctx, groupCode, false); err != nil {
		return err
	}
	bindings := make([]GroupMenuModel, 0, len(items))
	for _, item := range items {
		bindings = append(bindings, GroupMenuModel{
			ItemCode: item.Code,
			Active:   item.Active,
		})
	}
	if err := s.repo.ReplaceGroupMenu(ctx, groupCode, bindings); err != nil {
		return err
	}
	s.invalidateGroup(ctx, groupCode)
	return nil
}

func (s *Service) ensureUserNotDeleted(ctx context.Context, username string) error {
	record, err := s.repo.FindUser(ctx, username, true)
	if err != nil {
		return err
	}
	if record.Deleted {
		return ErrAlreadyDeleted
	}
	return nil
}

func (s *Service) invalidateGroup(ctx context.Context, groupCode string) {
	if s.cache == nil {
		return
	}
	users, err := s.repo.ListUsersByGroup(ctx, groupCode)
	if err != nil {
		return
	}
	usernames := make([]string, 0, len(users))
	for _, user := range users {
		usernames = append(usernames, user.Username)
	}
	s.cache.Invalidate(ctx, usernames)
}

func (s *Service) invalidateUsers(ctx context.Context, usernames []string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, usernames)
	}
}

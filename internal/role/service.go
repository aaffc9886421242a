package role

import (
	"log/slog"

	"gorm.io/gorm"

	internal "github.com/stonelib/library-management/internal"
	"github.com/stonelib/library-management/internal/core/common/validation"
	"github.com/stonelib/library-management/internal/core/datamodel"
)

// Service handles role administration.
type Service struct {
	repo   Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(repo Repository, db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

func (s *Service) List(limit, offset int) ([]datamodel.Role, error) {
	roles, err := s.repo.List(limit, offset)
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, internal.NewInternalError("could not list roles", err)
	}
	return roles, nil
}

func (s *Service) GetByID(id int64) (*datamodel.Role, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(dto CreateDTO) (*datamodel.Role, error) {
	v := validation.New(s.db)
	v.Field("name", dto.Name).
		Required("role name is required").
		Unique(&datamodel.Role{}, "name", "this role name is already in use")
	v.Field("permissions", dto.Permissions).
		ArrayMinSize(1, "at least one permission must be given").
		ArrayUnique("permissions must be distinct").
		Available(&datamodel.Permission{}, "one or more of the given permissions do not exist")
	if err := v.Error(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(&datamodel.Role{Name: dto.Name}, dto.Permissions)
	if err != nil {
		s.logger.Error("failed to create role", "error", err, "name", dto.Name)
		return nil, internal.NewInternalError("could not create role", err)
	}

	return created, nil
}

func (s *Service) Update(id int64, dto UpdateDTO) (*datamodel.Role, error) {
	v := validation.New(s.db)
	v.Field("name", dto.Name).
		Required("role name is required").
		Unique(&datamodel.Role{}, "name", "this role name is already in use")
	if err := v.Error(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return nil, err
	}

	updated, err := s.repo.Rename(id, dto.Name)
	if err != nil {
		s.logger.Error("failed to rename role", "error", err, "role_id", id)
		return nil, internal.NewInternalError("could not update role", err)
	}

	return updated, nil
}

// AddPermissions grants permissions to a role, skipping grants that
// already exist.
func (s *Service) AddPermissions(roleID int64, dto PermissionsDTO) (*datamodel.Role, error) {
	v := validation.New(s.db)
	v.Field("permissions", dto.Permissions).
		ArrayMinSize(1, "at least one permission must be given").
		ArrayUnique("permissions must be distinct").
		Available(&datamodel.Permission{}, "one or more of the given permissions do not exist")
	if err := v.Error(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(roleID); err != nil {
		return nil, err
	}

	updated, err := s.repo.AddPermissions(roleID, dto.Permissions)
	if err != nil {
		s.logger.Error("failed to add permissions", "error", err, "role_id", roleID)
		return nil, internal.NewInternalError("could not add permissions", err)
	}

	return updated, nil
}

// RemovePermissions revokes grants. Permission ids that are not
// currently granted are ignored.
func (s *Service) RemovePermissions(roleID int64, dto PermissionsDTO) (*datamodel.Role, error) {
	v := validation.New(s.db)
	v.Field("permissions", dto.Permissions).
		ArrayMinSize(1, "at least one permission must be given").
		ArrayUnique("permissions must be distinct").
		Available(&datamodel.Permission{}, "one or more of the given permissions do not exist")
	if err := v.Error(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(roleID); err != nil {
		return nil, err
	}

	updated, err := s.repo.RemovePermissions(roleID, dto.Permissions)
	if err != nil {
		s.logger.Error("failed to remove permissions", "error", err, "role_id", roleID)
		return nil, internal.NewInternalError("could not remove permissions", err)
	}

	return updated, nil
}

// Delete removes the role and its associations. The three built-in
// roles cannot be deleted.
func (s *Service) Delete(id int64) (*datamodel.Role, error) {
	if datamodel.IsReservedRole(id) {
		return nil, internal.ErrReservedRole
	}

	role, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete role", "error", err, "role_id", id)
		return nil, internal.NewInternalError("could not delete role", err)
	}

	s.logger.Info("role deleted", "role_id", id, "name", role.Name)

	return role, nil
}

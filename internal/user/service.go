package user

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	internal "github.com/stonelib/library-management/internal"
	"github.com/stonelib/library-management/internal/auth"
	"github.com/stonelib/library-management/internal/core/common/validation"
	"github.com/stonelib/library-management/internal/core/datamodel"
)

// Service handles user administration.
type Service struct {
	repo       Repository
	mailer     Mailer
	db         *gorm.DB
	adminEmail string
	logger     *slog.Logger
}

func NewService(repo Repository, mailer Mailer, db *gorm.DB, adminEmail string, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		mailer:     mailer,
		db:         db,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

func (s *Service) List(limit, offset int) ([]datamodel.User, error) {
	users, err := s.repo.List(limit, offset)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("could not list users", err)
	}
	return users, nil
}

func (s *Service) GetByID(id int64) (*datamodel.User, error) {
	return s.repo.GetByID(id)
}

// Create makes an account with a generated password, attaches the
// submitted roles (reader when none are given) and mails the
// credentials.
func (s *Service) Create(dto CreateDTO) (*datamodel.User, error) {
	v := validation.New(s.db)
	v.Field("email", dto.Email).
		Required("email address is required").
		Email("please enter a valid email address").
		Unique(&datamodel.User{}, "email", "this email address is already in use")
	v.Field("firstname", dto.Firstname).
		Required("firstname is required").
		Length(1, 50, "firstname must be between 1 and 50 characters")
	v.Field("lastname", dto.Lastname).
		Required("lastname is required").
		Length(1, 50, "lastname must be between 1 and 50 characters")
	if len(dto.Roles) > 0 {
		v.Field("roles", dto.Roles).
			ArrayUnique("roles must be distinct").
			ArrayExcludes(datamodel.RoleAdmin, "the admin role cannot be assigned here").
			Available(&datamodel.Role{}, "one or more of the given roles do not exist")
	}
	if err := v.Error(); err != nil {
		return nil, err
	}

	password, err := auth.GeneratePassword()
	if err != nil {
		return nil, internal.NewInternalError("could not generate password", err)
	}

	roleIDs := dto.Roles
	if len(roleIDs) == 0 {
		roleIDs = []int64{datamodel.RoleReader}
	}

	created, err := s.repo.Create(&datamodel.User{
		Firstname: dto.Firstname,
		Lastname:  dto.Lastname,
		Email:     dto.Email,
		Password:  password,
	}, roleIDs)
	if err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, internal.NewInternalError("could not create user", err)
	}

	go s.sendCredentials(dto.Email, password)

	return created, nil
}

// AddRoles attaches roles to a user, skipping associations that already
// exist.
func (s *Service) AddRoles(userID int64, dto AddRolesDTO) (*datamodel.User, error) {
	v := validation.New(s.db)
	v.Field("roles", dto.Roles).
		ArrayMinSize(1, "at least one role must be given").
		ArrayUnique("roles must be distinct").
		Available(&datamodel.Role{}, "one or more of the given roles do not exist")
	if err := v.Error(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(userID); err != nil {
		return nil, err
	}

	updated, err := s.repo.AddRoles(userID, dto.Roles)
	if err != nil {
		s.logger.Error("failed to add roles", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("could not add roles", err)
	}

	return updated, nil
}

// Update applies partial-field semantics: only submitted fields
// overwrite existing values.
func (s *Service) Update(id int64, dto UpdateDTO) (*datamodel.User, error) {
	if dto.Empty() {
		return nil, internal.ErrEmptyUpdatePayload
	}

	v := validation.New(s.db)
	if dto.Email != "" {
		v.Field("email", dto.Email).
			Email("please enter a valid email address").
			Unique(&datamodel.User{}, "email", "this email address is already in use")
	}
	if dto.Firstname != "" {
		v.Field("firstname", dto.Firstname).
			Length(1, 50, "firstname must be between 1 and 50 characters")
	}
	if dto.Lastname != "" {
		v.Field("lastname", dto.Lastname).
			Length(1, 50, "lastname must be between 1 and 50 characters")
	}
	if err := v.Error(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if dto.Email != "" {
		fields["email"] = dto.Email
	}
	if dto.Firstname != "" {
		fields["firstname"] = dto.Firstname
	}
	if dto.Lastname != "" {
		fields["lastname"] = dto.Lastname
	}

	updated, err := s.repo.Update(id, fields)
	if err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, internal.NewInternalError("could not update user", err)
	}

	return updated, nil
}

// Delete removes the user, its role associations and its authored books
// as one atomic unit. The bootstrap admin cannot be deleted.
func (s *Service) Delete(id int64) (*datamodel.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if user.Email == s.adminEmail {
		return nil, internal.ErrProtectedUser
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return nil, internal.NewInternalError("could not delete user", err)
	}

	s.logger.Info("user deleted", "user_id", id, "email", user.Email)

	return user, nil
}

func (s *Service) sendCredentials(email, password string) {
	body := fmt.Sprintf("Your login credentials are:\nemail: %s\npassword: %s", email, password)
	if err := s.mailer.Send(email, "Your Stone Library account", body); err != nil {
		s.logger.Error("failed to send credentials email", "error", err, "email", email)
	}
}

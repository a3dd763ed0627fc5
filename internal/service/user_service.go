package service

import (
	"errors"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

type CreateUserRequest struct {
	Name     string         `json:"name" binding:"required"`
	Email    string         `json:"email" binding:"required,email"`
	Password string         `json:"password" binding:"required,min=8"`
	Role     model.UserRole `json:"role" binding:"required,oneof=student teacher parent admin management"`
}

type UpdateUserRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	// Role is deliberately absent: immutable after creation.
}

func (s *UserService) List(page, limit int, role model.UserRole) ([]model.User, int64, error) {
	return s.UserRepo.List(page, limit, role)
}

func (s *UserService) Get(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Create is the admin add-user path; role is set once here and never changes.
func (s *UserService) Create(req CreateUserRequest) (*model.User, error) {
	if _, err := s.UserRepo.FindByEmail(req.Email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     req.Role,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(id uint, req UpdateUserRequest) (*model.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.UserRepo.Delete(id)
}

func (s *UserService) SetDisabled(id uint, disabled bool) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.UserRepo.SetDisabled(id, disabled)
}

// LinkParent connects a parent account to a student account.
func (s *UserService) LinkParent(parentID, studentID uint) error {
	parent, err := s.Get(parentID)
	if err != nil {
		return err
	}
	if parent.Role != model.Parent {
		return util.ErrPermissionDenied
	}

	student, err := s.Get(studentID)
	if err != nil {
		return err
	}
	if student.Role != model.Student {
		return util.ErrPermissionDenied
	}

	return s.UserRepo.CreateParentLink(&model.ParentLink{
		ParentID:  parentID,
		StudentID: studentID,
	})
}

func (s *UserService) Children(parentID uint) ([]model.User, error) {
	return s.UserRepo.FindChildren(parentID)
}

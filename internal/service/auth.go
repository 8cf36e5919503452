package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"OnDuty/internal/model"
	"OnDuty/internal/repository"
	"OnDuty/pkg/errors"
)

// AuthService verifies dashboard credentials. Only employees provisioned with
// a password hash (admins) can log in.
type AuthService struct {
	directory repository.DirectoryStore
}

func NewAuthService(directory repository.DirectoryStore) *AuthService {
	return &AuthService{directory: directory}
}

// Login checks a PF number and password pair. It deliberately returns the
// same error for unknown PF numbers and wrong passwords.
func (s *AuthService) Login(ctx context.Context, pfNumber, password string) (*model.Employee, error) {
	emp, err := s.directory.EmployeeByPFNumber(ctx, pfNumber)
	if err != nil {
		return nil, err
	}
	if emp == nil || emp.PasswordHash == "" {
		return nil, errors.LoginInvalid
	}
	if !emp.IsActive {
		return nil, errors.EmployeeInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(password)); err != nil {
		return nil, errors.LoginInvalid
	}
	return emp, nil
}

package repository

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"OnDuty/internal/model"
	"OnDuty/storage/database"
)

// DirectoryStore is the read capability over employee profiles that the core
// components depend on. Narrow on purpose so tests can substitute fakes.
type DirectoryStore interface {
	// ActiveStaff returns active, non-admin employees.
	ActiveStaff(ctx context.Context) ([]model.Employee, error)
	EmployeeByPublicID(ctx context.Context, publicID int64) (*model.Employee, error)
	EmployeeByPFNumber(ctx context.Context, pfNumber string) (*model.Employee, error)
	ListEmployees(ctx context.Context) ([]model.Employee, error)
}

type gormDirectory struct{}

var (
	directoryInst DirectoryStore
	directoryOnce sync.Once
)

func Directory() DirectoryStore {
	directoryOnce.Do(func() {
		directoryInst = &gormDirectory{}
	})
	return directoryInst
}

func (r *gormDirectory) ActiveStaff(ctx context.Context) ([]model.Employee, error) {
	var employees []model.Employee
	err := database.DB().WithContext(ctx).
		Where("is_active = ?", true).
		Where("role <> ?", model.RoleAdmin).
		Order("name").
		Find(&employees).Error
	return employees, err
}

func (r *gormDirectory) EmployeeByPublicID(ctx context.Context, publicID int64) (*model.Employee, error) {
	var employee model.Employee
	err := database.DB().WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&employee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *gormDirectory) EmployeeByPFNumber(ctx context.Context, pfNumber string) (*model.Employee, error) {
	var employee model.Employee
	err := database.DB().WithContext(ctx).
		Where("pf_number = ?", pfNumber).
		First(&employee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *gormDirectory) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	var employees []model.Employee
	err := database.DB().WithContext(ctx).
		Order("name").
		Find(&employees).Error
	return employees, err
}

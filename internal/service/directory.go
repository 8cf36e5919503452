package service

import (
	"context"

	"go.uber.org/zap"

	"OnDuty/internal/cache"
	"OnDuty/internal/model"
	"OnDuty/internal/repository"
	"OnDuty/pkg/errors"
	"OnDuty/pkg/logger"
)

// DirectoryService is the thin dashboard reader over employee profiles.
// Profiles are provisioned externally; this surface is read-only.
type DirectoryService struct {
	directory repository.DirectoryStore
}

func NewDirectoryService(directory repository.DirectoryStore) *DirectoryService {
	return &DirectoryService{directory: directory}
}

func (s *DirectoryService) List(ctx context.Context) ([]model.Employee, error) {
	return s.directory.ListEmployees(ctx)
}

// Get reads through the profile cache; a cache outage degrades to the
// database instead of failing the lookup.
func (s *DirectoryService) Get(ctx context.Context, publicID int64) (*model.Employee, error) {
	cached, found, err := cache.GetEmployee(ctx, publicID)
	if err != nil {
		logger.Logger.Debug("Employee cache read failed, falling back to database",
			zap.Int64("employee_id", publicID), zap.Error(err))
	} else if found {
		if cached == nil {
			return nil, errors.EmployeeNotFound
		}
		return cached, nil
	}

	emp, err := s.directory.EmployeeByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if setErr := cache.SetEmployee(ctx, publicID, emp); setErr != nil {
		logger.Logger.Debug("Failed to cache employee profile",
			zap.Int64("employee_id", publicID), zap.Error(setErr))
	}
	if emp == nil {
		return nil, errors.EmployeeNotFound
	}
	return emp, nil
}

package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"OnDuty/internal/service"
	apperrors "OnDuty/pkg/errors"
	"OnDuty/pkg/response"
	"OnDuty/pkg/token"
)

type loginRequest struct {
	PFNumber string `json:"pf_number" vd:"len($)>0"`
	Password string `json:"password" vd:"len($)>0"`
}

// Login authenticates an administrator with PF number and password.
// POST /v1/auth/login
func Login(ctx context.Context, c *app.RequestContext) {
	var req loginRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	emp, err := service.Auth().Login(ctx, req.PFNumber, req.Password)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	accessToken, refreshToken, expiresIn, err := token.GenerateTokenPair(
		strconv.FormatInt(emp.PublicID, 10),
		string(emp.Role),
	)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    expiresIn,
		"employee": map[string]interface{}{
			"id":         strconv.FormatInt(emp.PublicID, 10),
			"pf_number":  emp.PFNumber,
			"name":       emp.Name,
			"role":       emp.Role,
			"department": emp.Department,
		},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" vd:"len($)>0"`
}

// RefreshToken exchanges a refresh token for a new token pair.
// POST /v1/auth/refresh
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req refreshRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	employeeID, err := token.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		response.Error(ctx, c, apperrors.Unauthorized)
		return
	}

	publicID, err := strconv.ParseInt(employeeID, 10, 64)
	if err != nil {
		response.Error(ctx, c, apperrors.InvalidEmployeeID)
		return
	}
	emp, err := service.Directory().Get(ctx, publicID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	if !emp.IsActive {
		response.Error(ctx, c, apperrors.EmployeeInactive)
		return
	}

	accessToken, refreshToken, expiresIn, err := token.GenerateTokenPair(employeeID, string(emp.Role))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    expiresIn,
	})
}

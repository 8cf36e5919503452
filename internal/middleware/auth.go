package middleware

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/jwt"

	apperrors "OnDuty/pkg/errors"
	"OnDuty/pkg/response"
	"OnDuty/pkg/token"
)

const (
	IdentityKey = token.IdentityKey
	RoleKey     = token.RoleKey
)

var authMiddleware *jwt.HertzJWTMiddleware

func initAuthMiddleware() error {
	sharedGenerator := token.GetGenerator()
	if sharedGenerator == nil {
		return fmt.Errorf("token generator not initialized, call token.Init() first")
	}

	authMiddleware = &jwt.HertzJWTMiddleware{
		Realm:       "OnDuty API",
		Key:         sharedGenerator.Key,
		Timeout:     sharedGenerator.Timeout,
		MaxRefresh:  sharedGenerator.MaxRefresh,
		IdentityKey: sharedGenerator.IdentityKey,
		TimeFunc:    sharedGenerator.TimeFunc,

		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)

			// Stash the role claim alongside the identity so RequireAdmin can
			// check it without re-parsing the token.
			if role, ok := claims[RoleKey].(string); ok {
				c.Set(RoleKey, role)
			}

			uid, ok := claims[IdentityKey].(string)
			if !ok {
				if uidFloat, ok := claims[IdentityKey].(float64); ok {
					uid = fmt.Sprintf("%.0f", uidFloat)
				} else {
					return nil
				}
			}
			return uid
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			c.JSON(code, response.ErrorResponse{
				Error: response.ErrorDetail{
					Code:    apperrors.Unauthorized.Code,
					Message: message,
				},
			})
		},

		TokenLookup:   "header: Authorization, query: token, cookie: jwt",
		TokenHeadName: "Bearer",
	}

	return nil
}

func AuthMiddleware() app.HandlerFunc {
	if authMiddleware == nil {
		panic("AuthMiddleware not initialized, call Init() first")
	}
	return authMiddleware.MiddlewareFunc()
}

// RequireAdmin gates the admin surface. Must run after AuthMiddleware.
func RequireAdmin() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		role, exists := c.Get(RoleKey)
		if !exists || role != "admin" {
			c.Abort()
			response.Error(ctx, c, apperrors.AdminRoleRequired)
			return
		}
		c.Next(ctx)
	}
}

// GetEmployeeID returns the authenticated employee's public id (string form).
func GetEmployeeID(ctx context.Context, c *app.RequestContext) (string, bool) {
	employeeID, exists := c.Get(IdentityKey)
	if !exists {
		return "", false
	}

	id, ok := employeeID.(string)
	if !ok {
		return "", false
	}
	return id, true
}

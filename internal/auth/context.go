package auth

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned when a request carries no valid identity.
var ErrUnauthenticated = errors.New("user not authenticated")

// ErrPermissionDenied is returned when an authenticated user touches another
// user's resources.
var ErrPermissionDenied = errors.New("permission denied")

// Context keys
type contextKey string

const userClaimsKey contextKey = "user_claims"

// WithUserClaims adds user claims to the context
func WithUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// GetUserClaims extracts user claims from context
func GetUserClaims(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*UserClaims)
	return claims, ok
}

// GetUserID is a convenience function to get the user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	if claims, ok := GetUserClaims(ctx); ok {
		return claims.UID, true
	}
	return "", false
}

// RequireAuth extracts user claims from context or returns an unauthenticated error
func RequireAuth(ctx context.Context) (*UserClaims, error) {
	claims, ok := GetUserClaims(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// RequireUserAccess verifies the authenticated user matches the requested user ID
func RequireUserAccess(ctx context.Context, requestedUserID string) (*UserClaims, error) {
	claims, err := RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if requestedUserID != "" && requestedUserID != claims.UID {
		return nil, fmt.Errorf("%w: cannot access another user's resources", ErrPermissionDenied)
	}

	return claims, nil
}

// NormalizePageSize returns a valid page size (default 100, max 1000)
func NormalizePageSize(pageSize int32) int32 {
	if pageSize <= 0 {
		return 100
	}
	if pageSize > 1000 {
		return 1000
	}
	return pageSize
}

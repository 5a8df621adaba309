package auth

import (
	"errors"
	"time"
)

var ErrMissingTenant = errors.New("tenant is required")

// Principal identifies the caller of a tenant scoped operation.
type Principal struct {
	TenantID string
	UserID   int64
}

type Strategy interface {
	IssueToken(p Principal) (string, error)
	ParseToken(token string) (Principal, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}

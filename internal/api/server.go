package api

import (
	"context"
	"time"

	"github.com/vytor/anatomyflash/internal/assets"
	"github.com/vytor/anatomyflash/internal/services"
)

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	QuizService     services.QuizService
	ProgressService services.ProgressService
	Assets          assets.Resolver

	// Sessions is checked by the readiness probe when set.
	Sessions Pinger

	StaticDir      string
	CookieSecure   bool
	RequestTimeout time.Duration
}

package servers

import (
	"context"
	"time"
)

// Store persists server records. Passwords reach the store already sealed.
type Store interface {
	List(ctx context.Context) ([]*Server, error)
	Get(ctx context.Context, id string) (*Server, error)
	Create(ctx context.Context, s *Server) error
	Update(ctx context.Context, s *Server) error
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status Status, checkedAt time.Time) error
}

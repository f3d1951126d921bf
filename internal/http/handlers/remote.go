package handlers

import (
	"context"

	"github.com/blakestevenson/vodboard/internal/servers"
	"github.com/blakestevenson/vodboard/internal/xtream"
)

// remote resolves a stored server into a client for its panel
type remote struct {
	servers   servers.Service
	newClient xtream.Factory
}

func (r remote) open(ctx context.Context, serverID string) (*servers.Server, *xtream.Client, error) {
	srv, err := r.servers.Get(ctx, serverID)
	if err != nil {
		return nil, nil, err
	}
	return srv, r.newClient(srv.Credentials()), nil
}

package status

import (
	"context"

	"github.com/blakestevenson/vodboard/internal/servers"
	"github.com/blakestevenson/vodboard/internal/xtream"
	"go.uber.org/zap"
)

// Prober marks a panel online when get_server_info answers
type Prober struct {
	newClient xtream.Factory
	logger    *zap.Logger
}

// NewProber creates a prober that builds clients with newClient
func NewProber(newClient xtream.Factory, logger *zap.Logger) *Prober {
	return &Prober{newClient: newClient, logger: logger}
}

// Probe implements servers.Prober
func (p *Prober) Probe(ctx context.Context, creds xtream.Credentials) servers.Status {
	info, err := p.newClient(creds).GetServerInfo(ctx)
	if err != nil {
		p.logger.Info("server offline", zap.String("host", hostOf(creds.URL)), zap.Error(err))
		return servers.StatusOffline
	}
	if !info.Authenticated() {
		p.logger.Warn("server answered but did not confirm authentication",
			zap.String("host", hostOf(creds.URL)))
	}
	return servers.StatusOnline
}

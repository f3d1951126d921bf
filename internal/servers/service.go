package servers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blakestevenson/vodboard/internal/audit"
	"github.com/blakestevenson/vodboard/internal/secrets"
	"github.com/blakestevenson/vodboard/internal/xtream"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Prober reports whether a panel answers with the given credentials
type Prober interface {
	Probe(ctx context.Context, creds xtream.Credentials) Status
}

// Service defines the server directory operations
type Service interface {
	List(ctx context.Context) ([]*Server, error)
	Get(ctx context.Context, id string) (*Server, error)
	Create(ctx context.Context, params CreateServerParams) (*Server, error)
	Update(ctx context.Context, id string, params UpdateServerParams) (*Server, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status Status) (*Server, error)
}

type service struct {
	store    Store
	box      *secrets.Box
	prober   Prober
	recorder audit.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a server directory service. prober and recorder may be nil.
func NewService(store Store, box *secrets.Box, prober Prober, recorder audit.Recorder, logger *zap.Logger) Service {
	return &service{
		store:    store,
		box:      box,
		prober:   prober,
		recorder: recorder,
		logger:   logger.With(zap.String("component", "servers")),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ValidateID checks a server id before it is looked up
func ValidateID(id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := uuid.Validate(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]*Server, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, srv := range list {
		if err := s.open(srv); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, id string) (*Server, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	srv, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.open(srv); err != nil {
		return nil, err
	}
	return srv, nil
}

func (s *service) Create(ctx context.Context, params CreateServerParams) (*Server, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	srv := &Server{
		ID:        uuid.NewString(),
		Name:      params.Name,
		URL:       params.URL,
		Username:  params.Username,
		Password:  params.Password,
		Active:    true,
		Status:    StatusUnknown,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if params.Active != nil {
		srv.Active = *params.Active
	}

	if s.prober != nil {
		srv.Status = s.prober.Probe(ctx, srv.Credentials())
		checked := s.now()
		srv.LastChecked = &checked
	}

	if err := s.persist(ctx, srv, s.store.Create); err != nil {
		s.audit(ctx, audit.Failure(audit.ActionCreateServer, "", err))
		return nil, err
	}

	s.logger.Info("server created",
		zap.String("server_id", srv.ID),
		zap.String("name", srv.Name),
		zap.String("status", string(srv.Status)),
	)
	s.audit(ctx, audit.Success(audit.ActionCreateServer, srv.ID,
		fmt.Sprintf("Server %s created successfully", srv.Name)))

	return srv, nil
}

func (s *service) Update(ctx context.Context, id string, params UpdateServerParams) (*Server, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	srv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	params.apply(srv)
	srv.UpdatedAt = s.now()

	if err := s.persist(ctx, srv, s.store.Update); err != nil {
		s.audit(ctx, audit.Failure(audit.ActionUpdateServer, id, err))
		return nil, err
	}

	s.audit(ctx, audit.Success(audit.ActionUpdateServer, id,
		fmt.Sprintf("Server %s updated successfully", srv.Name)))

	return srv, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.audit(ctx, audit.Failure(audit.ActionDeleteServer, id, err))
		}
		return err
	}

	s.logger.Info("server deleted", zap.String("server_id", id))
	s.audit(ctx, audit.Success(audit.ActionDeleteServer, id, "Server deleted successfully"))
	return nil
}

func (s *service) SetStatus(ctx context.Context, id string, status Status) (*Server, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if err := s.store.SetStatus(ctx, id, status, s.now()); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// persist writes a copy of srv with the password sealed
func (s *service) persist(ctx context.Context, srv *Server, write func(context.Context, *Server) error) error {
	sealed, err := s.box.Seal(srv.Password)
	if err != nil {
		return fmt.Errorf("failed to seal password: %w", err)
	}
	stored := *srv
	stored.Password = sealed
	return write(ctx, &stored)
}

func (s *service) open(srv *Server) error {
	plain, err := s.box.Open(srv.Password)
	if err != nil {
		return fmt.Errorf("server %s: %w", srv.ID, err)
	}
	srv.Password = plain
	return nil
}

func (s *service) audit(ctx context.Context, e audit.Entry) {
	audit.Record(ctx, s.recorder, s.logger, e)
}

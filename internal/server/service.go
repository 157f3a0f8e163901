package server

import (
	"context"
	"net"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/dbs-admissions/admitd/internal/registry"
)

// ServiceConfig configures the admitd standalone runtime.
type ServiceConfig struct {
	Session  Config
	Registry registry.Config
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Session:  DefaultConfig(),
		Registry: registry.DefaultConfig(),
	}
}

// Service runs one bounded admissions exchange as a standalone process:
// open store, ensure schema, bind, serve one connection, report the outcome.
// Running again for the next applicant is the supervisor's call.
type Service struct {
	cfg ServiceConfig
}

func NewService() *Service {
	return NewServiceWithConfig(DefaultServiceConfig())
}

func NewServiceWithConfig(cfg ServiceConfig) *Service {
	return &Service{cfg: cfg}
}

// Run returns an error only for bootstrap failures; session faults are
// resolved into the logged outcome per the session's propagation policy.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg, err := registry.Open(s.cfg.Registry)
	if err != nil {
		return err
	}
	defer reg.Close()

	if err := reg.EnsureSchema(ctx); err != nil {
		return err
	}
	log.Info().Str("path", s.cfg.Registry.Path).Msg("database initialised")

	ln, err := net.Listen("tcp", s.cfg.Session.ListenAddr)
	if err != nil {
		return err
	}
	defer ln.Close()
	log.Info().
		Str("addr", ln.Addr().String()).
		Dur("accept_timeout", s.cfg.Session.AcceptTimeout).
		Msg("listening")

	outcome := NewSession(s.cfg.Session, reg).ServeOne(ctx, ln)
	log.Info().
		Str("outcome", string(outcome.Kind)).
		Str("registration_number", outcome.RegistrationNumber).
		Str("reason", outcome.Reason).
		Msg("session finished")
	return nil
}

// Package server owns the one-connection admissions session lifecycle:
// accept, receive, decode, validate, persist, respond, close.
package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dbs-admissions/admitd/internal/admission"
	"github.com/dbs-admissions/admitd/internal/protocol"
	"github.com/dbs-admissions/admitd/internal/registry"
)

const (
	msgInvalidJSON   = "Invalid JSON format."
	msgInternalError = "Server internal error."
)

// Config bounds one session.
type Config struct {
	ListenAddr    string
	AcceptTimeout time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:    "127.0.0.1:9999",
		AcceptTimeout: 100 * time.Second,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  10 * time.Second,
	}
}

// OutcomeKind classifies how a session terminated.
type OutcomeKind string

const (
	OutcomeRegistered OutcomeKind = "registered"
	OutcomeRejected   OutcomeKind = "rejected"
	OutcomeEmptyRead  OutcomeKind = "empty_read"
	OutcomeTimedOut   OutcomeKind = "timed_out"
	OutcomeFailed     OutcomeKind = "failed"
)

// Outcome is the terminal state of one ServeOne invocation. Faults never
// propagate past the session boundary; the supervisor inspects the outcome.
type Outcome struct {
	Kind               OutcomeKind
	RegistrationNumber string
	Reason             string
}

// Session handles exactly one connection per ServeOne call. Registry and
// config are supplied at construction; there is no package-level state.
type Session struct {
	cfg Config
	reg *registry.Registry
}

func NewSession(cfg Config, reg *registry.Registry) *Session {
	return &Session{cfg: cfg, reg: reg}
}

// ServeOne accepts at most one connection from ln, bounded by AcceptTimeout,
// and runs the full exchange. The listener stays open and owned by the
// caller; re-invoking for the next request is the caller's decision.
func (s *Session) ServeOne(ctx context.Context, ln net.Listener) Outcome {
	if tl, ok := ln.(*net.TCPListener); ok && s.cfg.AcceptTimeout > 0 {
		_ = tl.SetDeadline(time.Now().Add(s.cfg.AcceptTimeout))
	}

	conn, err := ln.Accept()
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			log.Info().Dur("accept_timeout", s.cfg.AcceptTimeout).Msg("no connection before accept deadline")
			return Outcome{Kind: OutcomeTimedOut}
		}
		log.Error().Err(err).Msg("accept failed")
		return Outcome{Kind: OutcomeFailed, Reason: err.Error()}
	}
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	log.Info().Str("remote", remote).Msg("connection accepted")

	if s.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	}

	fields, err := protocol.DecodeRequest(bufio.NewReader(conn))
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		log.Info().Str("remote", remote).Msg("peer closed before sending")
		return Outcome{Kind: OutcomeEmptyRead}
	case errors.Is(err, protocol.ErrDecode), errors.Is(err, protocol.ErrMessageTooLarge):
		log.Warn().Str("remote", remote).Err(err).Msg("malformed request")
		s.respond(conn, protocol.ErrorResponse(msgInvalidJSON))
		return Outcome{Kind: OutcomeRejected, Reason: msgInvalidJSON}
	default:
		log.Error().Str("remote", remote).Err(err).Msg("receive failed")
		s.respond(conn, protocol.ErrorResponse(msgInternalError))
		return Outcome{Kind: OutcomeFailed, Reason: err.Error()}
	}

	app, err := admission.Validate(fields)
	if err != nil {
		log.Warn().Str("remote", remote).Str("reason", err.Error()).Msg("application rejected")
		s.respond(conn, protocol.ErrorResponse(err.Error()))
		return Outcome{Kind: OutcomeRejected, Reason: err.Error()}
	}

	regNumber, err := s.reg.Persist(ctx, app)
	if err != nil {
		log.Error().Str("remote", remote).Err(err).Msg("persist failed")
		s.respond(conn, protocol.ErrorResponse(msgInternalError))
		return Outcome{Kind: OutcomeFailed, Reason: err.Error()}
	}

	log.Info().
		Str("remote", remote).
		Str("registration_number", regNumber).
		Str("course", app.Course).
		Msg("application registered")
	s.respond(conn, protocol.OKResponse(regNumber))
	return Outcome{Kind: OutcomeRegistered, RegistrationNumber: regNumber}
}

// respond is best-effort: a peer that is already gone cannot be answered and
// the failure stays inside the session.
func (s *Session) respond(conn net.Conn, resp protocol.Response) {
	if s.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	if err := protocol.EncodeResponse(conn, resp); err != nil {
		log.Warn().Err(err).Str("status", resp.Status).Msg("response not delivered")
	}
}

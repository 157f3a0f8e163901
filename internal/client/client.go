// Package client owns the applicant-side session: connect, send one
// application, read one response, report the result. No retries, ever.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dbs-admissions/admitd/internal/protocol"
)

var (
	ErrConnectionRefused = errors.New("client: server refused connection")
	ErrConnectionAborted = errors.New("client: connection aborted")
	ErrConnection        = errors.New("client: connection failed")
	ErrNoResponse        = errors.New("client: no response from server")
	ErrInvalidResponse   = errors.New("client: server returned invalid data")
)

// Rejection is a well-formed error response from the server; Message is the
// server's verbatim reason.
type Rejection struct {
	Message string
}

func (r *Rejection) Error() string {
	return "client: application rejected: " + r.Message
}

// Config bounds one submission.
type Config struct {
	Address        string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Address:        "127.0.0.1:9999",
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   10 * time.Second,
	}
}

// Result is a successful registration.
type Result struct {
	RegistrationNumber string
}

type Driver struct {
	cfg Config
}

func NewDriver(cfg Config) *Driver {
	return &Driver{cfg: cfg}
}

// Submit performs the full single exchange. Every failure path returns one
// of the sentinel errors above or a *Rejection; nothing is retried.
func (d *Driver) Submit(ctx context.Context, req protocol.Request) (Result, error) {
	dialer := net.Dialer{Timeout: d.cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.cfg.Address)
	if err != nil {
		return Result{}, classifyConnError(err)
	}
	defer conn.Close()
	log.Debug().Str("addr", d.cfg.Address).Msg("connected")

	if d.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(d.cfg.WriteTimeout))
	}
	if err := protocol.EncodeRequest(conn, req); err != nil {
		return Result{}, classifyConnError(err)
	}

	if d.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(d.cfg.ReadTimeout))
	}
	resp, err := protocol.DecodeResponse(bufio.NewReader(conn))
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		return Result{}, ErrNoResponse
	case errors.Is(err, protocol.ErrDecode),
		errors.Is(err, protocol.ErrInvalidResponse),
		errors.Is(err, protocol.ErrMessageTooLarge):
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	default:
		return Result{}, classifyConnError(err)
	}

	if resp.Status == protocol.StatusError {
		return Result{}, &Rejection{Message: resp.Message}
	}
	return Result{RegistrationNumber: resp.RegistrationNumber}, nil
}

func classifyConnError(err error) error {
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("%w: %v", ErrConnectionRefused, err)
	case errors.Is(err, syscall.ECONNABORTED), errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return fmt.Errorf("%w: %v", ErrConnectionAborted, err)
	default:
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
}

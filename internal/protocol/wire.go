// Package protocol owns the admissions wire contract: one JSON envelope per
// newline-terminated line, one request and one response per session.
package protocol

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	StatusOK    = "ok"
	StatusError = "error"

	// MaxMessageBytes bounds a single envelope on the wire.
	MaxMessageBytes = 64 * 1024
)

var (
	ErrDecode          = errors.New("protocol: invalid message")
	ErrMessageTooLarge = errors.New("protocol: message too large")
	ErrInvalidResponse = errors.New("protocol: invalid response envelope")
)

// Request is the client-side application envelope. StartYear and StartMonth
// travel as text; the server coerces them during validation.
type Request struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	Qualifications string `json:"qualifications"`
	Course         string `json:"course"`
	StartYear      string `json:"start_year"`
	StartMonth     string `json:"start_month"`
}

// Response is the single server reply: ok with a registration number, or
// error with a human-readable reason.
type Response struct {
	Status             string `json:"status"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	Message            string `json:"message,omitempty"`
}

func OKResponse(regNumber string) Response {
	return Response{Status: StatusOK, RegistrationNumber: regNumber}
}

func ErrorResponse(message string) Response {
	return Response{Status: StatusError, Message: message}
}

func (r Response) Validate() error {
	switch r.Status {
	case StatusOK:
		if strings.TrimSpace(r.RegistrationNumber) == "" {
			return fmt.Errorf("%w: missing registration_number", ErrInvalidResponse)
		}
	case StatusError:
		if strings.TrimSpace(r.Message) == "" {
			return fmt.Errorf("%w: missing message", ErrInvalidResponse)
		}
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidResponse, r.Status)
	}
	return nil
}

// EncodeRequest writes one request envelope to w.
func EncodeRequest(w io.Writer, req Request) error {
	return writeEnvelope(w, req)
}

// DecodeRequest reads one request envelope from r as a raw field mapping for
// the validator. A clean close before any byte arrives surfaces io.EOF.
func DecodeRequest(r *bufio.Reader) (map[string]any, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(line, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return fields, nil
}

// EncodeResponse writes one response envelope to w.
func EncodeResponse(w io.Writer, resp Response) error {
	if err := resp.Validate(); err != nil {
		return err
	}
	return writeEnvelope(w, resp)
}

// DecodeResponse reads and validates one response envelope from r.
func DecodeResponse(r *bufio.Reader) (Response, error) {
	line, err := readLine(r)
	if err != nil {
		return Response{}, err
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := resp.Validate(); err != nil {
		return Response{}, err
	}
	return resp, nil
}

func writeEnvelope(w io.Writer, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if len(payload) > MaxMessageBytes {
		return ErrMessageTooLarge
	}
	payload = append(payload, '\n')
	_, err = w.Write(payload)
	return err
}

// readLine returns one delimited message, enforcing MaxMessageBytes as the
// line accumulates so a delimiter-free stream is cut off at the cap instead
// of buffered whole. A peer that closes without a trailing newline still
// yields its partial line so malformed payloads are rejected as decode
// failures rather than dropped.
func readLine(r *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		chunk, err := r.ReadSlice('\n')
		line = append(line, chunk...)
		if len(line) > MaxMessageBytes {
			return nil, ErrMessageTooLarge
		}
		switch {
		case err == nil:
			return line, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && len(line) > 0:
			return line, nil
		default:
			return nil, err
		}
	}
}

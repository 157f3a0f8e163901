package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dbs-admissions/admitd/internal/testutil/testlog"
)

func TestRequestRoundTrip(t *testing.T) {
	testlog.Start(t)
	req := Request{
		Name:           "Jane Doe",
		Address:        "1 Main St",
		Qualifications: "BSc CS",
		Course:         "MSc Data Analytics",
		StartYear:      "2025",
		StartMonth:     "9",
	}

	var buf bytes.Buffer
	if err := EncodeRequest(&buf, req); err != nil {
		t.Fatalf("encode request: %v", err)
	}
	fields, err := DecodeRequest(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("decode request: %v", err)
	}
	want := map[string]string{
		"name":           req.Name,
		"address":        req.Address,
		"qualifications": req.Qualifications,
		"course":         req.Course,
		"start_year":     req.StartYear,
		"start_month":    req.StartMonth,
	}
	for name, value := range want {
		if got, _ := fields[name].(string); got != value {
			t.Fatalf("field %s: got %q, want %q", name, got, value)
		}
	}
}

func TestResponseRoundTrip(t *testing.T) {
	testlog.Start(t)
	for _, resp := range []Response{
		OKResponse("DBS-2025-000001"),
		ErrorResponse("Invalid course selected."),
	} {
		var buf bytes.Buffer
		if err := EncodeResponse(&buf, resp); err != nil {
			t.Fatalf("encode %+v: %v", resp, err)
		}
		got, err := DecodeResponse(bufio.NewReader(&buf))
		if err != nil {
			t.Fatalf("decode %+v: %v", resp, err)
		}
		if got != resp {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, resp)
		}
	}
}

func TestDecodeRequestGarbage(t *testing.T) {
	testlog.Start(t)
	r := bufio.NewReader(strings.NewReader("this is not structured data\n"))
	if _, err := DecodeRequest(r); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestDecodeRequestWithoutTrailingNewline(t *testing.T) {
	testlog.Start(t)
	r := bufio.NewReader(strings.NewReader(`{"name":"Jane"}`))
	fields, err := DecodeRequest(r)
	if err != nil {
		t.Fatalf("decode partial line: %v", err)
	}
	if got, _ := fields["name"].(string); got != "Jane" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestDecodeRequestEmptyStream(t *testing.T) {
	testlog.Start(t)
	r := bufio.NewReader(strings.NewReader(""))
	if _, err := DecodeRequest(r); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestDecodeOversizedMessage(t *testing.T) {
	testlog.Start(t)
	huge := strings.Repeat("x", MaxMessageBytes+1) + "\n"
	r := bufio.NewReader(strings.NewReader(huge))
	if _, err := DecodeRequest(r); !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("expected ErrMessageTooLarge, got %v", err)
	}
}

// endlessReader serves delimiter-free bytes forever and counts what was
// actually consumed.
type endlessReader struct {
	consumed int
}

func (e *endlessReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 'x'
	}
	e.consumed += len(p)
	return len(p), nil
}

func TestDecodeCapsUndelimitedStream(t *testing.T) {
	testlog.Start(t)
	src := &endlessReader{}
	if _, err := DecodeRequest(bufio.NewReader(src)); !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("expected ErrMessageTooLarge, got %v", err)
	}
	if limit := 2 * MaxMessageBytes; src.consumed > limit {
		t.Fatalf("stream drained past the cap: consumed %d bytes", src.consumed)
	}
}

func TestEncodeOversizedRequest(t *testing.T) {
	testlog.Start(t)
	req := Request{Name: strings.Repeat("x", MaxMessageBytes)}
	var buf bytes.Buffer
	if err := EncodeRequest(&buf, req); !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("expected ErrMessageTooLarge, got %v", err)
	}
}

func TestResponseValidate(t *testing.T) {
	testlog.Start(t)
	cases := []Response{
		{Status: "unknown"},
		{Status: StatusOK},
		{Status: StatusError},
	}
	for _, resp := range cases {
		if err := resp.Validate(); !errors.Is(err, ErrInvalidResponse) {
			t.Fatalf("response %+v: expected ErrInvalidResponse, got %v", resp, err)
		}
	}
	if err := OKResponse("DBS-2025-000001").Validate(); err != nil {
		t.Fatalf("valid ok response rejected: %v", err)
	}
}

func TestEncodeResponseRejectsInvalidEnvelope(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	if err := EncodeResponse(&buf, Response{Status: "bogus"}); !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("invalid envelope still written: %q", buf.String())
	}
}

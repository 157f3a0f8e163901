package registry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dbs-admissions/admitd/internal/admission"
	"github.com/dbs-admissions/admitd/internal/testutil/testlog"
)

var testClock = time.Date(2025, time.March, 14, 10, 30, 0, 0, time.UTC)

func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := Open(Config{
		Path: filepath.Join(t.TempDir(), "admissions.db"),
		Now:  func() time.Time { return testClock },
	})
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	t.Cleanup(func() { reg.Close() })
	if err := reg.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return reg
}

func testApplication() admission.Application {
	return admission.Application{
		Name:           "Jane Doe",
		Address:        "1 Main St",
		Qualifications: "BSc CS",
		Course:         "MSc Data Analytics",
		StartYear:      2025,
		StartMonth:     9,
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	testlog.Start(t)
	reg := openTestRegistry(t)
	ctx := context.Background()

	regNumber, err := reg.Persist(ctx, testApplication())
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if err := reg.EnsureSchema(ctx); err != nil {
		t.Fatalf("second ensure schema: %v", err)
	}
	if _, err := reg.Get(ctx, regNumber); err != nil {
		t.Fatalf("record lost after re-ensuring schema: %v", err)
	}
}

func TestPersistIssuesSequentialNumbers(t *testing.T) {
	testlog.Start(t)
	reg := openTestRegistry(t)
	ctx := context.Background()

	first, err := reg.Persist(ctx, testApplication())
	if err != nil {
		t.Fatalf("persist first: %v", err)
	}
	if first != "DBS-2025-000001" {
		t.Fatalf("first registration number: %q", first)
	}

	second, err := reg.Persist(ctx, testApplication())
	if err != nil {
		t.Fatalf("persist second: %v", err)
	}
	if second != "DBS-2025-000002" {
		t.Fatalf("second registration number: %q", second)
	}
}

func TestPersistYearComesFromClockNotStartYear(t *testing.T) {
	testlog.Start(t)
	reg := openTestRegistry(t)

	app := testApplication()
	app.StartYear = 2030
	regNumber, err := reg.Persist(context.Background(), app)
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if regNumber != "DBS-2025-000001" {
		t.Fatalf("registration year should follow issuance clock: %q", regNumber)
	}
}

func TestGetRoundTrip(t *testing.T) {
	testlog.Start(t)
	reg := openTestRegistry(t)
	ctx := context.Background()

	app := testApplication()
	regNumber, err := reg.Persist(ctx, app)
	if err != nil {
		t.Fatalf("persist: %v", err)
	}

	rec, err := reg.Get(ctx, regNumber)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Application != app {
		t.Fatalf("stored application mismatch: got %+v, want %+v", rec.Application, app)
	}
	if rec.RegistrationNumber != regNumber {
		t.Fatalf("registration number mismatch: %q", rec.RegistrationNumber)
	}
	if rec.ID != 1 {
		t.Fatalf("unexpected id: %d", rec.ID)
	}
	if !rec.CreatedAt.Equal(testClock) {
		t.Fatalf("created_at: got %v, want %v", rec.CreatedAt, testClock)
	}
}

func TestGetUnknownNumber(t *testing.T) {
	testlog.Start(t)
	reg := openTestRegistry(t)
	if _, err := reg.Get(context.Background(), "DBS-2025-999999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFormatRegistrationNumber(t *testing.T) {
	testlog.Start(t)
	if got := FormatRegistrationNumber("DBS", 2025, 42); got != "DBS-2025-000042" {
		t.Fatalf("format: %q", got)
	}
	if got := FormatRegistrationNumber("DBS", 2025, 1234567); got != "DBS-2025-1234567" {
		t.Fatalf("wide id should not truncate: %q", got)
	}
}

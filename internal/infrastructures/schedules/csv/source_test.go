package csv

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	derr "github.com/striker104/QRT-meeting-in-the-middle/internal/domain/errors"
	"go.uber.org/zap"
)

func newTestSource(dir string) *Source {
	return NewSource(zap.NewNop(), filepath.Join("testdata", dir), filepath.Join("testdata", "emissions.csv"))
}

func day(d int) time.Time {
	return time.Date(2025, 5, d, 12, 0, 0, 0, time.UTC)
}

func TestDayFiles_SkipsMissingDays(t *testing.T) {
	files := newTestSource("schedules").DayFiles(day(1), day(4))

	want := []string{
		filepath.Join("testdata", "schedules", "2025", "05", "01.csv"),
		filepath.Join("testdata", "schedules", "2025", "05", "03.csv"),
	}
	if len(files) != len(want) || files[0] != want[0] || files[1] != want[1] {
		t.Fatalf("unexpected files: got %v want %v", files, want)
	}
}

func TestDayFiles_UsesUTCCalendarDays(t *testing.T) {
	plus := time.FixedZone("UTC+5", 5*60*60)
	from := time.Date(2025, 5, 3, 2, 0, 0, 0, plus) // 2025-05-02 21:00 UTC

	files := newTestSource("schedules").DayFiles(from, from)
	if len(files) != 0 {
		t.Fatalf("unexpected files: %v", files)
	}
}

func TestScanLegs_FiltersRows(t *testing.T) {
	legs, err := newTestSource("schedules").ScanLegs(context.Background(), day(1), day(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(legs) != 3 {
		t.Fatalf("unexpected leg count: got %d want %d", len(legs), 3)
	}
	if legs[0].FlightNumber != "423" || legs[1].FlightNumber != "424" || legs[2].FlightNumber != "180" {
		t.Fatalf("unexpected legs: %+v", legs)
	}
	if legs[2].Stops != 1 || legs[2].AircraftType != "343" {
		t.Fatalf("unexpected multi-stop leg: %+v", legs[2])
	}
}

func TestScanLegs_NoFilesIsDataUnavailable(t *testing.T) {
	_, err := newTestSource("schedules").ScanLegs(context.Background(), day(10), day(12))
	if !errors.Is(err, derr.ErrDataUnavailable) {
		t.Fatalf("unexpected error: got %v want %v", err, derr.ErrDataUnavailable)
	}
}

func TestScanLegs_MalformedRowAborts(t *testing.T) {
	_, err := newTestSource("broken").ScanLegs(context.Background(), day(1), day(1))
	if !errors.Is(err, derr.ErrDataAccess) {
		t.Fatalf("unexpected error: got %v want %v", err, derr.ErrDataAccess)
	}
	if !strings.Contains(err.Error(), "01.csv:3") {
		t.Fatalf("expected file and line in error, got %v", err)
	}
}

func TestScanLegs_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSource("schedules").ScanLegs(ctx, day(1), day(3))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected error: got %v want %v", err, context.Canceled)
	}
}

func TestScanEmissions(t *testing.T) {
	factors, err := newTestSource("schedules").ScanEmissions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(factors) != 2 {
		t.Fatalf("unexpected factor count: got %d want %d", len(factors), 2)
	}
	if factors[1].Key.DepartureAirport != "SIN" || factors[1].TotalCO2Tonnes != 48 {
		t.Fatalf("unexpected factor: %+v", factors[1])
	}
}

func TestScanEmissions_MissingFile(t *testing.T) {
	src := NewSource(nil, "testdata", filepath.Join("testdata", "missing.csv"))

	_, err := src.ScanEmissions(context.Background())
	if !errors.Is(err, derr.ErrDataAccess) {
		t.Fatalf("unexpected error: got %v want %v", err, derr.ErrDataAccess)
	}
}

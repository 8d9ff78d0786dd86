package csv

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jszwec/csvutil"
	derr "github.com/striker104/QRT-meeting-in-the-middle/internal/domain/errors"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/infrastructures/schedules/dto"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/infrastructures/schedules/mappers"
	"go.uber.org/zap"
)

// Source reads daily schedule files laid out as <baseDir>/YYYY/MM/DD.csv and a
// single emissions file.
type Source struct {
	log           *zap.Logger
	baseDir       string
	emissionsFile string
}

func NewSource(log *zap.Logger, baseDir, emissionsFile string) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	return &Source{log: log, baseDir: baseDir, emissionsFile: emissionsFile}
}

// DayFiles lists the existing schedule files for every UTC calendar day from
// from to to, inclusive.
func (s *Source) DayFiles(from, to time.Time) []string {
	start := truncateDay(from)
	end := truncateDay(to)

	var files []string
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		path := filepath.Join(s.baseDir, day.Format("2006"), day.Format("01"), day.Format("02")+".csv")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		files = append(files, path)
	}
	return files
}

func (s *Source) ScanLegs(ctx context.Context, from, to time.Time) ([]models.FlightLeg, error) {
	const op = "csv.ScanLegs"

	files := s.DayFiles(from, to)
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %s to %s: %w", op, from.UTC().Format(time.DateOnly), to.UTC().Format(time.DateOnly), derr.ErrDataUnavailable)
	}

	var (
		legs    []models.FlightLeg
		skipped int
	)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		err := decodeFile(path, func(line int, row dto.ScheduleRow) error {
			leg, ok, err := mappers.ToFlightLeg(row)
			if err != nil {
				return fmt.Errorf("%s:%d: %w", path, line, err)
			}
			if !ok {
				skipped++
				return nil
			}
			legs = append(legs, leg)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	s.log.Info("schedules loaded",
		zap.Int("files", len(files)),
		zap.Int("legs", len(legs)),
		zap.Int("skipped_rows", skipped),
	)
	return legs, nil
}

func (s *Source) ScanEmissions(ctx context.Context) ([]models.EmissionFactor, error) {
	const op = "csv.ScanEmissions"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var factors []models.EmissionFactor
	err := decodeFile(s.emissionsFile, func(line int, row dto.EmissionRow) error {
		factor, ok, err := mappers.ToEmissionFactor(row)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", s.emissionsFile, line, err)
		}
		if ok {
			factors = append(factors, factor)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("emission factors loaded", zap.Int("factors", len(factors)))
	return factors, nil
}

// decodeFile streams rows of a headed CSV file into fn. Line numbers count the
// header as line 1.
func decodeFile[T any](path string, fn func(line int, row T) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %v: %w", path, err, derr.ErrDataAccess)
	}
	defer f.Close()

	dec, err := csvutil.NewDecoder(stdcsv.NewReader(f))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("read header %s: %v: %w", path, err, derr.ErrDataAccess)
	}

	for line := 2; ; line++ {
		var row T
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%s:%d: %v: %w", path, line, err, derr.ErrDataAccess)
		}
		if err := fn(line, row); err != nil {
			return err
		}
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

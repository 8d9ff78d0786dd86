package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/app"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/config"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/transport/dto"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup finishes before exit.
func run() int {
	_ = godotenv.Load(".env")

	scenarioPath := flag.String("scenario", "hackathon_test.json", "path to scenario JSON file")
	weightCO2 := flag.Float64("weight-co2", 0, "weight of CO2 against fairness, 0..1; config default when unset")
	weightAvgVsStd := flag.Float64("weight-avg-vs-std", 0, "weight of mean travel time against its spread, 0..1; config default when unset")
	directOnly := flag.Bool("direct-only", false, "ignore one-stop connections")
	useCache := flag.Bool("cache", false, "use the redis result cache")

	// MustLoad parses the command line.
	cfg := config.MustLoad()
	log := setupLogger(cfg.Log.Level)
	defer func() {
		_ = log.Sync()
	}()

	in, err := loadScenario(*scenarioPath)
	if err != nil {
		return fail(os.Stderr, err)
	}
	applyFlags(&in, *weightCO2, *weightAvgVsStd, *directOnly)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, log, cfg, *useCache)
	if err != nil {
		return fail(os.Stderr, err)
	}
	defer application.Close()

	fmt.Fprintf(os.Stderr, "Running scenario %s with %d attendee groups\n", *scenarioPath, len(in.Attendees))

	results, err := application.Service.FindBestMeeting(ctx, in)
	if err != nil {
		return fail(os.Stderr, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "    ")
	if err := enc.Encode(dto.ToResults(results)); err != nil {
		return fail(os.Stderr, fmt.Errorf("encode results: %w", err))
	}

	printSummary(os.Stderr, results)
	return 0
}

func loadScenario(path string) (models.ScenarioInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ScenarioInput{}, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var req dto.OptimizeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return models.ScenarioInput{}, fmt.Errorf("decode scenario %s: %w", path, err)
	}

	return req.ToScenarioInput()
}

// applyFlags overrides scenario options with the flags given on the command
// line. Options set nowhere fall back to the configured defaults.
func applyFlags(in *models.ScenarioInput, weightCO2, weightAvgVsStd float64, directOnly bool) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "weight-co2":
			in.WeightCO2 = &weightCO2
		case "weight-avg-vs-std":
			in.WeightAvgVsStd = &weightAvgVsStd
		case "direct-only":
			considerConnecting := !directOnly
			in.ConsiderConnectingFlights = &considerConnecting
		}
	})
}

func printSummary(w io.Writer, results []models.OptimizationResult) {
	title := color.New(color.FgCyan, color.Bold)
	city := color.New(color.FgGreen, color.Bold)
	dim := color.New(color.FgHiBlack)

	_, _ = title.Fprintln(w, "\n--- MEETING LOCATIONS ---")
	for _, r := range results {
		_, _ = city.Fprintf(w, "#%d %s", r.Rank, r.City)
		_, _ = fmt.Fprintf(w, "  score %.2f  CO2 %.2f t (%.2f t/person)  travel avg %.2f h, median %.2f h, max %.2f h\n",
			r.Phase1Score, r.TotalCO2, r.AverageCO2PerPerson, r.AverageTravelHours, r.MedianTravelHours, r.MaxTravelHours)
		_, _ = dim.Fprintf(w, "    event %s to %s, span %.2f h, %d tickets\n",
			r.EventStart.UTC().Format("2006-01-02 15:04"), r.EventEnd.UTC().Format("2006-01-02 15:04"), r.SpanHours, len(r.Itinerary))

		homes := make([]string, 0, len(r.AttendeeTravelHours))
		for home := range r.AttendeeTravelHours {
			homes = append(homes, home)
		}
		sort.Strings(homes)
		for _, home := range homes {
			_, _ = dim.Fprintf(w, "    %-12s %6.2f h\n", home, r.AttendeeTravelHours[home])
		}
	}
}

// fail reports err and returns the failure exit code.
func fail(w io.Writer, err error) int {
	_, _ = color.New(color.FgRed).Fprintf(w, "ERROR: %v\n", err)
	return 1
}

func setupLogger(level string) *zap.Logger {
	zapLevel := parseLogLevel(level)
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.OutputPaths = []string{"stderr"}

	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return log
}

func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

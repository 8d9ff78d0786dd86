package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	derr "github.com/striker104/QRT-meeting-in-the-middle/internal/domain/errors"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/transport/dto"
	"go.uber.org/zap"
)

const maxRequestBytes = 1 << 20

type MeetingPlanner interface {
	FindBestMeeting(ctx context.Context, in models.ScenarioInput) ([]models.OptimizationResult, error)
}

type PlannerHandler struct {
	log     *zap.Logger
	planner MeetingPlanner
	timeout time.Duration
}

func NewPlannerHandler(log *zap.Logger, planner MeetingPlanner, timeout time.Duration) *PlannerHandler {
	if log == nil {
		log = zap.NewNop()
	}

	return &PlannerHandler{
		log:     log,
		planner: planner,
		timeout: timeout,
	}
}

func (h *PlannerHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	in, err := req.ToScenarioInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	results, err := h.planner.FindBestMeeting(ctx, in)
	if err != nil {
		status, message := mapHTTPError(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("optimize failed", zap.Error(err))
		}
		writeError(w, status, message)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToResults(results))
}

func (h *PlannerHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func mapHTTPError(err error) (int, string) {
	switch {
	case errors.Is(err, derr.ErrInvalidArgument), errors.Is(err, derr.ErrUnknownCity):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, derr.ErrDataUnavailable):
		return http.StatusNotFound, derr.ErrDataUnavailable.Error()
	case errors.Is(err, derr.ErrNoFeasibleCity):
		return http.StatusUnprocessableEntity, derr.ErrNoFeasibleCity.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "optimization timed out"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/jini/internal/scheduler"
	"github.com/wonny/jini/pkg/logger"
)

// JobHandler exposes scheduler state and manual triggers
// ⭐ SSOT: 작업 제어 API 핸들러는 이 구조체에서만
type JobHandler struct {
	scheduler *scheduler.Scheduler
	logger    *logger.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(s *scheduler.Scheduler, log *logger.Logger) *JobHandler {
	return &JobHandler{scheduler: s, logger: log}
}

// ListJobs returns registered job names.
// GET /api/jobs
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": h.scheduler.Jobs(),
	})
}

// GetHistory returns the run records of one job.
// GET /api/jobs/{name}/history
func (h *JobHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	records, err := h.scheduler.History(name)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"job":     name,
		"history": records,
	})
}

// RunJob triggers a job immediately.
// POST /api/jobs/{name}/run
func (h *JobHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.scheduler.RunNow(name); err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.WithField("job", name).Info("Job triggered via API")
	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
		"job":    name,
	})
}

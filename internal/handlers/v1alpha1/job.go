package v1alpha1

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	api "github.com/cnc-capture/capture/api/v1alpha1"
	"github.com/cnc-capture/capture/internal/handlers/v1alpha1/mappers"
	"github.com/cnc-capture/capture/internal/service"
)

// (POST /api/v1/jobs)
func (h *ServiceHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req api.JobCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "job name must be a non-empty string of at most 255 characters")
		return
	}

	job, err := h.jobSrv.CreateJob(r.Context(), req.Name, req.Customer)
	if err != nil {
		switch err.(type) {
		case *service.ErrValidation:
			writeError(w, r, http.StatusBadRequest, err.Error())
		default:
			zap.S().Named("job_handler").Errorw("failed to create job", "error", err)
			writeError(w, r, http.StatusInternalServerError, "failed to create job")
		}
		return
	}

	writeJSON(w, http.StatusCreated, mappers.JobToApi(*job))
}

// (GET /api/v1/jobs/list)
func (h *ServiceHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.querySrv.ListJobs(r.Context())
	if err != nil {
		zap.S().Named("job_handler").Errorw("failed to list jobs", "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	writeJSON(w, http.StatusOK, mappers.JobListToApi(jobs))
}

// (GET /api/v1/jobs/{id})
func (h *ServiceHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDFromRequest(w, r)
	if !ok {
		return
	}

	job, err := h.querySrv.GetJob(r.Context(), id)
	if err != nil {
		switch err.(type) {
		case *service.ErrResourceNotFound:
			writeError(w, r, http.StatusNotFound, err.Error())
		default:
			zap.S().Named("job_handler").Errorw("failed to get job", "error", err, "job_id", id)
			writeError(w, r, http.StatusInternalServerError, "failed to get job")
		}
		return
	}

	writeJSON(w, http.StatusOK, mappers.JobToApi(*job))
}

// (GET /api/v1/jobs/{id}/events)
func (h *ServiceHandler) ListJobEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDFromRequest(w, r)
	if !ok {
		return
	}

	events, err := h.querySrv.ListJobEvents(r.Context(), id)
	if err != nil {
		switch err.(type) {
		case *service.ErrResourceNotFound:
			writeError(w, r, http.StatusNotFound, err.Error())
		default:
			zap.S().Named("job_handler").Errorw("failed to list job events", "error", err, "job_id", id)
			writeError(w, r, http.StatusInternalServerError, "failed to list job events")
		}
		return
	}

	writeJSON(w, http.StatusOK, mappers.ScanEventListToApi(events))
}

// (GET /api/v1/jobs/{id}/qr)
func (h *ServiceHandler) GetJobQR(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDFromRequest(w, r)
	if !ok {
		return
	}

	payload, err := h.jobSrv.JobQR(r.Context(), id)
	if err != nil {
		switch err.(type) {
		case *service.ErrResourceNotFound:
			writeError(w, r, http.StatusNotFound, err.Error())
		default:
			zap.S().Named("job_handler").Errorw("failed to build job qr", "error", err, "job_id", id)
			writeError(w, r, http.StatusInternalServerError, "failed to build job qr")
		}
		return
	}

	writeJSON(w, http.StatusOK, api.JobQR{JobId: id, QrPayload: payload})
}

func jobIDFromRequest(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		writeError(w, r, http.StatusBadRequest, "invalid job id")
		return 0, false
	}
	return uint(id), true
}

package v1alpha1

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	api "github.com/cnc-capture/capture/api/v1alpha1"
	"github.com/cnc-capture/capture/internal/handlers/v1alpha1/mappers"
	"github.com/cnc-capture/capture/internal/service"
)

// Scan is the kiosk entry point. It is not gated by the session middleware:
// scanners identify themselves by operator and machine id, and every
// submission, accepted or rejected, lands in the event log.
//
// (POST /api/v1/scan)
func (h *ServiceHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req api.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "operator_id, machine_id and qr_payload are required")
		return
	}

	result, err := h.scanSrv.Process(r.Context(), service.ScanSubmission{
		OperatorID: req.OperatorId,
		MachineID:  req.MachineId,
		QrPayload:  req.QrPayload,
	})
	if err != nil {
		switch err.(type) {
		case *service.ErrConcurrentUpdate:
			writeError(w, r, http.StatusConflict, err.Error())
		default:
			zap.S().Named("scan_handler").Errorw("failed to process scan", "error", err)
			writeError(w, r, http.StatusInternalServerError, "failed to process scan")
		}
		return
	}

	resp := api.ScanResult{
		Status: api.ScanStatus(result.Outcome),
		Reason: api.ScanReason(result.Reason),
	}
	if result.Job != nil {
		job := mappers.JobToApi(*result.Job)
		resp.Job = &job
	}

	writeJSON(w, http.StatusOK, resp)
}

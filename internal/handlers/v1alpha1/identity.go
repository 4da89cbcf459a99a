package v1alpha1

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cnc-capture/capture/internal/handlers/v1alpha1/mappers"
)

// (GET /api/v1/machines/list)
func (h *ServiceHandler) ListMachines(w http.ResponseWriter, r *http.Request) {
	machines, err := h.querySrv.ListMachines(r.Context())
	if err != nil {
		zap.S().Named("identity_handler").Errorw("failed to list machines", "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to list machines")
		return
	}

	writeJSON(w, http.StatusOK, mappers.MachineListToApi(machines))
}

// (GET /api/v1/operators/list)
func (h *ServiceHandler) ListOperators(w http.ResponseWriter, r *http.Request) {
	operators, err := h.querySrv.ListOperators(r.Context())
	if err != nil {
		zap.S().Named("identity_handler").Errorw("failed to list operators", "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to list operators")
		return
	}

	writeJSON(w, http.StatusOK, mappers.OperatorListToApi(operators))
}

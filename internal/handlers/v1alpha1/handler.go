package v1alpha1

import (
	"encoding/json"
	"net/http"

	api "github.com/cnc-capture/capture/api/v1alpha1"
	"github.com/cnc-capture/capture/internal/handlers/validator"
	"github.com/cnc-capture/capture/internal/service"
	"github.com/cnc-capture/capture/pkg/requestid"
)

// ServiceHandler binds the HTTP layer to the services. One instance serves
// both the console routes and the kiosk scan route.
type ServiceHandler struct {
	jobSrv    *service.JobService
	querySrv  *service.QueryService
	scanSrv   *service.ScanService
	tokenSrv  TokenIssuer
	validator *validator.Validator
}

// TokenIssuer is the login half of the session gate.
type TokenIssuer interface {
	IssueToken(username string) (string, error)
}

func NewServiceHandler(jobSrv *service.JobService, querySrv *service.QueryService, scanSrv *service.ScanService, tokenSrv TokenIssuer) *ServiceHandler {
	v := validator.NewValidator()
	v.Register(validator.NewJobValidationRules()...)

	return &ServiceHandler{
		jobSrv:    jobSrv,
		querySrv:  querySrv,
		scanSrv:   scanSrv,
		tokenSrv:  tokenSrv,
		validator: v,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, api.Error{
		Message:   message,
		RequestId: requestid.FromContextPtr(r.Context()),
	})
}

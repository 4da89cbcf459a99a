package v1alpha1

import "time"

// JobState is the lifecycle state of a job as exposed by the API.
type JobState string

const (
	JobStateCreated    JobState = "created"
	JobStateInProgress JobState = "in_progress"
	JobStateCompleted  JobState = "completed"
	JobStateCancelled  JobState = "cancelled"
)

// ScanStatus is the top-level outcome of a scan submission.
type ScanStatus string

const (
	ScanStatusAccepted ScanStatus = "accepted"
	ScanStatusRejected ScanStatus = "rejected"
)

// ScanReason qualifies a rejected scan.
type ScanReason string

const (
	ScanReasonUnknownIdentity  ScanReason = "unknown_identity"
	ScanReasonMalformedPayload ScanReason = "malformed_payload"
	ScanReasonUnknownJob       ScanReason = "unknown_job"
	ScanReasonAlreadyFinal     ScanReason = "already_final"
	ScanReasonDuplicate        ScanReason = "duplicate"
)

type Job struct {
	Id        uint      `json:"id"`
	Name      string    `json:"name"`
	Customer  *string   `json:"customer,omitempty"`
	State     JobState  `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

type JobList []Job

type Operator struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
}

type OperatorList []Operator

type Machine struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
}

type MachineList []Machine

type ScanEvent struct {
	Id          uint       `json:"id"`
	OperatorId  uint       `json:"operator_id"`
	MachineId   uint       `json:"machine_id"`
	JobId       *uint      `json:"job_id,omitempty"`
	RawPayload  string     `json:"raw_payload"`
	Outcome     ScanStatus `json:"outcome"`
	Reason      ScanReason `json:"reason,omitempty"`
	TargetState JobState   `json:"target_state,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ScanEventList []ScanEvent

type JobCreate struct {
	Name     string  `json:"name" validate:"required,job_name"`
	Customer *string `json:"customer,omitempty"`
}

type ScanRequest struct {
	OperatorId uint   `json:"operator_id" validate:"required,gt=0"`
	MachineId  uint   `json:"machine_id" validate:"required,gt=0"`
	QrPayload  string `json:"qr_payload" validate:"required"`
}

type ScanResult struct {
	Status ScanStatus `json:"status"`
	Reason ScanReason `json:"reason,omitempty"`
	Job    *Job       `json:"job,omitempty"`
}

type JobQR struct {
	JobId     uint   `json:"job_id"`
	QrPayload string `json:"qr_payload"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type Error struct {
	Message   string  `json:"message"`
	RequestId *string `json:"request_id,omitempty"`
}

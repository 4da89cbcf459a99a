package model

import (
	"encoding/json"
	"time"
)

// ScanOutcome is the recorded disposition of a scan submission.
type ScanOutcome string

const (
	ScanOutcomeAccepted ScanOutcome = "accepted"
	ScanOutcomeRejected ScanOutcome = "rejected"
)

// ScanReason qualifies a rejected scan event.
type ScanReason string

const (
	ScanReasonUnknownIdentity  ScanReason = "unknown_identity"
	ScanReasonMalformedPayload ScanReason = "malformed_payload"
	ScanReasonUnknownJob       ScanReason = "unknown_job"
	ScanReasonAlreadyFinal     ScanReason = "already_final"
	ScanReasonDuplicate        ScanReason = "duplicate"
)

// ScanEvent is one row of the append-only scan log. Rows are immutable after
// creation; the log doubles as the audit trail and the idempotency source.
// JobID is nil when the payload never resolved to a job (malformed payload).
type ScanEvent struct {
	ID          uint        `gorm:"primaryKey"`
	OperatorID  uint        `gorm:"index;not null"`
	MachineID   uint        `gorm:"index;not null"`
	JobID       *uint       `gorm:"index"`
	RawPayload  string      `gorm:"not null"`
	Outcome     ScanOutcome `gorm:"type:VARCHAR;size:16;not null"`
	Reason      ScanReason  `gorm:"type:VARCHAR;size:32"`
	TargetState JobState    `gorm:"type:VARCHAR;size:32"`
	CreatedAt   time.Time   `gorm:"index"`
}

type ScanEventList []ScanEvent

// ReplayState folds the accepted events, in order, through the transition
// rules. For any job the result must equal the stored current state; this is
// the recovery/audit invariant the event log guarantees.
func ReplayState(events ScanEventList) JobState {
	state := JobStateCreated
	for _, e := range events {
		if e.Outcome != ScanOutcomeAccepted {
			continue
		}
		if state.CanTransition(e.TargetState) {
			state = e.TargetState
		}
	}
	return state
}

func (e ScanEvent) String() string {
	val, _ := json.Marshal(e)
	return string(val)
}

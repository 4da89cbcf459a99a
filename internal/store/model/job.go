package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// JobState is the lifecycle state of a job. The set is closed: values other
// than the constants below never reach the store.
type JobState string

const (
	JobStateCreated    JobState = "created"
	JobStateInProgress JobState = "in_progress"
	JobStateCompleted  JobState = "completed"
	JobStateCancelled  JobState = "cancelled"
)

// Next returns the state a scan drives the job into. The second return value
// is false when the job is in a terminal state and no scan-triggered
// transition exists.
func (s JobState) Next() (JobState, bool) {
	switch s {
	case JobStateCreated:
		return JobStateInProgress, true
	case JobStateInProgress:
		return JobStateCompleted, true
	default:
		return s, false
	}
}

// CanTransition reports whether moving from s to target respects the strict
// state order: created -> in_progress -> completed, with cancelled reachable
// from created or in_progress only.
func (s JobState) CanTransition(target JobState) bool {
	switch target {
	case JobStateInProgress:
		return s == JobStateCreated
	case JobStateCompleted:
		return s == JobStateInProgress
	case JobStateCancelled:
		return s == JobStateCreated || s == JobStateInProgress
	default:
		return false
	}
}

// Terminal reports whether no scan-triggered transition leaves s.
func (s JobState) Terminal() bool {
	return s == JobStateCompleted || s == JobStateCancelled
}

func StringToJobState(s string) (JobState, error) {
	switch JobState(s) {
	case JobStateCreated, JobStateInProgress, JobStateCompleted, JobStateCancelled:
		return JobState(s), nil
	default:
		return "", fmt.Errorf("unknown job state %q", s)
	}
}

type Job struct {
	ID        uint     `gorm:"primaryKey"`
	Name      string   `gorm:"not null"`
	Customer  *string  `gorm:""`
	State     JobState `gorm:"type:VARCHAR;size:32;not null;default:created"`
	Version   uint     `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type JobList []Job

func (j Job) String() string {
	val, _ := json.Marshal(j)
	return string(val)
}

package events

// JobCompletedEvent is emitted when a scan drives a job into the completed
// state.
type JobCompletedEvent struct {
	JobID      uint   `json:"job_id"`
	JobName    string `json:"job_name"`
	OperatorID uint   `json:"operator_id"`
	MachineID  uint   `json:"machine_id"`
}

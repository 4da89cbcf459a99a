package mappers

import (
	api "github.com/cnc-capture/capture/api/v1alpha1"
	"github.com/cnc-capture/capture/internal/store/model"
)

func JobToApi(j model.Job) api.Job {
	return api.Job{
		Id:        j.ID,
		Name:      j.Name,
		Customer:  j.Customer,
		State:     api.JobState(j.State),
		CreatedAt: j.CreatedAt,
	}
}

func JobListToApi(jobs model.JobList) api.JobList {
	out := make(api.JobList, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, JobToApi(j))
	}
	return out
}

func OperatorListToApi(operators model.OperatorList) api.OperatorList {
	out := make(api.OperatorList, 0, len(operators))
	for _, o := range operators {
		out = append(out, api.Operator{Id: o.ID, Name: o.Name})
	}
	return out
}

func MachineListToApi(machines model.MachineList) api.MachineList {
	out := make(api.MachineList, 0, len(machines))
	for _, m := range machines {
		out = append(out, api.Machine{Id: m.ID, Name: m.Name})
	}
	return out
}

func ScanEventToApi(e model.ScanEvent) api.ScanEvent {
	return api.ScanEvent{
		Id:          e.ID,
		OperatorId:  e.OperatorID,
		MachineId:   e.MachineID,
		JobId:       e.JobID,
		RawPayload:  e.RawPayload,
		Outcome:     api.ScanStatus(e.Outcome),
		Reason:      api.ScanReason(e.Reason),
		TargetState: api.JobState(e.TargetState),
		CreatedAt:   e.CreatedAt,
	}
}

func ScanEventListToApi(events model.ScanEventList) api.ScanEventList {
	out := make(api.ScanEventList, 0, len(events))
	for _, e := range events {
		out = append(out, ScanEventToApi(e))
	}
	return out
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cnc-capture/capture/internal/events"
	"github.com/cnc-capture/capture/internal/qr"
	"github.com/cnc-capture/capture/internal/store"
	"github.com/cnc-capture/capture/internal/store/model"
	"github.com/cnc-capture/capture/pkg/metrics"
)

// maxTransitionAttempts bounds the optimistic-concurrency retry loop. When a
// concurrent writer keeps winning, the scan is surfaced as a transient
// failure and the operator retries.
const maxTransitionAttempts = 3

// ScanSubmission is the triple sent by a scanner kiosk.
type ScanSubmission struct {
	OperatorID uint
	MachineID  uint
	QrPayload  string
}

// ScanResult is the structured outcome of a scan submission. Expected
// rejections are results, not errors: the scanner UI shows the reason and
// the event log keeps the audit record either way.
type ScanResult struct {
	Outcome model.ScanOutcome
	Reason  model.ScanReason
	Job     *model.Job
	Event   *model.ScanEvent
}

func (r *ScanResult) Accepted() bool {
	return r.Outcome == model.ScanOutcomeAccepted
}

// ScanService validates scan submissions and applies job state transitions.
type ScanService struct {
	store       store.Store
	codec       *qr.Codec
	producer    *events.EventProducer
	dedupWindow time.Duration

	// now is swapped in tests to step across the de-duplication window.
	now func() time.Time
}

type ScanOption func(s *ScanService)

// WithClock replaces the service clock. Tests use it to step across the
// de-duplication window without sleeping.
func WithClock(now func() time.Time) ScanOption {
	return func(s *ScanService) {
		s.now = now
	}
}

func NewScanService(store store.Store, codec *qr.Codec, producer *events.EventProducer, dedupWindow time.Duration, opts ...ScanOption) *ScanService {
	srv := &ScanService{
		store:       store,
		codec:       codec,
		producer:    producer,
		dedupWindow: dedupWindow,
		now:         time.Now,
	}
	for _, o := range opts {
		o(srv)
	}
	return srv
}

// Process runs a submission through the scan pipeline: resolve identities,
// decode the payload, resolve the job, de-duplicate, then append the
// accepted event and advance the job state in one transaction.
func (s *ScanService) Process(ctx context.Context, sub ScanSubmission) (*ScanResult, error) {
	logger := zap.S().Named("scan_service")

	if _, err := s.store.Identity().GetOperator(ctx, sub.OperatorID); err != nil {
		if err == store.ErrRecordNotFound {
			return s.reject(ctx, sub, nil, model.ScanReasonUnknownIdentity)
		}
		return nil, err
	}
	if _, err := s.store.Identity().GetMachine(ctx, sub.MachineID); err != nil {
		if err == store.ErrRecordNotFound {
			return s.reject(ctx, sub, nil, model.ScanReasonUnknownIdentity)
		}
		return nil, err
	}

	jobID, _, err := s.codec.Decode(sub.QrPayload)
	if err != nil {
		return s.reject(ctx, sub, nil, model.ScanReasonMalformedPayload)
	}

	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		result, err := s.tryTransition(ctx, sub, jobID)
		if err != nil {
			if errors.Is(err, store.ErrConcurrentModified) {
				logger.Debugw("job modified concurrently, retrying", "job_id", jobID, "attempt", attempt+1)
				continue
			}
			return nil, err
		}
		return result, nil
	}

	logger.Warnw("transition retries exhausted", "job_id", jobID)
	return nil, NewErrConcurrentUpdate(jobID)
}

// tryTransition performs one optimistic attempt of steps 4-6 of the scan
// pipeline against the job version read at its start. A concurrent writer
// surfaces as store.ErrConcurrentModified and the caller retries.
func (s *ScanService) tryTransition(ctx context.Context, sub ScanSubmission, jobID uint) (*ScanResult, error) {
	job, err := s.store.Job().Get(ctx, jobID)
	if err != nil {
		if err == store.ErrRecordNotFound {
			return s.reject(ctx, sub, nil, model.ScanReasonUnknownJob)
		}
		return nil, err
	}

	target, ok := job.State.Next()
	if !ok {
		return s.reject(ctx, sub, &job.ID, model.ScanReasonAlreadyFinal)
	}

	// a double read of the same physical scan must not advance the job a
	// second step, whatever state the first read left it in
	since := s.now().Add(-s.dedupWindow)
	if _, err := s.store.ScanEvent().FindAcceptedSince(ctx, sub.OperatorID, sub.MachineID, jobID, since); err == nil {
		result, rerr := s.reject(ctx, sub, &job.ID, model.ScanReasonDuplicate)
		if rerr != nil {
			return nil, rerr
		}
		result.Job = job
		return result, nil
	} else if err != store.ErrRecordNotFound {
		return nil, err
	}

	// event append and state transition commit as one unit
	txCtx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}

	event, err := s.store.ScanEvent().Record(txCtx, model.ScanEvent{
		OperatorID:  sub.OperatorID,
		MachineID:   sub.MachineID,
		JobID:       &job.ID,
		RawPayload:  sub.QrPayload,
		Outcome:     model.ScanOutcomeAccepted,
		TargetState: target,
		CreatedAt:   s.now(),
	})
	if err != nil {
		_, _ = store.Rollback(txCtx)
		return nil, err
	}

	updated, err := s.store.Job().UpdateState(txCtx, job.ID, target, job.Version)
	if err != nil {
		_, _ = store.Rollback(txCtx)
		if errors.Is(err, store.ErrInvalidTransition) {
			// unreachable given the guards above; a hit means the invariant
			// is broken and must not be swallowed
			zap.S().Named("scan_service").Errorw("invalid transition past guards", "job_id", job.ID, "target", target, "error", err)
		}
		return nil, err
	}

	if _, err := store.Commit(txCtx); err != nil {
		return nil, err
	}

	metrics.IncreaseScanRequestsTotal(string(model.ScanOutcomeAccepted), "")
	zap.S().Named("scan_service").Infow("scan accepted",
		"job_id", updated.ID, "operator_id", sub.OperatorID, "machine_id", sub.MachineID, "state", updated.State)

	if updated.State == model.JobStateCompleted {
		s.notifyCompleted(ctx, updated, sub)
	}

	return &ScanResult{Outcome: model.ScanOutcomeAccepted, Job: updated, Event: event}, nil
}

// reject records the rejected submission in the event log and returns the
// structured result. A rejected scan is never silently dropped.
func (s *ScanService) reject(ctx context.Context, sub ScanSubmission, jobID *uint, reason model.ScanReason) (*ScanResult, error) {
	event, err := s.store.ScanEvent().Record(ctx, model.ScanEvent{
		OperatorID: sub.OperatorID,
		MachineID:  sub.MachineID,
		JobID:      jobID,
		RawPayload: sub.QrPayload,
		Outcome:    model.ScanOutcomeRejected,
		Reason:     reason,
		CreatedAt:  s.now(),
	})
	if err != nil {
		return nil, err
	}

	metrics.IncreaseScanRequestsTotal(string(model.ScanOutcomeRejected), string(reason))
	zap.S().Named("scan_service").Infow("scan rejected",
		"reason", reason, "operator_id", sub.OperatorID, "machine_id", sub.MachineID)

	return &ScanResult{Outcome: model.ScanOutcomeRejected, Reason: reason, Event: event}, nil
}

// notifyCompleted emits the completion event on the side channel. Delivery
// is best effort and never affects the scan result.
func (s *ScanService) notifyCompleted(ctx context.Context, job *model.Job, sub ScanSubmission) {
	metrics.IncreaseJobsCompletedTotal()

	if s.producer == nil {
		return
	}

	data, err := json.Marshal(events.JobCompletedEvent{
		JobID:      job.ID,
		JobName:    job.Name,
		OperatorID: sub.OperatorID,
		MachineID:  sub.MachineID,
	})
	if err != nil {
		return
	}

	if err := s.producer.Write(ctx, events.JobCompletedKind, bytes.NewBuffer(data)); err != nil {
		zap.S().Named("scan_service").Errorw("failed to write completion event", "error", err, "job_id", job.ID)
	}
}

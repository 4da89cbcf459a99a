package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/cnc-capture/capture/internal/qr"
	"github.com/cnc-capture/capture/internal/store"
	"github.com/cnc-capture/capture/internal/store/model"
)

// JobService is the console's write path: job creation and QR payload
// retrieval. Jobs are never deleted and their state is mutated only by the
// scan processor.
type JobService struct {
	store store.Store
	codec *qr.Codec
}

func NewJobService(store store.Store, codec *qr.Codec) *JobService {
	return &JobService{store: store, codec: codec}
}

func (s *JobService) CreateJob(ctx context.Context, name string, customer *string) (*model.Job, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewErrValidation("job name must not be empty")
	}

	job, err := s.store.Job().Create(ctx, model.Job{
		Name:     name,
		Customer: customer,
		State:    model.JobStateCreated,
	})
	if err != nil {
		zap.S().Named("job_service").Errorw("failed to create job", "error", err)
		return nil, err
	}

	zap.S().Named("job_service").Infow("job created", "job_id", job.ID, "name", job.Name)
	return job, nil
}

// JobQR returns the QR payload for a job. The payload is derived from the
// job id and its creation time, so repeated calls return the same stable
// payload for printing and reprinting.
func (s *JobService) JobQR(ctx context.Context, jobID uint) (string, error) {
	job, err := s.store.Job().Get(ctx, jobID)
	if err != nil {
		if err == store.ErrRecordNotFound {
			return "", NewErrJobNotFound(jobID)
		}
		return "", err
	}

	return s.codec.Encode(job.ID, job.CreatedAt), nil
}

package service

import (
	"context"

	"github.com/cnc-capture/capture/internal/store"
	"github.com/cnc-capture/capture/internal/store/model"
)

// QueryService is the console's read path. It serves the latest committed
// state of the job and identity stores; callers poll on their own cadence.
type QueryService struct {
	store store.Store
}

func NewQueryService(store store.Store) *QueryService {
	return &QueryService{store: store}
}

func (s *QueryService) ListJobs(ctx context.Context) (model.JobList, error) {
	return s.store.Job().List(ctx)
}

func (s *QueryService) GetJob(ctx context.Context, id uint) (*model.Job, error) {
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		if err == store.ErrRecordNotFound {
			return nil, NewErrJobNotFound(id)
		}
		return nil, err
	}
	return job, nil
}

func (s *QueryService) ListMachines(ctx context.Context) (model.MachineList, error) {
	return s.store.Identity().ListMachines(ctx)
}

func (s *QueryService) ListOperators(ctx context.Context) (model.OperatorList, error) {
	return s.store.Identity().ListOperators(ctx)
}

// ListJobEvents returns the job's scan audit trail in recording order.
func (s *QueryService) ListJobEvents(ctx context.Context, jobID uint) (model.ScanEventList, error) {
	if _, err := s.store.Job().Get(ctx, jobID); err != nil {
		if err == store.ErrRecordNotFound {
			return nil, NewErrJobNotFound(jobID)
		}
		return nil, err
	}
	return s.store.ScanEvent().ListForJob(ctx, jobID)
}

package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cnc-capture/capture/internal/store/model"
)

// Job holds the job records and enforces the state-order invariant on writes.
type Job interface {
	Create(ctx context.Context, job model.Job) (*model.Job, error)
	Get(ctx context.Context, id uint) (*model.Job, error)
	List(ctx context.Context) (model.JobList, error)
	UpdateState(ctx context.Context, id uint, target model.JobState, expectedVersion uint) (*model.Job, error)
	InitialMigration() error
}

type JobStore struct {
	db *gorm.DB
}

// Make sure we conform to Job interface
var _ Job = (*JobStore)(nil)

func NewJobStore(db *gorm.DB) Job {
	return &JobStore{db: db}
}

func (s *JobStore) InitialMigration() error {
	return s.db.AutoMigrate(&model.Job{})
}

func (s *JobStore) Create(ctx context.Context, job model.Job) (*model.Job, error) {
	if job.State == "" {
		job.State = model.JobStateCreated
	}
	result := s.getDB(ctx).Create(&job)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("creating job: %w", result.Error)
	}
	return &job, nil
}

func (s *JobStore) Get(ctx context.Context, id uint) (*model.Job, error) {
	var job model.Job
	result := s.getDB(ctx).First(&job, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying job: %w", result.Error)
	}
	return &job, nil
}

// List returns all jobs in insertion order. The console list view relies on
// the ordering being stable.
func (s *JobStore) List(ctx context.Context) (model.JobList, error) {
	var jobs model.JobList
	result := s.getDB(ctx).Model(&model.Job{}).Order("id").Find(&jobs)
	if result.Error != nil {
		return nil, result.Error
	}
	return jobs, nil
}

// UpdateState moves the job identified by id into target. The write is
// guarded twice: the transition must respect the state order, and the row's
// version must still equal expectedVersion. A version mismatch means another
// writer got there first and the caller must re-read and retry.
func (s *JobStore) UpdateState(ctx context.Context, id uint, target model.JobState, expectedVersion uint) (*model.Job, error) {
	db := s.getDB(ctx)

	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.State.CanTransition(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.State, target)
	}

	result := db.Model(&model.Job{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{"state": target, "version": expectedVersion + 1})
	if result.Error != nil {
		return nil, fmt.Errorf("updating job state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrConcurrentModified
	}

	job.State = target
	job.Version = expectedVersion + 1
	return job, nil
}

func (s *JobStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}

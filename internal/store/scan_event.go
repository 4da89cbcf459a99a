package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cnc-capture/capture/internal/store/model"
)

// ScanEvent is the append-only scan log. The interface deliberately has no
// update or delete operation.
type ScanEvent interface {
	Record(ctx context.Context, event model.ScanEvent) (*model.ScanEvent, error)
	ListForJob(ctx context.Context, jobID uint) (model.ScanEventList, error)
	FindAcceptedSince(ctx context.Context, operatorID, machineID, jobID uint, since time.Time) (*model.ScanEvent, error)
	InitialMigration() error
}

type ScanEventStore struct {
	db *gorm.DB
}

// Make sure we conform to ScanEvent interface
var _ ScanEvent = (*ScanEventStore)(nil)

func NewScanEventStore(db *gorm.DB) ScanEvent {
	return &ScanEventStore{db: db}
}

func (s *ScanEventStore) InitialMigration() error {
	return s.db.AutoMigrate(&model.ScanEvent{})
}

func (s *ScanEventStore) Record(ctx context.Context, event model.ScanEvent) (*model.ScanEvent, error) {
	result := s.getDB(ctx).Create(&event)
	if result.Error != nil {
		return nil, fmt.Errorf("recording scan event: %w", result.Error)
	}
	return &event, nil
}

// ListForJob returns the job's events in recording order. Replaying the
// accepted ones through the transition function reconstructs the job's
// current state.
func (s *ScanEventStore) ListForJob(ctx context.Context, jobID uint) (model.ScanEventList, error) {
	var events model.ScanEventList
	result := s.getDB(ctx).Model(&model.ScanEvent{}).Where("job_id = ?", jobID).Order("id").Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}
	return events, nil
}

// FindAcceptedSince looks up the most recent accepted event matching the
// submission's identity and job, recorded at or after since. Returns
// ErrRecordNotFound when no such event exists. A double read of the same
// physical code hits regardless of which state the first read moved the job
// into, so the lookup does not filter on target state.
func (s *ScanEventStore) FindAcceptedSince(ctx context.Context, operatorID, machineID, jobID uint, since time.Time) (*model.ScanEvent, error) {
	var event model.ScanEvent
	result := s.getDB(ctx).
		Where("operator_id = ? AND machine_id = ? AND job_id = ? AND outcome = ? AND created_at >= ?",
			operatorID, machineID, jobID, model.ScanOutcomeAccepted, since).
		Order("id DESC").
		First(&event)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying scan events: %w", result.Error)
	}
	return &event, nil
}

func (s *ScanEventStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}

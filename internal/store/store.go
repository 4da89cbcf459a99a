package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cnc-capture/capture/internal/store/model"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Job() Job
	Identity() Identity
	ScanEvent() ScanEvent
	InitialMigration() error
	Seed() error
	Close() error
}

type DataStore struct {
	db        *gorm.DB
	job       Job
	identity  Identity
	scanEvent ScanEvent
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		job:       NewJobStore(db),
		identity:  NewIdentityStore(db),
		scanEvent: NewScanEventStore(db),
		db:        db,
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Job() Job {
	return s.job
}

func (s *DataStore) Identity() Identity {
	return s.identity
}

func (s *DataStore) ScanEvent() ScanEvent {
	return s.scanEvent
}

func (s *DataStore) InitialMigration() error {
	if err := s.job.InitialMigration(); err != nil {
		return err
	}
	if err := s.identity.InitialMigration(); err != nil {
		return err
	}
	return s.scanEvent.InitialMigration()
}

// Seed inserts the demo operator, machine and job used for local development.
// Inserts are idempotent so seeding an already-seeded database is a no-op.
func (s *DataStore) Seed() error {
	tx, err := newTransaction(s.db)
	if err != nil {
		return err
	}

	customer := "Acme"
	onIDConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}

	if err := tx.tx.Clauses(onIDConflict).Create(&model.Operator{ID: 1, Name: "Operator 1"}).Error; err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.tx.Clauses(onIDConflict).Create(&model.Machine{ID: 1, Name: "MAZAK-1"}).Error; err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.tx.Clauses(onIDConflict).Create(&model.Job{ID: 1, Name: "Demo job", Customer: &customer, State: model.JobStateCreated}).Error; err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package store_test

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/cnc-capture/capture/internal/config"
	"github.com/cnc-capture/capture/internal/store"
	"github.com/cnc-capture/capture/internal/store/model"
)

const (
	insertOperatorStm = "INSERT INTO operators (id, name) VALUES (%d, '%s');"
	insertMachineStm  = "INSERT INTO machines (id, name) VALUES (%d, '%s');"
)

var _ = Describe("scan event store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	jobID := func(id uint) *uint { return &id }

	BeforeAll(func() {
		cfg := config.NewDefault()
		cfg.Database.Name = filepath.Join(GinkgoT().TempDir(), "capture.db")

		db, err := store.InitDB(cfg)
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db

		Expect(s.InitialMigration()).To(Succeed())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE from scan_events;")
		gormdb.Exec("DELETE from jobs;")
	})

	Context("record", func() {
		It("records an accepted event", func() {
			event, err := s.ScanEvent().Record(context.TODO(), model.ScanEvent{
				OperatorID:  1,
				MachineID:   1,
				JobID:       jobID(1),
				RawPayload:  "payload",
				Outcome:     model.ScanOutcomeAccepted,
				TargetState: model.JobStateInProgress,
				CreatedAt:   time.Now(),
			})
			Expect(err).To(BeNil())
			Expect(event.ID).NotTo(BeZero())
		})

		It("records a rejected event without a job", func() {
			event, err := s.ScanEvent().Record(context.TODO(), model.ScanEvent{
				OperatorID: 1,
				MachineID:  1,
				RawPayload: "garbage",
				Outcome:    model.ScanOutcomeRejected,
				Reason:     model.ScanReasonMalformedPayload,
				CreatedAt:  time.Now(),
			})
			Expect(err).To(BeNil())
			Expect(event.JobID).To(BeNil())
		})
	})

	Context("list for job", func() {
		It("returns the job's events in recording order", func() {
			for _, outcome := range []model.ScanOutcome{model.ScanOutcomeAccepted, model.ScanOutcomeRejected, model.ScanOutcomeAccepted} {
				_, err := s.ScanEvent().Record(context.TODO(), model.ScanEvent{
					OperatorID: 1,
					MachineID:  1,
					JobID:      jobID(1),
					RawPayload: "payload",
					Outcome:    outcome,
					CreatedAt:  time.Now(),
				})
				Expect(err).To(BeNil())
			}
			_, err := s.ScanEvent().Record(context.TODO(), model.ScanEvent{
				OperatorID: 1,
				MachineID:  1,
				JobID:      jobID(2),
				RawPayload: "payload",
				Outcome:    model.ScanOutcomeAccepted,
				CreatedAt:  time.Now(),
			})
			Expect(err).To(BeNil())

			events, err := s.ScanEvent().ListForJob(context.TODO(), 1)
			Expect(err).To(BeNil())
			Expect(events).To(HaveLen(3))
			Expect(events[0].ID).To(BeNumerically("<", events[1].ID))
			Expect(events[1].ID).To(BeNumerically("<", events[2].ID))
		})

		It("returns no events for an unknown job", func() {
			events, err := s.ScanEvent().ListForJob(context.TODO(), 42)
			Expect(err).To(BeNil())
			Expect(events).To(HaveLen(0))
		})
	})

	Context("find accepted since", func() {
		It("finds a matching accepted event inside the window", func() {
			now := time.Now()
			_, err := s.ScanEvent().Record(context.TODO(), model.ScanEvent{
				OperatorID:  1,
				MachineID:   1,
				JobID:       jobID(1),
				RawPayload:  "payload",
				Outcome:     model.ScanOutcomeAccepted,
				TargetState: model.JobStateInProgress,
				CreatedAt:   now,
			})
			Expect(err).To(BeNil())

			event, err := s.ScanEvent().FindAcceptedSince(context.TODO(), 1, 1, 1, now.Add(-5*time.Second))
			Expect(err).To(BeNil())
			Expect(event.TargetState).To(Equal(model.JobStateInProgress))
		})

		It("ignores events outside the window", func() {
			now := time.Now()
			_, err := s.ScanEvent().Record(context.TODO(), model.ScanEvent{
				OperatorID:  1,
				MachineID:   1,
				JobID:       jobID(1),
				RawPayload:  "payload",
				Outcome:     model.ScanOutcomeAccepted,
				TargetState: model.JobStateInProgress,
				CreatedAt:   now.Add(-10 * time.Second),
			})
			Expect(err).To(BeNil())

			_, err = s.ScanEvent().FindAcceptedSince(context.TODO(), 1, 1, 1, now.Add(-5*time.Second))
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})

		It("ignores rejected events", func() {
			now := time.Now()
			_, err := s.ScanEvent().Record(context.TODO(), model.ScanEvent{
				OperatorID:  1,
				MachineID:   1,
				JobID:       jobID(1),
				RawPayload:  "payload",
				Outcome:     model.ScanOutcomeRejected,
				Reason:      model.ScanReasonDuplicate,
				TargetState: model.JobStateInProgress,
				CreatedAt:   now,
			})
			Expect(err).To(BeNil())

			_, err = s.ScanEvent().FindAcceptedSince(context.TODO(), 1, 1, 1, now.Add(-5*time.Second))
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})

		It("ignores events from a different identity", func() {
			now := time.Now()
			_, err := s.ScanEvent().Record(context.TODO(), model.ScanEvent{
				OperatorID:  2,
				MachineID:   1,
				JobID:       jobID(1),
				RawPayload:  "payload",
				Outcome:     model.ScanOutcomeAccepted,
				TargetState: model.JobStateInProgress,
				CreatedAt:   now,
			})
			Expect(err).To(BeNil())

			_, err = s.ScanEvent().FindAcceptedSince(context.TODO(), 1, 1, 1, now.Add(-5*time.Second))
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("replay", func() {
		It("rebuilds the job's state from its accepted events", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertJobWithStateStm, 1, "job1", "created", 0))
			Expect(tx.Error).To(BeNil())

			for _, target := range []model.JobState{model.JobStateInProgress, model.JobStateCompleted} {
				job, err := s.Job().Get(context.TODO(), 1)
				Expect(err).To(BeNil())

				_, err = s.ScanEvent().Record(context.TODO(), model.ScanEvent{
					OperatorID:  1,
					MachineID:   1,
					JobID:       jobID(1),
					RawPayload:  "payload",
					Outcome:     model.ScanOutcomeAccepted,
					TargetState: target,
					CreatedAt:   time.Now(),
				})
				Expect(err).To(BeNil())

				_, err = s.Job().UpdateState(context.TODO(), 1, target, job.Version)
				Expect(err).To(BeNil())
			}

			job, err := s.Job().Get(context.TODO(), 1)
			Expect(err).To(BeNil())

			events, err := s.ScanEvent().ListForJob(context.TODO(), 1)
			Expect(err).To(BeNil())
			Expect(model.ReplayState(events)).To(Equal(job.State))
		})
	})
})

package store_test

import (
	"context"
	"fmt"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/cnc-capture/capture/internal/config"
	"github.com/cnc-capture/capture/internal/store"
	"github.com/cnc-capture/capture/internal/store/model"
)

const (
	insertJobStm          = "INSERT INTO jobs (name, state, version) VALUES ('%s', '%s', 0);"
	insertJobWithStateStm = "INSERT INTO jobs (id, name, state, version) VALUES (%d, '%s', '%s', %d);"
)

var _ = Describe("job store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

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
		gormdb.Exec("DELETE from jobs;")
	})

	Context("create", func() {
		It("successfully creates a job in state created", func() {
			job, err := s.Job().Create(context.TODO(), model.Job{Name: "bracket run"})
			Expect(err).To(BeNil())
			Expect(job.ID).NotTo(BeZero())
			Expect(job.State).To(Equal(model.JobStateCreated))
			Expect(job.Version).To(Equal(uint(0)))
		})

		It("keeps the customer when set", func() {
			customer := "Acme"
			job, err := s.Job().Create(context.TODO(), model.Job{Name: "bracket run", Customer: &customer})
			Expect(err).To(BeNil())

			got, err := s.Job().Get(context.TODO(), job.ID)
			Expect(err).To(BeNil())
			Expect(got.Customer).NotTo(BeNil())
			Expect(*got.Customer).To(Equal("Acme"))
		})
	})

	Context("get", func() {
		It("returns ErrRecordNotFound for a missing job", func() {
			_, err := s.Job().Get(context.TODO(), 42)
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("list", func() {
		It("lists jobs in insertion order", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, "job1", "created"))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, "job2", "in_progress"))
			Expect(tx.Error).To(BeNil())

			jobs, err := s.Job().List(context.TODO())
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(2))
			Expect(jobs[0].Name).To(Equal("job1"))
			Expect(jobs[1].Name).To(Equal("job2"))
		})

		It("lists no jobs on an empty table", func() {
			jobs, err := s.Job().List(context.TODO())
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(0))
		})
	})

	Context("update state", func() {
		It("moves created to in_progress and bumps the version", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertJobWithStateStm, 1, "job1", "created", 0))
			Expect(tx.Error).To(BeNil())

			job, err := s.Job().UpdateState(context.TODO(), 1, model.JobStateInProgress, 0)
			Expect(err).To(BeNil())
			Expect(job.State).To(Equal(model.JobStateInProgress))
			Expect(job.Version).To(Equal(uint(1)))

			got, err := s.Job().Get(context.TODO(), 1)
			Expect(err).To(BeNil())
			Expect(got.State).To(Equal(model.JobStateInProgress))
			Expect(got.Version).To(Equal(uint(1)))
		})

		It("rejects a backwards transition", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertJobWithStateStm, 1, "job1", "in_progress", 1))
			Expect(tx.Error).To(BeNil())

			_, err := s.Job().UpdateState(context.TODO(), 1, model.JobStateCreated, 1)
			Expect(err).To(MatchError(store.ErrInvalidTransition))
		})

		It("rejects leaving a terminal state", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertJobWithStateStm, 1, "job1", "completed", 2))
			Expect(tx.Error).To(BeNil())

			_, err := s.Job().UpdateState(context.TODO(), 1, model.JobStateInProgress, 2)
			Expect(err).To(MatchError(store.ErrInvalidTransition))
		})

		It("returns ErrConcurrentModified on a stale version", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertJobWithStateStm, 1, "job1", "created", 3))
			Expect(tx.Error).To(BeNil())

			_, err := s.Job().UpdateState(context.TODO(), 1, model.JobStateInProgress, 2)
			Expect(err).To(MatchError(store.ErrConcurrentModified))

			got, err := s.Job().Get(context.TODO(), 1)
			Expect(err).To(BeNil())
			Expect(got.State).To(Equal(model.JobStateCreated))
		})

		It("returns ErrRecordNotFound for a missing job", func() {
			_, err := s.Job().UpdateState(context.TODO(), 42, model.JobStateInProgress, 0)
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("transaction", func() {
		It("rolls back an uncommitted state change", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertJobWithStateStm, 1, "job1", "created", 0))
			Expect(tx.Error).To(BeNil())

			ctx, err := s.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			_, err = s.Job().UpdateState(ctx, 1, model.JobStateInProgress, 0)
			Expect(err).To(BeNil())

			_, err = store.Rollback(ctx)
			Expect(err).To(BeNil())

			got, err := s.Job().Get(context.TODO(), 1)
			Expect(err).To(BeNil())
			Expect(got.State).To(Equal(model.JobStateCreated))
			Expect(got.Version).To(Equal(uint(0)))
		})

		It("persists a committed state change", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertJobWithStateStm, 1, "job1", "created", 0))
			Expect(tx.Error).To(BeNil())

			ctx, err := s.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			_, err = s.Job().UpdateState(ctx, 1, model.JobStateInProgress, 0)
			Expect(err).To(BeNil())

			_, err = store.Commit(ctx)
			Expect(err).To(BeNil())

			got, err := s.Job().Get(context.TODO(), 1)
			Expect(err).To(BeNil())
			Expect(got.State).To(Equal(model.JobStateInProgress))
		})
	})
})

package service_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/cnc-capture/capture/internal/config"
	"github.com/cnc-capture/capture/internal/qr"
	"github.com/cnc-capture/capture/internal/service"
	"github.com/cnc-capture/capture/internal/store"
	"github.com/cnc-capture/capture/internal/store/model"
)

var _ = Describe("job service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		codec  *qr.Codec
		jobSrv *service.JobService
	)

	BeforeAll(func() {
		cfg := config.NewDefault()
		cfg.Database.Name = filepath.Join(GinkgoT().TempDir(), "capture.db")

		db, err := store.InitDB(cfg)
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		codec = qr.NewCodec(cfg.Service.QRSecret)
		jobSrv = service.NewJobService(s, codec)

		Expect(s.InitialMigration()).To(Succeed())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE from jobs;")
	})

	Context("create", func() {
		It("creates a job in state created", func() {
			customer := "Acme"
			job, err := jobSrv.CreateJob(context.TODO(), "bracket run", &customer)
			Expect(err).To(BeNil())
			Expect(job.State).To(Equal(model.JobStateCreated))
			Expect(job.Version).To(Equal(uint(0)))
		})

		It("rejects a blank name without touching the store", func() {
			_, err := jobSrv.CreateJob(context.TODO(), "   ", nil)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrValidation{}))

			jobs, err := s.Job().List(context.TODO())
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(0))
		})
	})

	Context("qr", func() {
		It("returns the same payload on repeated calls", func() {
			job, err := jobSrv.CreateJob(context.TODO(), "bracket run", nil)
			Expect(err).To(BeNil())

			first, err := jobSrv.JobQR(context.TODO(), job.ID)
			Expect(err).To(BeNil())
			second, err := jobSrv.JobQR(context.TODO(), job.ID)
			Expect(err).To(BeNil())
			Expect(second).To(Equal(first))

			jobID, _, err := codec.Decode(first)
			Expect(err).To(BeNil())
			Expect(jobID).To(Equal(job.ID))
		})

		It("returns not found for a missing job", func() {
			_, err := jobSrv.JobQR(context.TODO(), 42)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrResourceNotFound{}))
		})
	})
})

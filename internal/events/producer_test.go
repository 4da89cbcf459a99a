package events

import (
	"bytes"
	"context"
	"sync"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("producer", Ordered, func() {
	Context("write", func() {
		It("delivers buffered events to the writer", func() {
			w := newTestWriter()
			ep := NewEventProducer(w)

			err := ep.Write(context.TODO(), JobCompletedKind, bytes.NewReader([]byte(`{"job_id":1}`)))
			Expect(err).To(BeNil())

			err = ep.Write(context.TODO(), JobCompletedKind, bytes.NewReader([]byte(`{"job_id":2}`)))
			Expect(err).To(BeNil())

			Eventually(w.Count, "2s", "10ms").Should(Equal(2))
			messages := w.Snapshot()
			Expect(messages[0].Type()).To(Equal(JobCompletedKind))
			Expect(messages[1].Type()).To(Equal(JobCompletedKind))
			Expect(w.Topics()).To(HaveEach(defaultTopic))

			ep.Close()
		})

		It("delivers to the configured topic", func() {
			w := newTestWriter()
			ep := NewEventProducer(w, WithOutputTopic("capture.notifications"))

			err := ep.Write(context.TODO(), JobCompletedKind, bytes.NewReader([]byte(`{"job_id":1}`)))
			Expect(err).To(BeNil())

			Eventually(w.Count, "2s", "10ms").Should(Equal(1))
			Expect(w.Topics()).To(HaveEach("capture.notifications"))

			ep.Close()
		})
	})
})

type testwriter struct {
	lock     sync.Mutex
	messages []cloudevents.Event
	topics   []string
}

func newTestWriter() *testwriter {
	return &testwriter{messages: []cloudevents.Event{}}
}

func (t *testwriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.messages = append(t.messages, e)
	t.topics = append(t.topics, topic)
	return nil
}

func (t *testwriter) Close(_ context.Context) error {
	return nil
}

func (t *testwriter) Count() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return len(t.messages)
}

func (t *testwriter) Snapshot() []cloudevents.Event {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([]cloudevents.Event{}, t.messages...)
}

func (t *testwriter) Topics() []string {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([]string{}, t.topics...)
}

var _ = Describe("buffer", Ordered, func() {
	It("keeps FIFO order", func() {
		buffer := newBuffer()

		Expect(buffer.PushBack(&message{Kind: JobCompletedKind, Data: []byte("msg1")})).To(BeNil())
		Expect(buffer.PushBack(&message{Kind: JobCompletedKind, Data: []byte("msg2")})).To(BeNil())
		Expect(buffer.PushBack(&message{Kind: JobCompletedKind, Data: []byte("msg3")})).To(BeNil())
		Expect(buffer.Size()).To(Equal(3))

		Expect(buffer.Pop().Data).To(Equal([]byte("msg1")))
		Expect(buffer.Pop().Data).To(Equal([]byte("msg2")))
		Expect(buffer.Pop().Data).To(Equal([]byte("msg3")))
		Expect(buffer.Size()).To(Equal(0))
		Expect(buffer.Pop()).To(BeNil())
	})
})

var _ = Describe("producer close", func() {
	It("stops the consumer", func() {
		w := newTestWriter()
		ep := NewEventProducer(w)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = ep.Close()
		}()

		Eventually(done, "2s").Should(BeClosed())
	})
})

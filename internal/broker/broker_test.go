package broker

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/fintrack/internal/core/events"
)

type recordingSender struct {
	sent []*Message
	err  error
}

func (r *recordingSender) Send(ctx context.Context, msg *Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

var _ = Describe("Broker", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	})

	DescribeTable("exponentialBackoff",
		func(attempt int, expected time.Duration) {
			Expect(exponentialBackoff(attempt)).To(Equal(expected))
		},
		Entry("first retry", 0, time.Second),
		Entry("second retry", 1, 2*time.Second),
		Entry("fifth retry", 4, 16*time.Second),
		Entry("capped", 5, 30*time.Second),
		Entry("far out", 15, 30*time.Second),
	)

	DescribeTable("isConnectionError",
		func(err error, expected bool) {
			Expect(isConnectionError(err)).To(Equal(expected))
		},
		Entry("nil", nil, false),
		Entry("refused", stderrors.New("dial tcp: connection refused"), true),
		Entry("eof", stderrors.New("unexpected EOF"), true),
		Entry("access refused", stderrors.New("Exception (403) Reason: ACCESS_REFUSED"), false),
	)

	It("forwards obligation events with their payload", func() {
		// Given
		sender := &recordingSender{}
		fwd := NewForwarder(sender, logger, events.EventTypeObligationMaterialized)
		event := events.NewObligationMaterializedEvent(7, "loan", 3, 99, decimal.NewFromInt(500), "2026-01")

		// When
		Expect(fwd.Handle(context.Background(), event)).To(Succeed())
		Expect(fwd.Handle(context.Background(), events.NewCardBalanceRecomputedEvent(1, decimal.Zero))).To(Succeed())

		// Then
		Expect(sender.sent).To(HaveLen(1))
		msg := sender.sent[0]
		Expect(msg.ID).To(Equal(event.EventID()))
		Expect(msg.Type).To(Equal(events.EventTypeObligationMaterialized))
		Expect(msg.Payload).To(HaveKeyWithValue("period", "2026-01"))
	})

	It("returns send failures to the bus", func() {
		sender := &recordingSender{err: stderrors.New("channel closed")}
		fwd := NewForwarder(sender, logger)

		err := fwd.Handle(context.Background(), events.NewCardBalanceRecomputedEvent(1, decimal.Zero))

		Expect(err).To(MatchError("channel closed"))
	})

	It("replays consumed messages onto a local bus", func() {
		bus := events.NewEventBus(logger)
		var got events.Event
		bus.Subscribe(events.EventTypeObligationMaterialized, func(ctx context.Context, e events.Event) error {
			got = e
			return nil
		})

		raw, err := MessageFromEvent(events.NewObligationMaterializedEvent(7, "sip", 4, 100, decimal.NewFromInt(200), "2026-02")).ToJSON()
		Expect(err).NotTo(HaveOccurred())
		msg, err := MessageFromJSON(raw)
		Expect(err).NotTo(HaveOccurred())

		Expect(Replay(bus)(context.Background(), msg)).To(Succeed())
		Expect(got).NotTo(BeNil())
		Expect(got.EventID()).To(Equal(msg.ID))
		Expect(got.Payload()).To(HaveKeyWithValue("rule_type", "sip"))
	})
})

package notifier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"mm_scanner/internal/domain/entity"
	"mm_scanner/internal/infrastructure/notifier"
)

func TestChannelSinkDropsWhenFull(t *testing.T) {
	t.Parallel()
	rq := require.New(t)

	sink := notifier.NewChannelSink(1)

	sink.Publish(context.Background(), entity.Offer{GoodsID: "1"}, entity.ChannelHint{})
	sink.Publish(context.Background(), entity.Offer{GoodsID: "2"}, entity.ChannelHint{})
	rq.Len(sink.C(), 1)
	rq.Equal("1", (<-sink.C()).Offer.GoodsID)
}

type fakeDeliverer struct {
	got []notifier.Notification
	err error
}

func (f *fakeDeliverer) Deliver(_ context.Context, offer entity.Offer, hint entity.ChannelHint) error {
	f.got = append(f.got, notifier.Notification{Offer: offer, Hint: hint})

	return f.err
}

func TestTaskHandlerRoundTrip(t *testing.T) {
	t.Parallel()
	rq := require.New(t)

	offer := entity.Offer{GoodsID: "100", MerchantID: "7", Price: 500, BonusAmount: 50}
	hint := entity.ChannelHint{Channel: entity.ChannelArbitrage, ReferencePrice: lo.ToPtr(600.0)}

	task, err := notifier.NewOfferTask(offer, hint)
	rq.NoError(err)
	rq.Equal(notifier.TypeOfferNotify, task.Type())

	d := &fakeDeliverer{}
	rq.NoError(notifier.NewTaskHandler(d).ProcessTask(context.Background(), task))
	rq.Len(d.got, 1)
	rq.Equal(offer.Key(), d.got[0].Offer.Key())
	rq.Equal(entity.ChannelArbitrage, d.got[0].Hint.Channel)
	rq.InDelta(600.0, *d.got[0].Hint.ReferencePrice, 0.001)
}

func TestTaskHandlerErrors(t *testing.T) {
	t.Parallel()
	rq := require.New(t)

	err := notifier.NewTaskHandler(&fakeDeliverer{}).
		ProcessTask(context.Background(), asynq.NewTask(notifier.TypeOfferNotify, []byte("{")))
	rq.ErrorIs(err, asynq.SkipRetry)

	task, err := notifier.NewOfferTask(entity.Offer{GoodsID: "1"}, entity.ChannelHint{})
	rq.NoError(err)

	boom := errors.New("boom")
	err = notifier.NewTaskHandler(&fakeDeliverer{err: boom}).ProcessTask(context.Background(), task)
	rq.ErrorIs(err, boom)
	rq.NotErrorIs(err, asynq.SkipRetry)
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)

	return &asynq.TaskInfo{ID: "task-1"}, nil
}

func TestQueueSinkPublish(t *testing.T) {
	t.Parallel()
	rq := require.New(t)

	q := &fakeEnqueuer{}
	notifier.NewQueueSink(q, "").Publish(context.Background(), entity.Offer{GoodsID: "1"}, entity.ChannelHint{})

	rq.Len(q.tasks, 1)
	rq.Equal(notifier.TypeOfferNotify, q.tasks[0].Type())
}

package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"

	"mm_scanner/internal/domain/entity"
	"mm_scanner/pkg/logx"
)

const (
	TypeOfferNotify = "offer:notify"
	DefaultQueue    = "notifications"

	taskMaxRetry = 5
	taskTimeout  = 30 * time.Second
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueSink публикует уведомления задачами asynq, доставку делает TaskHandler.
type QueueSink struct {
	client enqueuer
	queue  string
}

func NewQueueSink(client enqueuer, queue string) *QueueSink {
	if queue == "" {
		queue = DefaultQueue
	}

	return &QueueSink{client: client, queue: queue}
}

func NewOfferTask(offer entity.Offer, hint entity.ChannelHint) (*asynq.Task, error) {
	payload, err := json.Marshal(Notification{Offer: offer, Hint: hint})
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return asynq.NewTask(TypeOfferNotify, payload), nil
}

func (s *QueueSink) Publish(ctx context.Context, offer entity.Offer, hint entity.ChannelHint) {
	log := logger(ctx).With(slog.String(logx.FieldGoodsID, offer.GoodsID))

	task, err := NewOfferTask(offer, hint)
	if err != nil {
		log.Error("build notify task", logx.Error(err))
		return
	}

	info, err := s.client.EnqueueContext(ctx, task,
		asynq.Queue(s.queue),
		asynq.MaxRetry(taskMaxRetry),
		asynq.Timeout(taskTimeout),
	)
	if err != nil {
		log.Error("enqueue notify task", logx.Error(err))
		return
	}

	log.Debug("notify task enqueued", slog.String(logx.FieldTaskID, info.ID))
}

type Deliverer interface {
	Deliver(ctx context.Context, offer entity.Offer, hint entity.ChannelHint) error
}

type TaskHandler struct {
	deliverer Deliverer
}

func NewTaskHandler(deliverer Deliverer) *TaskHandler {
	return &TaskHandler{deliverer: deliverer}
}

// ProcessTask битый payload не ретраится, ошибка доставки ретраится asynq.
func (h *TaskHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var n Notification
	if err := json.Unmarshal(task.Payload(), &n); err != nil {
		return fmt.Errorf("json.Unmarshal: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.deliverer.Deliver(ctx, n.Offer, n.Hint); err != nil {
		return fmt.Errorf("deliver: %w", err)
	}

	return nil
}

package pubsub

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SnapshotBroker раздаёт уведомления об изменениях коллекции привычек
// пользователя через Redis Pub/Sub. Само содержимое не передаём:
// подписчик перечитывает закоммиченное состояние из БД, поэтому
// повторная или опоздавшая доставка безопасна.
type SnapshotBroker struct {
	client *redis.Client
}

func NewSnapshotBroker(client *redis.Client) *SnapshotBroker {
	return &SnapshotBroker{client: client}
}

func channelFor(userID uuid.UUID) string {
	return "habits:changed:" + userID.String()
}

func (b *SnapshotBroker) Publish(ctx context.Context, userID uuid.UUID) error {
	return b.client.Publish(ctx, channelFor(userID), "changed").Err()
}

// Subscription оборачивает redis.PubSub в канал простых сигналов.
type Subscription struct {
	pubsub *redis.PubSub
	ch     chan struct{}
}

func (b *SnapshotBroker) Subscribe(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	ps := b.client.Subscribe(ctx, channelFor(userID))
	// Дожидаемся подтверждения подписки, чтобы не потерять первые публикации
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	sub := &Subscription{
		pubsub: ps,
		ch:     make(chan struct{}, 1),
	}

	go func() {
		defer close(sub.ch)
		for range ps.Channel() {
			select {
			case sub.ch <- struct{}{}:
			default:
				// Сигнал уже ждёт обработки, копить их незачем
			}
		}
	}()

	return sub, nil
}

func (s *Subscription) C() <-chan struct{} {
	return s.ch
}

func (s *Subscription) Close() error {
	return s.pubsub.Close()
}

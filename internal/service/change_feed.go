package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bobalog/internal/db"
	"github.com/jackc/pgx/v5"
)

// ChangeFeed 提供按群组订阅变更信号的能力。
type ChangeFeed interface {
	Subscribe(group string) (<-chan struct{}, func())
}

// Broadcaster 将 “群组数据已变更” 的信号扇出给所有订阅者。
// 每个订阅通道缓冲 1，连续多次变更会被合并成一次重新加载。
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[string]map[chan struct{}]struct{}
}

// NewBroadcaster 构造空的 Broadcaster。
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subscribers: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe 订阅某个群组的变更，返回信号通道与取消函数。
func (b *Broadcaster) Subscribe(group string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	subs, ok := b.subscribers[group]
	if !ok {
		subs = make(map[chan struct{}]struct{})
		b.subscribers[group] = subs
	}
	subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.subscribers[group]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(b.subscribers, group)
				}
			}
		})
	}
	return ch, cancel
}

// Notify 通知群组内所有订阅者，不会阻塞。
func (b *Broadcaster) Notify(group string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers[group] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// SubscriberCount 返回群组当前的订阅数。
func (b *Broadcaster) SubscriberCount(group string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[group])
}

const defaultListenRetry = 3 * time.Second

// PGListener 监听 postgres 的 NOTIFY，把远端写入（其他成员、其他实例）转发给 Broadcaster。
type PGListener struct {
	dsn     string
	target  ChangeNotifier
	logger  *slog.Logger
	retry   time.Duration
	channel string
}

// NewPGListener 构造 PGListener，logger 为 nil 时使用默认 logger。
func NewPGListener(dsn string, target ChangeNotifier, logger *slog.Logger) *PGListener {
	if logger == nil {
		logger = slog.Default()
	}
	return &PGListener{
		dsn:     dsn,
		target:  target,
		logger:  logger,
		retry:   defaultListenRetry,
		channel: db.ChangeChannel,
	}
}

// Run 持续监听直到 ctx 取消；连接断开后按固定间隔重连。
func (l *PGListener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.logger.Warn("change listener disconnected", slog.Any("error", err), slog.Duration("retry", l.retry))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retry):
		}
	}
}

func (l *PGListener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return err
	}
	l.logger.Info("listening for drink changes", slog.String("channel", l.channel))

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.logger.Debug("drink change received", slog.String("group", notification.Payload))
		l.target.Notify(notification.Payload)
	}
}

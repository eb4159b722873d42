package bot

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/assistant-bot/internal/assistant"
	"github.com/xaenox/assistant-bot/internal/catalog"
	"github.com/xaenox/assistant-bot/internal/metrics"
	"github.com/xaenox/assistant-bot/internal/models"
	"github.com/xaenox/assistant-bot/internal/router"
	"go.uber.org/zap"
)

const DefaultMaxConcurrency = 16

// Transport is the duplex message channel to the users.
type Transport interface {
	Updates(ctx context.Context) <-chan models.InboundMessage
	Send(ctx context.Context, reply models.OutboundReply) error
	Typing(ctx context.Context, chatID int64) error
}

// Bot reads inbound messages and answers each of them. Messages of one user
// are handled one at a time in arrival order; different users are served
// concurrently, bounded by the concurrency limit.
type Bot struct {
	transport Transport
	router    *router.Router
	assistant assistant.Assistant
	catalog   *catalog.Catalog
	metrics   *metrics.BotMetrics
	logger    *zap.Logger

	sem    chan struct{}
	mu     sync.Mutex
	queues map[int64]*userQueue
	wg     sync.WaitGroup
}

type userQueue struct {
	pending []models.InboundMessage
}

// New wires the bot. A nil assistant disables AI handling: free text is then
// answered with the catalog's "unavailable" notice.
func New(transport Transport, c *catalog.Catalog, a assistant.Assistant, maxConcurrency int, m *metrics.BotMetrics, logger *zap.Logger) *Bot {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Bot{
		transport: transport,
		router:    router.New(c, a != nil),
		assistant: a,
		catalog:   c,
		metrics:   m,
		logger:    logger,
		sem:       make(chan struct{}, maxConcurrency),
		queues:    make(map[int64]*userQueue),
	}
}

func (b *Bot) mode() assistant.Mode {
	if b.assistant == nil {
		return assistant.ModeDisabled
	}
	return b.assistant.Mode()
}

// Start consumes updates until ctx is cancelled or the transport closes its
// channel, then waits for in-flight messages.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Bot is starting", zap.String("mode", string(b.mode())))

	updates := b.transport.Updates(ctx)
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-updates:
			if !ok {
				return nil
			}
			b.enqueue(ctx, msg)
		}
	}
}

func (b *Bot) enqueue(ctx context.Context, msg models.InboundMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	q, running := b.queues[msg.UserID]
	if !running {
		q = &userQueue{}
		b.queues[msg.UserID] = q
	}
	q.pending = append(q.pending, msg)

	if !running {
		b.wg.Add(1)
		go b.serve(ctx, msg.UserID, q)
	}
}

// serve drains one user's queue. The queue is removed once it is empty, so
// the next message from that user starts a new worker.
func (b *Bot) serve(ctx context.Context, userID int64, q *userQueue) {
	defer b.wg.Done()

	for {
		b.mu.Lock()
		if len(q.pending) == 0 || ctx.Err() != nil {
			dropped := len(q.pending)
			delete(b.queues, userID)
			b.mu.Unlock()
			if dropped > 0 {
				b.logger.Warn("Dropped queued messages on shutdown",
					zap.Int64("user_id", userID),
					zap.Int("count", dropped))
			}
			return
		}
		msg := q.pending[0]
		q.pending = q.pending[1:]
		b.mu.Unlock()

		select {
		case b.sem <- struct{}{}:
		case <-ctx.Done():
			continue
		}
		b.handleMessage(ctx, msg)
		<-b.sem
	}
}

func (b *Bot) handleMessage(ctx context.Context, message models.InboundMessage) {
	logger := b.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.Int64("user_id", message.UserID),
		zap.Int64("chat_id", message.ChatID))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered from panic while handling message", zap.Any("panic", r))
			b.sendMessage(ctx, logger, message.ChatID, b.catalog.Text(catalog.MsgTryLater))
		}
	}()

	action := b.router.Route(message.Text)
	b.metrics.ObserveMessage(action.Trigger)

	switch action.Kind {
	case router.KindAssistant:
		b.handleChat(ctx, logger, message)
	default:
		b.send(ctx, logger, models.OutboundReply{
			ChatID:   message.ChatID,
			Text:     action.Text,
			Keyboard: action.Keyboard,
		})
	}
}

func (b *Bot) handleChat(ctx context.Context, logger *zap.Logger, message models.InboundMessage) {
	go func() {
		if err := b.transport.Typing(ctx, message.ChatID); err != nil {
			logger.Debug("Failed to send typing action", zap.Error(err))
		}
	}()

	mode := b.assistant.Mode()
	start := time.Now()
	reply, err := b.assistant.Handle(ctx, message.UserID, message.Text)
	if err == nil && reply == "" {
		err = assistant.ErrUnexpectedResponse
	}
	b.metrics.ObserveAIRequest(string(mode), assistant.Outcome(err), time.Since(start).Seconds())

	if err != nil {
		logger.Error("Failed to handle chat message",
			zap.Error(err),
			zap.String("mode", string(mode)))
		reply = assistant.ReplyForError(b.catalog, err)
	}

	b.sendMessage(ctx, logger, message.ChatID, reply)
}

func (b *Bot) sendMessage(ctx context.Context, logger *zap.Logger, chatID int64, text string) {
	b.send(ctx, logger, models.OutboundReply{ChatID: chatID, Text: text})
}

func (b *Bot) send(ctx context.Context, logger *zap.Logger, reply models.OutboundReply) {
	if err := b.transport.Send(ctx, reply); err != nil {
		logger.Error("Failed to send message", zap.Error(err))
	}
}

package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dripfeed/internal/delivery"
	"dripfeed/internal/logging"
	"dripfeed/internal/progress"
	"dripfeed/internal/telegram"
)

// API is the slice of the Telegram client the bot consumes.
type API interface {
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID, text string) error
}

// Deliverer is the slice of the delivery pipeline the bot drives for
// /start and /lesson.
type Deliverer interface {
	Deliver(ctx context.Context, chatID string, lessonIndex int) delivery.Result
}

// Options configures the update loop.
type Options struct {
	// PollTimeout is the long-poll timeout in seconds passed to getUpdates.
	PollTimeout int
	// TotalLessons bounds /lesson arguments and the /progress display.
	TotalLessons int
}

// Bot runs the long-poll update loop and answers subscriber commands.
type Bot struct {
	api       API
	store     progress.Store
	deliverer Deliverer
	logger    *slog.Logger
	opts      Options

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New constructs the bot command surface.
func New(api API, store progress.Store, deliverer Deliverer, logger *slog.Logger, opts Options) *Bot {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 30
	}
	return &Bot{
		api:       api,
		store:     store,
		deliverer: deliverer,
		logger:    logging.NewComponentLogger(logger, "bot"),
		opts:      opts,
	}
}

// Start launches the update loop in the background.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return errors.New("bot already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.done = make(chan struct{})
	b.running = true

	go b.poll(loopCtx, b.done)

	b.logger.Info("update loop started", logging.Int("poll_timeout", b.opts.PollTimeout))
	return nil
}

// Stop cancels the update loop and waits for it to exit.
func (b *Bot) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	cancel := b.cancel
	done := b.done
	b.cancel = nil
	b.done = nil
	b.running = false
	b.mu.Unlock()

	cancel()
	<-done
	b.logger.Info("update loop stopped")
}

// poll fetches update batches until the context is cancelled. Each
// processed update moves the offset past its update_id so Telegram never
// redelivers it.
func (b *Bot) poll(ctx context.Context, done chan struct{}) {
	defer close(done)

	var offset int64
	for {
		if ctx.Err() != nil {
			return
		}

		updates, err := b.api.GetUpdates(ctx, offset, b.opts.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Warn("getUpdates failed", logging.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			if update.Message == nil || update.Message.Chat == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"dripfeed/internal/delivery"
	"dripfeed/internal/logging"
	"dripfeed/internal/telegram"
)

const helpText = `Available commands:
/start - subscribe and receive your first lesson
/progress - show how far you have come
/lesson <number> - resend a lesson you already received
/help - show this message`

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		return
	}

	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	command, arg := splitCommand(text)

	logger := b.logger.With(logging.String(logging.FieldChatID, chatID))
	logger.Info("command received", logging.String("command", command))

	switch command {
	case "/start":
		b.handleStart(ctx, logger, chatID)
	case "/progress":
		b.handleProgress(ctx, logger, chatID)
	case "/lesson":
		b.handleLesson(ctx, logger, chatID, arg)
	case "/help":
		b.reply(ctx, logger, chatID, helpText)
	default:
		b.reply(ctx, logger, chatID, helpText)
	}
}

// splitCommand separates the command word from its argument and strips a
// @botname suffix, so "/lesson@dripbot 3" routes like "/lesson 3".
func splitCommand(text string) (command, arg string) {
	fields := strings.Fields(text)
	command = strings.ToLower(fields[0])
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}
	if len(fields) > 1 {
		arg = fields[1]
	}
	return command, arg
}

// handleStart registers the chat and hands over the first lesson right
// away. A repeat /start greets without resending anything.
func (b *Bot) handleStart(ctx context.Context, logger *slog.Logger, chatID string) {
	if _, ok, err := b.store.Get(ctx, chatID); err != nil {
		logger.Error("progress lookup failed", logging.Error(err))
		b.reply(ctx, logger, chatID, "Something went wrong, please try again.")
		return
	} else if ok {
		b.reply(ctx, logger, chatID, "You are already subscribed. Your next lesson arrives with the daily send.")
		return
	}

	if _, err := b.store.Ensure(ctx, chatID); err != nil {
		logger.Error("subscribe failed", logging.Error(err))
		b.reply(ctx, logger, chatID, "Something went wrong, please try again.")
		return
	}

	b.reply(ctx, logger, chatID, fmt.Sprintf("Welcome! You will receive one lesson every day, %d in total. Here is your first one.", b.opts.TotalLessons))

	result := b.deliverer.Deliver(ctx, chatID, 0)
	if result.Outcome != delivery.OutcomeDelivered {
		logger.Warn("first lesson delivery failed", logging.Error(result.Err))
		return
	}
	if err := b.store.Advance(ctx, chatID, result.Lesson); err != nil {
		logger.Error("advance failed after delivery",
			logging.Error(err),
			logging.Int(logging.FieldLesson, result.Lesson),
		)
	}
}

func (b *Bot) handleProgress(ctx context.Context, logger *slog.Logger, chatID string) {
	record, ok, err := b.store.Get(ctx, chatID)
	if err != nil {
		logger.Error("progress lookup failed", logging.Error(err))
		b.reply(ctx, logger, chatID, "Something went wrong, please try again.")
		return
	}
	if !ok {
		b.reply(ctx, logger, chatID, "You are not subscribed yet. Send /start to begin.")
		return
	}

	delivered := record.NextLesson
	if delivered > b.opts.TotalLessons {
		delivered = b.opts.TotalLessons
	}
	if delivered >= b.opts.TotalLessons {
		b.reply(ctx, logger, chatID, fmt.Sprintf("You have completed all %d lessons. Well done!", b.opts.TotalLessons))
		return
	}
	b.reply(ctx, logger, chatID, fmt.Sprintf("You have received %d of %d lessons.", delivered, b.opts.TotalLessons))
}

// handleLesson resends a single lesson on demand. Resends never touch
// progress.
func (b *Bot) handleLesson(ctx context.Context, logger *slog.Logger, chatID, arg string) {
	if _, ok, err := b.store.Get(ctx, chatID); err != nil {
		logger.Error("progress lookup failed", logging.Error(err))
		b.reply(ctx, logger, chatID, "Something went wrong, please try again.")
		return
	} else if !ok {
		b.reply(ctx, logger, chatID, "You are not subscribed yet. Send /start to begin.")
		return
	}

	number, err := strconv.Atoi(arg)
	if err != nil || number < 1 || number > b.opts.TotalLessons {
		b.reply(ctx, logger, chatID, fmt.Sprintf("Usage: /lesson <number between 1 and %d>", b.opts.TotalLessons))
		return
	}

	result := b.deliverer.Deliver(ctx, chatID, number-1)
	if result.Outcome != delivery.OutcomeDelivered {
		logger.Warn("resend failed",
			logging.Error(result.Err),
			logging.Int(logging.FieldLesson, number-1),
		)
		b.reply(ctx, logger, chatID, "Could not send that lesson right now, please try again later.")
	}
}

func (b *Bot) reply(ctx context.Context, logger *slog.Logger, chatID, text string) {
	if err := b.api.SendMessage(ctx, chatID, text); err != nil {
		logger.Warn("reply failed", logging.Error(err))
	}
}

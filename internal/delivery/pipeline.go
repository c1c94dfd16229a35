package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"dripfeed/internal/chunker"
	"dripfeed/internal/curriculum"
	"dripfeed/internal/logging"
)

// Sentinel errors for outcome classification.
var (
	ErrLessonUnavailable = errors.New("lesson unavailable")
	ErrPrimarySend       = errors.New("primary send failed")
)

// Outcome classifies a delivery attempt.
type Outcome string

const (
	// OutcomeDelivered means the full lesson text reached the subscriber;
	// asset failures may still be recorded in Result.AssetErrors.
	OutcomeDelivered Outcome = "delivered"
	// OutcomeFailed means a text segment did not go out; the subscriber's
	// progress must not advance so the lesson is retried next tick.
	OutcomeFailed Outcome = "failed"
	// OutcomeLessonUnavailable means the requested index has no lesson.
	OutcomeLessonUnavailable Outcome = "lesson_unavailable"
)

// Result describes one delivery attempt. It is ephemeral; only the caller's
// follow-up Advance call persists anything.
type Result struct {
	Outcome     Outcome
	Lesson      int
	AssetErrors []error
	Err         error
}

// Sender is the outbound channel surface the pipeline needs.
type Sender interface {
	SendMessage(ctx context.Context, chatID, text string) error
	SendPhoto(ctx context.Context, chatID, path, caption string) error
	SendAudio(ctx context.Context, chatID, path, caption string) error
}

// Pipeline assembles and sends the multi-asset message for one
// (subscriber, lesson) pair.
type Pipeline struct {
	repo       *curriculum.Repository
	sender     Sender
	logger     *slog.Logger
	chunkLimit int
}

// New constructs a delivery pipeline.
func New(repo *curriculum.Repository, sender Sender, logger *slog.Logger, chunkLimit int) *Pipeline {
	if chunkLimit <= 0 {
		chunkLimit = chunker.TelegramLimit
	}
	return &Pipeline{
		repo:       repo,
		sender:     sender,
		logger:     logging.NewComponentLogger(logger, "delivery"),
		chunkLimit: chunkLimit,
	}
}

// Deliver sends lesson (0-based) to the chat. Assets go out in fixed order:
// image, text segments, audio, video link. Asset failures are logged and
// skipped; only a text failure fails the attempt. Deliver never touches the
// progress store.
func (p *Pipeline) Deliver(ctx context.Context, chatID string, lessonIndex int) Result {
	logger := p.logger.With(
		logging.String(logging.FieldDeliveryID, uuid.NewString()),
		logging.String(logging.FieldChatID, chatID),
		logging.Int(logging.FieldLesson, lessonIndex),
	)

	lesson, ok := p.repo.Lesson(lessonIndex)
	if !ok {
		logger.Warn("lesson unavailable", logging.String(logging.FieldEventType, "lesson_unavailable"))
		return Result{
			Outcome: OutcomeLessonUnavailable,
			Lesson:  lessonIndex,
			Err:     fmt.Errorf("%w: index %d", ErrLessonUnavailable, lessonIndex),
		}
	}

	result := Result{Outcome: OutcomeDelivered, Lesson: lessonIndex}
	caption := fmt.Sprintf("Lesson %d", lessonIndex+1)

	if lesson.ImagePath != "" {
		if err := p.sender.SendPhoto(ctx, chatID, lesson.ImagePath, caption); err != nil {
			result.AssetErrors = append(result.AssetErrors, fmt.Errorf("image: %w", err))
			logger.Warn("image send failed, continuing",
				logging.Error(err),
				logging.String(logging.FieldEventType, "asset_send_failed"),
			)
		}
	}

	// Segments go out sequentially so the subscriber reads the lesson in
	// order. The first failure aborts the attempt: a half-sent lesson is
	// retried whole on the next tick.
	for i, segment := range chunker.Split(lesson.Text, p.chunkLimit) {
		if err := p.sender.SendMessage(ctx, chatID, segment); err != nil {
			logger.Error("text send failed",
				logging.Error(err),
				logging.Int("segment", i),
				logging.String(logging.FieldEventType, "primary_send_failed"),
			)
			result.Outcome = OutcomeFailed
			result.Err = fmt.Errorf("%w: segment %d: %v", ErrPrimarySend, i, err)
			return result
		}
	}

	if lesson.AudioPath != "" {
		if err := p.sender.SendAudio(ctx, chatID, lesson.AudioPath, caption); err != nil {
			result.AssetErrors = append(result.AssetErrors, fmt.Errorf("audio: %w", err))
			logger.Warn("audio send failed, continuing",
				logging.Error(err),
				logging.String(logging.FieldEventType, "asset_send_failed"),
			)
		}
	}

	if lesson.Video != nil {
		if err := p.sender.SendMessage(ctx, chatID, videoMessage(lesson.Video)); err != nil {
			result.AssetErrors = append(result.AssetErrors, fmt.Errorf("video: %w", err))
			logger.Warn("video link send failed, continuing",
				logging.Error(err),
				logging.String(logging.FieldEventType, "asset_send_failed"),
			)
		}
	}

	logger.Info("lesson delivered",
		logging.Int("asset_errors", len(result.AssetErrors)),
		logging.String(logging.FieldEventType, "lesson_delivered"),
	)
	return result
}

func videoMessage(video *curriculum.VideoLink) string {
	if video.Title != "" {
		return fmt.Sprintf("%s\n%s", video.Title, video.URL)
	}
	return video.URL
}

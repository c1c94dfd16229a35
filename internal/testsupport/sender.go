package testsupport

import (
	"context"
	"errors"
	"sync"
)

// Send kinds recorded by the fake sender.
const (
	SendMessage = "message"
	SendPhoto   = "photo"
	SendAudio   = "audio"
)

// Sent records one outbound send observed by the fake sender.
type Sent struct {
	Kind    string
	ChatID  string
	Text    string
	Path    string
	Caption string
}

// Sender is an in-memory stand-in for the Telegram client. Individual send
// kinds can be failed wholesale, and FailTextAfter lets a test fail the Nth
// text message to exercise mid-lesson transport errors.
type Sender struct {
	mu sync.Mutex

	FailPhoto     bool
	FailAudio     bool
	FailText      bool
	FailTextAfter int // fail text sends once this many have succeeded; 0 disables

	sent      []Sent
	textCount int
}

var errSendFailed = errors.New("send failed")

func (s *Sender) SendMessage(ctx context.Context, chatID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailText {
		return errSendFailed
	}
	if s.FailTextAfter > 0 && s.textCount >= s.FailTextAfter {
		return errSendFailed
	}
	s.textCount++
	s.sent = append(s.sent, Sent{Kind: SendMessage, ChatID: chatID, Text: text})
	return nil
}

func (s *Sender) SendPhoto(ctx context.Context, chatID, path, caption string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPhoto {
		return errSendFailed
	}
	s.sent = append(s.sent, Sent{Kind: SendPhoto, ChatID: chatID, Path: path, Caption: caption})
	return nil
}

func (s *Sender) SendAudio(ctx context.Context, chatID, path, caption string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAudio {
		return errSendFailed
	}
	s.sent = append(s.sent, Sent{Kind: SendAudio, ChatID: chatID, Path: path, Caption: caption})
	return nil
}

// All returns a copy of every recorded send in order.
func (s *Sender) All() []Sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sent, len(s.sent))
	copy(out, s.sent)
	return out
}

// Texts returns only the recorded text messages for the given chat.
func (s *Sender) Texts(chatID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, sent := range s.sent {
		if sent.Kind == SendMessage && sent.ChatID == chatID {
			out = append(out, sent.Text)
		}
	}
	return out
}

// Reset clears recorded sends and failure counters.
func (s *Sender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
	s.textCount = 0
}

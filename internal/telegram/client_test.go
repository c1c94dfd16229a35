package telegram_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"dripfeed/internal/telegram"
)

func newTestClient(t *testing.T, handler http.Handler) (*telegram.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := telegram.DefaultClientConfig("123:token")
	cfg.BaseURL = server.URL
	cfg.RetryAttempts = 2
	cfg.RetryDelay = time.Millisecond
	return telegram.NewClient(cfg), server
}

func TestSendMessagePostsForm(t *testing.T) {
	var gotPath, gotChat, gotText string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotChat = r.PostFormValue("chat_id")
		gotText = r.PostFormValue("text")
		w.Write([]byte(`{"ok": true, "result": {}}`))
	}))

	if err := client.SendMessage(context.Background(), "42", "hello"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if gotPath != "/bot123:token/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if gotChat != "42" || gotText != "hello" {
		t.Errorf("chat_id=%q text=%q", gotChat, gotText)
	}
}

func TestAPIErrorIsTerminal(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"ok": false, "error_code": 400, "description": "Bad Request: chat not found"}`))
	}))

	err := client.SendMessage(context.Background(), "42", "hello")
	var apiErr *telegram.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Code != 400 {
		t.Errorf("code = %d", apiErr.Code)
	}
	if calls.Load() != 1 {
		t.Errorf("4xx retried %d times, want exactly 1 call", calls.Load())
	}
}

func TestServerErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok": true, "result": {}}`))
	}))

	if err := client.SendMessage(context.Background(), "42", "hello"); err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestGetUpdatesDecodesResult(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostFormValue("offset"); got != "7" {
			t.Errorf("offset = %q", got)
		}
		w.Write([]byte(`{"ok": true, "result": [
			{"update_id": 7, "message": {"message_id": 1, "chat": {"id": 42, "type": "private"}, "text": "/start"}}
		]}`))
	}))

	updates, err := client.GetUpdates(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("GetUpdates: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("updates = %d", len(updates))
	}
	msg := updates[0].Message
	if msg == nil || msg.Chat == nil || msg.Chat.ID != 42 || msg.Text != "/start" {
		t.Errorf("unexpected update: %+v", updates[0])
	}
}

func TestGetMe(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": true, "result": {"id": 99, "is_bot": true, "first_name": "dripfeed"}}`))
	}))

	me, err := client.GetMe(context.Background())
	if err != nil {
		t.Fatalf("GetMe: %v", err)
	}
	if me.ID != 99 || !me.IsBot {
		t.Errorf("me = %+v", me)
	}
}

func TestSendPhotoUploadsMultipart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lesson_1.jpg")
	if err := os.WriteFile(path, []byte("jpeg-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	var gotCaption string
	var gotFile []byte
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			w.Write([]byte(`{"ok": false, "error_code": 400, "description": "bad form"}`))
			return
		}
		gotCaption = r.FormValue("caption")
		file, _, err := r.FormFile("photo")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			defer file.Close()
			buf := make([]byte, 32)
			n, _ := file.Read(buf)
			gotFile = buf[:n]
		}
		w.Write([]byte(`{"ok": true, "result": {}}`))
	}))

	if err := client.SendPhoto(context.Background(), "42", path, "Lesson 1"); err != nil {
		t.Fatalf("SendPhoto: %v", err)
	}
	if gotCaption != "Lesson 1" {
		t.Errorf("caption = %q", gotCaption)
	}
	if string(gotFile) != "jpeg-bytes" {
		t.Errorf("file bytes = %q", gotFile)
	}
}

func TestSendPhotoMissingFile(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the server when the file is missing")
	}))
	err := client.SendPhoto(context.Background(), "42", filepath.Join(t.TempDir(), "nope.jpg"), "")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRateLimitIsRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Write([]byte(`{"ok": false, "error_code": 429, "description": "Too Many Requests"}`))
			return
		}
		w.Write([]byte(`{"ok": true, "result": {}}`))
	}))

	if err := client.SendMessage(context.Background(), "42", "hello"); err != nil {
		t.Fatalf("expected 429 to be retried, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

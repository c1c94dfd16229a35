package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// SendPhoto uploads a local image file as a photo attachment.
func (c *Client) SendPhoto(ctx context.Context, chatID, path, caption string) error {
	return c.upload(ctx, "sendPhoto", "photo", chatID, path, caption)
}

// SendAudio uploads a local audio file as an audio attachment.
func (c *Client) SendAudio(ctx context.Context, chatID, path, caption string) error {
	return c.upload(ctx, "sendAudio", "audio", chatID, path, caption)
}

// upload posts a multipart Bot API request with the file attached under
// fieldName. The file is re-read on every retry attempt, so the body is
// rebuilt rather than reused.
func (c *Client) upload(ctx context.Context, method, fieldName, chatID, path, caption string) error {
	build := func() (*http.Request, error) {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer file.Close()

		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		if err := writer.WriteField("chat_id", chatID); err != nil {
			return nil, err
		}
		if caption != "" {
			if err := writer.WriteField("caption", caption); err != nil {
				return nil, err
			}
		}
		part, err := writer.CreateFormFile(fieldName, filepath.Base(path))
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(body.Bytes()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req, nil
	}

	_, err := c.do(ctx, method, build)
	return err
}

package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FileDownloader fetches uploaded documents from Telegram's file storage
type FileDownloader struct {
	api    *tgbotapi.BotAPI
	client *http.Client
}

func NewFileDownloader(api *tgbotapi.BotAPI) *FileDownloader {
	return &FileDownloader{
		api:    api,
		client: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (d *FileDownloader) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	url, err := d.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	return resp.Body, nil
}

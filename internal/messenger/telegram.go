package messenger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Messenger is the outbound side of the external messaging channel. Both
// sends are best-effort: callers treat errors as log-and-drop.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendFiles(ctx context.Context, chatID int64, text string, files []string) error
}

const notificationTemplate = "🗞 <i>Новое уведомление</i>\n\n%s"

// TelegramMessenger talks to the Telegram Bot API over plain HTTP.
type TelegramMessenger struct {
	endpoint string
	token    string
	client   *http.Client
	logger   *slog.Logger
}

func NewTelegramMessenger(endpoint, token string, logger *slog.Logger) *TelegramMessenger {
	return &TelegramMessenger{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

func (t *TelegramMessenger) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.endpoint, t.token, method)
}

// SendText sends one formatted message.
func (t *TelegramMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", fmt.Sprintf(notificationTemplate, text))
	form.Set("parse_mode", "HTML")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.methodURL("sendMessage"), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return t.do(req)
}

// SendFiles sends the introductory message, then each file as a separate
// document transmission in list order. The first failure stops the sequence;
// callers swallow it either way.
func (t *TelegramMessenger) SendFiles(ctx context.Context, chatID int64, text string, files []string) error {
	if err := t.SendText(ctx, chatID, text); err != nil {
		return err
	}
	for _, file := range files {
		if err := t.sendDocument(ctx, chatID, file); err != nil {
			return fmt.Errorf("failed to send document %s: %w", filepath.Base(file), err)
		}
	}
	return nil
}

func (t *TelegramMessenger) sendDocument(ctx context.Context, chatID int64, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer pw.Close()
		defer mw.Close()
		if err := mw.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
			pw.CloseWithError(err)
			return
		}
		part, err := mw.CreateFormFile("document", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.methodURL("sendDocument"), pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return t.do(req)
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *TelegramMessenger) do(req *http.Request) error {
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("bad API response: %w", err)
	}
	if !api.OK {
		return fmt.Errorf("telegram API error: %s", api.Description)
	}
	return nil
}

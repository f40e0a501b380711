package messenger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// LinkRedeemer binds a Telegram chat to the user owning the supplied link
// code. Implemented by the link service.
type LinkRedeemer interface {
	Redeem(ctx context.Context, hash string, telegramID int64) (fullName string, err error)
}

const linkConfirmation = "%s теперь подключен к Telegram. Уведомления о занятиях и заданиях будут приходить сюда\n\n" +
	"<b>Если</b> возникнет необходимость подключить другой Telegram, перейдите по новой ссылке " +
	"в личном кабинете на сайте"

// pollWindow is how long getUpdates asks Telegram to hold an idle long poll.
const pollWindow = 30 * time.Second

// LinkPoller consumes Telegram getUpdates long polls and redeems
// "/start <code>" deep links against the link service.
type LinkPoller struct {
	messenger *TelegramMessenger
	redeemer  LinkRedeemer
	// client must outlive the poll window; the messenger's client deadline
	// is tuned for single sends and would cut idle polls short.
	client *http.Client
	logger *slog.Logger

	offset int64
}

func NewLinkPoller(messenger *TelegramMessenger, redeemer LinkRedeemer, logger *slog.Logger) *LinkPoller {
	return &LinkPoller{
		messenger: messenger,
		redeemer:  redeemer,
		client:    &http.Client{Timeout: pollWindow + 10*time.Second},
		logger:    logger,
	}
}

// Run polls until ctx is cancelled. Errors are logged and polling continues.
func (p *LinkPoller) Run(ctx context.Context) {
	p.logger.Info("Starting Telegram link poller")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Telegram link poller stopped")
			return
		default:
		}

		updates, err := p.getUpdates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("getUpdates failed", "error", err)
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
			}
			continue
		}

		for _, u := range updates {
			p.offset = u.UpdateID + 1
			p.handleUpdate(ctx, u)
		}
	}
}

type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		From struct {
			ID int64 `json:"id"`
		} `json:"from"`
	} `json:"message"`
}

func (p *LinkPoller) getUpdates(ctx context.Context) ([]update, error) {
	form := url.Values{}
	form.Set("timeout", strconv.Itoa(int(pollWindow/time.Second)))
	form.Set("allowed_updates", `["message"]`)
	if p.offset > 0 {
		form.Set("offset", strconv.FormatInt(p.offset, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.messenger.methodURL("getUpdates"), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		OK     bool     `json:"ok"`
		Result []update `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("bad API response: %w", err)
	}
	if !body.OK {
		return nil, fmt.Errorf("telegram API rejected getUpdates")
	}
	return body.Result, nil
}

func (p *LinkPoller) handleUpdate(ctx context.Context, u update) {
	if u.Message == nil {
		return
	}
	args := strings.Fields(u.Message.Text)
	if len(args) != 2 || args[0] != "/start" {
		return
	}

	fullName, err := p.redeemer.Redeem(ctx, args[1], u.Message.From.ID)
	if err != nil {
		p.logger.Info("Link code rejected", "error", err)
		return
	}

	if err := p.messenger.SendText(ctx, u.Message.From.ID, fmt.Sprintf(linkConfirmation, fullName)); err != nil {
		p.logger.Warn("Failed to confirm link", "error", err)
	}
}

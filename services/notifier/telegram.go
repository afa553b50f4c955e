package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sjsage522/encarworker/internal/crawler"
	"sjsage522/encarworker/pkg/errors"
)

const (
	unknownTitle = "unknown"
	notSpecified = "not specified"
)

// TelegramNotifier posts listings to a chat through the Bot API sendMessage method
type TelegramNotifier struct {
	client *http.Client
	apiURL string
	token  string
	chatID string
}

// sendMessageRequest is the JSON body of sendMessage
type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// sendMessageResponse is the subset of the Bot API reply we inspect
type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegramNotifier creates a notifier. apiURL is normally
// https://api.telegram.org.
func NewTelegramNotifier(client *http.Client, apiURL, token, chatID string) *TelegramNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &TelegramNotifier{
		client: client,
		apiURL: strings.TrimRight(apiURL, "/"),
		token:  token,
		chatID: chatID,
	}
}

// Notify sends a single message, without retry
func (n *TelegramNotifier) Notify(ctx context.Context, link string, listing crawler.Listing) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID: n.chatID,
		Text:   FormatMessage(listing),
	})
	if err != nil {
		return errors.NewNotification(link, "encode message", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.NewNotification(link, "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		// the URL carries the token
		return errors.NewNotification(link, "send message "+listing.ID, redact(err, n.token))
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var reply sendMessageResponse
		_ = json.Unmarshal(data, &reply)
		return errors.NewNotification(link,
			fmt.Sprintf("send message %s: status %d", listing.ID, resp.StatusCode),
			fmt.Errorf("%s", reply.Description))
	}

	return nil
}

// FormatMessage renders the chat message for a listing
func FormatMessage(l crawler.Listing) string {
	var b strings.Builder
	b.WriteString("🚗 New ad Encar.com!\n")
	fmt.Fprintf(&b, "ID: %s\n", l.ID)
	fmt.Fprintf(&b, "Model: %s\n", orDefault(l.Title, unknownTitle))
	fmt.Fprintf(&b, "Price: %s ₩\n", orDefault(l.Price, notSpecified))
	fmt.Fprintf(&b, "Mileage: %s\n", orDefault(l.Mileage, notSpecified))
	fmt.Fprintf(&b, "Release date: %s\n", orDefault(l.Year, notSpecified))
	fmt.Fprintf(&b, "Link: %s", crawler.DetailURL(l.ID))
	return b.String()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func redact(err error, token string) error {
	if token == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), token, "<token>"))
}

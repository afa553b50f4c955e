package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/encarworker/internal/crawler"
	"sjsage522/encarworker/pkg/errors"
)

const testLink = "https://www.encar.com/dc/dc_carsearchlist.do?carType=kor"

var _ Notifier = (*TelegramNotifier)(nil)

func TestFormatMessage(t *testing.T) {
	msg := FormatMessage(crawler.Listing{
		ID:      "102",
		Title:   "Kia K5",
		Year:    "21/01",
		Mileage: "12,000km",
		Price:   "2,350",
	})

	assert.Equal(t, "🚗 New ad Encar.com!\n"+
		"ID: 102\n"+
		"Model: Kia K5\n"+
		"Price: 2,350 ₩\n"+
		"Mileage: 12,000km\n"+
		"Release date: 21/01\n"+
		"Link: https://fem.encar.com/cars/detail/102", msg)
}

func TestFormatMessagePlaceholders(t *testing.T) {
	msg := FormatMessage(crawler.Listing{ID: "7"})
	assert.Contains(t, msg, "Model: unknown\n")
	assert.Contains(t, msg, "Price: not specified ₩\n")
	assert.Contains(t, msg, "Mileage: not specified\n")
	assert.Contains(t, msg, "Release date: not specified\n")
}

func TestTelegramNotify(t *testing.T) {
	var got sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer server.Close()

	n := NewTelegramNotifier(server.Client(), server.URL+"/", "123:abc", "-1001234567")
	err := n.Notify(context.Background(), testLink, crawler.Listing{ID: "102", Title: "K5"})
	require.NoError(t, err)

	assert.Equal(t, "-1001234567", got.ChatID)
	assert.Contains(t, got.Text, "ID: 102")
	assert.Contains(t, got.Text, "https://fem.encar.com/cars/detail/102")
}

func TestTelegramNotifyRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	n := NewTelegramNotifier(server.Client(), server.URL, "123:abc", "1")
	err := n.Notify(context.Background(), testLink, crawler.Listing{ID: "102"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotification))
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "chat not found")
}

func TestTelegramNotifyNetworkErrorHidesToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	n := NewTelegramNotifier(nil, url, "secret-token", "1")
	err := n.Notify(context.Background(), testLink, crawler.Listing{ID: "102"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotification))
	assert.NotContains(t, err.Error(), "secret-token")
}

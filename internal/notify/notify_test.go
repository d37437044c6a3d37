package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliAsger25/TFWTest/internal/config"
	"github.com/AliAsger25/TFWTest/internal/core"
)

func logrusDiscard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testBill() *core.Bill {
	return &core.Bill{
		InvoiceNo:     105,
		CustomerName:  "Asha",
		CustomerPhone: "9876543210",
		GrandTotal:    decimal.NewFromInt(330),
	}
}

func TestGatewayNotifier_SendThankYou(t *testing.T) {
	var got gatewayPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewGatewayNotifier(config.NotifyConfig{
		SMSGatewayURL: srv.URL,
		DefaultRegion: "IN",
	})

	err := n.SendThankYou(context.Background(), ChannelSMS, "98765 43210", testBill())
	require.NoError(t, err)

	// Local number normalized to E.164 with the default region.
	assert.Equal(t, "+919876543210", got.To)
	assert.Equal(t, 105, got.InvoiceNo)
	assert.Contains(t, got.Message, "Asha")
	assert.Contains(t, got.Message, "#105")
	assert.Contains(t, got.Message, "330.00")
}

func TestGatewayNotifier_DisabledChannelIsNoop(t *testing.T) {
	n := NewGatewayNotifier(config.NotifyConfig{DefaultRegion: "IN"})

	// No URL configured for either channel: nothing to send, no error.
	assert.NoError(t, n.SendThankYou(context.Background(), ChannelSMS, "9876543210", testBill()))
	assert.NoError(t, n.SendThankYou(context.Background(), ChannelWhatsApp, "9876543210", testBill()))
}

func TestGatewayNotifier_UnknownChannel(t *testing.T) {
	n := NewGatewayNotifier(config.NotifyConfig{DefaultRegion: "IN"})
	err := n.SendThankYou(context.Background(), Channel("pigeon"), "9876543210", testBill())
	assert.Error(t, err)
}

func TestGatewayNotifier_BadPhone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("gateway must not be called for an unparseable phone")
	}))
	defer srv.Close()

	n := NewGatewayNotifier(config.NotifyConfig{
		SMSGatewayURL: srv.URL,
		DefaultRegion: "IN",
	})
	err := n.SendThankYou(context.Background(), ChannelSMS, "not a phone", testBill())
	assert.Error(t, err)
}

func TestGatewayNotifier_GatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewGatewayNotifier(config.NotifyConfig{
		WhatsAppGatewayURL: srv.URL,
		DefaultRegion:      "IN",
	})
	err := n.SendThankYou(context.Background(), ChannelWhatsApp, "9876543210", testBill())
	assert.ErrorContains(t, err, "status 502")
}

type recordingNotifier struct {
	calls chan Channel
	err   error
}

func (r *recordingNotifier) SendThankYou(ctx context.Context, channel Channel, phone string, bill *core.Bill) error {
	r.calls <- channel
	return r.err
}

func TestDispatch_SendsOnBothChannels(t *testing.T) {
	rec := &recordingNotifier{calls: make(chan Channel, 2)}

	Dispatch(rec, logrusDiscard(), "9876543210", testBill())

	assert.Equal(t, ChannelSMS, <-rec.calls)
	assert.Equal(t, ChannelWhatsApp, <-rec.calls)
}

func TestDispatch_SkipsWithoutPhone(t *testing.T) {
	rec := &recordingNotifier{calls: make(chan Channel, 2)}

	Dispatch(rec, logrusDiscard(), "", testBill())
	Dispatch(rec, logrusDiscard(), "9876543210", nil)

	select {
	case ch := <-rec.calls:
		t.Errorf("Unexpected notification on channel %s", ch)
	default:
	}
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ttacon/libphonenumber"

	"github.com/AliAsger25/TFWTest/internal/config"
	"github.com/AliAsger25/TFWTest/internal/core"
)

// Channel selects the delivery route for a notification.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// Notifier sends customer-facing messages. Implementations are external
// collaborators: they never participate in bill transactions and their
// errors never reach the customer-facing response.
type Notifier interface {
	SendThankYou(ctx context.Context, channel Channel, phone string, bill *core.Bill) error
}

// GatewayNotifier delivers messages by POSTing JSON to per-channel HTTP
// gateways. A channel with no configured URL is disabled.
type GatewayNotifier struct {
	client *http.Client
	sms    string
	wa     string
	region string
}

func NewGatewayNotifier(cfg config.NotifyConfig) *GatewayNotifier {
	return &GatewayNotifier{
		client: &http.Client{Timeout: 10 * time.Second},
		sms:    cfg.SMSGatewayURL,
		wa:     cfg.WhatsAppGatewayURL,
		region: cfg.DefaultRegion,
	}
}

type gatewayPayload struct {
	To        string `json:"to"`
	Message   string `json:"message"`
	InvoiceNo int    `json:"invoice_no"`
}

func (n *GatewayNotifier) SendThankYou(ctx context.Context, channel Channel, phone string, bill *core.Bill) error {
	var url string
	switch channel {
	case ChannelSMS:
		url = n.sms
	case ChannelWhatsApp:
		url = n.wa
	default:
		return fmt.Errorf("unknown notification channel %q", channel)
	}
	if url == "" {
		logrus.Debugf("%s gateway not configured, skipping notification for bill %d", channel, bill.InvoiceNo)
		return nil
	}

	to, err := n.normalize(phone)
	if err != nil {
		return fmt.Errorf("cannot parse customer phone %q: %w", phone, err)
	}

	name := bill.CustomerName
	if name == "" {
		name = "customer"
	}
	payload := gatewayPayload{
		To:        to,
		Message:   fmt.Sprintf("Thank you %s for your purchase! Invoice #%d, total %s.", name, bill.InvoiceNo, bill.GrandTotal.StringFixed(2)),
		InvoiceNo: bill.InvoiceNo,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", channel, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", channel, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s gateway call failed: %w", channel, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s gateway returned status %d", channel, resp.StatusCode)
	}
	return nil
}

// normalize parses a raw customer phone into E.164, using the configured
// default region for numbers entered without a country code.
func (n *GatewayNotifier) normalize(phone string) (string, error) {
	num, err := libphonenumber.Parse(phone, n.region)
	if err != nil {
		return "", err
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}

// Dispatch sends the thank-you message on every channel in a detached
// goroutine with its own timeout. Failures are logged and swallowed so they
// can never affect the committed bill.
func Dispatch(n Notifier, log logrus.FieldLogger, phone string, bill *core.Bill) {
	if phone == "" || bill == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, channel := range []Channel{ChannelSMS, ChannelWhatsApp} {
			if err := n.SendThankYou(ctx, channel, phone, bill); err != nil {
				log.WithFields(logrus.Fields{
					"channel":    channel,
					"invoice_no": bill.InvoiceNo,
				}).WithError(err).Warn("thank-you notification failed")
			}
		}
	}()
}

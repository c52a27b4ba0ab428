package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/common/config"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const smsMaxLen = 1600

var errNoPhone = errors.New("recipient has no phone number")

// SMS delivers notifications through a Twilio compatible messages API
type SMS struct {
	cfg    config.SMSConfig
	client *http.Client
}

func NewSMS(cfg config.SMSConfig) *SMS {
	return newSMS(cfg, &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.Timeout,
	})
}

func newSMS(cfg config.SMSConfig, client *http.Client) *SMS {
	return &SMS{cfg: cfg, client: client}
}

func (s *SMS) Channel() Channel { return ChannelSMS }

func (s *SMS) Send(ctx context.Context, to *database.User, msg Rendered) error {
	if to.Phone == "" {
		return errNoPhone
	}

	text := msg.Subject + ": " + msg.Body
	if r := []rune(text); len(r) > smsMaxLen {
		text = string(r[:smsMaxLen])
	}
	form := url.Values{
		"To":   {to.Phone},
		"From": {s.cfg.From},
		"Body": {text},
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(s.cfg.BaseURL, "/"), url.PathEscape(s.cfg.AccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return err
	}
	body := gjson.ParseBytes(raw)

	if resp.StatusCode >= 300 {
		reason := body.Get("message").String()
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("sms gateway returned %d (code %s): %s", resp.StatusCode, body.Get("code").String(), reason)
	}
	switch status := body.Get("status").String(); status {
	case "failed", "undelivered", "canceled":
		return fmt.Errorf("sms %s %s: %s", body.Get("sid").String(), status, body.Get("error_message").String())
	}
	return nil
}

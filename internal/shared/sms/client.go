// Package sms delivers transactional text messages through the Chatinfy
// HTTP gateway. Delivery is best-effort: callers treat SMS as a side
// channel and never fail a business operation on a gateway error.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client talks to the SMS gateway.
type Client struct {
	gatewayURL string
	licenseNo  string
	apiKey     string
	adminPhone string
	echoOnly   bool
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a gateway client. When echoOnly is set (dev/test
// environments) messages are logged instead of dispatched.
func NewClient(gatewayURL, licenseNo, apiKey, adminPhone string, echoOnly bool, logger *zap.Logger) *Client {
	return &Client{
		gatewayURL: gatewayURL,
		licenseNo:  licenseNo,
		apiKey:     apiKey,
		adminPhone: adminPhone,
		echoOnly:   echoOnly,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// Send dispatches one message to one phone number.
func (c *Client) Send(ctx context.Context, phone, message string) error {
	if c.echoOnly || c.gatewayURL == "" {
		c.logger.Info("sms echo (not dispatched)",
			zap.String("phone", phone),
			zap.String("message", message))
		return nil
	}

	reqBody := map[string]string{
		"license_number": c.licenseNo,
		"api_key":        c.apiKey,
		"contact":        phone,
		"message":        message,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.gatewayURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("create sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// SendAsync dispatches in a goroutine, logging failures. The detached
// context gets its own timeout so an aborted HTTP request does not cancel
// the send mid-flight.
func (c *Client) SendAsync(phone, message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := c.Send(ctx, phone, message); err != nil {
			c.logger.Warn("sms send failed",
				zap.String("phone", phone),
				zap.Error(err))
		}
	}()
}

// NotifyAdmin texts the configured office phone. No-op when no admin
// phone is configured.
func (c *Client) NotifyAdmin(message string) {
	if c.adminPhone == "" {
		return
	}
	c.SendAsync(c.adminPhone, message)
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// AlertSink is the outbound channel for security notifications. Callers
// treat it as fire-and-forget: failures are logged and swallowed, and a
// slow sink must never delay the HTTP response.
type AlertSink interface {
	NotifyPossibleCompromise(ctx context.Context, userID, ip, userAgent, reason string) error
	NotifyNewDeviceLogin(ctx context.Context, userID, ip, userAgent string) error
}

const alertChannel = "security:alerts"

// SecurityAlert is the event payload published for the notification worker.
type SecurityAlert struct {
	Kind       string    `json:"kind"` // "possible_compromise" or "new_device_login"
	UserID     string    `json:"user_id"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// redisAlertSink publishes alerts to a Redis channel consumed by the
// out-of-process email notifier.
type redisAlertSink struct {
	client *redis.Client
}

func NewRedisAlertSink(client *redis.Client) AlertSink {
	return &redisAlertSink{client: client}
}

func (s *redisAlertSink) publish(ctx context.Context, alert SecurityAlert) error {
	alert.OccurredAt = time.Now()
	payload, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, alertChannel, payload).Err()
}

func (s *redisAlertSink) NotifyPossibleCompromise(ctx context.Context, userID, ip, userAgent, reason string) error {
	return s.publish(ctx, SecurityAlert{
		Kind:      "possible_compromise",
		UserID:    userID,
		IPAddress: ip,
		UserAgent: userAgent,
		Reason:    reason,
	})
}

func (s *redisAlertSink) NotifyNewDeviceLogin(ctx context.Context, userID, ip, userAgent string) error {
	return s.publish(ctx, SecurityAlert{
		Kind:      "new_device_login",
		UserID:    userID,
		IPAddress: ip,
		UserAgent: userAgent,
	})
}

// NoopAlertSink is used when Redis is not configured.
type NoopAlertSink struct{}

func (NoopAlertSink) NotifyPossibleCompromise(ctx context.Context, userID, ip, userAgent, reason string) error {
	return nil
}

func (NoopAlertSink) NotifyNewDeviceLogin(ctx context.Context, userID, ip, userAgent string) error {
	return nil
}

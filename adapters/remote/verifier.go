// Package remote delegates cookie verification to an external HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/layer-3/cookiecheck/core"
	"github.com/layer-3/cookiecheck/ports"
	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

// Config describes the remote endpoint
type Config struct {
	Endpoint  string
	APIKey    string
	APIHeader string
	BaseURL   string
	Timeout   time.Duration
	RetryMax  int
}

// Verifier implements ports.Verifier against a remote API
type Verifier struct {
	cfg       Config
	client    *retryablehttp.Client
	tokenizer ports.Tokenizer
	log       *zap.Logger
}

// NewVerifier creates a remote verifier. tokenizer may be nil; it is used
// only when no API key is configured.
func NewVerifier(cfg Config, tokenizer ports.Tokenizer, log *zap.Logger) *Verifier {
	if cfg.APIHeader == "" {
		cfg.APIHeader = "Authorization"
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = time.Second
	client.HTTPClient.Timeout = cfg.Timeout
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = leveledLogger{log.Sugar()}

	return &Verifier{
		cfg:       cfg,
		client:    client,
		tokenizer: tokenizer,
		log:       log,
	}
}

var _ ports.Verifier = (*Verifier)(nil)

type verifyRequest struct {
	LiAt          string `json:"li_at"`
	JSessionID    string `json:"jsessionid,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Verify posts the cookie pair to the remote API and maps its answer
func (v *Verifier) Verify(ctx context.Context, req core.Request) (core.Outcome, error) {
	body, err := json.Marshal(verifyRequest{
		LiAt:          req.Cookies.Session,
		JSessionID:    req.Cookies.Secondary,
		CorrelationID: req.CorrelationID,
	})
	if err != nil {
		return core.Outcome{}, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, v.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return core.Outcome{}, fmt.Errorf("creating verify request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.CorrelationID != "" {
		httpReq.Header.Set("X-Request-ID", req.CorrelationID)
	}
	if err := v.authorize(httpReq, req.CorrelationID); err != nil {
		return core.Outcome{}, err
	}

	resp, err := v.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return core.Outcome{}, ctx.Err()
		}
		return core.Outcome{}, fmt.Errorf("%w: %v", core.ErrRemote, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return core.Outcome{}, ctx.Err()
		}
		return core.Outcome{}, fmt.Errorf("%w: reading response: %v", core.ErrRemote, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return core.Outcome{}, fmt.Errorf("%w: authentication failed (status %d)", core.ErrRemote, resp.StatusCode)
	case resp.StatusCode >= 500:
		return core.Outcome{}, fmt.Errorf("%w: unavailable (status %d)", core.ErrRemote, resp.StatusCode)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return core.Outcome{}, fmt.Errorf("%w: invalid JSON response (status %d)", core.ErrRemote, resp.StatusCode)
	}

	return v.mapResponse(payload)
}

func (v *Verifier) authorize(req *retryablehttp.Request, subject string) error {
	if v.cfg.APIKey != "" {
		value := v.cfg.APIKey
		if strings.EqualFold(v.cfg.APIHeader, "Authorization") && !strings.HasPrefix(strings.ToLower(value), "bearer ") {
			value = "Bearer " + value
		}
		req.Header.Set(v.cfg.APIHeader, value)
		return nil
	}
	if v.tokenizer == nil {
		return nil
	}
	token, err := v.tokenizer.ServiceToken(subject)
	if err != nil {
		return fmt.Errorf("creating service token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (v *Verifier) mapResponse(payload map[string]any) (core.Outcome, error) {
	status := strings.ToLower(firstString(payload, "status"))
	message := firstString(payload, "message", "error", "error_message")

	switch status {
	case "valid":
		profile := core.Profile{
			Username:   firstString(payload, "username", "user", "memberId"),
			FullName:   firstString(payload, "full_name", "name"),
			ProfileURL: firstString(payload, "profile_url", "profileUrl"),
		}
		if profile.ProfileURL == "" && profile.Username != "" && v.cfg.BaseURL != "" {
			profile.ProfileURL = core.CanonicalProfileURL(v.cfg.BaseURL, profile.Username)
		}
		return core.Valid(profile), nil
	case "invalid", "expired":
		return core.Invalid(orDefault(message, "cookie rejected")), nil
	case "challenge_required", "challenge":
		return core.ChallengeRequired(orDefault(message, "additional verification required")), nil
	case "rate_limited":
		return core.Outcome{}, fmt.Errorf("%w: rate limited", core.ErrRemote)
	case "network_error", "error":
		return core.Outcome{}, fmt.Errorf("%w: %s", core.ErrRemote, orDefault(message, "remote verification failed"))
	default:
		v.log.Warn("unknown remote verification status", zap.String("status", status))
		return core.Invalid(orDefault(message, "unrecognized verification status")), nil
	}
}

func firstString(payload map[string]any, keys ...string) string {
	for _, k := range keys {
		switch val := payload[k].(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				return s
			}
		case float64:
			return fmt.Sprintf("%.0f", val)
		}
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }

// Package urls resolves the study server base URL and the endpoint paths the
// device talks to.
package urls

import (
	"context"
	"fmt"
	"strings"
)

// Channel selects the built-in default server.
type Channel string

const (
	ChannelProduction Channel = "production"
	ChannelStaging    Channel = "staging"
)

const (
	ProductionURL = "https://studies.beiwe.org"
	StagingURL    = "https://staging.beiwe.org"
)

// Endpoint paths, relative to the base URL.
const (
	PathRegister           = "/register_user"
	PathUpload             = "/upload"
	PathSetFCMToken        = "/set_fcm_token"
	PathTestNotification   = "/test_notification"
	PathSurveyNotification = "/send_survey_notification"
)

// ParseChannel accepts "production" or "staging" (case-insensitive). The
// empty string means production.
func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case "", ChannelProduction:
		return ChannelProduction, nil
	case ChannelStaging:
		return ChannelStaging, nil
	}
	return "", fmt.Errorf("unknown build channel %q", s)
}

// DefaultURL returns the fixed server for the channel.
func (c Channel) DefaultURL() string {
	if c == ChannelStaging {
		return StagingURL
	}
	return ProductionURL
}

// NormalizeServerURL forces the https scheme: an http:// prefix is replaced
// and a bare host gets https:// prepended. A trailing slash is dropped so
// paths can be appended directly.
func NormalizeServerURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(u, "https://"):
	case strings.HasPrefix(u, "http://"):
		u = "https://" + strings.TrimPrefix(u, "http://")
	default:
		u = "https://" + u
	}
	return strings.TrimRight(u, "/")
}

// ServerURLSource returns the operator-configured server URL, or "" when
// none has been stored.
type ServerURLSource interface {
	ServerURL(ctx context.Context) (string, error)
}

// Resolver builds absolute endpoint URLs. The stored URL is read on every
// call so a change made at registration is picked up immediately.
type Resolver struct {
	src          ServerURLSource
	customizable bool
	channel      Channel
}

// NewResolver returns a Resolver. When customizable is false the stored URL
// is ignored and the channel default is always used.
func NewResolver(src ServerURLSource, customizable bool, channel Channel) *Resolver {
	return &Resolver{src: src, customizable: customizable, channel: channel}
}

// Base returns the server URL requests are sent to.
func (r *Resolver) Base(ctx context.Context) (string, error) {
	if r.customizable && r.src != nil {
		u, err := r.src.ServerURL(ctx)
		if err != nil {
			return "", fmt.Errorf("read server url: %w", err)
		}
		if u != "" {
			return u, nil
		}
	}
	return r.channel.DefaultURL(), nil
}

// Resolve returns Base + path.
func (r *Resolver) Resolve(ctx context.Context, path string) (string, error) {
	base, err := r.Base(ctx)
	if err != nil {
		return "", err
	}
	return base + path, nil
}

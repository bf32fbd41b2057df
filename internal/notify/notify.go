// Package notify decides when an expiry warning is due and delivers it
// through whichever channel the deployment has configured.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"pantry/internal/expiry"
	"pantry/internal/model"
)

// Tag groups expiry warnings so a channel that supports it replaces rather
// than stacks them.
const Tag = "expiry-notification"

// Permission is the user's consent state for a channel.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// Notification is one user-visible message.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag"`
}

// Notifier is a delivery channel.
type Notifier interface {
	// Supported reports whether the channel can deliver at all.
	Supported() bool
	Permission() Permission
	// RequestPermission asks for consent and returns the resulting state.
	RequestPermission(ctx context.Context) (Permission, error)
	Show(ctx context.Context, n Notification) error
}

var notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pantry_notifications_total",
	Help: "Expiry notifications attempted, by result.",
}, []string{"result"})

// EnsurePermission asks for consent once when the channel is supported and
// the user has not decided yet. Failures are logged and otherwise ignored.
func EnsurePermission(ctx context.Context, n Notifier, log zerolog.Logger) Permission {
	if n == nil || !n.Supported() {
		return PermissionDenied
	}
	p := n.Permission()
	if p != PermissionDefault {
		return p
	}
	p, err := n.RequestPermission(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("notification permission request failed")
		return n.Permission()
	}
	log.Info().Str("permission", string(p)).Msg("notification permission resolved")
	return p
}

// ExpiringSoon builds the warning for item with days left.
func ExpiringSoon(item model.Item, days int) Notification {
	return Notification{
		Title: "Expiring Soon: " + item.Name,
		Body:  fmt.Sprintf("%s expires in %d days! Consume it soon.", item.Name, days),
		Tag:   Tag,
	}
}

// Policy fires at most one expiry warning over its lifetime. Create one per
// session (app load, scheduled scan) so each session gets its own budget.
type Policy struct {
	n        Notifier
	warnDays int
	log      zerolog.Logger
	fired    bool
}

// NewPolicy creates a Policy. warnDays < 0 selects expiry.WarningDays.
func NewPolicy(n Notifier, warnDays int, log zerolog.Logger) *Policy {
	if warnDays < 0 {
		warnDays = expiry.WarningDays
	}
	return &Policy{n: n, warnDays: warnDays, log: log.With().Str("component", "notify").Logger()}
}

// Check scans items in order and warns about the first active one expiring
// within the window. It returns the item that was notified, or nil.
func (p *Policy) Check(ctx context.Context, items []model.Item, now time.Time) *model.Item {
	if p.fired || p.n == nil || !p.n.Supported() || p.n.Permission() != PermissionGranted {
		return nil
	}

	for _, it := range items {
		if it.Consumed {
			continue
		}
		days := expiry.DaysRemaining(it.ExpiryDate, now)
		if !expiry.Warn(days, p.warnDays) {
			continue
		}

		p.fired = true
		if err := p.n.Show(ctx, ExpiringSoon(it, days)); err != nil {
			notificationsTotal.WithLabelValues("failed").Inc()
			p.log.Error().Err(err).Str("item_id", it.ID).Msg("failed to show notification")
			return nil
		}
		notificationsTotal.WithLabelValues("shown").Inc()
		p.log.Info().Str("item_id", it.ID).Int("days_remaining", days).Msg("expiry notification shown")
		item := it
		return &item
	}
	return nil
}

// Fired reports whether this policy has used its notification.
func (p *Policy) Fired() bool {
	return p.fired
}

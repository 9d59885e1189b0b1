package realtime

import (
	"log/slog"
	"time"

	"github.com/example/talent-pass/internal/application"
	"github.com/example/talent-pass/internal/metrics"
)

// BroadcastRouter resolves the target subset of the registry for each domain
// event and pushes a typed message to each connection. Delivery is push-only
// and fire-and-forget; an unwritable connection is skipped, not retried.
type BroadcastRouter struct {
	registry *ConnectionRegistry
	logger   *slog.Logger
	now      func() time.Time
}

// NewBroadcastRouter wires a router over the registry.
func NewBroadcastRouter(registry *ConnectionRegistry, logger *slog.Logger, now func() time.Time) *BroadcastRouter {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &BroadcastRouter{registry: registry, logger: logger, now: now}
}

// PublishSlot delivers a slot to every connection subscribed to its link-id.
func (r *BroadcastRouter) PublishSlot(linkID string, slot application.Slot) {
	msg := outboundMessage{
		Type:      MessageSlotUpdate,
		LinkID:    linkID,
		Data:      newSlotPayload(slot),
		Timestamp: r.now().UnixMilli(),
	}
	r.fanOut(msg, r.registry.connectionsForLink(linkID))
}

// PublishSettings delivers a settings document to the pass-code's subscribers.
func (r *BroadcastRouter) PublishSettings(passCode string, settings application.PassSettings) {
	msg := outboundMessage{
		Type:      MessageSettingsUpdate,
		PassCode:  passCode,
		Data:      newSettingsPayload(settings),
		Timestamp: r.now().UnixMilli(),
	}
	r.fanOut(msg, r.registry.connectionsForPass(passCode))
}

// PublishNotification delivers a notification to the pass-code's subscribers.
func (r *BroadcastRouter) PublishNotification(passCode string, notification application.Notification) {
	msg := outboundMessage{
		Type:      MessageNotification,
		PassCode:  passCode,
		Data:      newNotificationPayload(notification),
		Timestamp: r.now().UnixMilli(),
	}
	r.fanOut(msg, r.registry.connectionsForPass(passCode))
}

// PublishAdminAction delivers an admin action to every connection whose
// subscribed pass-code is one of the affected codes.
func (r *BroadcastRouter) PublishAdminAction(action application.AdminAction, affectedCodes []string) {
	msg := outboundMessage{
		Type:      MessageAdminAction,
		Data:      newAdminActionPayload(action),
		Timestamp: r.now().UnixMilli(),
	}
	r.fanOut(msg, r.registry.connectionsForPassCodes(affectedCodes))
}

// PublishAll delivers a message to every live connection unconditionally.
func (r *BroadcastRouter) PublishAll(msgType string, payload any) {
	msg := outboundMessage{
		Type:      msgType,
		Data:      payload,
		Timestamp: r.now().UnixMilli(),
	}
	r.fanOut(msg, r.registry.allConnections())
}

func (r *BroadcastRouter) fanOut(msg outboundMessage, conns []*Connection) {
	delivered := 0
	skipped := 0
	for _, conn := range conns {
		if conn.send(msg) {
			delivered++
		} else {
			skipped++
		}
	}
	metrics.BroadcastsDelivered.WithLabelValues(msg.Type).Add(float64(delivered))
	if skipped > 0 {
		metrics.BroadcastsSkipped.WithLabelValues(msg.Type).Add(float64(skipped))
	}
	if delivered > 0 || skipped > 0 {
		r.logger.Debug("broadcast fan-out",
			slog.String("type", msg.Type),
			slog.Int("delivered", delivered),
			slog.Int("skipped", skipped))
	}
}

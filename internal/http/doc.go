// Package http provides HTTP handlers and middleware for the talent pass API.
//
// The router exposes the following endpoints:
//   - GET /slots, POST /slots, PUT /slots/{id}, DELETE /slots/{id}: slot
//     management exchanging the `slotDTO` payload defined in slot_handler.go.
//     Listing requires exactly one of the link_id, manager_code or
//     candidate_code query parameters.
//   - GET /notifications, POST /notifications, POST /notifications/{id}/read,
//     POST /notifications/milestones: notification management exchanging the
//     `notificationDTO` payload defined in notification_handler.go. The
//     milestones endpoint derives reminder notifications from a candidate's
//     timeline.
//   - GET /settings/{passCode}, PUT /settings/{passCode}, PATCH
//     /settings/{passCode}: the per-pass-code settings document exchanging the
//     `settingsDTO` payload defined in settings_handler.go.
//   - POST /admin/broadcast, POST /admin/onboard, GET /admin/actions: bulk
//     operations and their audit trail exchanging the `adminActionDTO` payload
//     defined in admin_handler.go.
//   - GET /ws: the persistent-connection endpoint speaking the realtime
//     control protocol.
//   - GET /metrics: the Prometheus scrape endpoint.
//
// Request/response DTOs live alongside their respective handlers.
package http

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/talent-pass/internal/persistence"
)

// Storage is an in-memory implementation of every repository interface in the
// persistence package. It is the default backing store for tests and for
// deployments that run without a SQLite file.
type Storage struct {
	mu            sync.RWMutex
	seq           uint64
	slots         map[string]slotRecord
	notifications map[string]notificationRecord
	settings      map[string]persistence.PassSettings
	actions       []persistence.AdminAction
}

type slotRecord struct {
	slot persistence.Slot
	seq  uint64
}

type notificationRecord struct {
	notification persistence.Notification
	seq          uint64
}

// Open returns a new empty Storage.
func Open() *Storage {
	return &Storage{
		slots:         make(map[string]slotRecord),
		notifications: make(map[string]notificationRecord),
		settings:      make(map[string]persistence.PassSettings),
	}
}

// Close releases resources held by the storage. No-op for the in-memory implementation.
func (s *Storage) Close() error {
	return nil
}

// --- SlotRepository implementation ---

// CreateSlot stores a new slot.
func (s *Storage) CreateSlot(ctx context.Context, slot persistence.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[slot.ID]; ok {
		return persistence.ErrDuplicate
	}

	s.seq++
	s.slots[slot.ID] = slotRecord{slot: cloneSlot(slot), seq: s.seq}
	return nil
}

// UpdateSlot replaces an existing slot.
func (s *Storage) UpdateSlot(ctx context.Context, slot persistence.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.slots[slot.ID]
	if !ok {
		return persistence.ErrNotFound
	}

	record.slot = cloneSlot(slot)
	s.slots[slot.ID] = record
	return nil
}

// GetSlot retrieves a slot by ID.
func (s *Storage) GetSlot(ctx context.Context, id string) (persistence.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.slots[id]
	if !ok {
		return persistence.Slot{}, persistence.ErrNotFound
	}
	return cloneSlot(record.slot), nil
}

// ListSlotsByLink returns all slots for a link in insertion order.
func (s *Storage) ListSlotsByLink(ctx context.Context, linkID string) ([]persistence.Slot, error) {
	return s.listSlots(func(slot persistence.Slot) bool { return slot.LinkID == linkID })
}

// ListSlotsByManager returns all slots owned by a manager in insertion order.
func (s *Storage) ListSlotsByManager(ctx context.Context, managerCode string) ([]persistence.Slot, error) {
	return s.listSlots(func(slot persistence.Slot) bool { return slot.ManagerCode == managerCode })
}

// ListSlotsByCandidate returns all slots occupied by a candidate in insertion order.
func (s *Storage) ListSlotsByCandidate(ctx context.Context, candidateCode string) ([]persistence.Slot, error) {
	return s.listSlots(func(slot persistence.Slot) bool {
		return slot.CandidateCode != nil && *slot.CandidateCode == candidateCode
	})
}

// DeleteSlot removes a slot by ID.
func (s *Storage) DeleteSlot(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.slots, id)
	return nil
}

func (s *Storage) listSlots(match func(persistence.Slot) bool) ([]persistence.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]slotRecord, 0, len(s.slots))
	for _, record := range s.slots {
		if match(record.slot) {
			records = append(records, record)
		}
	}
	sortBySeq(records, func(r slotRecord) uint64 { return r.seq })

	slots := make([]persistence.Slot, 0, len(records))
	for _, record := range records {
		slots = append(slots, cloneSlot(record.slot))
	}
	return slots, nil
}

// --- NotificationRepository implementation ---

// CreateNotification stores a new notification.
func (s *Storage) CreateNotification(ctx context.Context, notification persistence.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notifications[notification.ID]; ok {
		return persistence.ErrDuplicate
	}

	s.seq++
	s.notifications[notification.ID] = notificationRecord{notification: cloneNotification(notification), seq: s.seq}
	return nil
}

// UpdateNotification replaces an existing notification.
func (s *Storage) UpdateNotification(ctx context.Context, notification persistence.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.notifications[notification.ID]
	if !ok {
		return persistence.ErrNotFound
	}

	record.notification = cloneNotification(notification)
	s.notifications[notification.ID] = record
	return nil
}

// GetNotification retrieves a notification by ID.
func (s *Storage) GetNotification(ctx context.Context, id string) (persistence.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.notifications[id]
	if !ok {
		return persistence.Notification{}, persistence.ErrNotFound
	}
	return cloneNotification(record.notification), nil
}

// ListNotificationsForCode returns all notifications for a pass-code in insertion order.
func (s *Storage) ListNotificationsForCode(ctx context.Context, passCode string) ([]persistence.Notification, error) {
	return s.listNotifications(func(n persistence.Notification) bool { return n.PassCode == passCode })
}

// ListPendingNotifications returns undelivered notifications due at the reference instant.
func (s *Storage) ListPendingNotifications(ctx context.Context, reference time.Time) ([]persistence.Notification, error) {
	return s.listNotifications(func(n persistence.Notification) bool {
		if n.Delivered {
			return false
		}
		if n.ScheduledFor == nil {
			return true
		}
		return !n.ScheduledFor.After(reference)
	})
}

func (s *Storage) listNotifications(match func(persistence.Notification) bool) ([]persistence.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]notificationRecord, 0, len(s.notifications))
	for _, record := range s.notifications {
		if match(record.notification) {
			records = append(records, record)
		}
	}
	sortBySeq(records, func(r notificationRecord) uint64 { return r.seq })

	notifications := make([]persistence.Notification, 0, len(records))
	for _, record := range records {
		notifications = append(notifications, cloneNotification(record.notification))
	}
	return notifications, nil
}

// --- SettingsRepository implementation ---

// UpsertSettings creates or replaces the settings document for a pass-code.
func (s *Storage) UpsertSettings(ctx context.Context, settings persistence.PassSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings[settings.PassCode] = settings
	return nil
}

// GetSettings retrieves the settings document for a pass-code.
func (s *Storage) GetSettings(ctx context.Context, passCode string) (persistence.PassSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, ok := s.settings[passCode]
	if !ok {
		return persistence.PassSettings{}, persistence.ErrNotFound
	}
	return settings, nil
}

// --- AdminActionRepository implementation ---

// CreateAdminAction appends an audit record.
func (s *Storage) CreateAdminAction(ctx context.Context, action persistence.AdminAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.actions = append(s.actions, cloneAdminAction(action))
	return nil
}

// ListAdminActions returns audit records newest first.
func (s *Storage) ListAdminActions(ctx context.Context) ([]persistence.AdminAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actions := make([]persistence.AdminAction, 0, len(s.actions))
	for i := len(s.actions) - 1; i >= 0; i-- {
		actions = append(actions, cloneAdminAction(s.actions[i]))
	}
	return actions, nil
}

func sortBySeq[T any](records []T, seq func(T) uint64) {
	sort.Slice(records, func(i, j int) bool {
		return seq(records[i]) < seq(records[j])
	})
}

func cloneSlot(slot persistence.Slot) persistence.Slot {
	clone := slot
	clone.CandidateCode = cloneString(slot.CandidateCode)
	clone.Notes = cloneString(slot.Notes)
	return clone
}

func cloneNotification(notification persistence.Notification) persistence.Notification {
	clone := notification
	clone.ScheduledFor = cloneTime(notification.ScheduledFor)
	return clone
}

func cloneAdminAction(action persistence.AdminAction) persistence.AdminAction {
	clone := action
	clone.TargetCodes = append([]string(nil), action.TargetCodes...)
	if action.Result != nil {
		result := make(map[string]any, len(action.Result))
		for key, value := range action.Result {
			result[key] = value
		}
		clone.Result = result
	}
	return clone
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/talent-pass/internal/persistence"
)

// SlotRepository captures the persistence interactions needed by the slot service.
type SlotRepository interface {
	CreateSlot(ctx context.Context, slot Slot) (Slot, error)
	GetSlot(ctx context.Context, id string) (Slot, error)
	UpdateSlot(ctx context.Context, slot Slot) (Slot, error)
	DeleteSlot(ctx context.Context, id string) error
	ListSlotsByLink(ctx context.Context, linkID string) ([]Slot, error)
	ListSlotsByManager(ctx context.Context, managerCode string) ([]Slot, error)
	ListSlotsByCandidate(ctx context.Context, candidateCode string) ([]Slot, error)
}

// SlotService orchestrates slot mutations and keeps subscribers of the slot's
// link in sync: every successful mutation is broadcast before the call
// returns.
//
// Booking is last-write-wins. Two near-simultaneous booking
// requests against the same open slot can both succeed, the second overwriting
// the first's occupant; the losing client reconciles to the authoritative
// state carried by the subsequent broadcast.
type SlotService struct {
	slots       SlotRepository
	broadcaster Broadcaster
	idGenerator func() string
	now         func() time.Time
}

// NewSlotService wires dependencies for slot operations.
func NewSlotService(slots SlotRepository, broadcaster Broadcaster, idGenerator func() string, now func() time.Time) *SlotService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SlotService{
		slots:       slots,
		broadcaster: broadcaster,
		idGenerator: idGenerator,
		now:         now,
	}
}

// CreateSlot validates the input, persists a new slot, and broadcasts it to
// the link's subscribers. Duplicate label/date/time combinations are allowed;
// a calendar can hold repeated entries.
func (s *SlotService) CreateSlot(ctx context.Context, input SlotInput) (Slot, error) {
	if s == nil || s.slots == nil {
		return Slot{}, fmt.Errorf("SlotService is not configured")
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.LinkID) == "" {
		vErr.add("link_id", "link id is required")
	}
	if strings.TrimSpace(input.Label) == "" {
		vErr.add("label", "label is required")
	}
	if strings.TrimSpace(input.Date) == "" {
		vErr.add("date", "date is required")
	}
	if strings.TrimSpace(input.Time) == "" {
		vErr.add("time", "time is required")
	}
	if strings.TrimSpace(input.ManagerCode) == "" {
		vErr.add("manager_code", "manager code is required")
	}

	status := input.Status
	if status == "" {
		status = SlotOpen
	}
	if !validSlotStatus(status) {
		vErr.add("status", "status must be open, held, or booked")
	} else if status == SlotBooked {
		vErr.add("status", "a slot cannot be created already booked")
	}

	if vErr.HasErrors() {
		return Slot{}, vErr
	}

	createdAt := s.now()
	slot := Slot{
		ID:          s.idGenerator(),
		LinkID:      strings.TrimSpace(input.LinkID),
		Label:       strings.TrimSpace(input.Label),
		Date:        strings.TrimSpace(input.Date),
		Time:        strings.TrimSpace(input.Time),
		Status:      status,
		ManagerCode: strings.TrimSpace(input.ManagerCode),
		Notes:       input.Notes,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	persisted, err := s.slots.CreateSlot(ctx, slot)
	if err != nil {
		return Slot{}, mapSlotRepoError(err)
	}

	s.publish(persisted)
	return persisted, nil
}

// UpdateSlot applies a partial change to an existing slot and broadcasts the
// result. Transitions to open or held clear the occupying candidate
// regardless of who previously held it; transitions to booked require an
// occupying candidate code and carry no compare-and-swap.
func (s *SlotService) UpdateSlot(ctx context.Context, id string, delta SlotDelta) (Slot, error) {
	if s == nil || s.slots == nil {
		return Slot{}, fmt.Errorf("SlotService is not configured")
	}

	existing, err := s.slots.GetSlot(ctx, id)
	if err != nil {
		return Slot{}, mapSlotRepoError(err)
	}

	updated := existing
	if delta.Label != nil {
		updated.Label = strings.TrimSpace(*delta.Label)
	}
	if delta.Date != nil {
		updated.Date = strings.TrimSpace(*delta.Date)
	}
	if delta.Time != nil {
		updated.Time = strings.TrimSpace(*delta.Time)
	}
	if delta.Notes != nil {
		updated.Notes = delta.Notes
	}
	if delta.CandidateCode != nil {
		code := strings.TrimSpace(*delta.CandidateCode)
		updated.CandidateCode = &code
	}

	if delta.Status != nil {
		status := *delta.Status
		if !validSlotStatus(status) {
			vErr := &ValidationError{}
			vErr.add("status", "status must be open, held, or booked")
			return Slot{}, vErr
		}

		switch status {
		case SlotBooked:
			if updated.CandidateCode == nil || strings.TrimSpace(*updated.CandidateCode) == "" {
				vErr := &ValidationError{}
				vErr.add("candidate_code", "booking requires a candidate code")
				return Slot{}, vErr
			}
		case SlotOpen, SlotHeld:
			updated.CandidateCode = nil
		}
		updated.Status = status
	} else if updated.Status != SlotBooked {
		// A candidate code only accompanies a booked slot.
		updated.CandidateCode = nil
	}

	updated.UpdatedAt = s.now()

	persisted, err := s.slots.UpdateSlot(ctx, updated)
	if err != nil {
		return Slot{}, mapSlotRepoError(err)
	}

	s.publish(persisted)
	return persisted, nil
}

// DeleteSlot removes a slot and broadcasts the removed entity so subscribers
// can drop it from their local state.
func (s *SlotService) DeleteSlot(ctx context.Context, id string) error {
	if s == nil || s.slots == nil {
		return fmt.Errorf("SlotService is not configured")
	}

	existing, err := s.slots.GetSlot(ctx, id)
	if err != nil {
		return mapSlotRepoError(err)
	}

	if err := s.slots.DeleteSlot(ctx, id); err != nil {
		return mapSlotRepoError(err)
	}

	s.publish(existing)
	return nil
}

// ListByLink returns all slots grouped under a link.
func (s *SlotService) ListByLink(ctx context.Context, linkID string) ([]Slot, error) {
	if s == nil || s.slots == nil {
		return nil, fmt.Errorf("SlotService is not configured")
	}
	return s.slots.ListSlotsByLink(ctx, linkID)
}

// ListByManager returns all slots owned by a manager.
func (s *SlotService) ListByManager(ctx context.Context, managerCode string) ([]Slot, error) {
	if s == nil || s.slots == nil {
		return nil, fmt.Errorf("SlotService is not configured")
	}
	return s.slots.ListSlotsByManager(ctx, managerCode)
}

// ListByCandidate returns all slots occupied by a candidate.
func (s *SlotService) ListByCandidate(ctx context.Context, candidateCode string) ([]Slot, error) {
	if s == nil || s.slots == nil {
		return nil, fmt.Errorf("SlotService is not configured")
	}
	return s.slots.ListSlotsByCandidate(ctx, candidateCode)
}

// defaultSlotSeeds is the grid created for a link that has no slots yet.
var defaultSlotSeeds = []struct {
	label string
	time  string
}{
	{label: "Morning interview", time: "10:00"},
	{label: "Midday interview", time: "12:30"},
	{label: "Afternoon interview", time: "15:00"},
}

// SeedDefaultSlots creates a default open-slot grid for a link that has none.
// It reports the slots it created; an empty result means the link already had
// slots and nothing was seeded.
func (s *SlotService) SeedDefaultSlots(ctx context.Context, linkID, managerCode string) ([]Slot, error) {
	if s == nil || s.slots == nil {
		return nil, fmt.Errorf("SlotService is not configured")
	}

	existing, err := s.slots.ListSlotsByLink(ctx, linkID)
	if err != nil {
		return nil, mapSlotRepoError(err)
	}
	if len(existing) > 0 {
		return nil, nil
	}

	date := s.now().AddDate(0, 0, 1).Format("2006-01-02")
	seeded := make([]Slot, 0, len(defaultSlotSeeds))
	for _, seed := range defaultSlotSeeds {
		slot, err := s.CreateSlot(ctx, SlotInput{
			LinkID:      linkID,
			Label:       seed.label,
			Date:        date,
			Time:        seed.time,
			Status:      SlotOpen,
			ManagerCode: managerCode,
		})
		if err != nil {
			return seeded, err
		}
		seeded = append(seeded, slot)
	}
	return seeded, nil
}

func (s *SlotService) publish(slot Slot) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.PublishSlot(slot.LinkID, slot)
}

func mapSlotRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

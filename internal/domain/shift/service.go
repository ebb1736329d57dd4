package shift

import (
	"context"
	"errors"
)

// Storage is the persistence surface the shift service depends on.
type Storage interface {
	CountForOrg(ctx context.Context, orgID string) (int, error)
	Create(ctx context.Context, orgID string, sh Shift) (Shift, error)
	List(ctx context.Context, orgID string) ([]Shift, error)
	Get(ctx context.Context, orgID, shiftID string) (Shift, error)
	Update(ctx context.Context, orgID string, sh Shift) (Shift, error)
	Delete(ctx context.Context, orgID, shiftID string) error
	AssignedUserCount(ctx context.Context, orgID, shiftID string) (int, error)
	SetUserShift(ctx context.Context, orgID, userID string, shiftID any) error
	UserShiftRef(ctx context.Context, orgID, userID string) (string, error)
}

type Service struct {
	Store Storage
}

func NewService(store Storage) *Service {
	return &Service{Store: store}
}

func (s *Service) CreateShift(ctx context.Context, orgID string, sh Shift) (Shift, error) {
	if err := sh.Validate(); err != nil {
		return Shift{}, err
	}
	count, err := s.Store.CountForOrg(ctx, orgID)
	if err != nil {
		return Shift{}, err
	}
	if count >= MaxPerOrg {
		return Shift{}, ErrLimitReached
	}
	return s.Store.Create(ctx, orgID, sh)
}

// ListShifts returns the organization's shifts with the built-in default
// shift prepended.
func (s *Service) ListShifts(ctx context.Context, orgID string) ([]Shift, error) {
	shifts, err := s.Store.List(ctx, orgID)
	if err != nil {
		return nil, err
	}
	def := Default()
	def.OrgID = orgID
	return append([]Shift{def}, shifts...), nil
}

func (s *Service) GetShift(ctx context.Context, orgID, shiftID string) (Shift, error) {
	if shiftID == DefaultShiftID {
		def := Default()
		def.OrgID = orgID
		return def, nil
	}
	return s.Store.Get(ctx, orgID, shiftID)
}

func (s *Service) UpdateShift(ctx context.Context, orgID string, sh Shift) (Shift, error) {
	if sh.ID == DefaultShiftID {
		return Shift{}, errors.New("default shift cannot be modified")
	}
	if err := sh.Validate(); err != nil {
		return Shift{}, err
	}
	return s.Store.Update(ctx, orgID, sh)
}

func (s *Service) DeleteShift(ctx context.Context, orgID, shiftID string) error {
	if shiftID == DefaultShiftID {
		return errors.New("default shift cannot be deleted")
	}
	assigned, err := s.Store.AssignedUserCount(ctx, orgID, shiftID)
	if err != nil {
		return err
	}
	if assigned > 0 {
		return ErrInUse
	}
	return s.Store.Delete(ctx, orgID, shiftID)
}

func (s *Service) AssignToUser(ctx context.Context, orgID, userID, shiftID string) error {
	if shiftID == DefaultShiftID {
		return errors.New("cannot assign the default shift explicitly; remove the assignment instead")
	}
	if _, err := s.Store.Get(ctx, orgID, shiftID); err != nil {
		return err
	}
	return s.Store.SetUserShift(ctx, orgID, userID, shiftID)
}

func (s *Service) RemoveFromUser(ctx context.Context, orgID, userID string) error {
	return s.Store.SetUserShift(ctx, orgID, userID, nil)
}

// ResolveForUser determines the shift governing a user's attendance right
// now. An unassigned or dangling reference falls back to the default shift.
// Resolution is performed fresh on every call; assignments can change
// between attendance events.
func (s *Service) ResolveForUser(ctx context.Context, orgID, userID string) (Shift, error) {
	ref, err := s.Store.UserShiftRef(ctx, orgID, userID)
	if err != nil {
		return Shift{}, err
	}
	if ref == "" {
		def := Default()
		def.OrgID = orgID
		return def, nil
	}
	sh, err := s.Store.Get(ctx, orgID, ref)
	if errors.Is(err, ErrNotFound) {
		// Assigned shift was deleted; recover to the default.
		def := Default()
		def.OrgID = orgID
		return def, nil
	}
	if err != nil {
		return Shift{}, err
	}
	return sh, nil
}

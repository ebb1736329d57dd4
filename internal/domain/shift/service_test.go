package shift

import (
	"context"
	"errors"
	"testing"
)

// fakeStorage keeps shifts and user assignments in maps.
type fakeStorage struct {
	shifts     map[string]Shift
	userShifts map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		shifts:     map[string]Shift{},
		userShifts: map[string]string{},
	}
}

func (f *fakeStorage) CountForOrg(ctx context.Context, orgID string) (int, error) {
	return len(f.shifts), nil
}

func (f *fakeStorage) Create(ctx context.Context, orgID string, sh Shift) (Shift, error) {
	sh.OrgID = orgID
	f.shifts[sh.ID] = sh
	return sh, nil
}

func (f *fakeStorage) List(ctx context.Context, orgID string) ([]Shift, error) {
	out := make([]Shift, 0, len(f.shifts))
	for _, sh := range f.shifts {
		out = append(out, sh)
	}
	return out, nil
}

func (f *fakeStorage) Get(ctx context.Context, orgID, shiftID string) (Shift, error) {
	sh, ok := f.shifts[shiftID]
	if !ok {
		return Shift{}, ErrNotFound
	}
	return sh, nil
}

func (f *fakeStorage) Update(ctx context.Context, orgID string, sh Shift) (Shift, error) {
	if _, ok := f.shifts[sh.ID]; !ok {
		return Shift{}, ErrNotFound
	}
	f.shifts[sh.ID] = sh
	return sh, nil
}

func (f *fakeStorage) Delete(ctx context.Context, orgID, shiftID string) error {
	if _, ok := f.shifts[shiftID]; !ok {
		return ErrNotFound
	}
	delete(f.shifts, shiftID)
	return nil
}

func (f *fakeStorage) AssignedUserCount(ctx context.Context, orgID, shiftID string) (int, error) {
	count := 0
	for _, ref := range f.userShifts {
		if ref == shiftID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStorage) SetUserShift(ctx context.Context, orgID, userID string, shiftID any) error {
	if shiftID == nil {
		delete(f.userShifts, userID)
		return nil
	}
	f.userShifts[userID] = shiftID.(string)
	return nil
}

func (f *fakeStorage) UserShiftRef(ctx context.Context, orgID, userID string) (string, error) {
	return f.userShifts[userID], nil
}

func nightShift() Shift {
	return Shift{
		ID:        "sh-night",
		Name:      "Night",
		StartTime: "14:00",
		EndTime:   "22:00",
		LateTime:  "14:30",
		Days:      []int{1, 1, 1, 1, 1, 0, 0},
	}
}

func TestResolveForUserUnassigned(t *testing.T) {
	svc := NewService(newFakeStorage())

	sh, err := svc.ResolveForUser(context.Background(), "org1", "u1")
	if err != nil {
		t.Fatalf("ResolveForUser: %v", err)
	}
	if sh.ID != DefaultShiftID || !sh.IsDefault {
		t.Fatalf("unassigned user resolved %+v, want the default shift", sh)
	}
	if sh.OrgID != "org1" {
		t.Fatalf("resolved shift OrgID = %q, want org1", sh.OrgID)
	}
}

func TestResolveForUserDanglingAssignment(t *testing.T) {
	store := newFakeStorage()
	store.userShifts["u1"] = "sh-deleted"
	svc := NewService(store)

	sh, err := svc.ResolveForUser(context.Background(), "org1", "u1")
	if err != nil {
		t.Fatalf("ResolveForUser: %v", err)
	}
	if sh.ID != DefaultShiftID || !sh.IsDefault {
		t.Fatalf("dangling assignment resolved %+v, want the default shift", sh)
	}
}

func TestResolveForUserAssigned(t *testing.T) {
	store := newFakeStorage()
	store.shifts["sh-night"] = nightShift()
	store.userShifts["u1"] = "sh-night"
	svc := NewService(store)

	sh, err := svc.ResolveForUser(context.Background(), "org1", "u1")
	if err != nil {
		t.Fatalf("ResolveForUser: %v", err)
	}
	if sh.ID != "sh-night" || sh.IsDefault {
		t.Fatalf("assigned user resolved %+v, want the night shift", sh)
	}
}

func TestAssignDefaultShiftRejected(t *testing.T) {
	svc := NewService(newFakeStorage())

	if err := svc.AssignToUser(context.Background(), "org1", "u1", DefaultShiftID); err == nil {
		t.Fatal("assigning the default shift explicitly must fail")
	}
}

func TestRemoveFromUserRestoresDefault(t *testing.T) {
	store := newFakeStorage()
	store.shifts["sh-night"] = nightShift()
	store.userShifts["u1"] = "sh-night"
	svc := NewService(store)

	if err := svc.RemoveFromUser(context.Background(), "org1", "u1"); err != nil {
		t.Fatalf("RemoveFromUser: %v", err)
	}
	sh, err := svc.ResolveForUser(context.Background(), "org1", "u1")
	if err != nil {
		t.Fatalf("ResolveForUser: %v", err)
	}
	if !sh.IsDefault {
		t.Fatalf("after removal user resolved %+v, want the default shift", sh)
	}
}

func TestDeleteShiftInUse(t *testing.T) {
	store := newFakeStorage()
	store.shifts["sh-night"] = nightShift()
	store.userShifts["u1"] = "sh-night"
	svc := NewService(store)

	if err := svc.DeleteShift(context.Background(), "org1", "sh-night"); !errors.Is(err, ErrInUse) {
		t.Fatalf("DeleteShift with assigned users = %v, want ErrInUse", err)
	}
}

func TestCreateShiftLimit(t *testing.T) {
	store := newFakeStorage()
	for i := 0; i < MaxPerOrg; i++ {
		sh := nightShift()
		sh.ID = sh.ID + string(rune('a'+i))
		store.shifts[sh.ID] = sh
	}
	svc := NewService(store)

	sh := nightShift()
	sh.ID = ""
	if _, err := svc.CreateShift(context.Background(), "org1", sh); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("CreateShift over the cap = %v, want ErrLimitReached", err)
	}
}

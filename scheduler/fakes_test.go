package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/meddesk/clinic-booking/models"
)

// fakeRepo is an in-memory Repository. InTx just runs fn against the same
// store; the service's locking behavior is exercised separately.
type fakeRepo struct {
	mu       sync.Mutex
	users    map[uint]*models.User
	profiles map[uint]*models.DoctorProfile
	slots    map[uint]*models.AvailabilitySlot
	appts    map[uint]*models.Appointment
	nextID   uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    map[uint]*models.User{},
		profiles: map[uint]*models.DoctorProfile{},
		slots:    map[uint]*models.AvailabilitySlot{},
		appts:    map[uint]*models.Appointment{},
		nextID:   1,
	}
}

func (r *fakeRepo) addUser(id uint, roleName string) *models.User {
	u := &models.User{Name: "user", Role: models.Role{Name: roleName}}
	u.ID = id
	r.users[id] = u
	return u
}

func (r *fakeRepo) addDoctor(id uint, profile models.DoctorProfile) {
	r.addUser(id, models.RoleDoctor)
	profile.DoctorID = id
	r.profiles[id] = &profile
}

func (r *fakeRepo) allocID() uint {
	id := r.nextID
	r.nextID++
	return id
}

func (r *fakeRepo) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) GetDoctorProfile(ctx context.Context, doctorID uint) (*models.DoctorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[doctorID]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) GetSlotByID(ctx context.Context, id uint) (*models.AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeRepo) ListActiveSlotsForDate(ctx context.Context, doctorID uint, date time.Time, excludeSlotID uint) ([]models.AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AvailabilitySlot
	for _, s := range r.slots {
		if s.DoctorID == doctorID && s.IsActive && SameDate(s.Date, date) && s.ID != excludeSlotID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListActiveSlots(ctx context.Context, doctorID uint, from, to time.Time) ([]models.AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AvailabilitySlot
	for _, s := range r.slots {
		if s.DoctorID == doctorID && s.IsActive && !s.Date.Before(DateOnly(from)) && !s.Date.After(DateOnly(to)) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindActiveSlotCovering(ctx context.Context, doctorID uint, date time.Time, start, end models.TimeOfDay) (*models.AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slots {
		if s.DoctorID == doctorID && s.IsActive && SameDate(s.Date, date) &&
			s.StartTime <= start && end <= s.EndTime {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrSlotNotFound
}

func (r *fakeRepo) CreateSlot(ctx context.Context, slot *models.AvailabilitySlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot.ID = r.allocID()
	cp := *slot
	r.slots[slot.ID] = &cp
	return nil
}

func (r *fakeRepo) SaveSlot(ctx context.Context, slot *models.AvailabilitySlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *slot
	r.slots[slot.ID] = &cp
	return nil
}

func (r *fakeRepo) GetAppointmentByID(ctx context.Context, id uint) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) CountOverlappingAppointments(ctx context.Context, doctorID uint, date time.Time, start, end models.TimeOfDay, excludeAppointmentID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.appts {
		if a.DoctorID == doctorID && a.Status != models.StatusCancelled &&
			SameDate(a.Date, date) && a.ID != excludeAppointmentID &&
			Overlaps(start, end, a.StartTime, a.EndTime) {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt.ID = r.allocID()
	cp := *appt
	r.appts[appt.ID] = &cp
	return nil
}

func (r *fakeRepo) SaveAppointment(ctx context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *appt
	r.appts[appt.ID] = &cp
	return nil
}

func (r *fakeRepo) InTx(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

// noopLocker runs the critical section without any locking.
type noopLocker struct{}

func (noopLocker) WithScheduleLock(ctx context.Context, doctorID uint, date time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// recordingNotifier captures dispatched events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) record(event string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	copy(out, n.events)
	return out
}

func (n *recordingNotifier) NotifyAppointmentCreated(*models.Appointment) error {
	return n.record("created")
}

func (n *recordingNotifier) NotifyAppointmentConfirmed(*models.Appointment) error {
	return n.record("confirmed")
}

func (n *recordingNotifier) NotifyAppointmentCancelled(*models.Appointment) error {
	return n.record("cancelled")
}

func (n *recordingNotifier) SendAppointmentReminder(*models.Appointment) error {
	return n.record("reminder")
}

package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meddesk/clinic-booking/models"
	redisclient "github.com/meddesk/clinic-booking/redis"
)

const (
	testDoctorID  = 1
	testPatientID = 2
)

var testToday = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

func defaultProfile() models.DoctorProfile {
	return models.DoctorProfile{
		Fee:         decimal.NewFromInt(50),
		OpeningTime: tod("09:00"),
		ClosingTime: tod("17:00"),
		BreakStart:  tod("13:00"),
		BreakEnd:    tod("14:00"),
	}
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *recordingNotifier) {
	t.Helper()
	repo := newFakeRepo()
	repo.addDoctor(testDoctorID, defaultProfile())
	repo.addUser(testPatientID, models.RolePatient)

	notifier := &recordingNotifier{}
	svc := NewService(repo, noopLocker{}, notifier, FixedClock{Time: testToday}, DefaultConfig())
	return svc, repo, notifier
}

func bookingReq(start string) CreateRequest {
	return CreateRequest{
		DoctorID:  testDoctorID,
		PatientID: testPatientID,
		Date:      testToday,
		StartTime: tod(start),
		Reason:    "checkup",
	}
}

func TestCreateBooksAppointment(t *testing.T) {
	svc, _, notifier := newTestService(t)

	appt, err := svc.Create(context.Background(), bookingReq("10:00"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusScheduled, appt.Status)
	assert.Equal(t, "10:00", appt.StartTime.String())
	assert.Equal(t, "10:30", appt.EndTime.String())
	assert.True(t, appt.Fee.Equal(decimal.NewFromInt(50)), "fee defaults to the doctor's rate")
	assert.Equal(t, uint(testPatientID), appt.PatientID)

	assert.Eventually(t, func() bool {
		events := notifier.Events()
		return len(events) == 1 && events[0] == "created"
	}, time.Second, 10*time.Millisecond)
}

func TestCreateRoundsStartToSlotGrid(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Create(context.Background(), bookingReq("09:15"))
	require.NoError(t, err)
	assert.Equal(t, "09:00", appt.StartTime.String())
	assert.Equal(t, "09:30", appt.EndTime.String())

	appt, err = svc.Create(context.Background(), bookingReq("10:16"))
	require.NoError(t, err)
	assert.Equal(t, "10:30", appt.StartTime.String())
}

func TestCreateKeepsExplicitFee(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := bookingReq("11:00")
	req.Fee = decimal.NewFromInt(75)
	appt, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, appt.Fee.Equal(decimal.NewFromInt(75)))
}

func TestCreateRejectsDoubleBooking(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), bookingReq("09:00"))
	require.NoError(t, err)

	// 09:10 rounds onto the taken 09:00 window.
	_, err = svc.Create(context.Background(), bookingReq("09:10"))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.NotNil(t, conflict.SuggestedTime)
	assert.Equal(t, "09:30", conflict.SuggestedTime.String())
	assert.False(t, conflict.SuggestNextDay)
}

func TestCreateSuggestsNextDayWhenFull(t *testing.T) {
	repo := newFakeRepo()
	repo.addDoctor(testDoctorID, models.DoctorProfile{
		Fee:         decimal.NewFromInt(50),
		OpeningTime: tod("09:00"),
		ClosingTime: tod("10:00"),
	})
	repo.addUser(testPatientID, models.RolePatient)
	svc := NewService(repo, noopLocker{}, &recordingNotifier{}, FixedClock{Time: testToday}, DefaultConfig())

	_, err := svc.Create(context.Background(), bookingReq("09:00"))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), bookingReq("09:30"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), bookingReq("09:30"))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Nil(t, conflict.SuggestedTime)
	assert.True(t, conflict.SuggestNextDay)
}

func TestCreateDateBounds(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// Yesterday is rejected.
	req := bookingReq("10:00")
	req.Date = testToday.AddDate(0, 0, -1)
	_, err := svc.Create(ctx, req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "in the past")

	// Exactly three months out is the last accepted date.
	req = bookingReq("10:00")
	req.Date = testToday.AddDate(0, 3, 0)
	_, err = svc.Create(ctx, req)
	require.NoError(t, err)

	req = bookingReq("10:30")
	req.Date = testToday.AddDate(0, 3, 1)
	_, err = svc.Create(ctx, req)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "3 months")
}

func TestCreateRejectsBreakWindow(t *testing.T) {
	svc, _, _ := newTestService(t)

	// 13:20 rounds to 13:30, inside the 13:00-14:00 break.
	_, err := svc.Create(context.Background(), bookingReq("13:20"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "clinic break")
	assert.Contains(t, verr.Reason, "09:00-17:00")
}

func TestCreateRejectsOutsideClinicHours(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), bookingReq("18:00"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "outside clinic hours")

	// 16:45 rounds to 16:30 and still fits; 17:00 would not.
	_, err = svc.Create(context.Background(), bookingReq("16:45"))
	assert.NoError(t, err)
}

func TestCreateUnknownParticipants(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	req := bookingReq("10:00")
	req.PatientID = 99
	_, err := svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrPatientNotFound)

	req = bookingReq("10:00")
	req.DoctorID = 99
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestCreateReservesCoveringSlot(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	slot, err := svc.AddSlot(ctx, testDoctorID, testToday, tod("09:00"), tod("12:00"))
	require.NoError(t, err)

	appt, err := svc.Create(ctx, bookingReq("09:00"))
	require.NoError(t, err)
	require.NotNil(t, appt.SlotID)
	assert.Equal(t, slot.ID, *appt.SlotID)

	stored, err := repo.GetSlotByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsBooked)
}

func TestCancelFreesReservedSlot(t *testing.T) {
	svc, repo, notifier := newTestService(t)
	ctx := context.Background()

	slot, err := svc.AddSlot(ctx, testDoctorID, testToday, tod("09:00"), tod("12:00"))
	require.NoError(t, err)
	appt, err := svc.Create(ctx, bookingReq("09:00"))
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.False(t, cancelled.IsConfirmed)

	stored, err := repo.GetSlotByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsBooked, "cancelling releases the reserved slot")

	// The freed window is immediately bookable again.
	_, err = svc.Create(ctx, bookingReq("09:00"))
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		events := notifier.Events()
		return len(events) == 3
	}, time.Second, 10*time.Millisecond)
}

func TestLifecycleTransitions(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, bookingReq("10:00"))
	require.NoError(t, err)

	confirmed, err := svc.Confirm(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)
	assert.True(t, confirmed.IsConfirmed)

	// Confirming twice is rejected.
	_, err = svc.Confirm(ctx, appt.ID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "already confirmed")

	completed, err := svc.Complete(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	// Completed is terminal.
	_, err = svc.Cancel(ctx, appt.ID)
	assert.ErrorAs(t, err, &verr)
	_, err = svc.Confirm(ctx, appt.ID)
	assert.ErrorAs(t, err, &verr)
}

func TestCancelledAppointmentCannotBeConfirmed(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, bookingReq("10:00"))
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, appt.ID)
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, appt.ID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.Cancel(ctx, appt.ID)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "already cancelled")
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, bookingReq("10:00"))
	require.NoError(t, err)

	_, err = svc.Complete(ctx, appt.ID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRescheduleSameDay(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, bookingReq("10:00"))
	require.NoError(t, err)

	moved, err := svc.Reschedule(ctx, testDoctorID, appt.ID, tod("11:00"))
	require.NoError(t, err)
	assert.Equal(t, "11:00", moved.StartTime.String())
	assert.Equal(t, "11:30", moved.EndTime.String())

	// Moving onto its own window is a no-op conflict-wise.
	moved, err = svc.Reschedule(ctx, testDoctorID, appt.ID, tod("11:00"))
	require.NoError(t, err)
	assert.Equal(t, "11:00", moved.StartTime.String())
}

func TestRescheduleRejections(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, bookingReq("10:00"))
	require.NoError(t, err)

	var verr *ValidationError

	// Only the owning doctor may move it.
	_, err = svc.Reschedule(ctx, 42, appt.ID, tod("11:00"))
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "your own")

	// Only same-day appointments can be time-shifted.
	req := bookingReq("10:00")
	req.Date = testToday.AddDate(0, 0, 1)
	tomorrow, err := svc.Create(ctx, req)
	require.NoError(t, err)
	_, err = svc.Reschedule(ctx, testDoctorID, tomorrow.ID, tod("11:00"))
	require.ErrorAs(t, err, &verr)

	// Conflicts with another booking are rejected with a suggestion.
	other, err := svc.Create(ctx, bookingReq("11:00"))
	require.NoError(t, err)
	_, err = svc.Reschedule(ctx, testDoctorID, other.ID, tod("10:00"))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// Terminal appointments stay put.
	_, err = svc.Cancel(ctx, appt.ID)
	require.NoError(t, err)
	_, err = svc.Reschedule(ctx, testDoctorID, appt.ID, tod("12:00"))
	require.ErrorAs(t, err, &verr)
}

func TestUpdateDelegatesStatusAndNotes(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, bookingReq("10:00"))
	require.NoError(t, err)

	notes := "bring previous reports"
	status := models.StatusConfirmed
	updated, err := svc.Update(ctx, appt.ID, UpdateRequest{Notes: &notes, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)

	stored, err := svc.repo.GetAppointmentByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, notes, stored.Notes)

	// A start-time change via Update honors the conflict check.
	_, err = svc.Create(ctx, bookingReq("11:00"))
	require.NoError(t, err)
	newStart := tod("11:00")
	_, err = svc.Update(ctx, appt.ID, UpdateRequest{StartTime: &newStart})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestIsTimeSlotAvailable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	free, err := svc.IsTimeSlotAvailable(ctx, testDoctorID, testToday, tod("10:00"), tod("10:30"), 0)
	require.NoError(t, err)
	assert.True(t, free)

	appt, err := svc.Create(ctx, bookingReq("10:00"))
	require.NoError(t, err)

	free, err = svc.IsTimeSlotAvailable(ctx, testDoctorID, testToday, tod("10:00"), tod("10:30"), 0)
	require.NoError(t, err)
	assert.False(t, free)

	// Excluding the appointment itself frees its own window.
	free, err = svc.IsTimeSlotAvailable(ctx, testDoctorID, testToday, tod("10:00"), tod("10:30"), appt.ID)
	require.NoError(t, err)
	assert.True(t, free)
}

func TestGetAvailableSlots(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// 09:00-17:00 on a 30-minute grid is 16 starts; the 13:00-14:00 break
	// removes two of them.
	open, err := svc.GetAvailableSlots(ctx, testDoctorID, testToday)
	require.NoError(t, err)
	require.Len(t, open, 14)
	assert.Equal(t, "09:00", open[0].String())
	assert.Equal(t, "16:30", open[len(open)-1].String())
	for _, start := range open {
		assert.False(t, IsBreakTime(start, tod("13:00"), tod("14:00")))
	}

	_, err = svc.Create(ctx, bookingReq("09:00"))
	require.NoError(t, err)

	open, err = svc.GetAvailableSlots(ctx, testDoctorID, testToday)
	require.NoError(t, err)
	require.Len(t, open, 13)
	assert.Equal(t, "09:30", open[0].String())
}

func TestFindNextAvailableSlot(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	next, err := svc.FindNextAvailableSlot(ctx, testDoctorID, testToday)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "09:00", next.String())

	_, err = svc.Create(ctx, bookingReq("09:00"))
	require.NoError(t, err)

	next, err = svc.FindNextAvailableSlot(ctx, testDoctorID, testToday)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "09:30", next.String())
}

func TestFindNextAvailableSlotFullDay(t *testing.T) {
	repo := newFakeRepo()
	repo.addDoctor(testDoctorID, models.DoctorProfile{
		Fee:         decimal.NewFromInt(50),
		OpeningTime: tod("09:00"),
		ClosingTime: tod("10:00"),
	})
	repo.addUser(testPatientID, models.RolePatient)
	svc := NewService(repo, noopLocker{}, &recordingNotifier{}, FixedClock{Time: testToday}, DefaultConfig())
	ctx := context.Background()

	_, err := svc.Create(ctx, bookingReq("09:00"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, bookingReq("09:30"))
	require.NoError(t, err)

	next, err := svc.FindNextAvailableSlot(ctx, testDoctorID, testToday)
	require.NoError(t, err)
	assert.Nil(t, next)
}

type busyLocker struct{}

func (busyLocker) WithScheduleLock(ctx context.Context, doctorID uint, date time.Time, fn func(ctx context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

func TestCreateWhenScheduleLocked(t *testing.T) {
	repo := newFakeRepo()
	repo.addDoctor(testDoctorID, defaultProfile())
	repo.addUser(testPatientID, models.RolePatient)
	svc := NewService(repo, busyLocker{}, &recordingNotifier{}, FixedClock{Time: testToday}, DefaultConfig())

	_, err := svc.Create(context.Background(), bookingReq("10:00"))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Reason, "busy")
}

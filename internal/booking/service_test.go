package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kapsalon/booking-service/internal/config"
	"github.com/kapsalon/booking-service/internal/schedule"
)

// In-memory test doubles

type fakeRepo struct {
	days  map[string]*schedule.WorkingDay
	appts map[uuid.UUID]*Appointment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		days:  make(map[string]*schedule.WorkingDay),
		appts: make(map[uuid.UUID]*Appointment),
	}
}

func (f *fakeRepo) GetWorkingDay(ctx context.Context, date string) (*schedule.WorkingDay, error) {
	day, ok := f.days[date]
	if !ok {
		return nil, ErrWorkingDayNotFound
	}
	copied := *day
	return &copied, nil
}

func (f *fakeRepo) ListWorkingDays(ctx context.Context) ([]schedule.WorkingDay, error) {
	var out []schedule.WorkingDay
	for _, d := range f.days {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeRepo) SaveWorkingDay(ctx context.Context, day *schedule.WorkingDay) error {
	copied := *day
	f.days[day.Date] = &copied
	return nil
}

func (f *fakeRepo) DeleteWorkingDay(ctx context.Context, date string) error {
	if _, ok := f.days[date]; !ok {
		return ErrWorkingDayNotFound
	}
	delete(f.days, date)
	return nil
}

func (f *fakeRepo) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := f.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeRepo) ListAppointments(ctx context.Context) ([]Appointment, error) {
	var out []Appointment
	for _, a := range f.appts {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeRepo) ListAppointmentsByDate(ctx context.Context, date string) ([]Appointment, error) {
	var out []Appointment
	for _, a := range f.appts {
		if a.Date == date {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAppointmentsInRange(ctx context.Context, startDate, endDate string) ([]Appointment, error) {
	var out []Appointment
	for _, a := range f.appts {
		if a.Date >= startDate && a.Date <= endDate {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountAppointmentsInRange(ctx context.Context, startDate, endDate string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, a := range f.appts {
		if a.Date >= startDate && a.Date <= endDate {
			counts[a.Service]++
		}
	}
	return counts, nil
}

func (f *fakeRepo) CreateAppointment(ctx context.Context, req BookingRequest) (*Appointment, error) {
	for _, a := range f.appts {
		if a.Date == req.Date && a.Time == req.Time {
			return nil, ErrSlotTaken
		}
	}
	a := &Appointment{
		ID:      uuid.New(),
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Date:    req.Date,
		Time:    req.Time,
		Service: req.Service,
	}
	f.appts[a.ID] = a
	copied := *a
	return &copied, nil
}

func (f *fakeRepo) UpdateAppointment(ctx context.Context, id uuid.UUID, upd AppointmentUpdate) (*Appointment, error) {
	a, ok := f.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a.Name, a.Email, a.Phone, a.Service = upd.Name, upd.Email, upd.Phone, upd.Service
	copied := *a
	return &copied, nil
}

func (f *fakeRepo) MoveAppointment(ctx context.Context, id uuid.UUID, date string, t schedule.TimeOfDay) (*Appointment, error) {
	a, ok := f.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	for _, other := range f.appts {
		if other.ID != id && other.Date == date && other.Time == t {
			return nil, ErrSlotTaken
		}
	}
	a.Date, a.Time = date, t
	copied := *a
	return &copied, nil
}

func (f *fakeRepo) SetCalendarEventID(ctx context.Context, id uuid.UUID, eventID string) error {
	a, ok := f.appts[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	a.CalendarEventID = &eventID
	return nil
}

func (f *fakeRepo) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.appts[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(f.appts, id)
	return nil
}

type passthroughLocker struct{}

func (passthroughLocker) WithSlotLock(ctx context.Context, date string, t string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingCalendar struct {
	created int
	updated int
	deleted int
}

func (c *recordingCalendar) EventCreated(ctx context.Context, appt *Appointment) (string, error) {
	c.created++
	return "evt-" + appt.ID.String(), nil
}

func (c *recordingCalendar) EventUpdated(ctx context.Context, appt *Appointment) error {
	c.updated++
	return nil
}

func (c *recordingCalendar) EventDeleted(ctx context.Context, eventID string) error {
	c.deleted++
	return nil
}

type failingCalendar struct{}

func (failingCalendar) EventCreated(ctx context.Context, appt *Appointment) (string, error) {
	return "", errors.New("calendar unreachable")
}
func (failingCalendar) EventUpdated(ctx context.Context, appt *Appointment) error {
	return errors.New("calendar unreachable")
}
func (failingCalendar) EventDeleted(ctx context.Context, eventID string) error {
	return errors.New("calendar unreachable")
}

type recordingNotifier struct {
	confirmations int
	reschedules   int
	cancellations int
	reminders     int
}

func (n *recordingNotifier) SendConfirmation(ctx context.Context, appt *Appointment) error {
	n.confirmations++
	return nil
}

func (n *recordingNotifier) SendReschedule(ctx context.Context, appt *Appointment, oldDate string, oldTime schedule.TimeOfDay) error {
	n.reschedules++
	return nil
}

func (n *recordingNotifier) SendCancellation(ctx context.Context, appt *Appointment) error {
	n.cancellations++
	return nil
}

func (n *recordingNotifier) SendReminder(ctx context.Context, appt *Appointment) error {
	n.reminders++
	return nil
}

type memReminderLog struct {
	sent map[uuid.UUID]bool
}

func (m *memReminderLog) MarkSent(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.sent == nil {
		m.sent = make(map[uuid.UUID]bool)
	}
	if m.sent[id] {
		return false, nil
	}
	m.sent[id] = true
	return true, nil
}

func testConfig() config.Config {
	return config.Config{
		SlotInterval: 40,
		ServicePrices: map[string]int{
			"Knippen":          30,
			"Knippen en baard": 45,
		},
	}
}

type fixture struct {
	repo     *fakeRepo
	calendar *recordingCalendar
	notifier *recordingNotifier
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeRepo()
	cal := &recordingCalendar{}
	not := &recordingNotifier{}
	svc := NewService(repo, passthroughLocker{}, cal, not, &memReminderLog{}, testConfig())
	return &fixture{repo: repo, calendar: cal, notifier: not, svc: svc}
}

func (fx *fixture) addDay(t *testing.T, date, start, end string) {
	t.Helper()
	if _, err := fx.svc.AddWorkingHours(context.Background(), date, mustTime(t, start), mustTime(t, end)); err != nil {
		t.Fatalf("add working hours: %v", err)
	}
}

func mustTime(t *testing.T, s string) schedule.TimeOfDay {
	t.Helper()
	tod, err := schedule.ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return tod
}

func bookingReq(t *testing.T, date, tod string) BookingRequest {
	t.Helper()
	return BookingRequest{
		Name:    "Jan Jansen",
		Email:   "jan@example.com",
		Phone:   "0612345678",
		Date:    date,
		Time:    mustTime(t, tod),
		Service: "Knippen",
	}
}

// Tests

func TestBook_Success(t *testing.T) {
	fx := newFixture(t)
	fx.addDay(t, "2024-06-10", "09:00", "17:00")

	appt, err := fx.svc.Book(context.Background(), bookingReq(t, "2024-06-10", "09:00"))
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if appt.CalendarEventID == nil {
		t.Error("calendar event id not stored after sync")
	}
	if fx.calendar.created != 1 {
		t.Errorf("calendar created = %d, want 1", fx.calendar.created)
	}
	if fx.notifier.confirmations != 1 {
		t.Errorf("confirmations = %d, want 1", fx.notifier.confirmations)
	}
}

func TestBook_SlotConflict(t *testing.T) {
	fx := newFixture(t)
	fx.addDay(t, "2024-06-10", "09:00", "17:00")

	if _, err := fx.svc.Book(context.Background(), bookingReq(t, "2024-06-10", "09:00")); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := fx.svc.Book(context.Background(), bookingReq(t, "2024-06-10", "09:00"))
	if !errors.Is(err, ErrAlreadyBooked) {
		t.Fatalf("second booking error = %v, want ErrAlreadyBooked", err)
	}

	// A booking that slips past validation still hits the uniqueness
	// constraint at the repository.
	_, err = fx.repo.CreateAppointment(context.Background(), bookingReq(t, "2024-06-10", "09:00"))
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("repo error = %v, want ErrSlotTaken", err)
	}
}

func TestBook_Rejections(t *testing.T) {
	fx := newFixture(t)
	fx.addDay(t, "2024-06-10", "09:00", "17:00")
	if _, err := fx.svc.AddBreak(context.Background(), "2024-06-10", schedule.Break{
		Start: mustTime(t, "12:00"),
		End:   mustTime(t, "13:00"),
	}); err != nil {
		t.Fatalf("add break: %v", err)
	}

	cases := []struct {
		name string
		date string
		time string
		want error
	}{
		{name: "closed date", date: "2024-06-11", time: "09:00", want: ErrDateClosed},
		{name: "break time", date: "2024-06-10", time: "12:20", want: ErrTimeOnBreak},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.Book(context.Background(), bookingReq(t, tc.date, tc.time))
			if !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestBook_HolidayRejected(t *testing.T) {
	fx := newFixture(t)
	fx.addDay(t, "2024-06-10", "09:00", "17:00")
	day := fx.repo.days["2024-06-10"]
	day.Holiday = true

	_, err := fx.svc.Book(context.Background(), bookingReq(t, "2024-06-10", "09:00"))
	if !errors.Is(err, ErrDateClosed) {
		t.Fatalf("error = %v, want ErrDateClosed", err)
	}
}

func TestBook_BestEffortCollaborators(t *testing.T) {
	repo := newFakeRepo()
	not := &recordingNotifier{}
	svc := NewService(repo, passthroughLocker{}, failingCalendar{}, not, &memReminderLog{}, testConfig())

	if _, err := svc.AddWorkingHours(context.Background(), "2024-06-10", mustTime(t, "09:00"), mustTime(t, "17:00")); err != nil {
		t.Fatalf("add working hours: %v", err)
	}

	appt, err := svc.Book(context.Background(), bookingReq(t, "2024-06-10", "09:00"))
	if err != nil {
		t.Fatalf("booking must survive calendar failure, got %v", err)
	}
	if appt.CalendarEventID != nil {
		t.Error("no event id should be stored when sync fails")
	}
	if not.confirmations != 1 {
		t.Errorf("confirmations = %d, want 1", not.confirmations)
	}
}

func TestCheckAvailability_AfterBooking(t *testing.T) {
	fx := newFixture(t)
	fx.addDay(t, "2024-06-10", "09:00", "17:00")

	if _, err := fx.svc.Book(context.Background(), bookingReq(t, "2024-06-10", "09:00")); err != nil {
		t.Fatalf("book: %v", err)
	}

	res, err := fx.svc.CheckAvailability(context.Background(), "2024-06-10", mustTime(t, "09:00"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Available || res.Reason != schedule.ReasonAlreadyBooked {
		t.Fatalf("result = %+v, want unavailable/already_booked", res)
	}
}

func TestReschedule(t *testing.T) {
	fx := newFixture(t)
	fx.addDay(t, "2024-06-10", "09:00", "17:00")

	first, err := fx.svc.Book(context.Background(), bookingReq(t, "2024-06-10", "09:00"))
	if err != nil {
		t.Fatalf("book first: %v", err)
	}
	if _, err := fx.svc.Book(context.Background(), bookingReq(t, "2024-06-10", "09:40")); err != nil {
		t.Fatalf("book second: %v", err)
	}

	// Moving onto another appointment's slot is rejected.
	if _, err := fx.svc.Reschedule(context.Background(), first.ID, "2024-06-10", mustTime(t, "09:40")); !errors.Is(err, ErrAlreadyBooked) {
		t.Fatalf("error = %v, want ErrAlreadyBooked", err)
	}

	// Moving to the appointment's own slot trivially passes: no other
	// appointment holds it.
	if _, err := fx.svc.Reschedule(context.Background(), first.ID, "2024-06-10", mustTime(t, "09:00")); err != nil {
		t.Fatalf("reschedule to own slot: %v", err)
	}

	// Moving to an open slot works and frees the old one.
	moved, err := fx.svc.Reschedule(context.Background(), first.ID, "2024-06-10", mustTime(t, "10:20"))
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if moved.Time != mustTime(t, "10:20") {
		t.Errorf("moved time = %s, want 10:20", moved.Time)
	}

	res, err := fx.svc.CheckAvailability(context.Background(), "2024-06-10", mustTime(t, "09:00"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Available {
		t.Errorf("old slot should be free after reschedule, got %+v", res)
	}

	if fx.notifier.reschedules != 2 {
		t.Errorf("reschedule emails = %d, want 2", fx.notifier.reschedules)
	}
}

func TestCancel_FreesSlot(t *testing.T) {
	fx := newFixture(t)
	fx.addDay(t, "2024-06-10", "09:00", "17:00")

	appt, err := fx.svc.Book(context.Background(), bookingReq(t, "2024-06-10", "09:00"))
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := fx.svc.Cancel(context.Background(), appt.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	res, err := fx.svc.CheckAvailability(context.Background(), "2024-06-10", mustTime(t, "09:00"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Available {
		t.Errorf("slot should be free after cancellation, got %+v", res)
	}
	if fx.calendar.deleted != 1 {
		t.Errorf("calendar deletes = %d, want 1", fx.calendar.deleted)
	}
	if fx.notifier.cancellations != 1 {
		t.Errorf("cancellation emails = %d, want 1", fx.notifier.cancellations)
	}

	if err := fx.svc.Cancel(context.Background(), appt.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("second cancel error = %v, want ErrAppointmentNotFound", err)
	}
}

func TestGetAvailableTimes(t *testing.T) {
	fx := newFixture(t)

	// No working day at all.
	times, err := fx.svc.GetAvailableTimes(context.Background(), "2024-06-10")
	if err != nil {
		t.Fatalf("get available times: %v", err)
	}
	if times.Available || len(times.Times) != 0 {
		t.Fatalf("closed date: got %+v, want unavailable and no times", times)
	}

	fx.addDay(t, "2024-06-10", "09:00", "10:20")
	if _, err := fx.svc.Book(context.Background(), bookingReq(t, "2024-06-10", "09:40")); err != nil {
		t.Fatalf("book: %v", err)
	}

	times, err = fx.svc.GetAvailableTimes(context.Background(), "2024-06-10")
	if err != nil {
		t.Fatalf("get available times: %v", err)
	}
	if !times.Available {
		t.Fatal("expected open slots")
	}
	got := make([]string, len(times.Times))
	for i, s := range times.Times {
		got[i] = s.String()
	}
	if len(got) != 2 || got[0] != "09:00" || got[1] != "10:20" {
		t.Fatalf("times = %v, want [09:00 10:20]", got)
	}
}

func TestAddWorkingHours_MergesSecondWindow(t *testing.T) {
	fx := newFixture(t)
	fx.addDay(t, "2024-06-10", "09:00", "10:20")
	fx.addDay(t, "2024-06-10", "13:00", "14:20")

	day, err := fx.repo.GetWorkingDay(context.Background(), "2024-06-10")
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if day.Start != mustTime(t, "09:00") || day.End != mustTime(t, "14:20") {
		t.Errorf("bounds = %s-%s, want 09:00-14:20", day.Start, day.End)
	}
	if len(day.Slots) != 6 {
		t.Errorf("slot count = %d, want 6", len(day.Slots))
	}
}

func TestRemoveTimeSlot_CascadesToDayDeletion(t *testing.T) {
	fx := newFixture(t)
	fx.addDay(t, "2024-06-10", "09:00", "09:00")

	if err := fx.svc.RemoveTimeSlot(context.Background(), "2024-06-10", mustTime(t, "09:00")); err != nil {
		t.Fatalf("remove slot: %v", err)
	}

	if _, err := fx.repo.GetWorkingDay(context.Background(), "2024-06-10"); !errors.Is(err, ErrWorkingDayNotFound) {
		t.Fatalf("day lookup error = %v, want ErrWorkingDayNotFound", err)
	}

	times, err := fx.svc.GetAvailableTimes(context.Background(), "2024-06-10")
	if err != nil {
		t.Fatalf("get available times: %v", err)
	}
	if times.Available || len(times.Times) != 0 {
		t.Fatalf("got %+v, want unavailable and no times", times)
	}
}

func TestRemoveTimeSlot_RecomputesBounds(t *testing.T) {
	fx := newFixture(t)
	fx.addDay(t, "2024-06-10", "09:00", "10:20")

	if err := fx.svc.RemoveTimeSlot(context.Background(), "2024-06-10", mustTime(t, "09:00")); err != nil {
		t.Fatalf("remove slot: %v", err)
	}

	day, err := fx.repo.GetWorkingDay(context.Background(), "2024-06-10")
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if day.Start != mustTime(t, "09:40") || day.End != mustTime(t, "10:20") {
		t.Errorf("bounds = %s-%s, want 09:40-10:20", day.Start, day.End)
	}
}

func TestStatistics(t *testing.T) {
	fx := newFixture(t)
	now := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC) // a Wednesday

	fx.addDay(t, "2024-06-12", "09:00", "17:00")
	fx.addDay(t, "2024-06-10", "09:00", "17:00")
	fx.addDay(t, "2024-06-03", "09:00", "17:00")

	book := func(date, tod, service string) {
		req := bookingReq(t, date, tod)
		req.Service = service
		if _, err := fx.svc.Book(context.Background(), req); err != nil {
			t.Fatalf("book %s %s: %v", date, tod, err)
		}
	}

	book("2024-06-12", "09:00", "Knippen")          // today
	book("2024-06-10", "09:00", "Knippen en baard") // Monday, same week
	book("2024-06-03", "09:00", "Knippen")          // earlier this month

	stats, err := fx.svc.Statistics(context.Background(), now)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}

	if stats.Daily.Count != 1 || stats.Daily.Revenue != 30 {
		t.Errorf("daily = %+v, want count 1 revenue 30", stats.Daily)
	}
	if stats.Weekly.Count != 2 || stats.Weekly.Revenue != 75 {
		t.Errorf("weekly = %+v, want count 2 revenue 75", stats.Weekly)
	}
	if stats.Monthly.Count != 3 || stats.Monthly.Revenue != 105 {
		t.Errorf("monthly = %+v, want count 3 revenue 105", stats.Monthly)
	}
}

func TestSendReminders_Deduplicates(t *testing.T) {
	fx := newFixture(t)
	now := time.Date(2024, 6, 9, 18, 0, 0, 0, time.UTC)

	fx.addDay(t, "2024-06-10", "09:00", "17:00")
	if _, err := fx.svc.Book(context.Background(), bookingReq(t, "2024-06-10", "09:00")); err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := fx.svc.Book(context.Background(), bookingReq(t, "2024-06-10", "09:40")); err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := fx.svc.SendReminders(context.Background(), now); err != nil {
		t.Fatalf("send reminders: %v", err)
	}
	if fx.notifier.reminders != 2 {
		t.Fatalf("reminders = %d, want 2", fx.notifier.reminders)
	}

	// A second run must not resend.
	if err := fx.svc.SendReminders(context.Background(), now); err != nil {
		t.Fatalf("send reminders again: %v", err)
	}
	if fx.notifier.reminders != 2 {
		t.Fatalf("reminders after rerun = %d, want 2", fx.notifier.reminders)
	}
}

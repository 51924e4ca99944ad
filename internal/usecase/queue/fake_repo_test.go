package queue

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/audit"
	domain "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/domain/queue"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/events"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/notify"
)

// fakeRepo is an in-memory domain.Repository for use case tests. InTx just
// runs fn against the same store; failErr, when set, makes every call fail
// to exercise the store_unavailable path. afterActiveCheck runs outside the
// store lock after GetActiveEntryForUser, so tests can widen the window
// between the check and a later write. appointmentErr fails GetAppointment
// alone, for lookups that must not be confused with a missing row, and
// createErr likewise fails only CreateEntry.
type fakeRepo struct {
	mu               sync.Mutex
	entries          map[string]*models.QueueEntry
	appointments     map[uint]*models.Appointment
	sessions         map[string]*models.ConsultationSession
	remedies         []*models.Remedy
	failErr          error
	createErr        error
	appointmentErr   error
	afterActiveCheck func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		entries:      make(map[string]*models.QueueEntry),
		appointments: make(map[uint]*models.Appointment),
		sessions:     make(map[string]*models.ConsultationSession),
	}
}

var _ domain.Repository = (*fakeRepo)(nil)

func (f *fakeRepo) InTx(ctx context.Context, fn func(domain.Repository) error) error {
	if f.failErr != nil {
		return f.failErr
	}
	return fn(f)
}

func (f *fakeRepo) GetEntry(ctx context.Context, id string) (*models.QueueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	e, ok := f.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeRepo) GetActiveEntryForUser(ctx context.Context, userID uint) (*models.QueueEntry, error) {
	f.mu.Lock()
	var found *models.QueueEntry
	if f.failErr == nil {
		for _, e := range f.entries {
			if e.UserID == userID && domain.IsActive(domain.Status(e.Status)) {
				cp := *e
				found = &cp
				break
			}
		}
	}
	failErr := f.failErr
	f.mu.Unlock()

	if f.afterActiveCheck != nil {
		f.afterActiveCheck()
	}
	if failErr != nil {
		return nil, failErr
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return found, nil
}

func (f *fakeRepo) CountActiveEntries(ctx context.Context, gurujiID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, e := range f.entries {
		if e.GurujiID != nil && *e.GurujiID == gurujiID && domain.IsActive(domain.Status(e.Status)) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) ListActiveEntries(ctx context.Context, gurujiID uint) ([]models.QueueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.QueueEntry
	for _, e := range f.entries {
		if e.GurujiID != nil && *e.GurujiID == gurujiID && domain.IsActive(domain.Status(e.Status)) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListEntries(ctx context.Context, filter domain.SnapshotFilter) ([]models.QueueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	var out []models.QueueEntry
	for _, e := range f.entries {
		if !domain.IsActive(domain.Status(e.Status)) {
			continue
		}
		if filter.UserID != nil && e.UserID != *filter.UserID {
			continue
		}
		if filter.GurujiID != nil && (e.GurujiID == nil || *e.GurujiID != *filter.GurujiID) {
			continue
		}
		if filter.GurujiID == nil && !filter.IncludeUnassigned && e.GurujiID == nil && filter.UserID == nil {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeRepo) CreateEntry(ctx context.Context, e *models.QueueEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *e
	f.entries[e.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateEntry(ctx context.Context, e *models.QueueEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	f.entries[e.ID] = &cp
	return nil
}

func (f *fakeRepo) SaveEntryPositions(ctx context.Context, entries []models.QueueEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range entries {
		stored, ok := f.entries[e.ID]
		if !ok {
			continue
		}
		stored.Position = e.Position
		stored.EstimatedWait = e.EstimatedWait
	}
	return nil
}

func (f *fakeRepo) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appointmentErr != nil {
		return nil, f.appointmentErr
	}
	ap, ok := f.appointments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ap
	return &cp, nil
}

func (f *fakeRepo) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *ap
	f.appointments[ap.ID] = &cp
	return nil
}

func (f *fakeRepo) CreateSession(ctx context.Context, s *models.ConsultationSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeRepo) GetSession(ctx context.Context, id string) (*models.ConsultationSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) GetSessionByEntry(ctx context.Context, entryID string) (*models.ConsultationSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.QueueEntryID == entryID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdateSession(ctx context.Context, s *models.ConsultationSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeRepo) CreateRemedy(ctx context.Context, r *models.Remedy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.remedies = append(f.remedies, &cp)
	return nil
}

func (f *fakeRepo) CountRemediesBySession(ctx context.Context, sessionID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.remedies {
		if r.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

// ------------------------------------------------------
// Side-effect doubles
// ------------------------------------------------------

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) Publish(ev events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *fakePublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fakeAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *fakeAuditor) Dispatch(ev audit.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

type fakeSender struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (s *fakeSender) Send(msg notify.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

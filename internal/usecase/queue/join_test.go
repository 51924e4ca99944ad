package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domain "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/domain/queue"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/events"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/httperr"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
)

func newJoinFixture() (*Join, *fakeRepo, *fakePublisher, *fakeAuditor) {
	repo := newFakeRepo()
	pub := &fakePublisher{}
	aud := &fakeAuditor{}
	return NewJoin(repo, NewGuard(), pub, aud), repo, pub, aud
}

func TestJoinAssignsNextPosition(t *testing.T) {
	uc, repo, pub, aud := newJoinFixture()
	guruji := uint(5)

	// Two devotees already in line.
	for i, user := range []uint{10, 11} {
		e := &models.QueueEntry{
			ID:          string(rune('a' + i)),
			UserID:      user,
			GurujiID:    &guruji,
			Status:      string(domain.StatusWaiting),
			Position:    i + 1,
			CheckedInAt: time.Now().Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.CreateEntry(context.Background(), e))
	}

	entry, err := uc.Execute(context.Background(), JoinInput{UserID: 12, GurujiID: &guruji})
	require.NoError(t, err)

	assert.Equal(t, 3, entry.Position)
	assert.Equal(t, 45, entry.EstimatedWait)
	assert.Equal(t, string(domain.StatusWaiting), entry.Status)
	assert.Equal(t, string(domain.PriorityNormal), entry.Priority)

	require.NotEmpty(t, pub.types())
	assert.Equal(t, events.EntryAdded, pub.types()[0])
	require.Len(t, aud.events, 1)
	assert.Equal(t, "queue_joined", aud.events[0].Action)
}

func TestJoinRejectsSecondActiveEntry(t *testing.T) {
	uc, repo, _, _ := newJoinFixture()
	guruji := uint(5)
	other := uint(6)

	existing := &models.QueueEntry{
		ID:       "existing",
		UserID:   12,
		GurujiID: &guruji,
		Status:   string(domain.StatusWaiting),
	}
	require.NoError(t, repo.CreateEntry(context.Background(), existing))

	// Even against a different guruji: one active entry per user.
	_, err := uc.Execute(context.Background(), JoinInput{UserID: 12, GurujiID: &other})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeAlreadyInQueue))
}

func TestJoinConcurrentSameUserKeepsSingleActiveEntry(t *testing.T) {
	uc, repo, _, _ := newJoinFixture()
	guruji := uint(5)

	// Widen the window between the active-entry check and the insert.
	// Without per-user serialization both joins would pass the check.
	repo.afterActiveCheck = func() { time.Sleep(20 * time.Millisecond) }

	inputs := []JoinInput{
		{UserID: 12, GurujiID: &guruji},
		{UserID: 12}, // unassigned pool, same user
	}
	errs := make([]error, len(inputs))
	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in JoinInput) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), in)
		}(i, in)
	}
	wg.Wait()

	var rejected int
	for _, err := range errs {
		if err != nil {
			assert.True(t, httperr.IsBusiness(err, httperr.CodeAlreadyInQueue))
			rejected++
		}
	}
	assert.Equal(t, 1, rejected, "exactly one of the two joins loses")

	repo.mu.Lock()
	var active int
	for _, e := range repo.entries {
		if e.UserID == 12 && domain.IsActive(domain.Status(e.Status)) {
			active++
		}
	}
	repo.mu.Unlock()
	assert.Equal(t, 1, active)
}

func TestJoinMapsDuplicateActiveEntryFromStore(t *testing.T) {
	// A join racing from another instance is only caught by the store's
	// unique index on active entries. The constraint error must surface
	// as the usual rejection, not as a plain failure.
	uc, repo, pub, _ := newJoinFixture()
	guruji := uint(5)
	repo.createErr = gorm.ErrDuplicatedKey

	_, err := uc.Execute(context.Background(), JoinInput{UserID: 12, GurujiID: &guruji})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeAlreadyInQueue))
	assert.Empty(t, pub.types())
}

func TestJoinAllowedAfterPreviousEntryEnded(t *testing.T) {
	uc, repo, _, _ := newJoinFixture()
	guruji := uint(5)

	done := &models.QueueEntry{
		ID:       "done",
		UserID:   12,
		GurujiID: &guruji,
		Status:   string(domain.StatusCompleted),
	}
	require.NoError(t, repo.CreateEntry(context.Background(), done))

	entry, err := uc.Execute(context.Background(), JoinInput{UserID: 12, GurujiID: &guruji})
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Position)
}

func TestJoinUnassignedParksAtPositionZero(t *testing.T) {
	uc, _, _, _ := newJoinFixture()

	entry, err := uc.Execute(context.Background(), JoinInput{UserID: 12})
	require.NoError(t, err)

	assert.Nil(t, entry.GurujiID)
	assert.Zero(t, entry.Position)
	assert.Zero(t, entry.EstimatedWait)
}

func TestJoinChecksInOwnAppointment(t *testing.T) {
	uc, repo, pub, _ := newJoinFixture()
	guruji := uint(5)

	require.NoError(t, repo.UpdateAppointment(context.Background(), &models.Appointment{
		ID:     77,
		UserID: 12,
		Status: "booked",
	}))

	_, err := uc.Execute(context.Background(), JoinInput{
		UserID:        12,
		GurujiID:      &guruji,
		AppointmentID: 77,
	})
	require.NoError(t, err)

	ap, err := repo.GetAppointment(context.Background(), 77)
	require.NoError(t, err)
	assert.Equal(t, "checked_in", ap.Status)
	require.NotNil(t, ap.CheckedInAt)

	assert.Contains(t, pub.types(), events.AppointmentCheckedIn)
}

func TestJoinRejectsForeignAppointment(t *testing.T) {
	uc, repo, _, _ := newJoinFixture()
	guruji := uint(5)

	require.NoError(t, repo.UpdateAppointment(context.Background(), &models.Appointment{
		ID:     77,
		UserID: 99,
		Status: "booked",
	}))

	_, err := uc.Execute(context.Background(), JoinInput{
		UserID:        12,
		GurujiID:      &guruji,
		AppointmentID: 77,
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodePermissionDenied))
}

func TestJoinStoreFailureSurfaces(t *testing.T) {
	uc, repo, pub, _ := newJoinFixture()
	guruji := uint(5)
	repo.failErr = errors.New("connection refused")

	_, err := uc.Execute(context.Background(), JoinInput{UserID: 12, GurujiID: &guruji})
	require.Error(t, err)

	_, isBusiness := httperr.AsBusiness(err)
	assert.False(t, isBusiness, "infrastructure failures stay untyped for the handler to map")
	assert.Empty(t, pub.types(), "nothing is announced for a failed mutation")
}

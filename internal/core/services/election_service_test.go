package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

func newElectionFixture() (*memStore, *recordingSink, ports.ElectionService) {
	store := newMemStore()
	sink := &recordingSink{}
	return store, sink, NewElectionService(store.electionRepo(), store.candidateRepo(), sink)
}

func TestCreateElection(t *testing.T) {
	_, sink, svc := newElectionFixture()

	election, err := svc.CreateElection(context.Background(), ports.CreateElectionInput{
		Title:     "  Board election  ",
		StartDate: testNow,
		EndDate:   testNow.Add(24 * time.Hour),
		ActorID:   "admin-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Board election", election.Title)
	assert.Equal(t, domain.ElectionStatusDraft, election.Status)
	assert.NotEqual(t, uuid.Nil, election.ID)

	got, err := svc.GetElection(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, election.Title, got.Title)

	event, ok := sink.find(domain.ActionElectionCreated)
	require.True(t, ok)
	assert.Equal(t, domain.ActorAdmin, event.ActorType)
	assert.Equal(t, "admin-1", event.ActorID)
	assert.Equal(t, election.ID.String(), event.ResourceID)
}

func TestCreateElection_Validation(t *testing.T) {
	_, sink, svc := newElectionFixture()

	tests := []struct {
		name  string
		input ports.CreateElectionInput
	}{
		{"missing title", ports.CreateElectionInput{StartDate: testNow, EndDate: testNow.Add(time.Hour)}},
		{"missing dates", ports.CreateElectionInput{Title: "x"}},
		{"end before start", ports.CreateElectionInput{Title: "x", StartDate: testNow, EndDate: testNow.Add(-time.Hour)}},
		{"end equals start", ports.CreateElectionInput{Title: "x", StartDate: testNow, EndDate: testNow}},
		{"unknown status", ports.CreateElectionInput{Title: "x", Status: "paused", StartDate: testNow, EndDate: testNow.Add(time.Hour)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateElection(context.Background(), tt.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Empty(t, sink.actions())
}

func TestUpdateElectionStatus(t *testing.T) {
	store, sink, svc := newElectionFixture()
	election := store.addElection(domain.ElectionStatusDraft, testNow, testNow.Add(time.Hour))

	updated, err := svc.UpdateElectionStatus(context.Background(), election.ID, domain.ElectionStatusActive, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ElectionStatusActive, updated.Status)

	stored, err := store.electionRepo().GetByID(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ElectionStatusActive, stored.Status)

	event, ok := sink.find(domain.ActionElectionUpdated)
	require.True(t, ok)
	assert.Equal(t, "draft", event.Details["previous_status"])

	_, err = svc.UpdateElectionStatus(context.Background(), election.ID, "bogus", "admin-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateElectionStatus(context.Background(), uuid.New(), domain.ElectionStatusClosed, "admin-1")
	assert.ErrorIs(t, err, domain.ErrElectionNotFound)
}

func TestCandidates(t *testing.T) {
	store, sink, svc := newElectionFixture()
	election := store.addElection(domain.ElectionStatusActive, testNow, testNow.Add(time.Hour))

	ada, err := svc.AddCandidate(context.Background(), ports.AddCandidateInput{ElectionID: election.ID, Name: "Ada", Party: "Engines"})
	require.NoError(t, err)
	assert.True(t, ada.IsActive)

	_, err = svc.AddCandidate(context.Background(), ports.AddCandidateInput{ElectionID: election.ID, Name: "Grace"})
	require.NoError(t, err)

	_, err = svc.AddCandidate(context.Background(), ports.AddCandidateInput{ElectionID: election.ID, Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.AddCandidate(context.Background(), ports.AddCandidateInput{ElectionID: uuid.New(), Name: "Nobody"})
	assert.ErrorIs(t, err, domain.ErrElectionNotFound)

	deactivated, err := svc.SetCandidateActive(context.Background(), ada.ID, false, "admin-1")
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	// inactive candidates remain listed for administrators
	candidates, err := svc.ListCandidates(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)

	_, err = svc.SetCandidateActive(context.Background(), uuid.New(), true, "admin-1")
	assert.ErrorIs(t, err, domain.ErrCandidateNotFound)

	assert.Equal(t, []string{
		domain.ActionCandidateCreated,
		domain.ActionCandidateCreated,
		domain.ActionCandidateUpdated,
	}, sink.actions())
}

func TestListElectionsPages(t *testing.T) {
	store, _, svc := newElectionFixture()
	for i := 0; i < electionPageSize+3; i++ {
		store.addElection(domain.ElectionStatusActive, testNow, testNow.Add(time.Hour))
	}

	first, err := svc.ListElections(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, first, electionPageSize)

	second, err := svc.ListElections(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, second, 3)
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/crosspost-hq/crosspost/internal/models"
	"github.com/crosspost-hq/crosspost/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublicationRepo struct {
	mu           sync.Mutex
	publications []*models.Publication
	createErr    error
}

func (r *fakePublicationRepo) Create(ctx context.Context, p *models.Publication) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return 0, r.createErr
	}
	clone := *p
	clone.ID = int64(len(r.publications) + 1)
	r.publications = append(r.publications, &clone)
	return clone.ID, nil
}

func (r *fakePublicationRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.Publication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Publication
	for _, p := range r.publications {
		if p.UserID == userID {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

type captureNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *captureNotifier) Notify(event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *captureNotifier) all() []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Event(nil), n.events...)
}

// stubAdapter records the token it was called with and returns a
// scripted result.
type stubAdapter struct {
	mu     sync.Mutex
	calls  []string
	result transfer.PublishResult
}

func (a *stubAdapter) Publish(ctx context.Context, accessToken string, content transfer.PostContent, accountID string) transfer.PublishResult {
	a.mu.Lock()
	a.calls = append(a.calls, accessToken)
	a.mu.Unlock()
	return a.result
}

func newPublishFixture(t *testing.T, adapters map[string]Adapter) (*fakeAccountRepo, *fakePublicationRepo, *captureNotifier, PublishService) {
	t.Helper()
	repo := newFakeAccountRepo()
	pubs := &fakePublicationRepo{}
	notifier := &captureNotifier{}
	tokens := NewTokenService(testConfig(), repo, &stubOAuth{})
	svc := NewPublishService(repo, pubs, tokens, adapters, notifier)
	return repo, pubs, notifier, svc
}

func TestPublishAccountNotFoundIsAFailureResult(t *testing.T) {
	_, _, _, svc := newPublishFixture(t, map[string]Adapter{})

	result := svc.Publish(context.Background(), 404, transfer.PostContent{Text: "hi"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "account not found")
}

func TestPublishUnsupportedPlatformIsAFailureResult(t *testing.T) {
	repo, _, _, svc := newPublishFixture(t, map[string]Adapter{})
	id := seedAccount(t, repo, "myspace", "at-1", "", nil)

	result := svc.Publish(context.Background(), id, transfer.PostContent{Text: "hi"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unsupported platform: myspace")
}

func TestPublishTokenFailureIsAFailureResult(t *testing.T) {
	adapter := &stubAdapter{result: transfer.PublishResult{Success: true, PostID: "1"}}
	repo, _, _, svc := newPublishFixture(t, map[string]Adapter{PlatformTwitter: adapter})

	expired := time.Now().Add(-time.Hour)
	id := seedAccount(t, repo, PlatformTwitter, "at-dead", "", &expired)

	result := svc.Publish(context.Background(), id, transfer.PostContent{Text: "hi"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, ErrTokenExpiredNoRefresh.Error())
	assert.Empty(t, adapter.calls, "adapter must not run without a valid token")
}

func TestPublishSuccessRecordsPublicationAndNotifies(t *testing.T) {
	adapter := &stubAdapter{result: transfer.PublishResult{
		Success: true,
		PostID:  "tw-100",
		PostURL: "https://twitter.com/i/web/status/tw-100",
	}}
	repo, pubs, notifier, svc := newPublishFixture(t, map[string]Adapter{PlatformTwitter: adapter})
	id := seedAccount(t, repo, PlatformTwitter, "at-live", "", nil)

	result := svc.Publish(context.Background(), id, transfer.PostContent{Text: "launch day"})

	require.True(t, result.Success)
	require.Equal(t, []string{"at-live"}, adapter.calls, "adapter receives the decrypted token")

	records, err := pubs.ListByUserID(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].AccountID)
	assert.Equal(t, "launch day", records[0].Content)
	assert.Equal(t, "tw-100", records[0].ExternalPostID)

	events := notifier.all()
	require.Len(t, events, 1)
	assert.Equal(t, EventPostPublished, events[0].Event)
	assert.Equal(t, PlatformTwitter, events[0].Platform)
}

func TestPublishRecordWriteFailureDoesNotFlipOutcome(t *testing.T) {
	adapter := &stubAdapter{result: transfer.PublishResult{Success: true, PostID: "tw-101"}}
	repo, pubs, _, svc := newPublishFixture(t, map[string]Adapter{PlatformTwitter: adapter})
	pubs.createErr = errors.New("connection reset")
	id := seedAccount(t, repo, PlatformTwitter, "at-live", "", nil)

	result := svc.Publish(context.Background(), id, transfer.PostContent{Text: "hi"})

	assert.True(t, result.Success, "the post went out even though the record write failed")
	assert.Equal(t, "tw-101", result.PostID)
}

func TestPublishToManyFailuresAreIndependent(t *testing.T) {
	okAdapter := &stubAdapter{result: transfer.PublishResult{Success: true, PostID: "ok"}}
	repo, _, _, svc := newPublishFixture(t, map[string]Adapter{
		PlatformTwitter:  okAdapter,
		PlatformFacebook: okAdapter,
	})

	idA := seedAccount(t, repo, PlatformTwitter, "at-a", "", nil)

	// Expired with no refresh token; its attempt must fail on its own.
	expired := time.Now().Add(-time.Hour)
	idB := seedAccount(t, repo, PlatformTwitter, "at-b", "", &expired)

	idC := seedAccount(t, repo, PlatformFacebook, "at-c", "", nil)

	results := svc.PublishToMany(context.Background(), []int64{idA, idB, idC}, transfer.PostContent{Text: "fan out"})

	require.Len(t, results, 3)
	assert.Equal(t, idA, results[0].AccountID)
	assert.Equal(t, idB, results[1].AccountID)
	assert.Equal(t, idC, results[2].AccountID)

	assert.True(t, results[0].Result.Success)
	assert.False(t, results[1].Result.Success)
	assert.Contains(t, results[1].Result.Error, ErrTokenExpiredNoRefresh.Error())
	assert.True(t, results[2].Result.Success)
}

func TestPublishToManyEmptyInputReturnsEmptyResults(t *testing.T) {
	_, _, _, svc := newPublishFixture(t, map[string]Adapter{})

	results := svc.PublishToMany(context.Background(), nil, transfer.PostContent{Text: "hi"})
	assert.Empty(t, results)
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/crosspost-hq/crosspost/internal/models"
	"github.com/crosspost-hq/crosspost/internal/repository"
	"github.com/crosspost-hq/crosspost/internal/transfer"
)

const publishConcurrencyLimit = 10

// PublishService resolves an account to its platform adapter and a
// valid token, runs the publish call, and records the outcome. Every
// failure mode is reported through the PublishResult; nothing at this
// boundary aborts a sibling account's attempt.
type PublishService interface {
	Publish(ctx context.Context, accountID int64, content transfer.PostContent) transfer.PublishResult
	PublishToMany(ctx context.Context, accountIDs []int64, content transfer.PostContent) []transfer.AccountPublishResult
	ListPublications(ctx context.Context, userID int64) ([]*models.Publication, error)
}

type publishService struct {
	sa       repository.SocialAccountRepository
	pub      repository.PublicationRepository
	tokens   TokenService
	adapters map[string]Adapter
	notifier Notifier
}

func NewPublishService(
	sa repository.SocialAccountRepository,
	pub repository.PublicationRepository,
	tokens TokenService,
	adapters map[string]Adapter,
	notifier Notifier) PublishService {
	return &publishService{
		sa:       sa,
		pub:      pub,
		tokens:   tokens,
		adapters: adapters,
		notifier: notifier,
	}
}

func (s *publishService) Publish(ctx context.Context, accountID int64, content transfer.PostContent) transfer.PublishResult {
	acc, err := s.sa.GetByID(ctx, accountID)
	if err != nil {
		return publishFailure("%v", err)
	}
	if acc == nil {
		return publishFailure("%s", ErrAccountNotFound.Error())
	}

	adapter, ok := s.adapters[acc.Platform]
	if !ok {
		return publishFailure("unsupported platform: %s", acc.Platform)
	}

	accessToken, err := s.tokens.GetValidToken(ctx, accountID)
	if err != nil {
		return publishFailure("%v", err)
	}

	result := adapter.Publish(ctx, accessToken, content, acc.AccountHandle)
	if !result.Success {
		return result
	}

	// The post went out; a failed record write is logged, not
	// surfaced as a publish failure.
	publication := &models.Publication{
		UserID:         acc.UserID,
		AccountID:      acc.ID,
		Content:        content.Text,
		MediaURL:       content.MediaURL,
		ExternalPostID: result.PostID,
		PostURL:        result.PostURL,
		PublishedAt:    time.Now(),
	}
	if _, err := s.pub.Create(ctx, publication); err != nil {
		slog.Info(fmt.Sprintf("failed to record publication for account %d: %v", acc.ID, err))
	}

	s.notifier.Notify(Event{
		Event:    EventPostPublished,
		Platform: acc.Platform,
		UserID:   acc.UserID,
	})

	return result
}

// PublishToMany fans a single post out to every account concurrently.
// Each slot in the returned slice matches the input account id at the
// same position; one account's failure never short-circuits the rest.
func (s *publishService) PublishToMany(ctx context.Context, accountIDs []int64, content transfer.PostContent) []transfer.AccountPublishResult {
	results := make([]transfer.AccountPublishResult, len(accountIDs))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, publishConcurrencyLimit)

	for i, accountID := range accountIDs {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, accountID int64) {
			defer wg.Done()
			defer func() { <-semaphore }()

			results[i] = transfer.AccountPublishResult{
				AccountID: accountID,
				Result:    s.Publish(ctx, accountID, content),
			}
		}(i, accountID)
	}

	wg.Wait()
	return results
}

func (s *publishService) ListPublications(ctx context.Context, userID int64) ([]*models.Publication, error) {
	return s.pub.ListByUserID(ctx, userID)
}

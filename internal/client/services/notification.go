package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/beiwe-client/internal/client/client"
	"github.com/dmitrijs2005/beiwe-client/internal/client/urls"
	"github.com/dmitrijs2005/beiwe-client/internal/common"
	"github.com/dmitrijs2005/beiwe-client/internal/logging"
)

// NotificationStore is the persistence NotificationService needs.
type NotificationStore interface {
	IsRegistered(ctx context.Context) (bool, error)
	SetPushToken(ctx context.Context, token string) error
}

// NotificationService sends authenticated fire-and-forget requests. Sends
// are not ordered and never retried; failures are only logged.
type NotificationService struct {
	factory *client.Factory
	codec   *client.Codec
	urls    *urls.Resolver
	store   NotificationStore
	log     logging.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewNotificationService(
	factory *client.Factory,
	codec *client.Codec,
	resolver *urls.Resolver,
	store NotificationStore,
	log logging.Logger,
) *NotificationService {
	return &NotificationService{
		factory: factory,
		codec:   codec,
		urls:    resolver,
		store:   store,
		log:     log.With("component", "notification"),
	}
}

// SendAsync posts the security block followed by params to path on a
// detached goroutine and returns immediately. After Wait has been called
// the request is dropped with a warning.
func (s *NotificationService) SendAsync(path, params string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.log.Warn(context.Background(), "notification dropped after shutdown", "path", path)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		ctx := context.Background()
		if err := s.send(ctx, path, params); err != nil {
			s.log.Error(ctx, "notification request failed", "path", path, "error", err)
		}
	}()
}

func (s *NotificationService) send(ctx context.Context, path, params string) error {
	url, err := s.urls.Resolve(ctx, path)
	if err != nil {
		return err
	}
	block, err := s.codec.Block(ctx, "")
	if err != nil {
		return err
	}
	resp, err := s.factory.PostForm(ctx, url, block+params, false)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		s.log.Warn(ctx, "notification rejected", "path", path, "code", resp.StatusCode)
	}
	return nil
}

// Wait stops accepting new sends and blocks until every send already
// started has finished.
func (s *NotificationService) Wait() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
}

// SetPushToken stores token and hands it to the server.
func (s *NotificationService) SetPushToken(ctx context.Context, token string) error {
	if err := s.requireRegistered(ctx); err != nil {
		return err
	}
	if err := s.store.SetPushToken(ctx, token); err != nil {
		return fmt.Errorf("store push token: %w", err)
	}
	s.SendAsync(urls.PathSetFCMToken, client.MakeParameter("fcm_token", token))
	return nil
}

// SendTestNotification asks the server to push a test notification.
func (s *NotificationService) SendTestNotification(ctx context.Context) error {
	if err := s.requireRegistered(ctx); err != nil {
		return err
	}
	s.SendAsync(urls.PathTestNotification, "")
	return nil
}

// SendSurveyNotification asks the server to push the survey notification.
func (s *NotificationService) SendSurveyNotification(ctx context.Context) error {
	if err := s.requireRegistered(ctx); err != nil {
		return err
	}
	s.SendAsync(urls.PathSurveyNotification, "")
	return nil
}

func (s *NotificationService) requireRegistered(ctx context.Context) error {
	ok, err := s.store.IsRegistered(ctx)
	if err != nil {
		return fmt.Errorf("read registration state: %w", err)
	}
	if !ok {
		return common.ErrNotRegistered
	}
	return nil
}

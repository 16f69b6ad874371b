package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/S3lorm/internship-robot-sub000/pkg/config"
	"github.com/S3lorm/internship-robot-sub000/pkg/mailer"
)

type fakeMailer struct {
	mu       sync.Mutex
	sent     []mailer.Message
	failures int
}

func (f *fakeMailer) Send(msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestMailDispatcherDeliversAndCallsBack(t *testing.T) {
	fake := &fakeMailer{}
	dispatcher := NewMailDispatcher(fake, config.MailConfig{QueueWorkers: 1, QueueRetries: 3}, nil, zap.NewNop())
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	var mu sync.Mutex
	delivered := false
	err := dispatcher.Enqueue(mailer.Message{To: "s1@uni.edu", Subject: "hello", Text: "hi"}, func(ctx context.Context) {
		mu.Lock()
		delivered = true
		mu.Unlock()
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return delivered
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, fake.sentCount())
}

func TestMailDispatcherRetriesFailures(t *testing.T) {
	fake := &fakeMailer{failures: 1}
	dispatcher := NewMailDispatcher(fake, config.MailConfig{QueueWorkers: 1, QueueRetries: 3}, nil, zap.NewNop())
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	require.NoError(t, dispatcher.Enqueue(mailer.Message{To: "s1@uni.edu", Subject: "retry", Text: "hi"}, nil))

	require.Eventually(t, func() bool {
		return fake.sentCount() == 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestMailDispatcherRejectsBeforeStart(t *testing.T) {
	dispatcher := NewMailDispatcher(&fakeMailer{}, config.MailConfig{}, nil, zap.NewNop())

	err := dispatcher.Enqueue(mailer.Message{To: "s1@uni.edu"}, nil)
	require.Error(t, err)
}

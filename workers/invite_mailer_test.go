package workers_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbrandt-dev/klassenvote-backend/workers"
)

type sentMail struct {
	ToEmail   string
	Subject   string
	Variables map[string]string
}

// fakeSender records deliveries and fails for addresses in failFor
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]error
}

func (f *fakeSender) SendTemplate(ctx context.Context, toEmail, subject string, variables map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[toEmail]; ok {
		return err
	}
	f.sent = append(f.sent, sentMail{ToEmail: toEmail, Subject: subject, Variables: variables})
	return nil
}

func TestSendBatchDeliversAllJobs(t *testing.T) {
	sender := &fakeSender{}
	im := workers.NewInviteMailer(sender, "https://vote.example.com/?code=", 10, 2)
	defer im.Stop()

	jobs := []workers.InviteJob{
		{Email: "anna@example.com", Code: "CODE0001"},
		{Email: "ben@example.com", Code: "CODE0002"},
		{Email: "clara@example.com", Code: "CODE0003"},
	}

	results := im.SendBatch(jobs)
	require.Len(t, results, 3)
	for _, res := range results {
		assert.NoError(t, res.Err, "delivery to %s failed", res.Email)
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.sent, 3)

	byEmail := map[string]sentMail{}
	for _, mail := range sender.sent {
		byEmail[mail.ToEmail] = mail
	}
	mail := byEmail["anna@example.com"]
	assert.Equal(t, "CODE0001", mail.Variables["voting_code"])
	assert.Equal(t, "https://vote.example.com/?code=CODE0001", mail.Variables["vote_url"])
	assert.NotEmpty(t, mail.Subject)
}

func TestSendBatchCollectsPerRecipientFailures(t *testing.T) {
	bounce := errors.New("mailbox unavailable")
	sender := &fakeSender{failFor: map[string]error{"bad@example.com": bounce}}
	im := workers.NewInviteMailer(sender, "https://vote.example.com/?code=", 10, 2)
	defer im.Stop()

	results := im.SendBatch([]workers.InviteJob{
		{Email: "good@example.com", Code: "CODE0001"},
		{Email: "bad@example.com", Code: "CODE0002"},
		{Email: "also-good@example.com", Code: "CODE0003"},
	})
	require.Len(t, results, 3)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			assert.Equal(t, "bad@example.com", res.Email)
			assert.ErrorIs(t, res.Err, bounce)
		}
	}
	assert.Equal(t, 1, failed, "one recipient failure must not abort the batch")

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Len(t, sender.sent, 2)
}

func TestSendBatchEmpty(t *testing.T) {
	im := workers.NewInviteMailer(&fakeSender{}, "https://vote.example.com/?code=", 10, 1)
	defer im.Stop()

	assert.Empty(t, im.SendBatch(nil))
}

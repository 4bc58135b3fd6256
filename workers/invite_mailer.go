package workers

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mbrandt-dev/klassenvote-backend/mailer"
)

const inviteSubject = "Deine Einladung zur Klassenabstimmung"

const sendTimeout = 30 * time.Second

// InviteJob is one invitation to deliver: the recipient and their code.
type InviteJob struct {
	Email string
	Code  string
}

// InviteResult reports the delivery outcome for a single recipient.
type InviteResult struct {
	Email string
	Err   error
}

type inviteTask struct {
	job     InviteJob
	results chan<- InviteResult
}

// InviteMailer fans invitation emails out over a bounded worker pool.
// Delivery failures are per-recipient; a failed address never aborts the
// rest of a batch.
type InviteMailer struct {
	Sender      mailer.TemplateSender
	VoteBaseURL string
	JobQueue    chan inviteTask
	Wg          sync.WaitGroup
	StopChan    chan struct{}
}

// NewInviteMailer creates the pool and starts its workers
func NewInviteMailer(sender mailer.TemplateSender, voteBaseURL string, queueSize, numWorkers int) *InviteMailer {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	im := &InviteMailer{
		Sender:      sender,
		VoteBaseURL: voteBaseURL,
		JobQueue:    make(chan inviteTask, queueSize),
		StopChan:    make(chan struct{}),
	}

	im.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go im.worker(i)
	}
	log.Printf("started %d invite mail worker(s) with queue size %d", numWorkers, queueSize)

	return im
}

func (im *InviteMailer) worker(id int) {
	defer im.Wg.Done()
	for {
		select {
		case task, ok := <-im.JobQueue:
			if !ok {
				log.Printf("invite mail worker %d stopping: job queue closed", id)
				return
			}
			task.results <- InviteResult{Email: task.job.Email, Err: im.send(task.job)}

		case <-im.StopChan:
			log.Printf("invite mail worker %d stopping: stop signal received", id)
			return
		}
	}
}

func (im *InviteMailer) send(job InviteJob) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	variables := map[string]string{
		"vote_url":    im.VoteBaseURL + job.Code,
		"voting_code": job.Code,
	}
	err := im.Sender.SendTemplate(ctx, job.Email, inviteSubject, variables)
	if err != nil {
		log.Printf("failed to deliver invitation to %s: %v", job.Email, err)
	}
	return err
}

// SendBatch queues all jobs and blocks until every delivery has an outcome.
// The returned slice has one entry per job, in completion order.
func (im *InviteMailer) SendBatch(jobs []InviteJob) []InviteResult {
	results := make(chan InviteResult, len(jobs))
	for _, job := range jobs {
		im.JobQueue <- inviteTask{job: job, results: results}
	}

	out := make([]InviteResult, 0, len(jobs))
	for range jobs {
		out = append(out, <-results)
	}
	return out
}

// Stop signals all workers to exit and waits for them
func (im *InviteMailer) Stop() {
	close(im.StopChan)
	im.Wg.Wait()
}

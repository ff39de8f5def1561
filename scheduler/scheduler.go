// Package scheduler runs the background reminder dispatch. A cron job
// periodically scans for due, un-notified reminders and publishes a
// notification email for each onto the outbound email queue. Delivery
// dedupe is handled downstream by the queue consumers.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/taskmanager-ai/backend/analytics"
	"github.com/taskmanager-ai/backend/queue"
	storage "github.com/taskmanager-ai/backend/storage/persistent"
	"go.mongodb.org/mongo-driver/bson"
)

// scanTimeout bounds each dispatch pass against the database.
const scanTimeout = 30 * time.Second

// Scheduler wraps the cron runner and the dependencies of the dispatch job.
type Scheduler struct {
	cron  *cron.Cron
	store storage.StorageInterface
	queue *queue.Queue
}

// New creates a scheduler in the given location. The queue may be nil,
// in which case dispatch passes are skipped.
func New(store storage.StorageInterface, q *queue.Queue, loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithLocation(loc)),
		store: store,
		queue: q,
	}
}

// Start registers the dispatch job and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 1m", s.DispatchDueReminders); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop stops the cron runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// DispatchDueReminders finds reminders that are due and not yet notified,
// and publishes a notification email for each owner who has notifications
// enabled. Reminders with unparseable due dates are skipped, never failing
// the pass. Each dispatched reminder is marked notified so it is processed
// at most once.
func (s *Scheduler) DispatchDueReminders() {
	if s.queue == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	reminders, err := s.store.FindReminders(ctx, bson.M{"notified": false})
	if err != nil {
		log.Printf("reminder dispatch: listing reminders: %v", err)
		return
	}

	now := time.Now()
	for _, reminder := range reminders {
		due, err := analytics.ParseDeadline(reminder.DueDate)
		if err != nil {
			continue
		}
		if due.After(now) {
			continue
		}

		user, err := s.store.FindUser(ctx, bson.M{"_id": reminder.UserID})
		if err != nil {
			log.Printf("reminder dispatch: owner lookup for %s: %v", reminder.ID.Hex(), err)
			continue
		}
		if !user.Settings.Notifications {
			continue
		}

		msg := &queue.EmailMessage{
			Id:      "reminder_" + reminder.ID.Hex(),
			To:      user.Email,
			Subject: "Reminder: " + reminder.Title,
			Body:    reminderBody(reminder.Title, reminder.Description, reminder.DueDate),
		}
		if err := queue.ProcessEmail(msg, s.queue); err != nil {
			log.Printf("reminder dispatch: publishing %s: %v", reminder.ID.Hex(), err)
			continue
		}

		_, err = s.store.UpdateReminder(ctx,
			bson.M{"_id": reminder.ID},
			bson.M{"$set": bson.M{"notified": true}},
		)
		if err != nil {
			log.Printf("reminder dispatch: marking %s notified: %v", reminder.ID.Hex(), err)
		}
	}
}

func reminderBody(title, description, dueDate string) string {
	body := "Your reminder <strong>" + title + "</strong> is due (" + dueDate + ")."
	if description != "" {
		body += "<br>" + description
	}
	return body
}

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskmanager-ai/backend/models"
)

// ErrNotFound is returned by Find* methods when no document matches the
// filter. Every other storage error is a transient infrastructure failure
// and must be kept distinct from ErrNotFound so callers can tell "retry"
// apart from "does not exist".
var ErrNotFound = errors.New("document not found")

// DeleteResult represents the result of a deletion operation,
// specifically the count of documents deleted.
type DeleteResult struct {
	DeletedCount int64
}

// UpdateResult represents the result of an update operation,
// specifically the count of documents matched and modified.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
}

// StorageInterface defines the set of methods that any persistent storage
// backend needs to implement. Filters are expressed as bson.M documents;
// every owner-scoped operation is expected to carry the user id in its
// filter — the storage layer itself does not inject scoping.
type StorageInterface interface {
	// Establishes a connection to the storage backend.
	Connect(dbName, uri string) error
	// Disconnects from the storage backend.
	Disconnect() error

	// Users.
	AddUser(ctx context.Context, user *models.User) (*models.User, error)
	FindUser(ctx context.Context, filter interface{}) (*models.User, error)
	UpdateUser(ctx context.Context, filter interface{}, update interface{}) (*models.User, error)
	// DeleteUser removes the user and cascades to every collection owned
	// by that user.
	DeleteUser(ctx context.Context, filter interface{}) (*DeleteResult, error)
	UserCount(ctx context.Context, filter interface{}) (int64, error)

	// Tasks.
	AddTask(ctx context.Context, task *models.Task) (*models.Task, error)
	FindTask(ctx context.Context, filter interface{}) (*models.Task, error)
	FindTasks(ctx context.Context, filter interface{}) ([]models.Task, error)
	UpdateTask(ctx context.Context, filter interface{}, update interface{}) (*UpdateResult, error)
	DeleteTask(ctx context.Context, filter interface{}) (*DeleteResult, error)
	TaskCount(ctx context.Context, filter interface{}) (int64, error)

	// Calendar events.
	AddEvent(ctx context.Context, event *models.Event) (*models.Event, error)
	FindEvent(ctx context.Context, filter interface{}) (*models.Event, error)
	FindEvents(ctx context.Context, filter interface{}) ([]models.Event, error)
	UpdateEvent(ctx context.Context, filter interface{}, update interface{}) (*UpdateResult, error)
	DeleteEvent(ctx context.Context, filter interface{}) (*DeleteResult, error)

	// Daily routines.
	AddRoutine(ctx context.Context, routine *models.Routine) (*models.Routine, error)
	FindRoutines(ctx context.Context, filter interface{}) ([]models.Routine, error)
	UpdateRoutine(ctx context.Context, filter interface{}, update interface{}) (*UpdateResult, error)
	DeleteRoutine(ctx context.Context, filter interface{}) (*DeleteResult, error)

	// Reminders.
	AddReminder(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error)
	FindReminders(ctx context.Context, filter interface{}) ([]models.Reminder, error)
	UpdateReminder(ctx context.Context, filter interface{}, update interface{}) (*UpdateResult, error)
	DeleteReminder(ctx context.Context, filter interface{}) (*DeleteResult, error)

	// Habits.
	AddHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error)
	FindHabit(ctx context.Context, filter interface{}) (*models.Habit, error)
	FindHabits(ctx context.Context, filter interface{}) ([]models.Habit, error)
	UpdateHabit(ctx context.Context, filter interface{}, update interface{}) (*UpdateResult, error)
	DeleteHabit(ctx context.Context, filter interface{}) (*DeleteResult, error)

	// Password resets.
	AddPasswordReset(ctx context.Context, reset *models.PasswordReset) (*models.PasswordReset, error)
	FindPasswordReset(ctx context.Context, filter interface{}) (*models.PasswordReset, error)
	DeletePasswordReset(ctx context.Context, filter interface{}) (*DeleteResult, error)
}

// NewStorage creates a new StorageInterface with a MongoDB backend,
// using the provided URI to connect to the MongoDB server.
func NewStorage(dbName, uri string) (StorageInterface, error) {
	storage := NewMongoStorage()
	err := storage.Connect(dbName, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return storage, nil
}

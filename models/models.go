package models

import (
	"time"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeadlineLayout is the wire format for task deadlines and event boundaries.
// A secondary layout with seconds shows up in imported data, so parsing code
// should try both; see analytics.ParseDeadline.
const (
	DeadlineLayout        = "2006-01-02T15:04"
	DeadlineLayoutSeconds = "2006-01-02T15:04:05"
	DateLayout            = "2006-01-02"
)

// Settings holds the per-user preferences that used to live in ambient
// session state. They are persisted on the user document and looked up per
// request, so the session can never drift from the stored preference.
type Settings struct {
	Language      string `bson:"language" json:"language"`
	Theme         string `bson:"theme" json:"theme"`
	Notifications bool   `bson:"notifications" json:"notifications"`
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Settings     Settings           `bson:"settings" json:"settings"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
}

// Task is the central record of the system. Deadline is kept as the raw
// string the client submitted; it is validated at creation time but older
// and imported records may carry the seconds variant.
type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id,omitempty" json:"userId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Deadline    string             `bson:"deadline" json:"deadline"`
	Priority    string             `bson:"priority" json:"priority"`
	Category    string             `bson:"category" json:"category"`
	Status      string             `bson:"status" json:"status"`
	Done        bool               `bson:"done" json:"done"`
	Tab         string             `bson:"tab,omitempty" json:"tab,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	CompletedAt *time.Time         `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
}

// Task status values.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id,omitempty" json:"userId"`
	Title       string             `bson:"title" json:"title"`
	Start       string             `bson:"start" json:"start"`
	End         string             `bson:"end" json:"end"`
	Description string             `bson:"description" json:"description"`
	Color       string             `bson:"color" json:"color"`
	Priority    string             `bson:"priority" json:"priority"`
	AllDay      bool               `bson:"all_day" json:"allDay"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// Routine is a single entry of a user's daily routine. The date field is an
// ISO date string, so exact-day and range queries both work on it directly.
type Routine struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id,omitempty" json:"userId"`
	Date      string             `bson:"date" json:"date"`
	Task      string             `bson:"task" json:"task"`
	Time      string             `bson:"time" json:"time"`
	Completed bool               `bson:"completed" json:"completed"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

type Reminder struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id,omitempty" json:"userId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	DueDate     string             `bson:"due_date" json:"dueDate"`
	Notified    bool               `bson:"notified" json:"notified"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}

// Habit tracks one habit across a week. CompletedDays always holds exactly
// seven flags, Monday first.
type Habit struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id,omitempty" json:"userId"`
	Name          string             `bson:"name" json:"name"`
	CompletedDays []bool             `bson:"completed_days" json:"completedDays"`
}

// PasswordReset is a short-lived, bcrypt-hashed reset token bound to a user.
type PasswordReset struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id,omitempty" json:"userId"`
	TokenHash string             `bson:"token_hash" json:"-"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expiresAt"`
}

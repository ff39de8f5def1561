package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/taskmanager-ai/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStorage is a struct representing a MongoDB storage.
// It provides an interface to perform CRUD operations on the various
// collections of the planner database.
type MongoStorage struct {
	client *mongo.Client
	dbName string
}

// NewMongoStorage creates a new instance of MongoStorage.
// This function doesn't establish a connection to the MongoDB server.
// To connect to the server, use the Connect method of the returned MongoStorage instance.
func NewMongoStorage() *MongoStorage {
	return &MongoStorage{}
}

// Connect establishes a connection to the MongoDB server at the given URI and database name.
// Sets up indexes and unique constraints as necessary.
// Returns an error if any issues are encountered.
func (m *MongoStorage) Connect(dbName, uri string) error {

	// Set a timeout for the connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("error connecting to MongoDB: %v", err)
	}

	m.client = client
	m.dbName = dbName

	// Every user must have a unique email; lookups during login go through
	// this index as well.
	usersCollection := m.collection("users")
	emailIndexModel := mongo.IndexModel{
		Keys: bson.M{
			"email": 1, // 1 for ascending order
		},
		Options: options.Index().SetUnique(true),
	}
	_, err = usersCollection.Indexes().CreateOne(ctx, emailIndexModel)
	if err != nil {
		return fmt.Errorf("error creating email index: %v", err)
	}

	// All owned collections are queried by user_id on every request, so
	// each of them gets a user_id index.
	userIdIndexModel := mongo.IndexModel{
		Keys: bson.M{
			"user_id": 1,
		},
		Options: options.Index(),
	}
	for _, name := range []string{"tasks", "events", "reminders", "habits", "passwordResets"} {
		_, err = m.collection(name).Indexes().CreateOne(ctx, userIdIndexModel)
		if err != nil {
			return fmt.Errorf("error creating user_id index on %s: %v", name, err)
		}
	}

	// Routines are fetched by owner and day (or day range), so they get a
	// compound index on user_id and date.
	userIdDateIndexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "date", Value: 1},
		},
		Options: options.Index(),
	}
	_, err = m.collection("routines").Indexes().CreateOne(ctx, userIdDateIndexModel)
	if err != nil {
		return fmt.Errorf("error creating user_id and date index on routines: %v", err)
	}

	return nil
}

// Disconnect closes the connection to the MongoDB server.
// It should be called when the MongoStorage instance is no longer needed.
// Returns an error if the disconnection process fails.
func (m *MongoStorage) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := m.client.Disconnect(ctx)
	if err != nil {
		return fmt.Errorf("error disconnecting from MongoDB: %v", err)
	}

	return nil
}

func (m *MongoStorage) collection(name string) *mongo.Collection {
	return m.client.Database(m.dbName).Collection(name)
}

// ---------------------------------------------------------------- users

// UserCount returns the number of documents in the 'users' collection that match the given filter.
// Returns an error if the count operation fails.
func (m *MongoStorage) UserCount(ctx context.Context, filter interface{}) (int64, error) {
	count, err := m.collection("users").CountDocuments(ctx, filter)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// AddUser adds a new user document to the 'users' collection.
// Returns the added user instance and an error if the insert operation fails.
func (m *MongoStorage) AddUser(ctx context.Context, user *models.User) (*models.User, error) {
	result, err := m.collection("users").InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	user.ID = result.InsertedID.(primitive.ObjectID)
	return user, nil
}

// FindUser finds a user document in the 'users' collection that matches the given filter.
// Returns ErrNotFound if no user matches.
func (m *MongoStorage) FindUser(ctx context.Context, filter interface{}) (*models.User, error) {
	user := &models.User{}
	err := m.collection("users").FindOne(ctx, filter).Decode(user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser updates a user document in the 'users' collection that matches the given filter with the provided update.
// Returns the updated user as a User instance and an error if the update operation fails.
func (m *MongoStorage) UpdateUser(ctx context.Context, filter interface{}, update interface{}) (*models.User, error) {
	result, err := m.collection("users").UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return m.FindUser(ctx, filter)
}

// DeleteUser deletes a user document from the 'users' collection that matches the given filter.
// It also deletes all tasks, events, routines, reminders, habits and
// pending password resets owned by that user, so no orphaned documents
// survive an account deletion.
// Returns the result of the delete operation as a DeleteResult instance and an error if the delete operation fails.
func (m *MongoStorage) DeleteUser(ctx context.Context, filter interface{}) (*DeleteResult, error) {
	user, err := m.FindUser(ctx, filter)
	if err != nil {
		return nil, err
	}

	owned := bson.M{"user_id": user.ID}
	for _, name := range []string{"tasks", "events", "routines", "reminders", "habits", "passwordResets"} {
		_, err = m.collection(name).DeleteMany(ctx, owned)
		if err != nil {
			return nil, err
		}
	}

	result, err := m.collection("users").DeleteOne(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &DeleteResult{DeletedCount: result.DeletedCount}, nil
}

// ---------------------------------------------------------------- tasks

// AddTask adds a new task document to the 'tasks' collection.
// Returns the added task instance and an error if the insert operation fails.
func (m *MongoStorage) AddTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	result, err := m.collection("tasks").InsertOne(ctx, task)
	if err != nil {
		return nil, err
	}

	task.ID = result.InsertedID.(primitive.ObjectID)
	return task, nil
}

// FindTask finds a single task document matching the given filter.
// Returns ErrNotFound if no task matches.
func (m *MongoStorage) FindTask(ctx context.Context, filter interface{}) (*models.Task, error) {
	task := &models.Task{}
	err := m.collection("tasks").FindOne(ctx, filter).Decode(task)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// FindTasks finds task documents in the 'tasks' collection that match the given filter.
// Returns the found tasks as a slice of Task instances and an error if the find operation fails.
func (m *MongoStorage) FindTasks(ctx context.Context, filter interface{}) ([]models.Task, error) {
	cursor, err := m.collection("tasks").Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTask updates task documents matching the given filter with the provided update.
// Returns the result of the update operation as an UpdateResult instance and an error if the update operation fails.
func (m *MongoStorage) UpdateTask(ctx context.Context, filter interface{}, update interface{}) (*UpdateResult, error) {
	result, err := m.collection("tasks").UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{MatchedCount: result.MatchedCount, ModifiedCount: result.ModifiedCount}, nil
}

// DeleteTask deletes task documents matching the given filter.
// Returns the result of the delete operation as a DeleteResult instance and an error if the delete operation fails.
func (m *MongoStorage) DeleteTask(ctx context.Context, filter interface{}) (*DeleteResult, error) {
	result, err := m.collection("tasks").DeleteOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &DeleteResult{DeletedCount: result.DeletedCount}, nil
}

// TaskCount returns the number of documents in the 'tasks' collection that match the given filter.
func (m *MongoStorage) TaskCount(ctx context.Context, filter interface{}) (int64, error) {
	count, err := m.collection("tasks").CountDocuments(ctx, filter)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ---------------------------------------------------------------- events

// AddEvent adds a new calendar event document to the 'events' collection.
func (m *MongoStorage) AddEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	result, err := m.collection("events").InsertOne(ctx, event)
	if err != nil {
		return nil, err
	}

	event.ID = result.InsertedID.(primitive.ObjectID)
	return event, nil
}

// FindEvent finds a single event document matching the given filter.
// Returns ErrNotFound if no event matches.
func (m *MongoStorage) FindEvent(ctx context.Context, filter interface{}) (*models.Event, error) {
	event := &models.Event{}
	err := m.collection("events").FindOne(ctx, filter).Decode(event)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

// FindEvents finds event documents matching the given filter.
func (m *MongoStorage) FindEvents(ctx context.Context, filter interface{}) ([]models.Event, error) {
	cursor, err := m.collection("events").Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []models.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateEvent updates event documents matching the given filter with the provided update.
func (m *MongoStorage) UpdateEvent(ctx context.Context, filter interface{}, update interface{}) (*UpdateResult, error) {
	result, err := m.collection("events").UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{MatchedCount: result.MatchedCount, ModifiedCount: result.ModifiedCount}, nil
}

// DeleteEvent deletes event documents matching the given filter.
func (m *MongoStorage) DeleteEvent(ctx context.Context, filter interface{}) (*DeleteResult, error) {
	result, err := m.collection("events").DeleteOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &DeleteResult{DeletedCount: result.DeletedCount}, nil
}

// ---------------------------------------------------------------- routines

// AddRoutine adds a new routine entry to the 'routines' collection.
func (m *MongoStorage) AddRoutine(ctx context.Context, routine *models.Routine) (*models.Routine, error) {
	result, err := m.collection("routines").InsertOne(ctx, routine)
	if err != nil {
		return nil, err
	}

	routine.ID = result.InsertedID.(primitive.ObjectID)
	return routine, nil
}

// FindRoutines finds routine documents matching the given filter, sorted by
// date and time of day so callers get entries in schedule order.
func (m *MongoStorage) FindRoutines(ctx context.Context, filter interface{}) ([]models.Routine, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "time", Value: 1},
	})
	cursor, err := m.collection("routines").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	routines := []models.Routine{}
	if err := cursor.All(ctx, &routines); err != nil {
		return nil, err
	}
	return routines, nil
}

// UpdateRoutine updates routine documents matching the given filter with the provided update.
func (m *MongoStorage) UpdateRoutine(ctx context.Context, filter interface{}, update interface{}) (*UpdateResult, error) {
	result, err := m.collection("routines").UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{MatchedCount: result.MatchedCount, ModifiedCount: result.ModifiedCount}, nil
}

// DeleteRoutine deletes routine documents matching the given filter.
func (m *MongoStorage) DeleteRoutine(ctx context.Context, filter interface{}) (*DeleteResult, error) {
	result, err := m.collection("routines").DeleteOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &DeleteResult{DeletedCount: result.DeletedCount}, nil
}

// ---------------------------------------------------------------- reminders

// AddReminder adds a new reminder document to the 'reminders' collection.
func (m *MongoStorage) AddReminder(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	result, err := m.collection("reminders").InsertOne(ctx, reminder)
	if err != nil {
		return nil, err
	}

	reminder.ID = result.InsertedID.(primitive.ObjectID)
	return reminder, nil
}

// FindReminders finds reminder documents matching the given filter.
func (m *MongoStorage) FindReminders(ctx context.Context, filter interface{}) ([]models.Reminder, error) {
	cursor, err := m.collection("reminders").Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reminders := []models.Reminder{}
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, err
	}
	return reminders, nil
}

// UpdateReminder updates reminder documents matching the given filter with the provided update.
func (m *MongoStorage) UpdateReminder(ctx context.Context, filter interface{}, update interface{}) (*UpdateResult, error) {
	result, err := m.collection("reminders").UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{MatchedCount: result.MatchedCount, ModifiedCount: result.ModifiedCount}, nil
}

// DeleteReminder deletes reminder documents matching the given filter.
func (m *MongoStorage) DeleteReminder(ctx context.Context, filter interface{}) (*DeleteResult, error) {
	result, err := m.collection("reminders").DeleteOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &DeleteResult{DeletedCount: result.DeletedCount}, nil
}

// ---------------------------------------------------------------- habits

// AddHabit adds a new habit document to the 'habits' collection.
func (m *MongoStorage) AddHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	result, err := m.collection("habits").InsertOne(ctx, habit)
	if err != nil {
		return nil, err
	}

	habit.ID = result.InsertedID.(primitive.ObjectID)
	return habit, nil
}

// FindHabit finds a single habit document matching the given filter.
// Returns ErrNotFound if no habit matches.
func (m *MongoStorage) FindHabit(ctx context.Context, filter interface{}) (*models.Habit, error) {
	habit := &models.Habit{}
	err := m.collection("habits").FindOne(ctx, filter).Decode(habit)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return habit, nil
}

// FindHabits finds habit documents matching the given filter.
func (m *MongoStorage) FindHabits(ctx context.Context, filter interface{}) ([]models.Habit, error) {
	cursor, err := m.collection("habits").Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	habits := []models.Habit{}
	if err := cursor.All(ctx, &habits); err != nil {
		return nil, err
	}
	return habits, nil
}

// UpdateHabit updates habit documents matching the given filter with the provided update.
func (m *MongoStorage) UpdateHabit(ctx context.Context, filter interface{}, update interface{}) (*UpdateResult, error) {
	result, err := m.collection("habits").UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{MatchedCount: result.MatchedCount, ModifiedCount: result.ModifiedCount}, nil
}

// DeleteHabit deletes habit documents matching the given filter.
func (m *MongoStorage) DeleteHabit(ctx context.Context, filter interface{}) (*DeleteResult, error) {
	result, err := m.collection("habits").DeleteOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &DeleteResult{DeletedCount: result.DeletedCount}, nil
}

// ---------------------------------------------------------------- password resets

// AddPasswordReset adds a new password reset document to the 'passwordResets' collection.
func (m *MongoStorage) AddPasswordReset(ctx context.Context, reset *models.PasswordReset) (*models.PasswordReset, error) {
	result, err := m.collection("passwordResets").InsertOne(ctx, reset)
	if err != nil {
		return nil, err
	}

	reset.ID = result.InsertedID.(primitive.ObjectID)
	return reset, nil
}

// FindPasswordReset finds a password reset document matching the given filter.
// Returns ErrNotFound if no reset record matches.
func (m *MongoStorage) FindPasswordReset(ctx context.Context, filter interface{}) (*models.PasswordReset, error) {
	reset := &models.PasswordReset{}
	err := m.collection("passwordResets").FindOne(ctx, filter).Decode(reset)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return reset, nil
}

// DeletePasswordReset deletes password reset documents matching the given filter.
func (m *MongoStorage) DeletePasswordReset(ctx context.Context, filter interface{}) (*DeleteResult, error) {
	result, err := m.collection("passwordResets").DeleteMany(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &DeleteResult{DeletedCount: result.DeletedCount}, nil
}

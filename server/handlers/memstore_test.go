package handlers

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskmanager-ai/backend/models"
	storage "github.com/taskmanager-ai/backend/storage/persistent"
)

// memStore is an in-memory StorageInterface double for handler tests. Every
// record lives as a bson document, so the same bson.M filters the handlers
// build against MongoDB are evaluated here with a small matcher that
// understands equality plus the $gte, $lte and $ne operators the handlers
// actually use.
type memStore struct {
	mu        sync.Mutex
	users     []bson.M
	tasks     []bson.M
	events    []bson.M
	routines  []bson.M
	reminders []bson.M
	habits    []bson.M
	resets    []bson.M
}

func newMemStore() *memStore {
	return &memStore{}
}

func toDoc(v interface{}) bson.M {
	raw, err := bson.Marshal(v)
	if err != nil {
		panic(err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		panic(err)
	}
	return doc
}

func fromDoc(doc bson.M, out interface{}) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		panic(err)
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		panic(err)
	}
}

// normalize round-trips a value through bson so native Go values compare
// equal to their decoded counterparts (time.Time vs primitive.DateTime and
// so on).
func normalize(v interface{}) interface{} {
	doc := toDoc(bson.M{"v": v})
	return doc["v"]
}

func lookupPath(doc bson.M, path string) interface{} {
	parts := strings.Split(path, ".")
	var cur interface{} = doc
	for _, part := range parts {
		m, ok := cur.(bson.M)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func setPath(doc bson.M, path string, value interface{}) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(bson.M)
		if !ok {
			next = bson.M{}
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

func isOperatorDoc(v interface{}) bool {
	m, ok := v.(bson.M)
	if !ok || len(m) == 0 {
		return false
	}
	for key := range m {
		if !strings.HasPrefix(key, "$") {
			return false
		}
	}
	return true
}

func matchOps(got interface{}, ops bson.M) bool {
	for op, want := range ops {
		switch op {
		case "$ne":
			if reflect.DeepEqual(normalize(got), normalize(want)) {
				return false
			}
		case "$gte":
			gs, ok1 := got.(string)
			ws, ok2 := want.(string)
			if !ok1 || !ok2 || gs < ws {
				return false
			}
		case "$lte":
			gs, ok1 := got.(string)
			ws, ok2 := want.(string)
			if !ok1 || !ok2 || gs > ws {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func matches(doc bson.M, filter interface{}) bool {
	f, ok := filter.(bson.M)
	if !ok {
		return false
	}
	for key, want := range f {
		got := lookupPath(doc, key)
		if isOperatorDoc(want) {
			if !matchOps(got, want.(bson.M)) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(normalize(got), normalize(want)) {
			return false
		}
	}
	return true
}

func applySet(doc bson.M, update interface{}) {
	u, ok := update.(bson.M)
	if !ok {
		return
	}
	set, ok := u["$set"].(bson.M)
	if !ok {
		return
	}
	for key, value := range set {
		setPath(doc, key, normalize(value))
	}
}

func insert(docs *[]bson.M, v interface{}) bson.M {
	doc := toDoc(v)
	if id, ok := doc["_id"].(primitive.ObjectID); !ok || id.IsZero() {
		doc["_id"] = primitive.NewObjectID()
	}
	*docs = append(*docs, doc)
	return doc
}

func findOne(docs []bson.M, filter interface{}) (bson.M, error) {
	for _, doc := range docs {
		if matches(doc, filter) {
			return doc, nil
		}
	}
	return nil, storage.ErrNotFound
}

func findAll(docs []bson.M, filter interface{}) []bson.M {
	out := []bson.M{}
	for _, doc := range docs {
		if matches(doc, filter) {
			out = append(out, doc)
		}
	}
	return out
}

func updateAll(docs []bson.M, filter, update interface{}) *storage.UpdateResult {
	res := &storage.UpdateResult{}
	for _, doc := range docs {
		if matches(doc, filter) {
			applySet(doc, update)
			res.MatchedCount++
			res.ModifiedCount++
		}
	}
	return res
}

func deleteAll(docs *[]bson.M, filter interface{}) *storage.DeleteResult {
	res := &storage.DeleteResult{}
	kept := (*docs)[:0]
	for _, doc := range *docs {
		if matches(doc, filter) {
			res.DeletedCount++
			continue
		}
		kept = append(kept, doc)
	}
	*docs = kept
	return res
}

func (s *memStore) Connect(dbName, uri string) error { return nil }
func (s *memStore) Disconnect() error                { return nil }

func (s *memStore) AddUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := insert(&s.users, user)
	out := &models.User{}
	fromDoc(doc, out)
	return out, nil
}

func (s *memStore) FindUser(ctx context.Context, filter interface{}) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := findOne(s.users, filter)
	if err != nil {
		return nil, err
	}
	out := &models.User{}
	fromDoc(doc, out)
	return out, nil
}

func (s *memStore) UpdateUser(ctx context.Context, filter, update interface{}) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := findOne(s.users, filter)
	if err != nil {
		return nil, err
	}
	applySet(doc, update)
	out := &models.User{}
	fromDoc(doc, out)
	return out, nil
}

func (s *memStore) DeleteUser(ctx context.Context, filter interface{}) (*storage.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := findOne(s.users, filter)
	if err != nil {
		return &storage.DeleteResult{}, nil
	}
	owner := bson.M{"user_id": doc["_id"]}
	deleteAll(&s.tasks, owner)
	deleteAll(&s.events, owner)
	deleteAll(&s.routines, owner)
	deleteAll(&s.reminders, owner)
	deleteAll(&s.habits, owner)
	deleteAll(&s.resets, owner)
	return deleteAll(&s.users, filter), nil
}

func (s *memStore) UserCount(ctx context.Context, filter interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(findAll(s.users, filter))), nil
}

func (s *memStore) AddTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := insert(&s.tasks, task)
	out := &models.Task{}
	fromDoc(doc, out)
	return out, nil
}

func (s *memStore) FindTask(ctx context.Context, filter interface{}) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := findOne(s.tasks, filter)
	if err != nil {
		return nil, err
	}
	out := &models.Task{}
	fromDoc(doc, out)
	return out, nil
}

func (s *memStore) FindTasks(ctx context.Context, filter interface{}) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Task{}
	for _, doc := range findAll(s.tasks, filter) {
		var task models.Task
		fromDoc(doc, &task)
		out = append(out, task)
	}
	return out, nil
}

func (s *memStore) UpdateTask(ctx context.Context, filter, update interface{}) (*storage.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateAll(s.tasks, filter, update), nil
}

func (s *memStore) DeleteTask(ctx context.Context, filter interface{}) (*storage.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteAll(&s.tasks, filter), nil
}

func (s *memStore) TaskCount(ctx context.Context, filter interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(findAll(s.tasks, filter))), nil
}

func (s *memStore) AddEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := insert(&s.events, event)
	out := &models.Event{}
	fromDoc(doc, out)
	return out, nil
}

func (s *memStore) FindEvent(ctx context.Context, filter interface{}) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := findOne(s.events, filter)
	if err != nil {
		return nil, err
	}
	out := &models.Event{}
	fromDoc(doc, out)
	return out, nil
}

func (s *memStore) FindEvents(ctx context.Context, filter interface{}) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Event{}
	for _, doc := range findAll(s.events, filter) {
		var event models.Event
		fromDoc(doc, &event)
		out = append(out, event)
	}
	return out, nil
}

func (s *memStore) UpdateEvent(ctx context.Context, filter, update interface{}) (*storage.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateAll(s.events, filter, update), nil
}

func (s *memStore) DeleteEvent(ctx context.Context, filter interface{}) (*storage.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteAll(&s.events, filter), nil
}

func (s *memStore) AddRoutine(ctx context.Context, routine *models.Routine) (*models.Routine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := insert(&s.routines, routine)
	out := &models.Routine{}
	fromDoc(doc, out)
	return out, nil
}

func (s *memStore) FindRoutines(ctx context.Context, filter interface{}) ([]models.Routine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Routine{}
	for _, doc := range findAll(s.routines, filter) {
		var routine models.Routine
		fromDoc(doc, &routine)
		out = append(out, routine)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (s *memStore) UpdateRoutine(ctx context.Context, filter, update interface{}) (*storage.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateAll(s.routines, filter, update), nil
}

func (s *memStore) DeleteRoutine(ctx context.Context, filter interface{}) (*storage.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteAll(&s.routines, filter), nil
}

func (s *memStore) AddReminder(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := insert(&s.reminders, reminder)
	out := &models.Reminder{}
	fromDoc(doc, out)
	return out, nil
}

func (s *memStore) FindReminders(ctx context.Context, filter interface{}) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Reminder{}
	for _, doc := range findAll(s.reminders, filter) {
		var reminder models.Reminder
		fromDoc(doc, &reminder)
		out = append(out, reminder)
	}
	return out, nil
}

func (s *memStore) UpdateReminder(ctx context.Context, filter, update interface{}) (*storage.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateAll(s.reminders, filter, update), nil
}

func (s *memStore) DeleteReminder(ctx context.Context, filter interface{}) (*storage.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteAll(&s.reminders, filter), nil
}

func (s *memStore) AddHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := insert(&s.habits, habit)
	out := &models.Habit{}
	fromDoc(doc, out)
	return out, nil
}

func (s *memStore) FindHabit(ctx context.Context, filter interface{}) (*models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := findOne(s.habits, filter)
	if err != nil {
		return nil, err
	}
	out := &models.Habit{}
	fromDoc(doc, out)
	return out, nil
}

func (s *memStore) FindHabits(ctx context.Context, filter interface{}) ([]models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Habit{}
	for _, doc := range findAll(s.habits, filter) {
		var habit models.Habit
		fromDoc(doc, &habit)
		out = append(out, habit)
	}
	return out, nil
}

func (s *memStore) UpdateHabit(ctx context.Context, filter, update interface{}) (*storage.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateAll(s.habits, filter, update), nil
}

func (s *memStore) DeleteHabit(ctx context.Context, filter interface{}) (*storage.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteAll(&s.habits, filter), nil
}

func (s *memStore) AddPasswordReset(ctx context.Context, reset *models.PasswordReset) (*models.PasswordReset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := insert(&s.resets, reset)
	out := &models.PasswordReset{}
	fromDoc(doc, out)
	return out, nil
}

func (s *memStore) FindPasswordReset(ctx context.Context, filter interface{}) (*models.PasswordReset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := findOne(s.resets, filter)
	if err != nil {
		return nil, err
	}
	out := &models.PasswordReset{}
	fromDoc(doc, out)
	return out, nil
}

func (s *memStore) DeletePasswordReset(ctx context.Context, filter interface{}) (*storage.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteAll(&s.resets, filter), nil
}

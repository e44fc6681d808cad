package store

import (
	"context"
	"sort"
	"sync"

	"forumhub/internal/model"
)

// MemoryDB is an in-memory DB used by tests and DB-less development. A single
// mutex serializes transactions, which gives WithTx the same isolation the
// Postgres implementation gets from row locking.
type MemoryDB struct {
	mu sync.Mutex

	seq       int64
	users     map[string]*memRecord[model.User]
	courses   map[string]*memRecord[model.Course]
	topics    map[string]*memRecord[model.Topic]
	responses map[string]*memRecord[model.Response]
}

type memRecord[T any] struct {
	value T
	seq   int64
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		users:     make(map[string]*memRecord[model.User]),
		courses:   make(map[string]*memRecord[model.Course]),
		topics:    make(map[string]*memRecord[model.Topic]),
		responses: make(map[string]*memRecord[model.Response]),
	}
}

func (db *MemoryDB) WithTx(ctx context.Context, fn func(Stores) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	// Run against a snapshot so a failed fn leaves nothing applied.
	snapshot := db.clone()
	if err := fn(memStores{db: db}); err != nil {
		db.restore(snapshot)
		return err
	}
	return nil
}

func (db *MemoryDB) clone() *MemoryDB {
	clone := NewMemoryDB()
	clone.seq = db.seq
	for id, rec := range db.users {
		user := rec.value
		user.Roles = append([]model.Role(nil), rec.value.Roles...)
		clone.users[id] = &memRecord[model.User]{value: user, seq: rec.seq}
	}
	for id, rec := range db.courses {
		clone.courses[id] = &memRecord[model.Course]{value: rec.value, seq: rec.seq}
	}
	for id, rec := range db.topics {
		clone.topics[id] = &memRecord[model.Topic]{value: rec.value, seq: rec.seq}
	}
	for id, rec := range db.responses {
		clone.responses[id] = &memRecord[model.Response]{value: rec.value, seq: rec.seq}
	}
	return clone
}

func (db *MemoryDB) restore(snapshot *MemoryDB) {
	db.seq = snapshot.seq
	db.users = snapshot.users
	db.courses = snapshot.courses
	db.topics = snapshot.topics
	db.responses = snapshot.responses
}

func (db *MemoryDB) Users() UserStore         { return &memUserStore{db: db, locked: false} }
func (db *MemoryDB) Courses() CourseStore     { return &memCourseStore{db: db, locked: false} }
func (db *MemoryDB) Topics() TopicStore       { return &memTopicStore{db: db, locked: false} }
func (db *MemoryDB) Responses() ResponseStore { return &memResponseStore{db: db, locked: false} }

// memStores is handed to WithTx callbacks; the DB mutex is already held.
type memStores struct {
	db *MemoryDB
}

func (s memStores) Users() UserStore         { return &memUserStore{db: s.db, locked: true} }
func (s memStores) Courses() CourseStore     { return &memCourseStore{db: s.db, locked: true} }
func (s memStores) Topics() TopicStore       { return &memTopicStore{db: s.db, locked: true} }
func (s memStores) Responses() ResponseStore { return &memResponseStore{db: s.db, locked: true} }

func (db *MemoryDB) lock(alreadyLocked bool) func() {
	if alreadyLocked {
		return func() {}
	}
	db.mu.Lock()
	return db.mu.Unlock
}

func (db *MemoryDB) nextSeq() int64 {
	db.seq++
	return db.seq
}

// Users

type memUserStore struct {
	db     *MemoryDB
	locked bool
}

func (s *memUserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	defer s.db.lock(s.locked)()
	rec, ok := s.db.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	user := rec.value
	user.Roles = append([]model.Role(nil), rec.value.Roles...)
	return &user, nil
}

func (s *memUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	defer s.db.lock(s.locked)()
	for _, rec := range s.db.users {
		if rec.value.Email == email {
			user := rec.value
			user.Roles = append([]model.Role(nil), rec.value.Roles...)
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	defer s.db.lock(s.locked)()
	for _, rec := range s.db.users {
		if rec.value.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) Create(ctx context.Context, user *model.User) error {
	defer s.db.lock(s.locked)()
	for _, rec := range s.db.users {
		if rec.value.Email == user.Email {
			return ErrConflict
		}
	}
	stored := *user
	stored.Roles = append([]model.Role(nil), user.Roles...)
	s.db.users[user.ID] = &memRecord[model.User]{value: stored, seq: s.db.nextSeq()}
	return nil
}

func (s *memUserStore) Update(ctx context.Context, user *model.User) error {
	defer s.db.lock(s.locked)()
	rec, ok := s.db.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	stored := *user
	stored.Roles = append([]model.Role(nil), user.Roles...)
	rec.value = stored
	return nil
}

func (s *memUserStore) Delete(ctx context.Context, id string) error {
	defer s.db.lock(s.locked)()
	if _, ok := s.db.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.db.users, id)
	return nil
}

func (s *memUserStore) List(ctx context.Context) ([]model.User, error) {
	defer s.db.lock(s.locked)()
	records := make([]*memRecord[model.User], 0, len(s.db.users))
	for _, rec := range s.db.users {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].seq < records[j].seq })
	users := make([]model.User, 0, len(records))
	for _, rec := range records {
		user := rec.value
		user.Roles = append([]model.Role(nil), rec.value.Roles...)
		users = append(users, user)
	}
	return users, nil
}

// Courses

type memCourseStore struct {
	db     *MemoryDB
	locked bool
}

func (s *memCourseStore) GetByID(ctx context.Context, id string) (*model.Course, error) {
	defer s.db.lock(s.locked)()
	rec, ok := s.db.courses[id]
	if !ok {
		return nil, ErrNotFound
	}
	course := rec.value
	return &course, nil
}

func (s *memCourseStore) Create(ctx context.Context, course *model.Course) error {
	defer s.db.lock(s.locked)()
	s.db.courses[course.ID] = &memRecord[model.Course]{value: *course, seq: s.db.nextSeq()}
	return nil
}

func (s *memCourseStore) List(ctx context.Context) ([]model.Course, error) {
	defer s.db.lock(s.locked)()
	courses := make([]model.Course, 0, len(s.db.courses))
	for _, rec := range s.db.courses {
		courses = append(courses, rec.value)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })
	return courses, nil
}

// Topics

type memTopicStore struct {
	db     *MemoryDB
	locked bool
}

func (s *memTopicStore) GetByID(ctx context.Context, id string) (*model.Topic, error) {
	defer s.db.lock(s.locked)()
	rec, ok := s.db.topics[id]
	if !ok {
		return nil, ErrNotFound
	}
	topic := rec.value
	return &topic, nil
}

func (s *memTopicStore) GetByIDForUpdate(ctx context.Context, id string) (*model.Topic, error) {
	return s.GetByID(ctx, id)
}

func (s *memTopicStore) ExistsByTitleAndBody(ctx context.Context, title, body string) (bool, error) {
	defer s.db.lock(s.locked)()
	for _, rec := range s.db.topics {
		if rec.value.Title == title && rec.value.Body == body {
			return true, nil
		}
	}
	return false, nil
}

func (s *memTopicStore) Create(ctx context.Context, topic *model.Topic) error {
	defer s.db.lock(s.locked)()
	s.db.topics[topic.ID] = &memRecord[model.Topic]{value: *topic, seq: s.db.nextSeq()}
	return nil
}

func (s *memTopicStore) Update(ctx context.Context, topic *model.Topic) error {
	defer s.db.lock(s.locked)()
	rec, ok := s.db.topics[topic.ID]
	if !ok {
		return ErrNotFound
	}
	rec.value = *topic
	return nil
}

func (s *memTopicStore) Delete(ctx context.Context, id string) error {
	defer s.db.lock(s.locked)()
	if _, ok := s.db.topics[id]; !ok {
		return ErrNotFound
	}
	delete(s.db.topics, id)
	for responseID, rec := range s.db.responses {
		if rec.value.TopicID == id {
			delete(s.db.responses, responseID)
		}
	}
	return nil
}

func (s *memTopicStore) sorted() []*memRecord[model.Topic] {
	records := make([]*memRecord[model.Topic], 0, len(s.db.topics))
	for _, rec := range s.db.topics {
		records = append(records, rec)
	}
	// newest first, insertion order breaking timestamp ties
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.value.CreatedAt.Equal(b.value.CreatedAt) {
			return a.value.CreatedAt.After(b.value.CreatedAt)
		}
		return a.seq > b.seq
	})
	return records
}

func paginateTopics(records []*memRecord[model.Topic], page Page) []model.Topic {
	start := page.Offset()
	if start > len(records) {
		start = len(records)
	}
	end := start + page.Size
	if page.Size <= 0 || end > len(records) {
		end = len(records)
	}
	topics := make([]model.Topic, 0, end-start)
	for _, rec := range records[start:end] {
		topics = append(topics, rec.value)
	}
	return topics
}

func (s *memTopicStore) List(ctx context.Context, page Page) ([]model.Topic, int64, error) {
	defer s.db.lock(s.locked)()
	records := s.sorted()
	return paginateTopics(records, page), int64(len(records)), nil
}

func (s *memTopicStore) ListByStatus(ctx context.Context, status model.TopicStatus, page Page) ([]model.Topic, int64, error) {
	defer s.db.lock(s.locked)()
	var records []*memRecord[model.Topic]
	for _, rec := range s.sorted() {
		if rec.value.Status == status {
			records = append(records, rec)
		}
	}
	return paginateTopics(records, page), int64(len(records)), nil
}

func (s *memTopicStore) Count(ctx context.Context) (int64, error) {
	defer s.db.lock(s.locked)()
	return int64(len(s.db.topics)), nil
}

func (s *memTopicStore) CountByStatus(ctx context.Context, status model.TopicStatus) (int64, error) {
	defer s.db.lock(s.locked)()
	var count int64
	for _, rec := range s.db.topics {
		if rec.value.Status == status {
			count++
		}
	}
	return count, nil
}

// Responses

type memResponseStore struct {
	db     *MemoryDB
	locked bool
}

func (s *memResponseStore) GetByID(ctx context.Context, id string) (*model.Response, error) {
	defer s.db.lock(s.locked)()
	rec, ok := s.db.responses[id]
	if !ok {
		return nil, ErrNotFound
	}
	response := rec.value
	return &response, nil
}

func (s *memResponseStore) Create(ctx context.Context, response *model.Response) error {
	defer s.db.lock(s.locked)()
	s.db.responses[response.ID] = &memRecord[model.Response]{value: *response, seq: s.db.nextSeq()}
	return nil
}

func (s *memResponseStore) Update(ctx context.Context, response *model.Response) error {
	defer s.db.lock(s.locked)()
	rec, ok := s.db.responses[response.ID]
	if !ok {
		return ErrNotFound
	}
	rec.value = *response
	return nil
}

func (s *memResponseStore) Delete(ctx context.Context, id string) error {
	defer s.db.lock(s.locked)()
	if _, ok := s.db.responses[id]; !ok {
		return ErrNotFound
	}
	delete(s.db.responses, id)
	return nil
}

func (s *memResponseStore) ListByTopic(ctx context.Context, topicID string) ([]model.Response, error) {
	defer s.db.lock(s.locked)()
	records := make([]*memRecord[model.Response], 0)
	for _, rec := range s.db.responses {
		if rec.value.TopicID == topicID {
			records = append(records, rec)
		}
	}
	// oldest first
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.value.CreatedAt.Equal(b.value.CreatedAt) {
			return a.value.CreatedAt.Before(b.value.CreatedAt)
		}
		return a.seq < b.seq
	})
	responses := make([]model.Response, 0, len(records))
	for _, rec := range records {
		responses = append(responses, rec.value)
	}
	return responses, nil
}

func (s *memResponseStore) FindSolution(ctx context.Context, topicID string) (*model.Response, error) {
	defer s.db.lock(s.locked)()
	for _, rec := range s.db.responses {
		if rec.value.TopicID == topicID && rec.value.Solution {
			response := rec.value
			return &response, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memResponseStore) CountByTopic(ctx context.Context, topicID string) (int64, error) {
	defer s.db.lock(s.locked)()
	var count int64
	for _, rec := range s.db.responses {
		if rec.value.TopicID == topicID {
			count++
		}
	}
	return count, nil
}

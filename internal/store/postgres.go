package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"forumhub/internal/model"
)

func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so the same store
// code serves pooled and transaction-scoped access.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresDB struct {
	pool *pgxpool.Pool
	pgStores
}

func NewPostgresDB(pool *pgxpool.Pool) *PostgresDB {
	return &PostgresDB{pool: pool, pgStores: newPGStores(pool, false)}
}

func (db *PostgresDB) WithTx(ctx context.Context, fn func(Stores) error) error {
	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(newPGStores(tx, true)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type pgStores struct {
	users     *pgUserStore
	courses   *pgCourseStore
	topics    *pgTopicStore
	responses *pgResponseStore
}

func newPGStores(q querier, inTx bool) pgStores {
	return pgStores{
		users:     &pgUserStore{q: q},
		courses:   &pgCourseStore{q: q},
		topics:    &pgTopicStore{q: q, inTx: inTx},
		responses: &pgResponseStore{q: q},
	}
}

func (s pgStores) Users() UserStore         { return s.users }
func (s pgStores) Courses() CourseStore     { return s.courses }
func (s pgStores) Topics() TopicStore       { return s.topics }
func (s pgStores) Responses() ResponseStore { return s.responses }

func mapPGError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}

// Users

type pgUserStore struct {
	q querier
}

func (s *pgUserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.getBy(ctx, `WHERE id = $1`, id)
}

func (s *pgUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getBy(ctx, `WHERE email = $1`, email)
}

func (s *pgUserStore) getBy(ctx context.Context, where string, arg string) (*model.User, error) {
	var user model.User
	row := s.q.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users
	`+where, arg)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		return nil, mapPGError(err)
	}
	roles, err := s.loadRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return &user, nil
}

func (s *pgUserStore) loadRoles(ctx context.Context, userID string) ([]model.Role, error) {
	rows, err := s.q.Query(ctx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, model.Role(role))
	}
	return roles, rows.Err()
}

func (s *pgUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (s *pgUserStore) Create(ctx context.Context, user *model.User) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return mapPGError(err)
	}
	return s.saveRoles(ctx, user.ID, user.Roles)
}

func (s *pgUserStore) Update(ctx context.Context, user *model.User) error {
	_, err := s.q.Exec(ctx, `
		UPDATE users SET name = $1, email = $2, password_hash = $3 WHERE id = $4
	`, user.Name, user.Email, user.PasswordHash, user.ID)
	if err != nil {
		return mapPGError(err)
	}
	if _, err := s.q.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, user.ID); err != nil {
		return err
	}
	return s.saveRoles(ctx, user.ID, user.Roles)
}

func (s *pgUserStore) saveRoles(ctx context.Context, userID string, roles []model.Role) error {
	for _, role := range roles {
		_, err := s.q.Exec(ctx, `
			INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, userID, string(role))
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *pgUserStore) Delete(ctx context.Context, id string) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgUserStore) List(ctx context.Context) ([]model.User, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var user model.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range users {
		roles, err := s.loadRoles(ctx, users[i].ID)
		if err != nil {
			return nil, err
		}
		users[i].Roles = roles
	}
	return users, nil
}

// Courses

type pgCourseStore struct {
	q querier
}

func (s *pgCourseStore) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	row := s.q.QueryRow(ctx, `SELECT id, name, category FROM courses WHERE id = $1`, id)
	if err := row.Scan(&course.ID, &course.Name, &course.Category); err != nil {
		return nil, mapPGError(err)
	}
	return &course, nil
}

func (s *pgCourseStore) Create(ctx context.Context, course *model.Course) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO courses (id, name, category) VALUES ($1, $2, $3)
	`, course.ID, course.Name, course.Category)
	return mapPGError(err)
}

func (s *pgCourseStore) List(ctx context.Context) ([]model.Course, error) {
	rows, err := s.q.Query(ctx, `SELECT id, name, category FROM courses ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var course model.Course
		if err := rows.Scan(&course.ID, &course.Name, &course.Category); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

// Topics

type pgTopicStore struct {
	q    querier
	inTx bool
}

const topicColumns = `id, title, body, created_at, status, author_id, course_id`

func scanTopic(row pgx.Row) (*model.Topic, error) {
	var topic model.Topic
	err := row.Scan(&topic.ID, &topic.Title, &topic.Body, &topic.CreatedAt, &topic.Status, &topic.AuthorID, &topic.CourseID)
	if err != nil {
		return nil, mapPGError(err)
	}
	return &topic, nil
}

func (s *pgTopicStore) GetByID(ctx context.Context, id string) (*model.Topic, error) {
	return scanTopic(s.q.QueryRow(ctx, `SELECT `+topicColumns+` FROM topics WHERE id = $1`, id))
}

func (s *pgTopicStore) GetByIDForUpdate(ctx context.Context, id string) (*model.Topic, error) {
	if !s.inTx {
		return s.GetByID(ctx, id)
	}
	return scanTopic(s.q.QueryRow(ctx, `SELECT `+topicColumns+` FROM topics WHERE id = $1 FOR UPDATE`, id))
}

func (s *pgTopicStore) ExistsByTitleAndBody(ctx context.Context, title, body string) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM topics WHERE title = $1 AND body = $2)
	`, title, body).Scan(&exists)
	return exists, err
}

func (s *pgTopicStore) Create(ctx context.Context, topic *model.Topic) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO topics (id, title, body, created_at, status, author_id, course_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, topic.ID, topic.Title, topic.Body, topic.CreatedAt, topic.Status, topic.AuthorID, topic.CourseID)
	return mapPGError(err)
}

func (s *pgTopicStore) Update(ctx context.Context, topic *model.Topic) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE topics SET title = $1, body = $2, status = $3 WHERE id = $4
	`, topic.Title, topic.Body, topic.Status, topic.ID)
	if err != nil {
		return mapPGError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgTopicStore) Delete(ctx context.Context, id string) error {
	// responses go with the topic via ON DELETE CASCADE
	tag, err := s.q.Exec(ctx, `DELETE FROM topics WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgTopicStore) List(ctx context.Context, page Page) ([]model.Topic, int64, error) {
	total, err := s.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.q.Query(ctx, `
		SELECT `+topicColumns+` FROM topics
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	topics, err := collectTopics(rows)
	return topics, total, err
}

func (s *pgTopicStore) ListByStatus(ctx context.Context, status model.TopicStatus, page Page) ([]model.Topic, int64, error) {
	total, err := s.CountByStatus(ctx, status)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.q.Query(ctx, `
		SELECT `+topicColumns+` FROM topics
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, status, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	topics, err := collectTopics(rows)
	return topics, total, err
}

func collectTopics(rows pgx.Rows) ([]model.Topic, error) {
	defer rows.Close()
	var topics []model.Topic
	for rows.Next() {
		var topic model.Topic
		err := rows.Scan(&topic.ID, &topic.Title, &topic.Body, &topic.CreatedAt, &topic.Status, &topic.AuthorID, &topic.CourseID)
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

func (s *pgTopicStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.q.QueryRow(ctx, `SELECT COUNT(*) FROM topics`).Scan(&count)
	return count, err
}

func (s *pgTopicStore) CountByStatus(ctx context.Context, status model.TopicStatus) (int64, error) {
	var count int64
	err := s.q.QueryRow(ctx, `SELECT COUNT(*) FROM topics WHERE status = $1`, status).Scan(&count)
	return count, err
}

// Responses

type pgResponseStore struct {
	q querier
}

const responseColumns = `id, message, created_at, solution, author_id, topic_id`

func scanResponse(row pgx.Row) (*model.Response, error) {
	var response model.Response
	err := row.Scan(&response.ID, &response.Message, &response.CreatedAt, &response.Solution, &response.AuthorID, &response.TopicID)
	if err != nil {
		return nil, mapPGError(err)
	}
	return &response, nil
}

func (s *pgResponseStore) GetByID(ctx context.Context, id string) (*model.Response, error) {
	return scanResponse(s.q.QueryRow(ctx, `SELECT `+responseColumns+` FROM responses WHERE id = $1`, id))
}

func (s *pgResponseStore) Create(ctx context.Context, response *model.Response) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO responses (id, message, created_at, solution, author_id, topic_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, response.ID, response.Message, response.CreatedAt, response.Solution, response.AuthorID, response.TopicID)
	return mapPGError(err)
}

func (s *pgResponseStore) Update(ctx context.Context, response *model.Response) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE responses SET message = $1, solution = $2 WHERE id = $3
	`, response.Message, response.Solution, response.ID)
	if err != nil {
		return mapPGError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgResponseStore) Delete(ctx context.Context, id string) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM responses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgResponseStore) ListByTopic(ctx context.Context, topicID string) ([]model.Response, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+responseColumns+` FROM responses
		WHERE topic_id = $1
		ORDER BY created_at ASC
	`, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []model.Response
	for rows.Next() {
		var response model.Response
		err := rows.Scan(&response.ID, &response.Message, &response.CreatedAt, &response.Solution, &response.AuthorID, &response.TopicID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}
	return responses, rows.Err()
}

func (s *pgResponseStore) FindSolution(ctx context.Context, topicID string) (*model.Response, error) {
	return scanResponse(s.q.QueryRow(ctx, `
		SELECT `+responseColumns+` FROM responses
		WHERE topic_id = $1 AND solution = true
	`, topicID))
}

func (s *pgResponseStore) CountByTopic(ctx context.Context, topicID string) (int64, error) {
	var count int64
	err := s.q.QueryRow(ctx, `SELECT COUNT(*) FROM responses WHERE topic_id = $1`, topicID).Scan(&count)
	return count, err
}

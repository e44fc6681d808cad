package model

import "time"

// Role is a named permission profile. Role names are matched case-sensitively.
type Role string

const (
	RoleUser      Role = "USUARIO"
	RoleModerator Role = "MODERADOR"
	RoleAdmin     Role = "ADMIN"
)

type TopicStatus string

const (
	StatusOpen   TopicStatus = "OPEN"
	StatusClosed TopicStatus = "CLOSED"
)

func ParseTopicStatus(s string) (TopicStatus, bool) {
	switch TopicStatus(s) {
	case StatusOpen, StatusClosed:
		return TopicStatus(s), true
	}
	return "", false
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	Roles        []Role
}

func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) IsModerator() bool {
	return u.HasRole(RoleModerator) || u.HasRole(RoleAdmin)
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// Course is an immutable reference entity; topics point at it by ID.
type Course struct {
	ID       string
	Name     string
	Category string
}

type Topic struct {
	ID        string
	Title     string
	Body      string
	CreatedAt time.Time
	Status    TopicStatus
	AuthorID  string
	CourseID  string
}

func (t *Topic) IsAuthor(u *User) bool {
	return t.AuthorID == u.ID
}

func (t *Topic) Close() {
	t.Status = StatusClosed
}

func (t *Topic) Open() {
	t.Status = StatusOpen
}

type Response struct {
	ID        string
	Message   string
	CreatedAt time.Time
	Solution  bool
	AuthorID  string
	TopicID   string
}

func (r *Response) IsAuthor(u *User) bool {
	return r.AuthorID == u.ID
}

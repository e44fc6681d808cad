package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"forumhub/internal/auth"
	"forumhub/internal/config"
	"forumhub/internal/model"
	"forumhub/internal/service"
	"forumhub/internal/store"
)

const statsCacheKey = "forumhub:stats"

type Server struct {
	cfg       config.Config
	db        store.DB
	users     *service.UserService
	topics    *service.TopicService
	responses *service.ResponseService
	redis     *redis.Client
}

func NewServer(cfg config.Config, db store.DB, redisClient *redis.Client) *Server {
	return &Server{
		cfg:       cfg,
		db:        db,
		users:     service.NewUserService(db),
		topics:    service.NewTopicService(db),
		responses: service.NewResponseService(db),
		redis:     redisClient,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Get("/topics", s.handleListTopics)
	r.Get("/topics/{topicID}", s.handleGetTopic)
	r.Get("/topics/{topicID}/responses", s.handleListResponses)
	r.Get("/topics/{topicID}/solution", s.handleGetSolution)
	r.Get("/courses", s.handleListCourses)
	r.Get("/stats", s.handleStats)

	r.With(s.authMiddleware).Post("/topics", s.handleCreateTopic)
	r.With(s.authMiddleware).Put("/topics/{topicID}", s.handleUpdateTopic)
	r.With(s.authMiddleware).Delete("/topics/{topicID}", s.handleDeleteTopic)
	r.With(s.authMiddleware).Put("/topics/{topicID}/close", s.handleCloseTopic)
	r.With(s.authMiddleware).Put("/topics/{topicID}/open", s.handleOpenTopic)
	r.With(s.authMiddleware).Put("/topics/{topicID}/status", s.handleSetTopicStatus)
	r.With(s.authMiddleware).Post("/topics/{topicID}/responses", s.handleCreateResponse)
	r.With(s.authMiddleware).Put("/responses/{responseID}/solution", s.handleMarkSolution)
	r.With(s.authMiddleware).Delete("/responses/{responseID}/solution", s.handleUnmarkSolution)
	r.With(s.authMiddleware).Delete("/responses/{responseID}", s.handleDeleteResponse)
	r.With(s.authMiddleware).Get("/responses/{responseID}/permissions", s.handleResponsePermissions)

	r.With(s.authMiddleware).Post("/courses", s.handleCreateCourse)
	r.With(s.authMiddleware).Get("/users", s.handleListUsers)
	r.With(s.authMiddleware).Delete("/users/{userID}", s.handleDeleteUser)
	r.With(s.authMiddleware).Post("/users/{userID}/roles", s.handleAddRole)
	r.With(s.authMiddleware).Delete("/users/{userID}/roles/{role}", s.handleRemoveRole)

	return r
}

// Auth

type userKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		claims, err := auth.ParseToken(s.cfg.JWTSecret, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		// Resolve the acting user from the store so role changes take
		// effect without re-issuing tokens.
		user, err := s.users.FindByID(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), userKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey{}).(*model.User)
	return user
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// Models

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string   `json:"token"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

type createTopicRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	CourseID string `json:"courseId"`
}

type updateTopicRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type createResponseRequest struct {
	Message string `json:"message"`
}

type createCourseRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type addRoleRequest struct {
	Role string `json:"role"`
}

type responseDTO struct {
	ID         string    `json:"id"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
	IsSolution bool      `json:"isSolution"`
	AuthorName string    `json:"authorName"`
}

type topicDTO struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Body       string        `json:"body"`
	CreatedAt  time.Time     `json:"createdAt"`
	Status     string        `json:"status"`
	AuthorName string        `json:"authorName"`
	CourseName string        `json:"courseName"`
	Responses  []responseDTO `json:"responses"`
}

type pageDTO struct {
	Items []topicDTO `json:"items"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
	Total int64      `json:"total"`
}

type courseDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type userDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	Roles     []string  `json:"roles"`
}

type permissionsDTO struct {
	CanMarkAsSolution bool `json:"canMarkAsSolution"`
	IsResponseAuthor  bool `json:"isResponseAuthor"`
}

type statsDTO struct {
	Topics       int64 `json:"topics"`
	OpenTopics   int64 `json:"openTopics"`
	ClosedTopics int64 `json:"closedTopics"`
}

// Auth handlers

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	user, err := s.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	token, err := s.issueToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{
		Token: token,
		Name:  user.Name,
		Email: user.Email,
		Roles: roleNames(user.Roles),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	user, err := s.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	token, err := s.issueToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{
		Token: token,
		Name:  user.Name,
		Email: user.Email,
		Roles: roleNames(user.Roles),
	})
}

func (s *Server) issueToken(user *model.User) (string, error) {
	return auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  roleNames(user.Roles),
	})
}

// Topic handlers

func (s *Server) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	var req createTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Title == "" || req.Body == "" || req.CourseID == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	topic, err := s.topics.Create(r.Context(), req.Title, req.Body, req.CourseID, userFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	dto, err := s.topicDTO(r.Context(), topic)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	var status *model.TopicStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, ok := model.ParseTopicStatus(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_status")
			return
		}
		status = &parsed
	}
	page := s.pageFromQuery(r)

	topics, total, err := s.topics.List(r.Context(), status, page)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	items := make([]topicDTO, 0, len(topics))
	for i := range topics {
		dto, err := s.topicDTO(r.Context(), &topics[i])
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		items = append(items, *dto)
	}
	writeJSON(w, http.StatusOK, pageDTO{Items: items, Page: page.Number, Size: page.Size, Total: total})
}

func (s *Server) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := s.topics.GetByID(r.Context(), chi.URLParam(r, "topicID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	dto, err := s.topicDTO(r.Context(), topic)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleUpdateTopic(w http.ResponseWriter, r *http.Request) {
	var req updateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Title == "" || req.Body == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	topic, err := s.topics.Update(r.Context(), chi.URLParam(r, "topicID"), req.Title, req.Body, userFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	dto, err := s.topicDTO(r.Context(), topic)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleDeleteTopic(w http.ResponseWriter, r *http.Request) {
	err := s.topics.Delete(r.Context(), chi.URLParam(r, "topicID"), userFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCloseTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := s.topics.Close(r.Context(), chi.URLParam(r, "topicID"), userFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeTopic(w, r, topic)
}

func (s *Server) handleOpenTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := s.topics.Open(r.Context(), chi.URLParam(r, "topicID"), userFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeTopic(w, r, topic)
}

func (s *Server) handleSetTopicStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := model.ParseTopicStatus(r.URL.Query().Get("status"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}
	topic, err := s.topics.SetStatus(r.Context(), chi.URLParam(r, "topicID"), status, userFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeTopic(w, r, topic)
}

func (s *Server) writeTopic(w http.ResponseWriter, r *http.Request, topic *model.Topic) {
	dto, err := s.topicDTO(r.Context(), topic)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// Response handlers

func (s *Server) handleCreateResponse(w http.ResponseWriter, r *http.Request) {
	var req createResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	response, err := s.responses.Create(r.Context(), chi.URLParam(r, "topicID"), req.Message, userFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	dto, err := s.responseDTO(r.Context(), response)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

func (s *Server) handleListResponses(w http.ResponseWriter, r *http.Request) {
	responses, err := s.responses.ListByTopic(r.Context(), chi.URLParam(r, "topicID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	dtos := make([]responseDTO, 0, len(responses))
	for i := range responses {
		dto, err := s.responseDTO(r.Context(), &responses[i])
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		dtos = append(dtos, *dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleMarkSolution(w http.ResponseWriter, r *http.Request) {
	response, err := s.responses.MarkAsSolution(r.Context(), chi.URLParam(r, "responseID"), userFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	dto, err := s.responseDTO(r.Context(), response)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleUnmarkSolution(w http.ResponseWriter, r *http.Request) {
	response, err := s.responses.UnmarkAsSolution(r.Context(), chi.URLParam(r, "responseID"), userFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	dto, err := s.responseDTO(r.Context(), response)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleDeleteResponse(w http.ResponseWriter, r *http.Request) {
	err := s.responses.Delete(r.Context(), chi.URLParam(r, "responseID"), userFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSolution(w http.ResponseWriter, r *http.Request) {
	solution, err := s.responses.FindSolution(r.Context(), chi.URLParam(r, "topicID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if solution == nil {
		writeError(w, http.StatusNotFound, "no_solution")
		return
	}
	dto, err := s.responseDTO(r.Context(), solution)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleResponsePermissions(w http.ResponseWriter, r *http.Request) {
	responseID := chi.URLParam(r, "responseID")
	user := userFromContext(r.Context())

	canMark, err := s.responses.CanMarkAsSolution(r.Context(), responseID, user)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	isAuthor, err := s.responses.IsResponseAuthor(r.Context(), responseID, user)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, permissionsDTO{CanMarkAsSolution: canMark, IsResponseAuthor: isAuthor})
}

// Course handlers

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	if !userFromContext(r.Context()).IsAdmin() {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	var req createCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Name == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	course := &model.Course{ID: uuid.NewString(), Name: req.Name, Category: req.Category}
	if err := s.db.Courses().Create(r.Context(), course); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, courseDTO{ID: course.ID, Name: course.Name, Category: course.Category})
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.db.Courses().List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	dtos := make([]courseDTO, 0, len(courses))
	for _, course := range courses {
		dtos = append(dtos, courseDTO{ID: course.ID, Name: course.Name, Category: course.Category})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// User administration handlers

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if !userFromContext(r.Context()).IsAdmin() {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	users, err := s.users.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	dtos := make([]userDTO, 0, len(users))
	for _, user := range users {
		dtos = append(dtos, userDTO{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
			Roles:     roleNames(user.Roles),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if !userFromContext(r.Context()).IsAdmin() {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	if err := s.users.Delete(r.Context(), chi.URLParam(r, "userID")); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddRole(w http.ResponseWriter, r *http.Request) {
	if !userFromContext(r.Context()).IsAdmin() {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	var req addRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Role == "" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	user, err := s.users.AddRole(r.Context(), chi.URLParam(r, "userID"), model.Role(req.Role))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		Roles:     roleNames(user.Roles),
	})
}

func (s *Server) handleRemoveRole(w http.ResponseWriter, r *http.Request) {
	if !userFromContext(r.Context()).IsAdmin() {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	user, err := s.users.RemoveRole(r.Context(), chi.URLParam(r, "userID"), model.Role(chi.URLParam(r, "role")))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		Roles:     roleNames(user.Roles),
	})
}

// Stats

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, statsCacheKey).Bytes()
		if err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}
	}

	total, err := s.topics.Count(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	open, err := s.topics.CountByStatus(ctx, model.StatusOpen)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	closed, err := s.topics.CountByStatus(ctx, model.StatusClosed)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	stats := statsDTO{Topics: total, OpenTopics: open, ClosedTopics: closed}

	if s.redis != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.redis.Set(ctx, statsCacheKey, payload, s.cfg.StatsCacheTTL).Err(); err != nil {
				log.Printf("stats cache write failed: %v", err)
			}
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

// DTO assembly

func (s *Server) topicDTO(ctx context.Context, topic *model.Topic) (*topicDTO, error) {
	author, err := s.db.Users().GetByID(ctx, topic.AuthorID)
	if err != nil {
		return nil, err
	}
	course, err := s.db.Courses().GetByID(ctx, topic.CourseID)
	if err != nil {
		return nil, err
	}
	responses, err := s.db.Responses().ListByTopic(ctx, topic.ID)
	if err != nil {
		return nil, err
	}
	dtos := make([]responseDTO, 0, len(responses))
	for i := range responses {
		dto, err := s.responseDTO(ctx, &responses[i])
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *dto)
	}
	return &topicDTO{
		ID:         topic.ID,
		Title:      topic.Title,
		Body:       topic.Body,
		CreatedAt:  topic.CreatedAt,
		Status:     string(topic.Status),
		AuthorName: author.Name,
		CourseName: course.Name,
		Responses:  dtos,
	}, nil
}

func (s *Server) responseDTO(ctx context.Context, response *model.Response) (*responseDTO, error) {
	author, err := s.db.Users().GetByID(ctx, response.AuthorID)
	if err != nil {
		return nil, err
	}
	return &responseDTO{
		ID:         response.ID,
		Message:    response.Message,
		CreatedAt:  response.CreatedAt,
		IsSolution: response.Solution,
		AuthorName: author.Name,
	}, nil
}

// Helpers

func (s *Server) pageFromQuery(r *http.Request) store.Page {
	page := store.Page{Number: 0, Size: s.cfg.DefaultPageSize}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			page.Number = parsed
		}
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page.Size = parsed
		}
	}
	if page.Size > s.cfg.MaxPageSize {
		page.Size = s.cfg.MaxPageSize
	}
	return page
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTopicNotFound):
		writeError(w, http.StatusNotFound, "topic_not_found")
	case errors.Is(err, service.ErrResponseNotFound):
		writeError(w, http.StatusNotFound, "response_not_found")
	case errors.Is(err, service.ErrCourseNotFound):
		writeError(w, http.StatusNotFound, "course_not_found")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found")
	case errors.Is(err, service.ErrDuplicateTopic):
		writeError(w, http.StatusConflict, "duplicate_topic")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email_taken")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}

func roleNames(roles []model.Role) []string {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return names
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

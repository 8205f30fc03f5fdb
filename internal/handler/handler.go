package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/samber/mo"

	"github.com/GoArmGo/UsersAPI/internal/domain"
	"github.com/GoArmGo/UsersAPI/internal/usecase"
)

const maxBodyBytes = 1 << 20

// UserHandler — обработчик HTTP-запросов для работы с пользователями.
type UserHandler struct {
	userUseCase usecase.UserUseCase
	logger      *slog.Logger
}

// NewUserHandler создаёт новый экземпляр UserHandler.
func NewUserHandler(uc usecase.UserUseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: uc,
		logger:      logger,
	}
}

// createUserRequest — тело POST /user. Указатели отличают отсутствующее поле от пустого.
type createUserRequest struct {
	Username  *string           `json:"username"`
	Email     *string           `json:"email"`
	CreatedAt *domain.Timestamp `json:"created_at"`
}

// updateUserRequest — тело PUT /user, все поля обязательны.
type updateUserRequest struct {
	ID       *int64  `json:"id"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError — отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message}, logger)
}

// respondWithDomainError сопоставляет ошибку предметной области с кодом ответа.
func (h *UserHandler) respondWithDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		h.logger.Warn("invalid request", "path", r.URL.Path, "method", r.Method, "error", err)
		respondWithError(w, http.StatusBadRequest, err.Error(), h.logger)
	case errors.Is(err, domain.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, domain.ErrUserNotFound.Error(), h.logger)
	case errors.Is(err, domain.ErrConflict):
		h.logger.Warn("user conflict", "method", r.Method, "error", err)
		respondWithError(w, http.StatusConflict, domain.ErrConflict.Error(), h.logger)
	case errors.Is(err, domain.ErrUnavailable):
		h.logger.Error("storage unavailable", "method", r.Method, "error", err)
		respondWithError(w, http.StatusServiceUnavailable, domain.ErrUnavailable.Error(), h.logger)
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "method", r.Method, "error", err)
		respondWithError(w, http.StatusInternalServerError, "internal server error", h.logger)
	}
}

// HandleRoot — приветствие на корневом пути.
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Hello there"))
}

// CreateUser — POST /user.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithDomainError(w, r, err)
		return
	}
	if err := requireFields(map[string]bool{
		"username": req.Username != nil,
		"email":    req.Email != nil,
	}); err != nil {
		h.respondWithDomainError(w, r, err)
		return
	}

	input := domain.CreateUserInput{
		Username:  *req.Username,
		Email:     *req.Email,
		CreatedAt: mo.PointerToOption(req.CreatedAt),
	}

	h.logger.Info("processing request", "endpoint", "CreateUser", "username", input.Username)

	user, err := h.userUseCase.CreateUser(r.Context(), input)
	if err != nil {
		h.respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, user, h.logger)
}

// ReadUsers — GET /user[?id=N]. Всегда возвращает массив.
func (h *UserHandler) ReadUsers(w http.ResponseWriter, r *http.Request) {
	filter := domain.UserFilter{}

	if r.URL.Query().Has("id") {
		id, err := parseID(r.URL.Query().Get("id"))
		if err != nil {
			h.respondWithDomainError(w, r, err)
			return
		}
		filter.ID = mo.Some(id)
	}

	h.logger.Info("processing request", "endpoint", "ReadUsers", "filtered", filter.ID.IsPresent())

	users, err := h.userUseCase.ListUsers(r.Context(), filter)
	if err != nil {
		h.respondWithDomainError(w, r, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}

	respondWithJSON(w, http.StatusOK, users, h.logger)
}

// UpdateUser — PUT /user.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithDomainError(w, r, err)
		return
	}
	if err := requireFields(map[string]bool{
		"id":       req.ID != nil,
		"username": req.Username != nil,
		"email":    req.Email != nil,
	}); err != nil {
		h.respondWithDomainError(w, r, err)
		return
	}
	if err := checkIDRange(*req.ID); err != nil {
		h.respondWithDomainError(w, r, err)
		return
	}

	input := domain.UpdateUserInput{
		ID:       *req.ID,
		Username: *req.Username,
		Email:    *req.Email,
	}

	h.logger.Info("processing request", "endpoint", "UpdateUser", "id", input.ID)

	user, err := h.userUseCase.UpdateUser(r.Context(), input)
	if err != nil {
		h.respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user, h.logger)
}

// DeleteUser — DELETE /user?id=N, id обязателен.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if !r.URL.Query().Has("id") {
		h.respondWithDomainError(w, r, fmt.Errorf("%w: missing query parameter id", domain.ErrValidation))
		return
	}
	id, err := parseID(r.URL.Query().Get("id"))
	if err != nil {
		h.respondWithDomainError(w, r, err)
		return
	}

	h.logger.Info("processing request", "endpoint", "DeleteUser", "id", id)

	user, err := h.userUseCase.DeleteUser(r.Context(), id)
	if err != nil {
		h.respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user, h.logger)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", domain.ErrValidation, err)
	}
	// тело должно содержать ровно одно JSON-значение
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid JSON body: unexpected data after JSON value", domain.ErrValidation)
	}
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: id must be a 32-bit integer, got %q", domain.ErrValidation, raw)
	}
	return id, nil
}

// checkIDRange: колонка id имеет тип INTEGER
func checkIDRange(id int64) error {
	if id < math.MinInt32 || id > math.MaxInt32 {
		return fmt.Errorf("%w: id must be a 32-bit integer, got %d", domain.ErrValidation, id)
	}
	return nil
}

// requireFields проверяет наличие обязательных полей в порядке их перечисления в сообщении.
func requireFields(present map[string]bool) error {
	for _, name := range []string{"id", "username", "email"} {
		if ok, listed := present[name]; listed && !ok {
			return fmt.Errorf("%w: missing field %s", domain.ErrValidation, name)
		}
	}
	return nil
}

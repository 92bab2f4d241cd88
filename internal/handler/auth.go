package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/dukerupert/smartkitchen/internal/auth"
	"github.com/dukerupert/smartkitchen/internal/middleware"
	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/dukerupert/smartkitchen/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type AuthHandler struct {
	userStore       *store.UserStore
	sessionStore    *store.SessionStore
	restaurantStore *store.RestaurantStore
	secureCookies   bool
	logger          *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, rs *store.RestaurantStore, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userStore:       us,
		sessionStore:    ss,
		restaurantStore: rs,
		secureCookies:   secureCookies,
		logger:          logger,
	}
}

type signupRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Phone          string `json:"phone"`
	UserType       string `json:"user_type"`
	RestaurantName string `json:"restaurant_name"`
	model.Address
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
	Message string      `json:"message"`
}

// Signup handles POST /api/user/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.RestaurantName = strings.TrimSpace(req.RestaurantName)
	if msg := validateSignup(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	role, err := model.ParseRole(req.UserType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if role == model.RoleOwner && req.RestaurantName == "" {
		writeError(w, http.StatusBadRequest, "restaurant name is required for restaurant owners")
		return
	}

	existing, err := h.userStore.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("signup lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email is already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user, err := h.userStore.Create(req.Name, req.Email, string(hash), strings.TrimSpace(req.Phone), role)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	if req.RestaurantName != "" || req.Address != (model.Address{}) {
		user, err = h.userStore.UpdateProfile(user.ID, user.Name, user.Phone, req.RestaurantName, req.Address)
		if err != nil {
			h.logger.Error("update new user profile", "user_id", user.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create user")
			return
		}
	}

	if role == model.RoleOwner {
		_, err := h.restaurantStore.Create(model.Restaurant{OwnerID: user.ID, Name: req.RestaurantName, IsOpen: true})
		if err != nil {
			h.logger.Error("create owner restaurant", "user_id", user.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create restaurant")
			return
		}
	}

	h.startSession(w, http.StatusCreated, user, "user registered successfully")
}

func validateSignup(req signupRequest) string {
	switch {
	case req.Name == "":
		return "name is required"
	case req.Email == "":
		return "email is required"
	case len(req.Password) < minPasswordLength:
		return "password must be at least 6 characters"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "email is not valid"
	}
	return ""
}

// Login handles POST /api/user/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.userStore.GetByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || !user.IsActive {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			h.logger.Warn("compare password", "user_id", user.ID, "error", err)
		}
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.startSession(w, http.StatusOK, user, "login successful")
}

func (h *AuthHandler) startSession(w http.ResponseWriter, status int, user *model.User, msg string) {
	sess, err := h.sessionStore.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, status, authResponse{Token: sess.Token, User: user, Message: msg})
}

// Logout handles POST /api/user/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		if err := h.sessionStore.Delete(token); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Profile handles GET /api/user/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.userStore.GetByID(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type profileRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	RestaurantName string `json:"restaurant_name"`
	model.Address
}

// UpdateProfile handles PUT /api/user/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	user, err := h.userStore.UpdateProfile(userID, req.Name, strings.TrimSpace(req.Phone), strings.TrimSpace(req.RestaurantName), req.Address)
	if err != nil {
		h.logger.Error("update profile", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

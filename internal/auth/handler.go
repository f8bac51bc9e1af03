package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jskalicky/shoply-api/internal/account"
	"github.com/jskalicky/shoply-api/internal/httputil"
	"github.com/jskalicky/shoply-api/internal/logging"
)

// RateLimiter throttles abuse-prone endpoints per client IP and per target
// email address.
type RateLimiter interface {
	CheckIPRateLimit(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequest(ctx context.Context, ip, purpose string) error
	CheckEmailCooldown(ctx context.Context, email, purpose string) (bool, error)
	SetEmailCooldown(ctx context.Context, email, purpose string) error
}

// Handler contains the HTTP handlers for the account lifecycle endpoints.
type Handler struct {
	service     *Service
	rateLimiter RateLimiter
	logger      *logging.Logger
}

func NewHandler(service *Service, rateLimiter RateLimiter, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest represents the password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents the password reset confirmation
type ResetPasswordRequest struct {
	ID          uuid.UUID `json:"id"`
	Token       string    `json:"token"`
	NewPassword string    `json:"new_password"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID       uuid.UUID    `json:"id"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
	Role     account.Role `json:"role"`
}

// RegisterResponse represents the registration response
type RegisterResponse struct {
	Account AccountResponse `json:"account"`
	Message string          `json:"message"`
}

// TokenResponse carries an issued bearer token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register handles account registration
// @Summary      Register a new account
// @Description  Create a new account. A verification email is sent; no bearer token is issued until the email is verified.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration credentials"
// @Success      201 {object} RegisterResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      409 {object} httputil.ErrorResponse "Email already exists"
// @Failure      503 {object} httputil.ErrorResponse "Verification email could not be sent"
// @Router       /api/users/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.throttleByIP(w, r, "register") {
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	newAccount, err := h.service.Register(r.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrAlreadyExists):
			logger.Warn("registration failed: email already exists")
			httputil.RespondErrorWithCode(w, "email already exists", httputil.CodeEmailAlreadyExists, http.StatusConflict)
		case errors.Is(err, ErrEmailRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeEmailRequired, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidEmailFormat):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordRequired, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordTooShort):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordTooShort, http.StatusBadRequest)
		case errors.Is(err, ErrNotifyFailed):
			logger.Error("registration failed: verification email", "error", err.Error())
			httputil.RespondErrorWithCode(w, "could not send verification email, please try again later", httputil.CodeUnavailable, http.StatusServiceUnavailable)
		default:
			logger.Error("registration failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to register", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("account registered", "account_id", newAccount.ID)

	httputil.RespondJSON(w, RegisterResponse{
		Account: AccountResponse{
			ID:       newAccount.ID,
			Username: newAccount.Username,
			Email:    newAccount.Email,
			Role:     newAccount.Role,
		},
		Message: "Registration successful. Please check your email to verify your account.",
	}, http.StatusCreated)
}

// Login handles login
// @Summary      Log in
// @Description  Authenticate with email and password. Unverified accounts receive a fresh verification email and a pending acknowledgment instead of a token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} TokenResponse
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Router       /api/users/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.throttleByIP(w, r, "login") {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, "invalid email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		case errors.Is(err, ErrNotifyFailed):
			logger.Error("login failed: verification email", "error", err.Error())
			httputil.RespondErrorWithCode(w, "could not send verification email, please try again later", httputil.CodeUnavailable, http.StatusServiceUnavailable)
		default:
			logger.Error("login failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	if result.PendingVerification {
		logger.Info("login pending email verification")
		httputil.RespondJSON(w, map[string]string{
			"message": "Your email is not verified yet. A new verification link has been sent.",
		}, http.StatusOK)
		return
	}

	logger.Info("login succeeded")

	httputil.RespondJSON(w, TokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
	}, http.StatusOK)
}

// VerifyEmail handles the verification link
// @Summary      Verify email address
// @Description  Consume a single-use verification token. A replayed token fails with 404 because the first call cleared it.
// @Tags         auth
// @Produce      json
// @Param        id path string true "Account id"
// @Param        token path string true "Verification token"
// @Success      200 {object} map[string]string
// @Failure      400 {object} httputil.ErrorResponse "Token mismatch"
// @Failure      404 {object} httputil.ErrorResponse "No pending verification"
// @Router       /api/users/verify-email/{id}/{token} [get]
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	token := chi.URLParam(r, "token")

	if err := h.service.VerifyEmail(r.Context(), id, token); err != nil {
		switch {
		case errors.Is(err, account.ErrNotFound):
			logger.Warn("email verification failed: no pending token")
			httputil.RespondErrorWithCode(w, "no pending verification for this account", httputil.CodeNotFound, http.StatusNotFound)
		case errors.Is(err, ErrInvalidLink):
			logger.Warn("email verification failed: token mismatch")
			httputil.RespondErrorWithCode(w, "invalid verification link", httputil.CodeInvalidLink, http.StatusBadRequest)
		default:
			logger.Error("email verification failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to verify email", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("email verified", "account_id", id)

	httputil.RespondJSON(w, map[string]string{
		"message": "Email verified successfully. You can now login.",
	}, http.StatusOK)
}

// ForgotPassword handles password reset requests
// @Summary      Request a password reset
// @Description  Generate a fresh reset token (superseding any pending one) and mail the reset link.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Email address"
// @Success      200 {object} map[string]string
// @Failure      404 {object} httputil.ErrorResponse "Unknown email"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /api/users/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid forgot password request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if h.throttleByIP(w, r, "forgot-password") {
		return
	}
	if h.throttleByEmail(w, r, req.Email, "forgot-password") {
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, account.ErrNotFound):
			logger.Warn("password reset failed: unknown email")
			httputil.RespondErrorWithCode(w, "no account with this email", httputil.CodeNotFound, http.StatusNotFound)
		case errors.Is(err, ErrNotifyFailed):
			logger.Error("password reset failed: reset email", "error", err.Error())
			httputil.RespondErrorWithCode(w, "could not send reset email, please try again later", httputil.CodeUnavailable, http.StatusServiceUnavailable)
		default:
			logger.Error("password reset failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to request password reset", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("password reset link sent")

	httputil.RespondJSON(w, map[string]string{
		"message": "A password reset link has been sent to your email.",
	}, http.StatusOK)
}

// CheckResetLink validates a reset link without consuming it
// @Summary      Check a reset link
// @Description  Pure check used by the client before rendering the reset form. No mutation.
// @Tags         auth
// @Produce      json
// @Param        id path string true "Account id"
// @Param        token path string true "Reset token"
// @Success      200 {object} map[string]string
// @Failure      400 {object} httputil.ErrorResponse "Invalid link"
// @Router       /api/users/reset-password/{id}/{token} [get]
func (h *Handler) CheckResetLink(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	token := chi.URLParam(r, "token")

	if err := h.service.CheckResetLink(r.Context(), id, token); err != nil {
		if errors.Is(err, ErrInvalidLink) {
			logger.Warn("reset link check failed")
			httputil.RespondErrorWithCode(w, "invalid reset link", httputil.CodeInvalidLink, http.StatusBadRequest)
			return
		}
		logger.Error("reset link check failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to check reset link", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "reset link is valid"}, http.StatusOK)
}

// ResetPassword handles the reset confirmation
// @Summary      Reset password
// @Description  Re-validate the reset link, store the new password and clear the token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResetPasswordRequest true "Account id, reset token and new password"
// @Success      200 {object} map[string]string
// @Failure      400 {object} httputil.ErrorResponse "Invalid link or password"
// @Router       /api/users/reset-password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid reset password request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.ID, req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, ErrInvalidLink):
			logger.Warn("password reset failed: invalid link")
			httputil.RespondErrorWithCode(w, "invalid reset link", httputil.CodeInvalidLink, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordRequired, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordTooShort):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordTooShort, http.StatusBadRequest)
		default:
			logger.Error("password reset failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to reset password", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("password reset")

	httputil.RespondJSON(w, map[string]string{
		"message": "Password reset successfully. You can now login with your new password.",
	}, http.StatusOK)
}

// throttleByIP applies the per-IP window; it writes the 429 itself and
// reports whether the request was rejected. Limiter errors never block the
// request.
func (h *Handler) throttleByIP(w http.ResponseWriter, r *http.Request, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())
	ip := getClientIP(r)

	exceeded, err := h.rateLimiter.CheckIPRateLimit(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.RecordIPRequest(r.Context(), ip, purpose); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	return false
}

// throttleByEmail applies the per-email cooldown.
func (h *Handler) throttleByEmail(w http.ResponseWriter, r *http.Request, email, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())

	onCooldown, err := h.rateLimiter.CheckEmailCooldown(r.Context(), email, purpose)
	if err != nil {
		logger.Error("failed to check email cooldown", "error", err.Error())
	} else if onCooldown {
		logger.Warn("email on cooldown", "email", email, "purpose", purpose)
		httputil.RespondErrorWithCode(w, "please wait before requesting another email", httputil.CodeCooldownActive, http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.SetEmailCooldown(r.Context(), email, purpose); err != nil {
		logger.Error("failed to set email cooldown", "error", err.Error())
	}

	return false
}

// parseIDParam reads the {id} route parameter as a UUID.
func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid account id", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

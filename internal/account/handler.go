package account

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jskalicky/shoply-api/internal/httputil"
	"github.com/jskalicky/shoply-api/internal/logging"
)

// maxProfileImageSize caps profile uploads at 2 MiB.
const maxProfileImageSize = 2 << 20

// ImageStore persists an uploaded image and returns its stored filename.
type ImageStore interface {
	Save(file multipart.File, header *multipart.FileHeader) (string, error)
}

// Handler contains the HTTP handlers for account management.
type Handler struct {
	service *Service
	images  ImageStore
}

func NewHandler(service *Service, images ImageStore) *Handler {
	return &Handler{service: service, images: images}
}

// UpdateRequest is the self-service update body; absent fields stay as-is.
type UpdateRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// CurrentUser returns the caller's own account
// @Summary      Current account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} Account
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /api/users/current-user [get]
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	acc, err := h.service.Get(r.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "account not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get current account", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get account", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, acc, http.StatusOK)
}

// List returns a page of accounts
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username query string false "Filter by username substring"
// @Param        page query int false "Page number (1-based)"
// @Param        limit query int false "Page size"
// @Success      200 {array} Account
// @Failure      403 {object} httputil.ErrorResponse
// @Router       /api/users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	filter := ListFilter{
		Username: r.URL.Query().Get("username"),
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	accounts, err := h.service.List(r.Context(), filter)
	if err != nil {
		logger.Error("failed to list accounts", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list accounts", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, accounts, http.StatusOK)
}

// Update applies a self-service update to the caller's account
// @Summary      Update own account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateRequest true "Fields to update"
// @Success      200 {object} Account
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /api/users [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid update request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	acc, err := h.service.Update(r.Context(), claims.AccountID, UpdateParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "account not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to update account", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update account", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("account updated", "account_id", acc.ID)

	httputil.RespondJSON(w, acc, http.StatusOK)
}

// Delete removes an account (self, or anyone for admins)
// @Summary      Delete an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Account id"
// @Success      200 {object} map[string]string
// @Failure      403 {object} httputil.ErrorResponse "Not your account"
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/users/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid account id", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), claims.AccountID, targetID); err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			logger.Warn("account delete forbidden", "target_id", targetID)
			httputil.RespondErrorWithCode(w, "you can only delete your own account", httputil.CodeForbidden, http.StatusForbidden)
		case errors.Is(err, ErrNotFound):
			httputil.RespondErrorWithCode(w, "account not found", httputil.CodeNotFound, http.StatusNotFound)
		default:
			logger.Error("failed to delete account", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to delete account", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("account deleted", "account_id", targetID)

	httputil.RespondJSON(w, map[string]string{"message": "account deleted"}, http.StatusOK)
}

// UploadProfileImage stores a profile image for the caller
// @Summary      Upload profile image
// @Tags         users
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        file formData file true "Image file (max 2 MiB)"
// @Success      200 {object} Account
// @Failure      400 {object} httputil.ErrorResponse "Missing or invalid file"
// @Router       /api/users/upload-image [post]
func (h *Handler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProfileImageSize)
	if err := r.ParseMultipartForm(maxProfileImageSize); err != nil {
		httputil.RespondErrorWithCode(w, "file too large or malformed form", httputil.CodeFileTooLarge, http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondErrorWithCode(w, "no file uploaded", httputil.CodeFileRequired, http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename, err := h.images.Save(file, header)
	if err != nil {
		logger.Warn("profile image rejected", "error", err.Error())
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeNotAnImage, http.StatusBadRequest)
		return
	}

	acc, err := h.service.SetProfileImage(r.Context(), claims.AccountID, filename)
	if err != nil {
		logger.Error("failed to set profile image", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to set profile image", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("profile image set", "account_id", acc.ID, "filename", filename)

	httputil.RespondJSON(w, acc, http.StatusOK)
}

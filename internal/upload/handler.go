package upload

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/jskalicky/shoply-api/internal/httputil"
	"github.com/jskalicky/shoply-api/internal/logging"
)

// Handler contains the HTTP handlers for generic file uploads.
type Handler struct {
	storage *Storage
	baseURL string
}

func NewHandler(storage *Storage, baseURL string) *Handler {
	return &Handler{storage: storage, baseURL: baseURL}
}

// Upload stores an image and returns its URL
// @Summary      Upload a file
// @Tags         uploads
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        file formData file true "Image file (max 2 MiB)"
// @Success      201 {object} map[string]string
// @Failure      400 {object} httputil.ErrorResponse "Missing or invalid file"
// @Router       /api/uploads [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, MaxFileSize)
	if err := r.ParseMultipartForm(MaxFileSize); err != nil {
		httputil.RespondErrorWithCode(w, "file too large or malformed form", httputil.CodeFileTooLarge, http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondErrorWithCode(w, "no file uploaded", httputil.CodeFileRequired, http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename, err := h.storage.Save(file, header)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAnImage):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeNotAnImage, http.StatusBadRequest)
		case errors.Is(err, ErrFileTooLarge):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeFileTooLarge, http.StatusBadRequest)
		default:
			logger.Error("failed to store upload", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to store file", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("file uploaded", "filename", filename)

	httputil.RespondJSON(w, map[string]string{
		"url": h.baseURL + "/api/uploads/" + filename,
	}, http.StatusCreated)
}

// Serve streams a previously uploaded file
// @Summary      Download an uploaded file
// @Tags         uploads
// @Produce      octet-stream
// @Param        image path string true "Stored filename"
// @Success      200
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/uploads/{image} [get]
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	path := h.storage.Path(chi.URLParam(r, "image"))

	if _, err := os.Stat(path); err != nil {
		httputil.RespondErrorWithCode(w, "file not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, path)
}

package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/freefinder/apiserver/internal/storage"
)

const (
	maxUploadMemory = 16 << 20
	maxUploadBytes  = 10 << 20
	formFieldImage  = "image"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// UploadHandler streams images to the object storage collaborator.
type UploadHandler struct {
	storage *storage.Storage
}

// NewUploadHandler constructs a handler with the provided storage.
func NewUploadHandler(store *storage.Storage) *UploadHandler {
	return &UploadHandler{storage: store}
}

// UploadRouter registers upload routes on the given router.
func UploadRouter(r chi.Router, handler *UploadHandler, requireAuth func(http.Handler) http.Handler) {
	r.With(requireAuth).Post("/upload", handler.UploadImage)
	r.With(requireAuth).Post("/upload-pfp", handler.UploadProfilePicture)
}

// UploadResponse reports the stored object and its public link.
type UploadResponse struct {
	Message   string `json:"message"`
	FileName  string `json:"fileName"`
	ImageLink string `json:"imageLink"`
}

// UploadImage stores a listing image under a fresh random key.
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	file, header, err := parseImageUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	key := uuid.NewString() + "-" + sanitizeFilename(header.Filename)
	h.put(w, r, file, header, key)
}

// UploadProfilePicture stores the caller's avatar under a stable
// per-user key so re-uploads replace the previous picture.
func (h *UploadHandler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	file, header, err := parseImageUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	key := fmt.Sprintf("%d-pfp%s", identity.UserID, filepath.Ext(header.Filename))
	h.put(w, r, file, header, key)
}

func (h *UploadHandler) put(w http.ResponseWriter, r *http.Request, file multipart.File, header *multipart.FileHeader, key string) {
	contentType := header.Header.Get("Content-Type")
	if err := h.storage.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "file upload failed")
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Message:   "file uploaded successfully",
		FileName:  key,
		ImageLink: h.storage.PublicURL(key),
	})
}

func parseImageUpload(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, nil, errors.New("invalid multipart form")
	}

	file, header, err := r.FormFile(formFieldImage)
	if err != nil {
		return nil, nil, errors.New("image file is required")
	}
	if header.Size > maxUploadBytes {
		_ = file.Close()
		return nil, nil, errors.New("uploaded file too large")
	}

	contentType := header.Header.Get("Content-Type")
	if !allowedImageTypes[strings.ToLower(contentType)] {
		_ = file.Close()
		return nil, nil, errors.New("invalid file type, only jpeg, jpg and png are allowed")
	}

	return file, header, nil
}

func sanitizeFilename(name string) string {
	return strings.ReplaceAll(filepath.Base(name), " ", "+")
}

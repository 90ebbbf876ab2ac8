package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-id/internal/constants"
	"github.com/kozaktomas/face-id/internal/encoder"
	"github.com/kozaktomas/face-id/internal/recognizer"
	"github.com/kozaktomas/face-id/internal/store"
)

// allowedExtensions are the upload file extensions accepted by the API.
var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// FacesHandler handles the face enrollment and identification endpoints.
type FacesHandler struct {
	recognizer *recognizer.Recognizer
}

// NewFacesHandler creates a new faces handler.
func NewFacesHandler(rec *recognizer.Recognizer) *FacesHandler {
	return &FacesHandler{recognizer: rec}
}

// readImageUpload extracts the uploaded image bytes from a multipart request.
// It writes the error response itself and returns nil when the upload is invalid.
func readImageUpload(w http.ResponseWriter, r *http.Request) []byte {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return nil
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return nil
	}
	defer file.Close()

	if header.Filename == "" {
		respondError(w, http.StatusBadRequest, "image file is required")
		return nil
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		respondError(w, http.StatusBadRequest, "unsupported file type, use jpg or png")
		return nil
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read image file")
		return nil
	}
	if len(data) == 0 {
		respondError(w, http.StatusBadRequest, "image file is empty")
		return nil
	}
	return data
}

// Add enrolls a new face. The multipart form must carry the image file, a
// numeric user_id, and may carry arbitrary extra fields stored as metadata.
func (h *FacesHandler) Add(w http.ResponseWriter, r *http.Request) {
	imageData := readImageUpload(w, r)
	if imageData == nil {
		return
	}

	userID := r.FormValue("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if _, err := strconv.Atoi(userID); err != nil {
		respondError(w, http.StatusBadRequest, "user_id must be an integer")
		return
	}

	// Every other form value rides along as metadata.
	metadata := make(map[string]string)
	for key, values := range r.MultipartForm.Value {
		if key == "user_id" || len(values) == 0 {
			continue
		}
		metadata[key] = values[0]
	}

	result, err := h.recognizer.AddFace(r.Context(), imageData, userID, metadata)
	if err != nil {
		if errors.Is(err, encoder.ErrInvalidImage) {
			respondError(w, http.StatusBadRequest, "invalid image file")
			return
		}
		log.Printf("Failed to add face for user %s: %v", sanitizeForLog(userID), err)
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to process image: %v", err))
		return
	}

	if !result.Added {
		respondError(w, http.StatusBadRequest, "no face found in image")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message":        "face added successfully",
		"user_id":        userID,
		"faces_detected": result.FacesDetected,
	})
}

// Identify matches an uploaded face image against the store. The optional
// tolerance form value overrides the default matching threshold.
func (h *FacesHandler) Identify(w http.ResponseWriter, r *http.Request) {
	imageData := readImageUpload(w, r)
	if imageData == nil {
		return
	}

	tolerance := constants.DefaultTolerance
	if raw := r.FormValue("tolerance"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		// A non-positive tolerance can never match anything, so it is
		// rejected up front instead of silently returning 404 for every probe.
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "tolerance must be a positive number")
			return
		}
		tolerance = parsed
	}

	result, err := h.recognizer.IdentifyFace(r.Context(), imageData, tolerance)
	if err != nil {
		// An undecodable image cannot match anyone; answer like a no-match.
		if errors.Is(err, encoder.ErrInvalidImage) {
			respondJSON(w, http.StatusNotFound, map[string]any{
				"identified":     false,
				"faces_detected": 0,
			})
			return
		}
		log.Printf("Failed to identify face: %v", err)
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to process image: %v", err))
		return
	}

	if result.Match == nil {
		respondJSON(w, http.StatusNotFound, map[string]any{
			"identified":     false,
			"faces_detected": result.FacesDetected,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"identified":     true,
		"user_id":        result.Match.Metadata[store.KeyUserID],
		"confidence":     result.Match.Confidence,
		"distance":       result.Match.Distance,
		"metadata":       result.Match.Metadata,
		"faces_detected": result.FacesDetected,
	})
}

// List returns metadata for every enrolled face.
func (h *FacesHandler) List(w http.ResponseWriter, r *http.Request) {
	faces := h.recognizer.ListFaces()
	respondJSON(w, http.StatusOK, map[string]any{
		"count": len(faces),
		"faces": faces,
	})
}

// Delete removes all faces enrolled for the given user.
func (h *FacesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	removed, err := h.recognizer.DeleteUser(userID)
	if err != nil {
		log.Printf("Failed to delete user %s: %v", sanitizeForLog(userID), err)
		respondError(w, http.StatusInternalServerError, "failed to persist face store")
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, fmt.Sprintf("user %s not found", userID))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("user %s deleted", userID),
	})
}

// Clear removes every enrolled face.
func (h *FacesHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.recognizer.ClearStore(); err != nil {
		log.Printf("Failed to clear face store: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to persist face store")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "face store cleared",
	})
}

// Health reports service liveness and the current store size.
func (h *FacesHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"faces_in_store": h.recognizer.Count(),
	})
}

package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rentflow/storage"
)

const maxUploadBytes = 10 << 20

var imageMIMETypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

var documentMIMETypes = map[string]bool{
	"application/pdf": true,
}

// readUpload pulls the multipart "file" field, enforces the MIME allow-list
// by sniffing the content rather than trusting the declared type, and
// returns the bytes ready for the store.
func readUpload(w http.ResponseWriter, r *http.Request, allowed map[string]bool) (data []byte, filename, contentType string, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", "", fmt.Errorf("httpapi: read upload: %w", err)
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		return nil, "", "", fmt.Errorf("httpapi: read upload: %w", err)
	}
	contentType = http.DetectContentType(data)
	if !allowed[contentType] {
		return nil, "", "", errUnsupportedMedia
	}
	return data, header.Filename, contentType, nil
}

var errUnsupportedMedia = errors.New("httpapi: unsupported file type")

func (s *Server) writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errUnsupportedMedia):
		writeStatusError(w, r, http.StatusUnsupportedMediaType, err)
	case errors.As(err, new(*http.MaxBytesError)):
		writeStatusError(w, r, http.StatusRequestEntityTooLarge, err)
	default:
		writeStatusError(w, r, http.StatusBadRequest, err)
	}
}

func (s *Server) handleUploadPropertyPhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, filename, contentType, err := readUpload(w, r, imageMIMETypes)
	if err != nil {
		s.writeUploadError(w, r, err)
		return
	}
	url, err := s.Uploader.Upload(r.Context(), storage.PropertyPhotoKey(id, filename), contentType, bytes.NewReader(data))
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	updated, err := s.Properties.AppendPhoto(r.Context(), id, url)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPropertyView(updated))
}

func (s *Server) handleUploadPaymentProof(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.ownPayment(r, id); err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	data, filename, contentType, err := readUpload(w, r, imageMIMETypes)
	if err != nil {
		s.writeUploadError(w, r, err)
		return
	}
	url, err := s.Uploader.Upload(r.Context(), storage.PaymentProofKey(id, filename), contentType, bytes.NewReader(data))
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	updated, err := s.Payments.AddProof(r.Context(), id, url)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentView(updated))
}

func (s *Server) handleUploadMaintenancePhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	owner, err := s.resolveTenant(r)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	if _, err := s.Maintenance.Get(r.Context(), id, owner.ID); err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	data, filename, contentType, err := readUpload(w, r, imageMIMETypes)
	if err != nil {
		s.writeUploadError(w, r, err)
		return
	}
	url, err := s.Uploader.Upload(r.Context(), storage.MaintenancePhotoKey(id, filename), contentType, bytes.NewReader(data))
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	updated, err := s.Maintenance.AppendPhoto(r.Context(), id, url)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMaintenanceView(updated))
}

// Contract templates and other staff documents are PDF only.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	entityID := chi.URLParam(r, "entityID")
	data, filename, contentType, err := readUpload(w, r, documentMIMETypes)
	if err != nil {
		s.writeUploadError(w, r, err)
		return
	}
	url, err := s.Uploader.Upload(r.Context(), storage.DocumentKey(entityType, entityID, filename), contentType, bytes.NewReader(data))
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

package httpserver

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	responsehttp "github.com/ieth0/forms/contexts/forms-core/responses-service/transport/http"
)

const maxIntakeMemory = 32 << 20

var errUploadsUnavailable = errors.New("upload storage is not configured")

type intakeAcceptedResponse struct {
	ResponseID string `json:"response_id"`
}

// handleIntakeSubmission accepts public form posts. It speaks HTML form
// encodings rather than JSON because the sender is a browser, not the
// dashboard client.
func (s *Server) handleIntakeSubmission(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.PathValue("form_key"))
	form, err := s.forms.Handler.ResolveIntakeFormHandler(r.Context(), key)
	if err != nil {
		writeFormDomainError(w, err)
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var files []responsehttp.IncomingFile
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxIntakeMemory); err != nil {
			writeResponsesError(w, http.StatusBadRequest, "invalid_form_body", "request body is not a valid multipart form")
			return
		}
		files, err = s.stashUploads(r)
		if err != nil {
			writeResponsesError(w, http.StatusServiceUnavailable, "uploads_unavailable", "file uploads are not available")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeResponsesError(w, http.StatusBadRequest, "invalid_form_body", "request body is not a valid form submission")
			return
		}
	}

	// ParseMultipartForm folds multipart value fields into PostForm, so
	// both encodings read the same way here.
	payload, err := encodeIntakeFields(r.PostForm)
	if err != nil {
		writeResponsesError(w, http.StatusBadRequest, "invalid_form_body", "form fields could not be encoded")
		return
	}

	resp, err := s.responses.Handler.CreateResponseHandler(
		r.Context(),
		form.AccountID,
		form.FormID,
		form.RetentionDays,
		form.EncryptPayloads,
		responsehttp.CreateResponseRequest{Payload: payload, Files: files},
	)
	if err != nil {
		writeResponsesDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, intakeAcceptedResponse{ResponseID: resp.Response.ResponseID})
}

// stashUploads writes every multipart file part into temporary storage and
// returns descriptors for the create command. Promotion into permanent
// storage happens once the response row exists.
func (s *Server) stashUploads(r *http.Request) ([]responsehttp.IncomingFile, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File) == 0 {
		return nil, nil
	}
	if s.uploads == nil {
		return nil, errUploadsUnavailable
	}
	var files []responsehttp.IncomingFile
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			part, err := header.Open()
			if err != nil {
				return nil, err
			}
			tempKey, written, err := s.uploads.SaveTemp(header.Filename, part)
			part.Close()
			if err != nil {
				return nil, err
			}
			files = append(files, responsehttp.IncomingFile{
				TempKey:     tempKey,
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				SizeBytes:   written,
			})
		}
	}
	return files, nil
}

// encodeIntakeFields flattens submitted fields into the stored JSON payload.
// Repeated fields keep every value.
func encodeIntakeFields(values map[string][]string) (string, error) {
	fields := make(map[string]any, len(values))
	for name, entries := range values {
		if len(entries) == 1 {
			fields[name] = entries[0]
			continue
		}
		fields[name] = entries
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

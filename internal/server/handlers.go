package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cv-wizard/internal/entries"
	"github.com/jonathan/cv-wizard/internal/export"
	"github.com/jonathan/cv-wizard/internal/photo"
	"github.com/jonathan/cv-wizard/internal/rendering"
	"github.com/jonathan/cv-wizard/internal/server/middleware"
	"github.com/jonathan/cv-wizard/internal/state"
	"github.com/jonathan/cv-wizard/internal/types"
	"github.com/jonathan/cv-wizard/internal/wizard"
)

// maxBodyBytes caps JSON and form bodies. Photo uploads get their own limit.
const maxBodyBytes = 1 << 20

// sessionHandler is a handler bound to the live session of the request.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *Session)

// session resolves the session named by the request token.
func (s *Server) session(h sessionHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := middleware.GetSessionID(r)
		if err != nil {
			s.errorResponse(w, http.StatusUnauthorized, "missing or invalid session token")
			return
		}
		sess, err := s.sessions.Get(r.Context(), id)
		if err != nil {
			s.failure(w, err)
			return
		}
		h(w, r, sess)
	})
}

// SessionResponse is the full view of a session: its state, the progress
// indicator and the visible entry units.
type SessionResponse struct {
	SessionID uuid.UUID                           `json:"session_id"`
	Token     string                              `json:"token,omitempty"`
	State     types.AppState                      `json:"state"`
	Progress  []wizard.StepProgress               `json:"progress"`
	Units     map[types.Collection][]entries.Unit `json:"units"`
}

func sessionView(sess *Session) SessionResponse {
	st := sess.Store.Snapshot()
	units := make(map[types.Collection][]entries.Unit, len(types.Collections))
	for _, c := range types.Collections {
		units[c] = sess.Entries.Units(c)
	}
	return SessionResponse{
		SessionID: sess.ID,
		State:     st,
		Progress:  wizard.ProgressAt(st.CurrentStep),
		Units:     units,
	}
}

// handleTemplates lists the selectable templates
func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"templates": types.Templates})
}

// handleCreateSession starts a fresh wizard and issues its token
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		s.failure(w, err)
		return
	}

	token, err := s.tokens.GenerateToken(sess.ID)
	if err != nil {
		s.failure(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	resp := sessionView(sess)
	resp.Token = token
	s.jsonResponse(w, http.StatusCreated, resp)
}

// handleGetSession returns the session view used to replay the UI after a
// reload
func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request, sess *Session) {
	s.jsonResponse(w, http.StatusOK, sessionView(sess))
}

// handleDeleteSession erases the snapshot and forgets the session
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request, sess *Session) {
	if err := s.sessions.Remove(r.Context(), sess.ID); err != nil {
		s.failure(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// handleReset clears one partition of the state
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sess *Session) {
	scope := state.Scope(r.PathValue("scope"))
	if err := sess.Store.ResetPartial(r.Context(), scope); err != nil {
		s.failure(w, err)
		return
	}
	if scope == state.ScopeExperiences {
		sess.Entries.Clear()
	}
	s.jsonResponse(w, http.StatusOK, sessionView(sess))
}

// handleSavePersonalDetails is the step 1 submit. It accepts a JSON body
// with a fields object or a plain form post.
func (s *Server) handleSavePersonalDetails(w http.ResponseWriter, r *http.Request, sess *Session) {
	details, err := s.decodePersonalDetails(w, r)
	if err != nil {
		s.failure(w, err)
		return
	}
	if err := sess.Wizard.SubmitStep1(r.Context(), details); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sessionView(sess))
}

func (s *Server) decodePersonalDetails(w http.ResponseWriter, r *http.Request) (types.PersonalDetails, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return nil, &ErrValidation{Field: "body", Message: err.Error()}
		}
		req := types.SavePersonalDetailsRequest{Fields: types.FromForm(r.PostForm)}
		if err := req.Validate(); err != nil {
			return nil, err
		}
		return types.PersonalDetails(req.Fields), nil
	}

	var req types.SavePersonalDetailsRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Fields == nil {
		req.Fields = map[string]string{}
	}
	return types.PersonalDetails(req.Fields), nil
}

// handleUploadPhoto starts reading an uploaded photo. The read finishes in
// the background unless wait=true is given; exports wait for it either way.
func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request, sess *Session) {
	maxSize := sess.Photos.MaxSize()
	// Room for the multipart envelope around the file.
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+64<<10)

	file, _, err := r.FormFile("photo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.failure(w, &photo.TooLargeError{Max: maxSize})
			return
		}
		s.failure(w, &ErrValidation{Field: "photo", Message: "multipart field photo is required"})
		return
	}
	defer file.Close()

	data, err := photo.ReadAll(file, maxSize)
	if err != nil {
		s.failure(w, err)
		return
	}

	if r.URL.Query().Get("wait") != "true" {
		sess.Photos.Start(r.Context(), data)
		s.jsonResponse(w, http.StatusAccepted, map[string]any{"status": "loading", "bytes": len(data)})
		return
	}

	if err := sess.Photos.Load(r.Context(), data); err != nil {
		if r.Context().Err() != nil {
			return
		}
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"status": "stored", "bytes": len(data)})
}

// handleDeletePhoto removes the photo
func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request, sess *Session) {
	if err := sess.Store.ClearPhoto(r.Context()); err != nil {
		s.failure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListEntries lists the visible units of a collection
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request, sess *Session) {
	c, err := collectionParam(r)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"collection": c,
		"fields":     types.FieldNames(c),
		"units":      sess.Entries.Units(c),
	})
}

// handleAddEntry opens a blank unit. Nothing is stored until it is saved.
func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request, sess *Session) {
	c, err := collectionParam(r)
	if err != nil {
		s.failure(w, err)
		return
	}

	var req types.AddEntryRequest
	if r.ContentLength != 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := decodeJSON(r.Body, &req); err != nil {
			s.failure(w, err)
			return
		}
	}
	if err := req.Validate(); err != nil {
		s.failure(w, err)
		return
	}

	unit, err := sess.Entries.AddEntry(c, req.Type)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, unit)
}

// handleSaveEntry binds the submitted fields to a unit and stores its record
func (s *Server) handleSaveEntry(w http.ResponseWriter, r *http.Request, sess *Session) {
	c, err := collectionParam(r)
	if err != nil {
		s.failure(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.SaveEntryRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.failure(w, err)
		return
	}
	if err := req.ValidateFor(c); err != nil {
		s.failure(w, err)
		return
	}

	unit, err := sess.Entries.SaveEntry(r.Context(), c, r.PathValue("id"), req.Fields)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"unit":       unit,
		"confirming": unit.Confirming(time.Now()),
	})
}

// handleDeleteEntry removes a unit and its record
func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request, sess *Session) {
	c, err := collectionParam(r)
	if err != nil {
		s.failure(w, err)
		return
	}
	removed, err := sess.Entries.DeleteEntry(r.Context(), c, r.PathValue("id"))
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"removed": removed})
}

// handleSetReferences toggles the "available on request" notice
func (s *Server) handleSetReferences(w http.ResponseWriter, r *http.Request, sess *Session) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.SetReferencesRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.failure(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.failure(w, err)
		return
	}
	if err := sess.Store.SetReferencesOnRequest(r.Context(), *req.ReferencesOnRequest); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]bool{"referencesOnRequest": *req.ReferencesOnRequest})
}

// handleNextStep runs the submit action of the current step
func (s *Server) handleNextStep(w http.ResponseWriter, r *http.Request, sess *Session) {
	var err error
	switch cur := sess.Wizard.Current(); cur {
	case types.StepPersonal:
		var details types.PersonalDetails
		details, err = s.decodePersonalDetails(w, r)
		if err == nil {
			err = sess.Wizard.SubmitStep1(r.Context(), details)
		}
	case types.StepExperience:
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.SaveTextsRequest
		if err = decodeJSON(r.Body, &req); err == nil {
			if err = req.Validate(); err == nil {
				err = sess.Wizard.NextFromStep2(r.Context(), req.Texts())
			}
		}
	default:
		err = sess.Wizard.GoTo(r.Context(), cur+1)
	}
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sessionView(sess))
}

// handlePreviousStep moves one step back
func (s *Server) handlePreviousStep(w http.ResponseWriter, r *http.Request, sess *Session) {
	if _, err := sess.Wizard.Previous(r.Context()); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sessionView(sess))
}

// handleSelectTemplate records the template choice
func (s *Server) handleSelectTemplate(w http.ResponseWriter, r *http.Request, sess *Session) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.SelectTemplateRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.failure(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.failure(w, err)
		return
	}
	if err := sess.Wizard.SelectTemplate(r.Context(), req.Template); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"template": req.Template,
		"layout":   req.Template.Layout(),
	})
}

// handlePreview renders the selected template as HTML, or as the document
// tree with format=json
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request, sess *Session) {
	doc, err := sess.Wizard.Preview()
	if err != nil {
		s.failure(w, err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		s.jsonResponse(w, http.StatusOK, doc)
		return
	}

	html, err := s.deps.Renderer.RenderHTML(doc, rendering.Title(sess.Store.Snapshot().PersonalDetails))
	if err != nil {
		s.failure(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, html)
}

// handleExport runs the export pipeline and returns the PDF as an attachment
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, sess *Session) {
	file, err := sess.Exports.Export(r.Context(), nil)
	if err != nil {
		s.failure(w, err)
		return
	}
	writeFile(w, file)
}

// handleExportStream runs the export pipeline and streams its progress. The
// finished file is kept on the session for download.
func (s *Server) handleExportStream(w http.ResponseWriter, r *http.Request, sess *Session) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	file, err := sess.Exports.Export(r.Context(), sse.WriteProgress)
	if err != nil {
		status := HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			log.Printf("[EXPORT] stream for %s failed: %v", sess.ID, err)
		}
		sse.WriteError(status, errorMessage(err))
		return
	}

	artifact := sess.keep(file)
	sse.WriteComplete(artifact.ID.String(), file.Name)
}

// handleGetArtifact downloads the file kept by a streamed export
func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request, sess *Session) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid export id")
		return
	}
	artifact, ok := sess.Artifact(id)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("export not found: %s", id))
		return
	}
	writeFile(w, artifact.File)
}

func writeFile(w http.ResponseWriter, file *export.File) {
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

func collectionParam(r *http.Request) (types.Collection, error) {
	c, err := types.ParseCollection(r.PathValue("collection"))
	if err != nil {
		return "", &ErrValidation{Field: "collection", Message: err.Error()}
	}
	return c, nil
}

// decodeJSON decodes a single JSON value. Unknown fields are rejected.
func decodeJSON(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ErrValidation{Field: "body", Message: "request body too large"}
		}
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Field: "body", Message: "request body is empty"}
		}
		return &ErrValidation{Field: "body", Message: strings.TrimPrefix(err.Error(), "json: ")}
	}
	return nil
}

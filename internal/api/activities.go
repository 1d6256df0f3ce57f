package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/examforge/examforge/internal/activity"
	"github.com/examforge/examforge/internal/examgen"
)

const defaultListLimit = 50

type metadataRequest struct {
	Title          string                  `json:"title" validate:"required,max=200"`
	Language       string                  `json:"language" validate:"max=100"`
	Difficulty     string                  `json:"difficulty" validate:"max=100"`
	Topics         string                  `json:"topics" validate:"max=1000"`
	QuestionTypes  []examgen.QuestionType  `json:"questionTypes" validate:"dive,oneof=multipleChoice fillBlanks trueFalse openQuestions"`
	GroupName      *string                 `json:"groupName"`
	SourceMaterial *examgen.SourceMaterial `json:"sourceMaterial"`
}

func (m metadataRequest) toMetadata() activity.Metadata {
	return activity.Metadata{
		Title:          m.Title,
		Language:       m.Language,
		Difficulty:     m.Difficulty,
		Topics:         m.Topics,
		QuestionTypes:  m.QuestionTypes,
		GroupName:      m.GroupName,
		SourceMaterial: m.SourceMaterial,
	}
}

type createActivityRequest struct {
	Metadata metadataRequest  `json:"metadata"`
	Content  activity.Content `json:"content"`
}

type replaceActivityRequest struct {
	Metadata *metadataRequest `json:"metadata"`
	Status   *activity.Status `json:"status" validate:"omitempty,oneof=draft published archived"`
}

type appendQuestionRequest struct {
	Type examgen.QuestionType `json:"type" validate:"required,oneof=multipleChoice fillBlanks trueFalse openQuestions"`
}

type moveQuestionRequest struct {
	To *int `json:"to" validate:"required,gte=0"`
}

type regenerateRequest struct {
	Count     int  `json:"count" validate:"omitempty,min=1,max=26"`
	AnswerKey bool `json:"answerKey"`
}

type listResponse struct {
	Activities []*activity.Activity `json:"activities"`
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := activity.ListOptions{
		OwnerID: SubjectFrom(r.Context()),
		Status:  activity.Status(strings.TrimSpace(q.Get("status"))),
		Query:   strings.TrimSpace(q.Get("q")),
		Limit:   parseIntDefault(q.Get("limit"), defaultListLimit),
		Offset:  parseIntDefault(q.Get("offset"), 0),
	}
	if opts.Status != "" && !opts.Status.Valid() {
		writeErr(w, http.StatusBadRequest, "invalid status", string(opts.Status))
		return
	}

	list, err := s.activities.List(r.Context(), opts)
	if err != nil {
		writeActivityErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Activities: list})
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var req createActivityRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	a, err := s.activities.Create(r.Context(), SubjectFrom(r.Context()), req.Metadata.toMetadata(), req.Content)
	if err != nil {
		writeActivityErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	a, err := s.activities.Get(r.Context(), SubjectFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeActivityErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleReplaceActivity(w http.ResponseWriter, r *http.Request) {
	var req replaceActivityRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	var u activity.Update
	if req.Metadata != nil {
		meta := req.Metadata.toMetadata()
		u.Metadata = &meta
	}
	u.Status = req.Status

	a, err := s.activities.Replace(r.Context(), SubjectFrom(r.Context()), chi.URLParam(r, "id"), u)
	if err != nil {
		writeActivityErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	if err := s.activities.Delete(r.Context(), SubjectFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeActivityErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegenerateVersions(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	count := req.Count
	if count == 0 {
		count = 2
	}
	a, err := s.activities.RegenerateVersions(r.Context(), SubjectFrom(r.Context()), chi.URLParam(r, "id"), count, req.AnswerKey)
	if err != nil {
		writeActivityErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleAppendQuestion(w http.ResponseWriter, r *http.Request) {
	var req appendQuestionRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	var added examgen.Question
	_, err := s.activities.Edit(r.Context(), SubjectFrom(r.Context()), chi.URLParam(r, "id"), func(a *activity.Activity) error {
		q, err := a.AppendBlank(r.URL.Query().Get("version"), req.Type)
		added = q
		return err
	})
	if err != nil {
		writeActivityErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var patch activity.QuestionPatch
	if !s.decodeBody(w, r, &patch) {
		return
	}
	s.editAndRespond(w, r, func(a *activity.Activity) error {
		return a.UpdateQuestion(r.URL.Query().Get("version"), chi.URLParam(r, "qid"), patch)
	})
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	s.editAndRespond(w, r, func(a *activity.Activity) error {
		return a.Remove(r.URL.Query().Get("version"), chi.URLParam(r, "qid"))
	})
}

func (s *Server) handleMoveQuestion(w http.ResponseWriter, r *http.Request) {
	var req moveQuestionRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	s.editAndRespond(w, r, func(a *activity.Activity) error {
		return a.Move(r.URL.Query().Get("version"), chi.URLParam(r, "qid"), *req.To)
	})
}

func (s *Server) editAndRespond(w http.ResponseWriter, r *http.Request, fn func(*activity.Activity) error) {
	a, err := s.activities.Edit(r.Context(), SubjectFrom(r.Context()), chi.URLParam(r, "id"), fn)
	if err != nil {
		writeActivityErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func writeActivityErr(w http.ResponseWriter, err error) {
	var (
		inv *activity.ErrInvalid
		qnf *activity.ErrQuestionNotFound
		vnf *activity.ErrVersionNotFound
		oor *activity.ErrIndexOutOfRange
		anf *examgen.ErrAnswerNotFound
		ci  *examgen.ErrConfigInvalid
	)
	switch {
	case errors.Is(err, activity.ErrNotFound):
		writeErr(w, http.StatusNotFound, "activity not found", "")
	case errors.As(err, &qnf), errors.As(err, &vnf):
		writeErr(w, http.StatusNotFound, err.Error(), "")
	case errors.As(err, &inv):
		writeErr(w, http.StatusBadRequest, "invalid activity", strings.Join(inv.Fields, ", "))
	case errors.As(err, &ci):
		writeErr(w, http.StatusBadRequest, "invalid request", strings.Join(ci.Fields, ", "))
	case errors.As(err, &oor):
		writeErr(w, http.StatusBadRequest, err.Error(), "")
	case errors.As(err, &anf):
		writeErr(w, http.StatusUnprocessableEntity, "answer key cannot be derived", err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}

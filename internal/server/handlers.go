package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/KaramelBytes/markboard-cli/internal/parser"
	"github.com/KaramelBytes/markboard-cli/internal/pipeline"
)

type uploadRequest struct {
	Filename string `json:"filename" validate:"required,max=255"`
	Format   string `json:"format" validate:"omitempty,oneof=auto csv tsv xlsx excel spreadsheet"`
	// Contents is a data URL ("data:<mime>;base64,...") or bare base64.
	Contents string `json:"contents" validate:"required"`
}

type uploadResponse struct {
	Status   pipeline.Status `json:"status"`
	State    pipeline.State  `json:"state"`
	Subjects []string        `json:"subjects"`
}

type subjectRequest struct {
	Subject string `json:"subject" validate:"max=200"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.store.Create()
	s.metrics.sessions.Set(float64(s.store.Len()))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, sess.Snapshot())
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, sessionFrom(r).Snapshot())
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	s.store.Delete(sessionFrom(r).ID())
	s.metrics.sessions.Set(float64(s.store.Len()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	var req uploadRequest
	// base64 inflates the payload by 4/3
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*4/3+4096)
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.fail(w, r, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", s.cfg.MaxUploadBytes))
			return
		}
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	format, err := parser.ParseFormat(req.Format)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	var snap pipeline.Snapshot
	data, err := parser.DecodeDataURL(req.Contents)
	if err != nil {
		// a bad payload is still a new upload: drop the previous table
		snap = sess.Fail(req.Filename, err)
	} else {
		snap = sess.Replace(pipeline.Upload{Filename: req.Filename, Format: format, Data: data})
	}
	st := snap.Status
	s.metrics.observeUpload(st, snap.Records)
	if !st.OK() {
		s.logger.Info("upload failed", slog.String("session_id", snap.ID), slog.String("status", st.Message))
		render.Status(r, http.StatusUnprocessableEntity)
	}
	render.JSON(w, r, uploadResponse{Status: st, State: snap.State, Subjects: snap.Subjects})
}

func (s *Server) selectSubject(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	var req subjectRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	res := sess.Select(req.Subject)
	if !res.Placeholder {
		s.metrics.aggregations.Inc()
	}
	render.JSON(w, r, res)
}

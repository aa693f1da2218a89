package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/shinsa/internal/models"
	"github.com/hyperjump/shinsa/internal/mutate"
	"github.com/hyperjump/shinsa/internal/section"
)

type locateRequest struct {
	Text    string `json:"text"`
	Section string `json:"section"`
}

type locateResponse struct {
	Section     string `json:"section"`
	Found       bool   `json:"found"`
	StartLine   int    `json:"start_line,omitempty"`
	EndLine     int    `json:"end_line,omitempty"`
	StartOffset int    `json:"start_offset,omitempty"`
	EndOffset   int    `json:"end_offset,omitempty"`
	// EstimatedOffset is the fallback position when the section is missing.
	EstimatedOffset int `json:"estimated_offset,omitempty"`
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tag, err := section.ParseTag(req.Section)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if section.IsContentTag(tag) {
		s.respondError(w, http.StatusBadRequest, "content tags have no heading location")
		return
	}
	doc, err := section.NewDocument(req.Text)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("locate request", zap.String("section", req.Section), zap.Int("length", doc.Len()))

	resp := locateResponse{Section: string(tag)}
	if span, ok := s.locator.LocateSpan(doc, tag); ok {
		resp.Found = true
		resp.StartLine = span.Start
		resp.EndLine = span.End
		resp.StartOffset = doc.LineStart(span.Start)
		resp.EndOffset = doc.LineStart(span.End)
	} else {
		resp.EstimatedOffset = s.estimator.Estimate(doc, tag)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type mutateRequest struct {
	Text      string `json:"text"`
	Section   string `json:"section"`
	Operation string `json:"operation"`
	Payload   string `json:"payload,omitempty"`
}

type mutateResponse struct {
	Text         string `json:"text"`
	Section      string `json:"section"`
	Operation    string `json:"operation"`
	SectionFound bool   `json:"section_found"`
}

func (s *Server) handleMutate(w http.ResponseWriter, r *http.Request) {
	var req mutateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tag, err := section.ParseTag(req.Section)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	doc, err := section.NewDocument(req.Text)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("mutate request",
		zap.String("section", req.Section),
		zap.String("operation", req.Operation))

	var res *mutate.Result
	switch mutate.Op(req.Operation) {
	case mutate.OpDelete:
		res, err = s.engine.Delete(doc, tag)
		if err != nil {
			switch {
			case errors.Is(err, mutate.ErrSectionNotFound):
				s.respondError(w, http.StatusNotFound, err.Error())
			case errors.Is(err, mutate.ErrDegenerateResult):
				s.respondError(w, http.StatusUnprocessableEntity, err.Error())
			default:
				s.logger.Error("delete failed", zap.Error(err))
				s.respondError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
	case mutate.OpInsert:
		if req.Payload == "" {
			s.respondError(w, http.StatusBadRequest, "payload is required for insert")
			return
		}
		if section.IsContentTag(tag) {
			s.respondError(w, http.StatusBadRequest, "content tags are not insertion positions")
			return
		}
		res = s.engine.Insert(doc, tag, req.Payload)
	default:
		s.respondError(w, http.StatusBadRequest, "operation must be delete or insert")
		return
	}

	s.respondJSON(w, http.StatusOK, mutateResponse{
		Text:         res.Text,
		Section:      string(res.Tag),
		Operation:    string(res.Op),
		SectionFound: res.SectionFound,
	})
}

type variantsRequest struct {
	Paper *models.Paper `json:"paper"`
}

type variantsResponse struct {
	Records  []*models.VariantRecord `json:"records"`
	Complete bool                    `json:"complete"`
}

func (s *Server) handleVariants(w http.ResponseWriter, r *http.Request) {
	var req variantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Paper == nil || req.Paper.Text == "" {
		s.respondError(w, http.StatusBadRequest, "paper with text is required")
		return
	}
	s.logger.Debug("variants request", zap.String("id", req.Paper.ID))
	records, ok := s.generator.VariantsForPaper(req.Paper)
	s.respondJSON(w, http.StatusOK, variantsResponse{Records: records, Complete: ok})
}

type attacksRequest struct {
	Paper *models.Paper `json:"paper"`
	Split string        `json:"split,omitempty"`
}

type attacksResponse struct {
	Records []*models.AttackRecord `json:"records"`
}

func (s *Server) handleAttacks(w http.ResponseWriter, r *http.Request) {
	var req attacksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Paper == nil || req.Paper.Text == "" {
		s.respondError(w, http.StatusBadRequest, "paper with text is required")
		return
	}
	if req.Split == "" {
		req.Split = "test"
	}
	s.logger.Debug("attacks request", zap.String("id", req.Paper.ID), zap.String("split", req.Split))
	records := s.generator.AttacksForPaper(req.Paper, req.Split)
	if records == nil {
		s.respondError(w, http.StatusUnprocessableEntity, "paper text too short for attacks")
		return
	}
	s.respondJSON(w, http.StatusOK, attacksResponse{Records: records})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"sections": section.HeadingTags,
		"variants": s.generator.Variants(),
	}
	if s.store != nil {
		count, err := s.store.CountResults(r.Context())
		if err != nil {
			s.logger.Error("status: count results failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["results"] = count
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/meridianbi/boardpulse/agent"
	"github.com/meridianbi/boardpulse/analytics"
	"github.com/meridianbi/boardpulse/normalize"
	"github.com/meridianbi/boardpulse/observability"
	"github.com/meridianbi/boardpulse/snapshot"
)

type chatRequest struct {
	Question string       `json:"question"`
	History  []agent.Turn `json:"history,omitempty"`
}

type chatResponse struct {
	Answer          string                `json:"answer"`
	Boards          []normalize.BoardKind `json:"boards"`
	CacheAgeMinutes map[string]float64    `json:"cache_age_minutes"`
	Data            dataSummary           `json:"data"`
}

type dataSummary struct {
	Deals        int `json:"deals"`
	WorkOrders   int `json:"work_orders"`
	QualityFlags int `json:"quality_flags"`
	DroppedRows  int `json:"dropped_rows"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "a non-empty question is required"})
		return
	}

	ctx := r.Context()
	boards := s.agent.Classify(ctx, req.Question)

	var (
		deals *snapshot.DealSnapshot
		work  *snapshot.WorkOrderSnapshot
		err   error
	)
	switch {
	case hasBoard(boards, normalize.KindDeals) && hasBoard(boards, normalize.KindWorkOrders):
		deals, work, err = s.cache.Refresh(ctx)
	case hasBoard(boards, normalize.KindDeals):
		deals, err = s.cache.Deals(ctx)
	default:
		work, err = s.cache.WorkOrders(ctx)
	}
	if err != nil {
		s.recordChat(r, start, false, err)
		s.writeUpstreamError(w, r, err)
		return
	}

	var (
		dealRecords []normalize.Deal
		workRecords []normalize.WorkOrder
		summary     dataSummary
	)
	if deals != nil {
		dealRecords = deals.Records
		summary.Deals = len(deals.Records)
		summary.QualityFlags += normalize.FlagCount(deals.Records)
		summary.DroppedRows += deals.Dropped
	}
	if work != nil {
		workRecords = work.Records
		summary.WorkOrders = len(work.Records)
		summary.QualityFlags += normalize.FlagCount(work.Records)
		summary.DroppedRows += work.Dropped
	}

	contextText := agent.ChatContext(boards, dealRecords, workRecords, s.now())
	answer, err := s.agent.Answer(ctx, req.Question, req.History, contextText)
	if err != nil {
		s.recordChat(r, start, false, err)
		s.writeUpstreamError(w, r, err)
		return
	}

	s.recordChat(r, start, true, nil)
	s.observe("chat_latency_ms", float64(time.Since(start).Milliseconds()), "milliseconds")
	writeJSON(w, http.StatusOK, chatResponse{
		Answer:          answer,
		Boards:          boards,
		CacheAgeMinutes: s.cacheAges(),
		Data:            summary,
	})
}

func (s *Server) recordChat(r *http.Request, start time.Time, ok bool, err error) {
	event := observability.Event{
		EventType: observability.EventChatTurn,
		RequestID: middleware.GetReqID(r.Context()),
		Duration:  time.Since(start),
		Success:   ok,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	s.record(event)
}

type adhocRequest struct {
	Dimension string `json:"dimension"`
	Metric    string `json:"metric"`
}

func (s *Server) handleAdhoc(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req adhocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dimension and metric are required"})
		return
	}

	ctx := r.Context()
	deals, work, err := s.cache.Refresh(ctx)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}

	res, err := analytics.Pivot(deals.Records, work.Records, req.Dimension, req.Metric)
	if err != nil {
		var unsupported *analytics.UnsupportedPivotError
		if errors.As(err, &unsupported) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":      unsupported.Reason,
				"dimensions": analytics.Dimensions(),
				"metrics":    analytics.Metrics(),
			})
			return
		}
		s.writeUpstreamError(w, r, err)
		return
	}

	insight := s.agent.AdhocInsight(ctx, res)

	s.record(observability.Event{
		EventType: observability.EventAdhocPivot,
		RequestID: middleware.GetReqID(r.Context()),
		Duration:  time.Since(start),
		Records:   res.Records,
		Success:   true,
		Details:   map[string]string{"dimension": res.Dimension, "metric": res.Metric},
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"result":  res,
		"insight": insight,
	})
}

func (s *Server) handleLeadershipUpdate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	deals, work, err := s.cache.Refresh(ctx)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}

	update := analytics.LeadershipUpdate(deals.Records, work.Records, s.now())
	update.DroppedHeader = deals.Dropped + work.Dropped
	briefing := s.agent.LeadershipBriefing(ctx, update)

	s.record(observability.Event{
		EventType: observability.EventLeadershipUpdate,
		RequestID: middleware.GetReqID(r.Context()),
		Duration:  time.Since(start),
		Records:   update.Pipeline.TotalDeals,
		Success:   true,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"briefing": briefing,
		"context":  update,
	})
}

func (s *Server) handleDashboardData(w http.ResponseWriter, r *http.Request) {
	deals, work, err := s.cache.Refresh(r.Context())
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	dashboard := analytics.DashboardMetrics(deals.Records, work.Records, s.now())
	writeJSON(w, http.StatusOK, map[string]any{
		"dashboard":         dashboard,
		"cache_age_minutes": s.cacheAges(),
	})
}

func (s *Server) handleRefreshCache(w http.ResponseWriter, r *http.Request) {
	s.cache.Invalidate()
	s.record(observability.Event{
		EventType: observability.EventCacheInvalidate,
		RequestID: middleware.GetReqID(r.Context()),
		Success:   true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "cache invalidated"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"cache_age_minutes": s.cacheAges(),
	})
}

func (s *Server) cacheAges() map[string]float64 {
	ages := make(map[string]float64, 2)
	for kind, age := range s.cache.Ages() {
		ages[string(kind)] = age.Minutes()
	}
	return ages
}

func hasBoard(boards []normalize.BoardKind, kind normalize.BoardKind) bool {
	for _, b := range boards {
		if b == kind {
			return true
		}
	}
	return false
}

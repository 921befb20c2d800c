package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ykhdr/rainbow-table/common/http/middleware"
	"github.com/ykhdr/rainbow-table/internal/dispatcher"
	"github.com/ykhdr/rainbow-table/internal/messages/request"
	"github.com/ykhdr/rainbow-table/internal/rainbow"
	"github.com/ykhdr/rainbow-table/internal/store/requeststore"
)

const (
	defaultRowsLimit = 100
	maxRowsLimit     = 1000
)

type CrackRequest struct {
	Hash string `json:"hash"`
}

type Dispatcher interface {
	DispatchRequest(ctx context.Context, hash string) (request.Id, error)
}

// TableView is the read-only part of the table served for presentation.
type TableView interface {
	Rows(offset, limit int) []rainbow.Row
	Endpoints() int
}

type Server struct {
	l            zerolog.Logger
	addr         string
	dispatcher   Dispatcher
	requestStore requeststore.RequestStore
	table        TableView
	router       *mux.Router
}

func NewServer(
	addr string,
	dispatcher Dispatcher,
	requestStore requeststore.RequestStore,
	table TableView,
) *Server {
	s := &Server{
		addr:         addr,
		dispatcher:   dispatcher,
		requestStore: requestStore,
		table:        table,
		l: log.With().
			Str("domain", "api-server").
			Str("type", "http").
			Logger(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware(s.l))
	router.HandleFunc("/api/health", s.handleHealth).Methods("GET")

	jsonRouter := router.PathPrefix("/api").Subrouter()
	jsonRouter.Use(middleware.ApplicationJsonContentTypeMiddleware())
	jsonRouter.HandleFunc("/hash/crack", s.handleHashCrack).Methods("POST")
	jsonRouter.HandleFunc("/hash/status", s.handleHashStatus).Methods("GET")
	jsonRouter.HandleFunc("/table", s.handleTable).Methods("GET")
	return router
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	server := http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.l.Warn().Err(err).Msg("Api server shutdown failed")
		}
	}()
	s.l.Info().Str("address", s.addr).Msg("Api server is running")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.l.Error().Err(err).Msg("Api server failed")
		return errors.Wrap(err, "api server failed")
	}
	return nil
}

func (s *Server) handleHashCrack(w http.ResponseWriter, r *http.Request) {
	var req CrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.l.Warn().Err(err).Msg("Invalid request")
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	reqId, err := s.dispatcher.DispatchRequest(r.Context(), req.Hash)
	switch {
	case err == nil:
	case errors.Is(err, rainbow.ErrInvalidDigestFormat):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, dispatcher.ErrorQueueFull):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	default:
		s.l.Warn().Err(err).Str("hash", req.Hash).Msg("Failed to dispatch request")
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusAccepted)
	s.writeJson(w, map[string]string{"requestId": string(reqId)})
}

type statusResponse struct {
	Status      request.Status `json:"status"`
	Data        []string       `json:"data"`
	ChainStart  string         `json:"chainStart,omitempty"`
	Position    *int           `json:"position,omitempty"`
	ErrorReason string         `json:"errorReason,omitempty"`
}

func (s *Server) handleHashStatus(w http.ResponseWriter, r *http.Request) {
	requestId := r.URL.Query().Get("requestId")
	if requestId == "" {
		s.writeError(w, http.StatusBadRequest, "Missing requestId")
		return
	}
	info, err := s.requestStore.Get(r.Context(), request.Id(requestId))
	if err != nil {
		if errors.Is(err, requeststore.NotFoundErr) {
			s.writeError(w, http.StatusNotFound, "Request not found")
			return
		}
		s.l.Warn().Err(err).Str("request-id", requestId).Msg("Failed to load request")
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	resp := statusResponse{
		Status:      info.Status,
		Data:        []string{},
		ErrorReason: info.ErrorReason,
	}
	if info.Status == request.StatusReady {
		resp.Data = []string{info.Plaintext}
		resp.ChainStart = info.ChainStart
		resp.Position = &info.Position
	}
	s.writeJson(w, resp)
}

type tableResponse struct {
	Total  int           `json:"total"`
	Offset int           `json:"offset"`
	Rows   []rainbow.Row `json:"rows"`
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		s.writeError(w, http.StatusBadRequest, "Invalid offset")
		return
	}
	limit, err := queryInt(r, "limit", defaultRowsLimit)
	if err != nil || limit < 0 {
		s.writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	limit = min(limit, maxRowsLimit)
	rows := s.table.Rows(offset, limit)
	if rows == nil {
		rows = []rainbow.Row{}
	}
	s.writeJson(w, tableResponse{Total: s.table.Endpoints(), Offset: offset, Rows: rows})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		s.l.Warn().Err(err).Msg("Failed to write health response")
	}
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func (s *Server) writeJson(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.l.Warn().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	s.writeJson(w, map[string]string{"error": msg})
}

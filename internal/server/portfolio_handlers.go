package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foliolens/foliolens/internal/portfolio"
)

// PortfolioHandlers handles portfolio CRUD HTTP requests
type PortfolioHandlers struct {
	positions PositionStore
	log       zerolog.Logger
}

// NewPortfolioHandlers creates new portfolio handlers
func NewPortfolioHandlers(positions PositionStore, log zerolog.Logger) *PortfolioHandlers {
	return &PortfolioHandlers{
		positions: positions,
		log:       log.With().Str("handler", "portfolio").Logger(),
	}
}

// RegisterRoutes registers portfolio routes
func (h *PortfolioHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/positions", h.HandleListPositions)
		r.Put("/positions", h.HandleReplacePositions)
		r.Post("/positions", h.HandleUpsertPosition)
		r.Get("/positions/{symbol}", h.HandleGetPosition)
		r.Delete("/positions/{symbol}", h.HandleDeletePosition)
	})
}

// HandleListPositions handles GET /api/portfolio/positions
func (h *PortfolioHandlers) HandleListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.positions.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list positions")
		writeError(w, h.log, http.StatusInternalServerError, "failed to list positions")
		return
	}

	writeJSON(w, h.log, http.StatusOK, envelope(positions))
}

// HandleGetPosition handles GET /api/portfolio/positions/{symbol}
func (h *PortfolioHandlers) HandleGetPosition(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	position, err := h.positions.GetBySymbol(symbol)
	if errors.Is(err, portfolio.ErrNotFound) {
		writeError(w, h.log, http.StatusNotFound, "position not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get position")
		writeError(w, h.log, http.StatusInternalServerError, "failed to get position")
		return
	}

	writeJSON(w, h.log, http.StatusOK, envelope(position))
}

// HandleUpsertPosition handles POST /api/portfolio/positions
func (h *PortfolioHandlers) HandleUpsertPosition(w http.ResponseWriter, r *http.Request) {
	var position portfolio.Position
	if err := json.NewDecoder(r.Body).Decode(&position); err != nil {
		writeError(w, h.log, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.positions.Upsert(position); err != nil {
		h.log.Error().Err(err).Str("symbol", position.Symbol).Msg("Failed to upsert position")
		writeError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, h.log, http.StatusOK, envelope(map[string]interface{}{
		"symbol": position.Symbol,
		"status": "saved",
	}))
}

// replaceRequest is the body for PUT /api/portfolio/positions
type replaceRequest struct {
	Positions []portfolio.Position `json:"positions"`
}

// HandleReplacePositions handles PUT /api/portfolio/positions - replaces
// the whole stored portfolio atomically
func (h *PortfolioHandlers) HandleReplacePositions(w http.ResponseWriter, r *http.Request) {
	var req replaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.positions.ReplaceAll(req.Positions); err != nil {
		h.log.Error().Err(err).Msg("Failed to replace portfolio")
		writeError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, h.log, http.StatusOK, envelope(map[string]interface{}{
		"count":  len(req.Positions),
		"status": "replaced",
	}))
}

// HandleDeletePosition handles DELETE /api/portfolio/positions/{symbol}
func (h *PortfolioHandlers) HandleDeletePosition(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	err := h.positions.Delete(symbol)
	if errors.Is(err, portfolio.ErrNotFound) {
		writeError(w, h.log, http.StatusNotFound, "position not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to delete position")
		writeError(w, h.log, http.StatusInternalServerError, "failed to delete position")
		return
	}

	writeJSON(w, h.log, http.StatusOK, envelope(map[string]interface{}{
		"symbol": symbol,
		"status": "deleted",
	}))
}

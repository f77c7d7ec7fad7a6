package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/tuanng17/coinfolio/internal/errors"
	"github.com/tuanng17/coinfolio/internal/models"
	"github.com/tuanng17/coinfolio/internal/services"
)

type QueryHandler struct {
	service services.QueryService
}

func NewQueryHandler(service services.QueryService) *QueryHandler {
	return &QueryHandler{service: service}
}

// queryEnvelope mirrors the upstream response wrapper so the chat panel can
// consume either endpoint unchanged.
type queryEnvelope struct {
	Status string           `json:"status"`
	Data   models.QueryData `json:"data"`
}

// HandleQuery handles POST /api/portfolio/query
// @Summary Process a natural-language query
// @Description Forward a free-text portfolio question to the backend and return the answer
// @Tags query
// @Accept json
// @Produce json
// @Param query body models.QueryRequest true "Query text"
// @Success 200 {object} queryEnvelope
// @Failure 400 {object} queryEnvelope
// @Router /portfolio/query [post]
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeQueryError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.service.ProcessQuery(r.Context(), req.Text)
	if err != nil {
		var validationErr *apperrors.ErrValidation
		if errors.As(err, &validationErr) {
			writeQueryError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeQueryError(w, http.StatusBadGateway, err.Error())
		return
	}

	json.NewEncoder(w).Encode(queryEnvelope{
		Status: "success",
		Data:   models.QueryData{Response: answer},
	})
}

func writeQueryError(w http.ResponseWriter, code int, message string) {
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(queryEnvelope{
		Status: "error",
		Data:   models.QueryData{Message: message},
	})
}

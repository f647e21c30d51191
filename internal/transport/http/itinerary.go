package transporthttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"travelplanner/internal/planner"
)

type generateRequest struct {
	City        string               `json:"city"`
	Date        string               `json:"date"`
	MinRating   *float64             `json:"minRating"`
	Preferences *planner.Preferences `json:"preferences,omitempty"`
}

type generateResponse struct {
	Success   bool              `json:"success"`
	Itinerary planner.Itinerary `json:"itinerary"`
	Message   string            `json:"message,omitempty"`
}

type errorBody struct {
	Success bool           `json:"success"`
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var payload generateRequest
	if err := decoder.Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large", Code: "VALIDATION_ERROR"})
			return
		}
		s.writeError(w, http.StatusBadRequest, errorBody{
			Error:   "invalid payload",
			Code:    "VALIDATION_ERROR",
			Details: map[string]any{"reason": err.Error()},
		})
		return
	}
	if payload.MinRating == nil {
		s.writeError(w, http.StatusBadRequest, errorBody{
			Error:   "minRating is required",
			Code:    "VALIDATION_ERROR",
			Details: map[string]any{"field": "minRating"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	itinerary, err := s.composer.Compose(ctx, planner.Request{
		City:        payload.City,
		Date:        payload.Date,
		MinRating:   *payload.MinRating,
		Preferences: payload.Preferences,
	})
	if err != nil {
		s.writeComposeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, generateResponse{
		Success:   true,
		Itinerary: itinerary,
		Message:   fmt.Sprintf("Successfully generated itinerary for %s", itinerary.City),
	})
}

func (s *Server) getItinerary(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusNotImplemented, errorBody{
		Error: "itinerary storage is not available",
		Code:  "NOT_IMPLEMENTED",
	})
}

func (s *Server) writeComposeError(w http.ResponseWriter, err error) {
	var composeErr *planner.ComposeError
	if !errors.As(err, &composeErr) {
		s.logger.Error("unexpected composition error", "error", s.redact.Replace(err.Error()))
		s.writeError(w, http.StatusInternalServerError, errorBody{Error: "Failed to generate itinerary", Code: "GENERATION_FAILED"})
		return
	}

	status := http.StatusInternalServerError
	switch composeErr.Kind {
	case planner.KindValidation:
		status = http.StatusBadRequest
	case planner.KindNoPlaces:
		status = http.StatusNotFound
	}

	details := make(map[string]any, len(composeErr.Details)+1)
	for k, v := range composeErr.Details {
		details[k] = v
	}
	if composeErr.Cause != nil {
		reason := s.redact.Replace(composeErr.Cause.Error())
		details["reason"] = reason
		s.logger.Error("composition failed", "code", composeErr.Code(), "reason", reason)
	}

	s.writeError(w, status, errorBody{Error: composeErr.Message, Code: composeErr.Code(), Details: details})
}

func (s *Server) writeError(w http.ResponseWriter, status int, body errorBody) {
	body.Success = false
	s.writeJSON(w, status, body)
}

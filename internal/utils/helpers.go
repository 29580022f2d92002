package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/procurelink/rfq-service/internal/models"
)

// SendErrorResponse writes an error as JSON.
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := models.ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
	}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Println(err)
	}
}

// SendDomainError maps a service error to an HTTP response. Domain errors
// carry their own status code; anything else becomes a 500 with the fallback
// message.
func SendDomainError(w http.ResponseWriter, logger *log.Logger, err error, fallback string) {
	var resp *models.ErrorResponse
	if errors.As(err, &resp) {
		logger.Println(err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
			logger.Println(encodeErr)
		}
		return
	}
	logger.Println(err)
	SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

// SendJSON writes a success payload as JSON.
func SendJSON(w http.ResponseWriter, logger *log.Logger, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Println(err)
	}
}

// ParseLimitOffset parses limit and offset query parameters.
func ParseLimitOffset(limitStr, offsetStr string) (int, int, error) {
	var limit, offset int
	var err error

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > 50 {
			return 0, 0, fmt.Errorf("invalid limit parameter, must be a positive integer [0:50]")
		}
	} else {
		limit = 20
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter, must be a non-negative integer")
		}
	} else {
		offset = 0
	}

	return limit, offset, nil
}

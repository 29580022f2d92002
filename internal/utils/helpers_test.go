package utils

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/procurelink/rfq-service/internal/models"
)

func TestParseLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		limit      string
		offset     string
		wantLimit  int
		wantOffset int
		wantErr    bool
	}{
		{name: "defaults", limit: "", offset: "", wantLimit: 20, wantOffset: 0},
		{name: "explicit values", limit: "10", offset: "5", wantLimit: 10, wantOffset: 5},
		{name: "max limit", limit: "50", offset: "", wantLimit: 50, wantOffset: 0},
		{name: "limit too large", limit: "51", wantErr: true},
		{name: "zero limit", limit: "0", wantErr: true},
		{name: "negative offset", offset: "-1", wantErr: true},
		{name: "non-numeric limit", limit: "ten", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset, err := ParseLimitOffset(tt.limit, tt.offset)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Fatalf("got %d/%d, want %d/%d", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestSendDomainError(t *testing.T) {
	logger := log.New(io.Discard, "", 0)

	t.Run("domain error keeps its status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SendDomainError(rec, logger, models.NewRFQClosed("rfq is not accepting bids"), "fallback")

		if rec.Code != http.StatusConflict {
			t.Fatalf("status=%d, want %d", rec.Code, http.StatusConflict)
		}
		var body models.ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Kind != models.KindRFQClosed || body.Message != "rfq is not accepting bids" {
			t.Fatalf("body=%+v", body)
		}
	})

	t.Run("unknown error becomes 500", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SendDomainError(rec, logger, io.ErrUnexpectedEOF, "internal failure")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status=%d, want %d", rec.Code, http.StatusInternalServerError)
		}
		var body models.ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Message != "internal failure" {
			t.Fatalf("message=%q, want the fallback", body.Message)
		}
	})
}

package handlers

import (
	"fmt"
	"log"
	"net/http"
)

// PingHandler handles GET requests to /api/ping.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, "ok"); err != nil {
		log.Println(err)
	}
}

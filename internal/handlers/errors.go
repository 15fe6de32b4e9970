package handlers

import (
	"log"
	"net/http"
)

// respondWithError writes userMsg to the client and keeps the diagnostic
// detail (logMsg, err) in the logs. Which upstream stage failed is never
// surfaced to the player.
func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	http.Error(w, userMsg, status)
}

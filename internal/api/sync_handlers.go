package api

import "net/http"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSync schedules a background sync pass and returns immediately. The
// pass itself may fail without affecting local operation.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.SyncRunner != nil {
		s.SyncRunner.Request()
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

package server

import (
	"encoding/json"
	"net/http"
)

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/online", s.handleOnline)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleOnline lists the online members of the root room in join
// order, the same view /who gives protocol clients.
func (s *Server) handleOnline(w http.ResponseWriter, r *http.Request) {
	online := s.dir.Root().MembersOnline()
	names := make([]string, 0, len(online))
	for _, o := range online {
		names = append(names, o.User.Name())
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(names)
}

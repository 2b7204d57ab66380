package provider

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	yt *Client
}

func NewServer(yt *Client) *Server {
	return &Server{yt: yt}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/resolve", s.handleResolve)

	return r
}

// handleResolve turns a pasted link into a video id plus a suggested
// title. The id is extracted locally; the title lookup is best-effort
// and an empty title is not an error.
// GET /resolve?url=...
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	link := r.URL.Query().Get("url")
	if link == "" {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}

	videoID, ok := ExtractVideoID(link)
	if !ok {
		writeError(w, http.StatusBadRequest, "unrecognized video link")
		return
	}

	info := &VideoInfo{VideoID: videoID}
	if s.yt != nil {
		got, err := s.yt.Lookup(r.Context(), link)
		if err != nil {
			log.Printf("playdeck: resolve title for %s: %v", videoID, err)
		} else {
			info = got
		}
	}

	writeJSON(w, http.StatusOK, info)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

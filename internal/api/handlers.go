package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleAllSimilarities(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Store.AllSimilarities(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]
	items, err := s.Store.ItemsOf(r.Context(), handle)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleShingles(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]
	// 0..max word length covers every stored shingle regardless of the
	// pipeline's configured evaluation window.
	shingles, err := s.Store.ShinglesOf(r.Context(), handle, 0, 1<<30, 1<<20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, shingles)
}

func (s *Server) handleSignature(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]
	sig, ok, err := s.Store.SignatureOf(r.Context(), handle)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, sig)
}

func (s *Server) handleHandleSimilarities(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]
	rows, err := s.Store.SimilaritiesOf(r.Context(), handle)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]
	s.QIn.Push(handle)
	w.WriteHeader(http.StatusAccepted)
}

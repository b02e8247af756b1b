package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/joseferreira/Merkle-Digest-Service/internal/domain"
	"github.com/joseferreira/Merkle-Digest-Service/internal/merkle"
	"github.com/joseferreira/Merkle-Digest-Service/internal/persistence"
	"github.com/joseferreira/Merkle-Digest-Service/internal/service"
)

// treeRequest represents the expected structure of an incoming build or
// verify request.
type treeRequest struct {
	Items []string `json:"items"`
}

// TreeResponse defines the structure for the tree build response.
type TreeResponse struct {
	Root      string `json:"root"`
	Depth     int    `json:"depth"`
	LeafCount int    `json:"leaf_count"`
	Algorithm string `json:"algorithm"`
}

// VerifyResponse defines the structure for the verification response.
type VerifyResponse struct {
	IsValid bool `json:"is_valid"`
}

// RootsResponse defines the structure for the stored roots listing.
type RootsResponse struct {
	Roots []string `json:"roots"`
}

type Server struct {
	digests    *service.DigestService
	listenAddr string
}

func NewServer(listenAddr string, digests *service.DigestService) *Server {
	return &Server{
		listenAddr: listenAddr,
		digests:    digests,
	}
}

// Handler wires up all routes. Split out from Start so tests can drive
// the server without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tree", s.buildTreeHandler)
	mux.HandleFunc("/tree/", s.treeHandler)
	mux.HandleFunc("/roots", s.listRootsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Start() error {
	logrus.WithField("address", s.listenAddr).Info("Merkle digest service running")
	return http.ListenAndServe(s.listenAddr, s.Handler())
}

// buildTreeHandler builds a tree from the submitted items, persists the
// record and returns the root digest.
func (s *Server) buildTreeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	req, ok := s.decodeTreeRequest(w, r)
	if !ok {
		return
	}

	record, err := s.digests.BuildTree(domain.ItemsFromStrings(req.Items))
	if err != nil {
		if errors.Is(err, merkle.ErrEmptyInput) {
			logrus.Warn("Rejected tree build with no items")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "Cannot build a tree from zero items")
			return
		}
		logrus.WithError(err).Error("Failed to build tree")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "Failed to build tree: %v", err)
		return
	}

	response := TreeResponse{
		Root:      record.Root,
		Depth:     record.Depth,
		LeafCount: record.LeafCount,
		Algorithm: record.Algorithm,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// treeHandler dispatches /tree/{root} and /tree/{root}/verify.
func (s *Server) treeHandler(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 3 || parts[2] == "" {
		logrus.Warn("Missing root digest in request")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "Missing root digest")
		return
	}
	root := parts[2]

	if len(parts) == 4 && parts[3] == "verify" {
		s.verifyTree(w, r, root)
		return
	}
	if len(parts) == 3 {
		s.getTree(w, r, root)
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) getTree(w http.ResponseWriter, r *http.Request, root string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	record, err := s.digests.GetTree(root)
	if err != nil {
		if errors.Is(err, persistence.ErrTreeNotFound) {
			logrus.WithField("root", root).Warn("Tree not found")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, "Tree not found")
			return
		}
		logrus.WithError(err).Error("Failed to load tree")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "Failed to load tree: %v", err)
		return
	}

	logrus.WithField("root", root).Info("Retrieved tree")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

func (s *Server) verifyTree(w http.ResponseWriter, r *http.Request, root string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	req, ok := s.decodeTreeRequest(w, r)
	if !ok {
		return
	}

	isValid, err := s.digests.VerifyTree(root, domain.ItemsFromStrings(req.Items))
	if err != nil {
		switch {
		case errors.Is(err, persistence.ErrTreeNotFound):
			logrus.WithField("root", root).Warn("Tree not found")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, "Tree not found")
		case errors.Is(err, merkle.ErrEmptyInput):
			logrus.Warn("Rejected verification with no items")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "Cannot verify against zero items")
		default:
			logrus.WithError(err).Error("Failed to verify tree")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, "Failed to verify tree: %v", err)
		}
		return
	}

	logrus.WithFields(logrus.Fields{
		"root":     root,
		"is_valid": isValid,
	}).Info("Tree verification completed")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(VerifyResponse{IsValid: isValid})
}

func (s *Server) listRootsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	roots, err := s.digests.ListRoots()
	if err != nil {
		logrus.WithError(err).Error("Failed to list roots")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "Failed to list roots: %v", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RootsResponse{Roots: roots})
}

func (s *Server) decodeTreeRequest(w http.ResponseWriter, r *http.Request) (treeRequest, bool) {
	var req treeRequest

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logrus.WithError(err).Error("Error reading request body")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error reading request body: %v", err)
		return req, false
	}

	if err := json.Unmarshal(body, &req); err != nil {
		logrus.WithError(err).Error("Error unmarshalling tree request")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error unmarshalling tree request: %v", err)
		return req, false
	}

	return req, true
}

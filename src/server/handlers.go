package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ogri-la/gear-journey-go/src/bis"
	"github.com/ogri-la/gear-journey-go/src/progression"
	"github.com/ogri-la/gear-journey-go/src/types"
)

const cacheControl = "public, max-age=86400"

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// handleDisplayID answers {displayId, slotId}, 0/0 when upstream doesn't know the item
func (s *Server) handleDisplayID(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(r.PathValue("itemId"))
	if err != nil || itemID <= 0 {
		writeJSON(w, http.StatusBadRequest, types.DisplayInfo{})
		return
	}

	info, err := s.displayIDs.ItemDisplayInfo(r.Context(), itemID)
	if err != nil {
		slog.Warn("display id lookup failed", "item-id", itemID, "error", err)
		writeJSON(w, http.StatusBadGateway, types.DisplayInfo{})
		return
	}

	if info.Resolved() {
		w.Header().Set("Cache-Control", cacheControl)
	}
	writeJSON(w, http.StatusOK, info)
}

type metaFallback struct {
	DisplayID int `json:"displayId"`
	ItemClass int `json:"itemClass"`
}

// handleProxy forwards model asset requests to the asset host
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	path := r.PathValue("path")
	target := s.config.AssetBase + "/" + path

	resp, err := s.assets.Get(r.Context(), target)
	if err != nil {
		slog.Error("proxy error", "url", target, "error", err)
		http.Error(w, "Proxy error", http.StatusBadGateway)
		return
	}

	if !resp.OK() {
		// the viewer asks for meta files of models that don't exist
		if resp.StatusCode == http.StatusNotFound && strings.Contains(path, "meta") {
			writeJSON(w, http.StatusOK, metaFallback{})
			return
		}
		slog.Error("proxy error", "url", target, "status", resp.StatusCode)
		http.Error(w, "Proxy error", http.StatusBadGateway)
		return
	}

	contentType := resp.Headers["Content-Type"]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(resp.Body); err != nil {
		slog.Error("failed to write proxied body", "url", target, "error", err)
	}
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	if err := s.catalogue.Ready(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.catalogue.Items())
}

// handleProgression plans the items in ?bis=1,2,3 at ?level=N, the level cap by default
func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	if err := s.catalogue.Ready(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
		return
	}

	level := bis.MaxLevel
	if raw := r.URL.Query().Get("level"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "level must be a number"})
			return
		}
		level = min(max(parsed, bis.MinLevel), bis.MaxLevel)
	}

	ids := bis.UniqueIDs(bis.DecodeFragment("#bis=" + r.URL.Query().Get("bis")))
	items := s.catalogue.ItemsByIDs(ids)
	writeJSON(w, http.StatusOK, progression.BuildPlan(items, level))
}

package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// OpenAPIHandler serves the API description shipped alongside the binary.
// The document is authored in YAML; the JSON route converts on first request
// and caches the result since the file never changes at runtime.
type OpenAPIHandler struct {
	specPath string
	baseDir  string

	once     sync.Once
	yamlData []byte
	jsonData []byte
	loadErr  error
}

func NewOpenAPIHandler(specPath string) *OpenAPIHandler {
	absPath, _ := filepath.Abs(specPath)
	baseDir, _ := filepath.Abs(filepath.Dir(specPath))
	return &OpenAPIHandler{
		specPath: absPath,
		baseDir:  baseDir,
	}
}

func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/openapi.yaml", h.ServeYAML).Methods("GET")
	r.HandleFunc("/api/v1/openapi.json", h.ServeJSON).Methods("GET")
}

func (h *OpenAPIHandler) load() {
	// Guard against a misconfigured path escaping the spec directory.
	rel, err := filepath.Rel(h.baseDir, filepath.Clean(h.specPath))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		h.loadErr = os.ErrPermission
		return
	}

	h.yamlData, h.loadErr = os.ReadFile(h.specPath)
	if h.loadErr != nil {
		return
	}

	var doc map[string]any
	if err := yaml.Unmarshal(h.yamlData, &doc); err != nil {
		h.loadErr = err
		return
	}
	h.jsonData, h.loadErr = json.Marshal(doc)
}

// ServeYAML returns the document as authored.
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	h.once.Do(h.load)
	if h.loadErr != nil {
		http.Error(w, "OpenAPI specification not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml")
	_, _ = w.Write(h.yamlData)
}

// ServeJSON returns the document converted to JSON.
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	h.once.Do(h.load)
	if h.loadErr != nil {
		http.Error(w, "OpenAPI specification not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.jsonData)
}

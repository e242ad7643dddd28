package http

import (
	"encoding/json"
	"log"
	"net/http"
)

// Renderer writes a named template with its context.
type Renderer interface {
	Render(w http.ResponseWriter, status int, template string, context any)
}

// Page is the JSON envelope written by JSONRenderer.
type Page struct {
	Template string `json:"template"`
	Context  any    `json:"context"`
}

// JSONRenderer serialises the page instead of executing HTML templates.
type JSONRenderer struct{}

func (JSONRenderer) Render(w http.ResponseWriter, status int, template string, context any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Page{Template: template, Context: context}); err != nil {
		log.Printf("render %s failed: %v", template, err)
	}
}

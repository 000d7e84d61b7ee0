// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/attrition/internal/domain/employee"
)

// SchemaResponse is the body of GET /api/schema.
type SchemaResponse struct {
	Count  int             `json:"count"`
	Fields employee.Schema `json:"fields"`
}

// SchemaHandler serves the employee schema.
type SchemaHandler struct {
	deps Dependencies
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(deps Dependencies) *SchemaHandler {
	return &SchemaHandler{deps: deps}
}

// HandleSchema handles GET /api/schema requests.
func (h *SchemaHandler) HandleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	s := h.deps.Schema()
	writeJSON(w, http.StatusOK, SchemaResponse{Count: len(s), Fields: s})
}

package handler

import "net/http"

// OrderHandler is a placeholder: the order endpoints are routed and
// auth-gated but order processing itself is not built yet.
type OrderHandler struct{}

func NewOrderHandler() *OrderHandler {
	return &OrderHandler{}
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{"orders": []any{}}, nil)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{"order": nil}, nil)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{"order": nil}, nil)
}

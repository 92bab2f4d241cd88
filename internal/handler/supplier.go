package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/dukerupert/smartkitchen/internal/store"
)

type SupplierHandler struct {
	categoryStore *store.SupplierCategoryStore
	userStore     *store.UserStore
	logger        *slog.Logger
}

func NewSupplierHandler(cs *store.SupplierCategoryStore, us *store.UserStore, logger *slog.Logger) *SupplierHandler {
	return &SupplierHandler{categoryStore: cs, userStore: us, logger: logger}
}

type categoryRequest struct {
	CategoryName string `json:"category_name"`
}

type categoriesRequest struct {
	Categories []string `json:"categories"`
}

// List handles GET /api/supplier-categories
func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.categoryStore.List()
	if err != nil {
		h.logger.Error("list supplier categories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list supplier categories")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

// ListSuppliers handles GET /api/suppliers
func (h *SupplierHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	list, err := h.userStore.ListByRole(model.RoleSupplier)
	if err != nil {
		h.logger.Error("list suppliers", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list suppliers")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

// BySupplier handles GET /api/supplier-categories/supplier/{userId}
func (h *SupplierHandler) BySupplier(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.supplierParam(w, r)
	if !ok {
		return
	}
	list, err := h.categoryStore.ListByUser(userID)
	if err != nil {
		h.logger.Error("list supplier categories", "supplier_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list supplier categories")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

// ByCategory handles GET /api/supplier-categories/category/{name}
func (h *SupplierHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	sc, err := h.categoryStore.GetByCategory(name)
	if err != nil {
		h.logger.Error("get supplier category", "category", name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get supplier category")
		return
	}
	if sc == nil {
		writeError(w, http.StatusNotFound, "no supplier assigned to "+name)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// Assign handles POST /api/supplier-categories/supplier/{userId}/category
func (h *SupplierHandler) Assign(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.supplierParam(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.CategoryName) == "" {
		writeError(w, http.StatusBadRequest, "category_name is required")
		return
	}

	sc, err := h.categoryStore.Assign(userID, req.CategoryName)
	if !h.writeAssignError(w, userID, err) {
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

// Replace handles PUT /api/supplier-categories/supplier/{userId}/categories
func (h *SupplierHandler) Replace(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.supplierParam(w, r)
	if !ok {
		return
	}
	var req categoriesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	for _, c := range req.Categories {
		if strings.TrimSpace(c) == "" {
			writeError(w, http.StatusBadRequest, "category names cannot be blank")
			return
		}
	}

	list, err := h.categoryStore.ReplaceForUser(userID, req.Categories)
	if !h.writeAssignError(w, userID, err) {
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

func (h *SupplierHandler) writeAssignError(w http.ResponseWriter, userID int64, err error) bool {
	switch {
	case errors.Is(err, store.ErrCategoryTaken):
		writeError(w, http.StatusConflict, err.Error())
		return false
	case err != nil:
		h.logger.Error("assign supplier categories", "supplier_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to assign category")
		return false
	}
	return true
}

// DeleteCategory handles DELETE /api/supplier-categories/category/{name}
func (h *SupplierHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if err := h.categoryStore.DeleteCategory(name); err != nil {
		h.logger.Error("delete supplier category", "category", name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteForSupplier handles DELETE /api/supplier-categories/supplier/{userId}/categories
func (h *SupplierHandler) DeleteForSupplier(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.supplierParam(w, r)
	if !ok {
		return
	}
	if err := h.categoryStore.DeleteForUser(userID); err != nil {
		h.logger.Error("delete supplier categories", "supplier_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete categories")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// supplierParam resolves {userId} to an existing supplier.
func (h *SupplierHandler) supplierParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parsePathInt(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId")
		return 0, false
	}
	u, err := h.userStore.GetByID(id)
	if err != nil {
		h.logger.Error("get supplier", "supplier_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get supplier")
		return 0, false
	}
	if u == nil || u.Role != model.RoleSupplier {
		writeError(w, http.StatusNotFound, "supplier not found")
		return 0, false
	}
	return id, true
}

package rbac

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/aegis-iam/aegis-iam/internal/platform/httpx"
	"github.com/aegis-iam/aegis-iam/internal/shared"
)

// Handler wires HTTP endpoints for role and permission management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

type namedResourceRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=50"`
	Description string `json:"description"`
}

type assignRoleRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	RoleID string `json:"role_id" validate:"required,uuid"`
}

type assignPermissionRequest struct {
	RoleID       string `json:"role_id" validate:"required,uuid"`
	PermissionID string `json:"permission_id" validate:"required,uuid"`
}

type roleDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type permissionDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type userRoleDTO struct {
	UserID    string    `json:"user_id"`
	RoleID    string    `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}

type rolePermissionDTO struct {
	RoleID       string    `json:"role_id"`
	PermissionID string    `json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func toRoleDTO(r *Role) roleDTO {
	return roleDTO{ID: r.ID.String(), Name: r.Name, Description: r.Description, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func toPermissionDTO(p *Permission) permissionDTO {
	return permissionDTO{ID: p.ID.String(), Name: p.Name, Description: p.Description, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}

func (h *Handler) decodeNamed(w http.ResponseWriter, r *http.Request) (*namedResourceRequest, bool) {
	var req namedResourceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.BadRequest("invalid request body"))
		return nil, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, shared.BadRequest("validation failed"))
		return nil, false
	}
	return &req, true
}

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httpx.Error(w, shared.BadRequest("invalid "+param))
		return uuid.Nil, false
	}
	return id, true
}

// CreateRole handles POST /roles.
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeNamed(w, r)
	if !ok {
		return
	}
	role, err := h.service.CreateRole(r.Context(), req.Name, req.Description)
	if err != nil {
		h.logger.Warn("create role", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"role": toRoleDTO(role)})
}

// ListRoles handles GET /roles.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	dtos := make([]roleDTO, len(roles))
	for i := range roles {
		dtos[i] = toRoleDTO(&roles[i])
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": dtos})
}

// GetRole handles GET /roles/{id}.
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"role": toRoleDTO(role)})
}

// DeleteRole handles DELETE /roles/{id}.
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteRole(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CreatePermission handles POST /permissions.
func (h *Handler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeNamed(w, r)
	if !ok {
		return
	}
	perm, err := h.service.CreatePermission(r.Context(), req.Name, req.Description)
	if err != nil {
		h.logger.Warn("create permission", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permission": toPermissionDTO(perm)})
}

// ListPermissions handles GET /permissions.
func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	dtos := make([]permissionDTO, len(perms))
	for i := range perms {
		dtos[i] = toPermissionDTO(&perms[i])
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": dtos})
}

// GetPermission handles GET /permissions/{id}.
func (h *Handler) GetPermission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	perm, err := h.service.GetPermission(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permission": toPermissionDTO(perm)})
}

// DeletePermission handles DELETE /permissions/{id}.
func (h *Handler) DeletePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeletePermission(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AssignRole handles POST /user_roles.
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var req assignRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.BadRequest("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, shared.BadRequest("validation failed"))
		return
	}
	userID, _ := uuid.Parse(req.UserID)
	roleID, _ := uuid.Parse(req.RoleID)

	ur, err := h.service.AssignRole(r.Context(), userID, roleID)
	if err != nil {
		h.logger.Warn("assign role", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user_role": userRoleDTO{
		UserID:    ur.UserID.String(),
		RoleID:    ur.RoleID.String(),
		CreatedAt: ur.CreatedAt,
	}})
}

// RemoveRole handles DELETE /user_roles.
func (h *Handler) RemoveRole(w http.ResponseWriter, r *http.Request) {
	var req assignRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.BadRequest("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, shared.BadRequest("validation failed"))
		return
	}
	userID, _ := uuid.Parse(req.UserID)
	roleID, _ := uuid.Parse(req.RoleID)

	if err := h.service.RemoveRole(r.Context(), userID, roleID); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListUserRoles handles GET /user_roles/{user_id}.
func (h *Handler) ListUserRoles(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "user_id")
	if !ok {
		return
	}
	list, err := h.service.ListUserRoles(r.Context(), userID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	dtos := make([]userRoleDTO, len(list))
	for i, ur := range list {
		dtos[i] = userRoleDTO{UserID: ur.UserID.String(), RoleID: ur.RoleID.String(), CreatedAt: ur.CreatedAt}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user_roles": dtos})
}

// AttachPermission handles POST /role_permissions.
func (h *Handler) AttachPermission(w http.ResponseWriter, r *http.Request) {
	var req assignPermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.BadRequest("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, shared.BadRequest("validation failed"))
		return
	}
	roleID, _ := uuid.Parse(req.RoleID)
	permissionID, _ := uuid.Parse(req.PermissionID)

	rp, err := h.service.AttachPermission(r.Context(), roleID, permissionID)
	if err != nil {
		h.logger.Warn("attach permission", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"role_permission": rolePermissionDTO{
		RoleID:       rp.RoleID.String(),
		PermissionID: rp.PermissionID.String(),
		CreatedAt:    rp.CreatedAt,
	}})
}

// DetachPermission handles DELETE /role_permissions.
func (h *Handler) DetachPermission(w http.ResponseWriter, r *http.Request) {
	var req assignPermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.BadRequest("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, shared.BadRequest("validation failed"))
		return
	}
	roleID, _ := uuid.Parse(req.RoleID)
	permissionID, _ := uuid.Parse(req.PermissionID)

	if err := h.service.DetachPermission(r.Context(), roleID, permissionID); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListRolePermissions handles GET /role_permissions/{role_id}.
func (h *Handler) ListRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, ok := pathUUID(w, r, "role_id")
	if !ok {
		return
	}
	list, err := h.service.ListRolePermissions(r.Context(), roleID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	dtos := make([]rolePermissionDTO, len(list))
	for i, rp := range list {
		dtos[i] = rolePermissionDTO{RoleID: rp.RoleID.String(), PermissionID: rp.PermissionID.String(), CreatedAt: rp.CreatedAt}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"role_permissions": dtos})
}

package v1

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/modelheap/registry-admin/internal/core/domain"
	"github.com/modelheap/registry-admin/internal/store"
	"github.com/modelheap/registry-admin/internal/store/model"
	"github.com/modelheap/registry-admin/pkg/api"
)

type KeyHandler struct {
	repo store.Repository
}

func NewKeyHandler(repo store.Repository) *KeyHandler {
	return &KeyHandler{repo: repo}
}

// Create mints a new API key. The raw token is returned exactly once;
// only its hash is persisted.
//
// POST /keys
func (h *KeyHandler) Create(c *gin.Context) {
	var req api.CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(domain.ValidationError(domain.ParseValidationError(err)))
		return
	}

	role := req.Role
	if role == "" {
		role = "viewer"
	}

	token := "reg_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	hash := sha256.Sum256([]byte(token))

	key := &model.APIKey{
		ID:        uuid.NewString(),
		Name:      req.Name,
		KeyHash:   hex.EncodeToString(hash[:]),
		KeyPrefix: token[:8],
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := h.repo.APIKeys().Create(c.Request.Context(), key); err != nil {
		_ = c.Error(domain.InternalError("Failed to create API key", err))
		return
	}

	c.JSON(http.StatusCreated, api.CreatedKeyResponse{
		ID:        key.ID,
		Name:      key.Name,
		Role:      key.Role,
		KeyPrefix: key.KeyPrefix,
		Token:     token,
	})
}

// List returns every issued key, hashes omitted.
//
// GET /keys
func (h *KeyHandler) List(c *gin.Context) {
	keys, err := h.repo.APIKeys().List(c.Request.Context())
	if err != nil {
		_ = c.Error(domain.InternalError("Failed to list API keys", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   keys,
	})
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/nutriwise/backend/internal/extract"
	"github.com/pageza/nutriwise/backend/internal/history"
	"github.com/pageza/nutriwise/backend/internal/models"
	"go.uber.org/zap"
)

// HistoryReader is the read and delete side of the history store.
type HistoryReader interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Prompt, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*models.Prompt, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type HistoryHandler struct {
	store  HistoryReader
	logger *zap.Logger
}

func NewHistoryHandler(store HistoryReader, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{store: store, logger: logger.Named("api.history")}
}

func (h *HistoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	hist := router.Group("/history")
	{
		hist.GET("", h.List)
		hist.GET("/:id", h.Get)
		hist.DELETE("/:id", h.Delete)
	}
}

// PromptView is a history entry as returned to clients. Response is inlined
// as JSON when it holds JSON.
type PromptView struct {
	ID         uuid.UUID           `json:"id"`
	PromptType models.PromptType   `json:"prompt_type"`
	Subject    string              `json:"subject,omitempty"`
	PromptText string              `json:"prompt_text"`
	Response   json.RawMessage     `json:"response"`
	Status     models.PromptStatus `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

func newPromptView(p models.Prompt) PromptView {
	v := PromptView{
		ID:         p.ID,
		PromptType: p.PromptType,
		Subject:    p.Subject,
		PromptText: p.PromptText,
		Response:   json.RawMessage("null"),
		Status:     p.Status,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.Response != nil {
		if json.Valid([]byte(*p.Response)) {
			v.Response = json.RawMessage(*p.Response)
		} else if b, err := json.Marshal(*p.Response); err == nil {
			v.Response = b
		}
	}
	return v
}

func (h *HistoryHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	limit, err := queryInt(c, "limit", history.DefaultPageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
		return
	}

	prompts, err := h.store.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.storeError(c, err)
		return
	}

	views := make([]PromptView, len(prompts))
	for i, p := range prompts {
		views[i] = newPromptView(p)
	}
	c.JSON(http.StatusOK, gin.H{"prompts": views, "limit": limit, "offset": offset})
}

func (h *HistoryHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}

	p, err := h.store.Get(c.Request.Context(), id, userID)
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPromptView(*p))
}

func (h *HistoryHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}

	if err := h.store.Delete(c.Request.Context(), id, userID); err != nil {
		h.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HistoryHandler) storeError(c *gin.Context, err error) {
	if errors.Is(err, history.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "prompt not found"})
		return
	}
	h.logger.Error("history store failed", zap.Error(err))
	respondFailure(c, extract.NewFailure(extract.StoreFailure, "Failed to load history. Please try again later.", ""))
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	s := c.Query(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + name)
	}
	return n, nil
}

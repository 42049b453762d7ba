package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/akunmarket/platform/claims-service/internal/interfaces"
	"github.com/akunmarket/platform/claims-service/internal/models"
)

// AdminHandler serves the admin review endpoints. Admin privilege is checked
// by the router middleware before any of these run.
type AdminHandler struct {
	svc interfaces.ReviewService
}

func NewAdminHandler(svc interfaces.ReviewService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) List(c *gin.Context) {
	status, err := statusFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	filter := models.ClaimFilter{
		Status: status,
		UserID: c.Query("user_id"),
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	claims, pagination, err := h.svc.ListAll(c.Request.Context(), filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": claims, "pagination": pagination})
}

type updateStatusRequest struct {
	Status     models.ClaimStatus `json:"status"`
	AdminNotes *string            `json:"admin_notes"`
}

func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	claim, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.AdminNotes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

func (h *AdminHandler) SettleRefund(c *gin.Context) {
	txn, claim, err := h.svc.SettleRefund(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": txn, "claim": claim})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

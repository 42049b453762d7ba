package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akunmarket/platform/claims-service/internal/evidence"
	"github.com/akunmarket/platform/claims-service/internal/interfaces"
	"github.com/akunmarket/platform/claims-service/internal/models"
)

// ClaimHandler serves the member-facing claim endpoints.
type ClaimHandler struct {
	svc      interfaces.ClaimService
	evidence *evidence.Store
}

func NewClaimHandler(svc interfaces.ClaimService, evidence *evidence.Store) *ClaimHandler {
	return &ClaimHandler{svc: svc, evidence: evidence}
}

func (h *ClaimHandler) ListEligible(c *gin.Context) {
	accounts, err := h.svc.ListEligibleAccounts(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (h *ClaimHandler) Submit(c *gin.Context) {
	var req models.SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	claim, err := h.svc.Submit(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, claim)
}

func (h *ClaimHandler) ListMine(c *gin.Context) {
	status, err := statusFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	claims, err := h.svc.ListClaims(c.Request.Context(), currentUserID(c), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": claims})
}

func (h *ClaimHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type presignRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// PresignEvidence hands the client a short-lived URL to upload one evidence
// image; the returned key is what goes into a submission's evidence_urls.
func (h *ClaimHandler) PresignEvidence(c *gin.Context) {
	if h.evidence == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "evidence storage not configured"})
		return
	}

	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	grant, err := h.evidence.PresignUpload(c.Request.Context(), currentUserID(c), req.Filename, req.ContentType, req.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grant)
}

// ViewEvidence resolves a stored evidence key into a temporary view URL.
// Members may only view their own evidence; admins may view any.
func (h *ClaimHandler) ViewEvidence(c *gin.Context) {
	if h.evidence == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "evidence storage not configured"})
		return
	}

	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	url, err := h.evidence.PresignView(c.Request.Context(), key, currentUserID(c), isAdmin(c), evidence.DefaultViewTTL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expires_in": int(evidence.DefaultViewTTL.Seconds())})
}

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/Soar-Robotics/SoarchainPresale/internal/models"
	"github.com/Soar-Robotics/SoarchainPresale/internal/notify"
	"github.com/Soar-Robotics/SoarchainPresale/internal/storage"
	"github.com/Soar-Robotics/SoarchainPresale/internal/utils"
	"github.com/gin-gonic/gin"
)

// Notifier sends one email per presale event.
type Notifier interface {
	ContributionRecorded(ctx context.Context, c models.Contribution) error
	ContactReceived(ctx context.Context, req notify.ContactRequest) error
	SubscriptionReceived(ctx context.Context, sub notify.Subscription) error
}

type Handler struct {
	store    storage.Store
	notifier Notifier
	log      *utils.Logger

	// requireTxID rejects contributions without a ledger transaction id.
	requireTxID bool
}

func NewHandler(store storage.Store, notifier Notifier, log *utils.Logger, requireTxID bool) *Handler {
	return &Handler{store: store, notifier: notifier, log: log, requireTxID: requireTxID}
}

type contributeRequest struct {
	WalletAddress string  `json:"walletAddress"`
	XRPAmount     float64 `json:"xrpAmount"`
	TransactionID string  `json:"transactionId"`
	Email         string  `json:"email" binding:"omitempty,email"`
}

type contactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

type subscribeRequest struct {
	Email         string  `json:"email" binding:"required,email"`
	WalletAddress string  `json:"walletAddress" binding:"required"`
	XRPAmount     float64 `json:"xrpAmount" binding:"required,gt=0"`
}

func (h *Handler) Contribute(c *gin.Context) {
	var req contributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, invalid("%v", err), "Invalid contribution payload", nil)
		return
	}
	req.WalletAddress = strings.TrimSpace(req.WalletAddress)
	req.TransactionID = strings.TrimSpace(req.TransactionID)

	if req.WalletAddress == "" || !(req.XRPAmount > 0) {
		h.fail(c, http.StatusBadRequest, invalid("wallet=%q amount=%v", req.WalletAddress, req.XRPAmount), "Invalid wallet address or XRP amount", nil)
		return
	}
	if h.requireTxID && req.TransactionID == "" {
		h.fail(c, http.StatusBadRequest, invalid("missing transaction id"), "Transaction ID is required", nil)
		return
	}

	record := models.Contribution{
		WalletAddress: req.WalletAddress,
		XRPAmount:     req.XRPAmount,
		TransactionID: req.TransactionID,
		Email:         strings.TrimSpace(req.Email),
	}
	if err := h.store.Create(c.Request.Context(), &record); err != nil {
		h.fail(c, http.StatusInternalServerError, wrap(ErrPersistence, err), "Failed to record contribution", nil)
		return
	}

	if err := h.notifier.ContributionRecorded(c.Request.Context(), record); err != nil {
		// The row is already durable; say so instead of reporting a plain failure.
		h.fail(c, http.StatusBadGateway, wrap(ErrNotification, err), "Contribution recorded but notification failed",
			gin.H{"recorded": true, "id": record.ID})
		return
	}

	h.requestLogger(c).Info("Contribution recorded",
		"id", record.ID,
		"wallet", record.WalletAddress,
		"xrp_amount", record.XRPAmount,
		"transaction_id", record.TransactionID,
	)
	c.JSON(http.StatusCreated, gin.H{"message": "Contribution recorded", "id": record.ID})
}

func (h *Handler) Contributions(c *gin.Context) {
	contributions, err := h.store.List(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusInternalServerError, wrap(ErrPersistence, err), "Failed to fetch contributions", nil)
		return
	}
	if contributions == nil {
		contributions = []models.Contribution{}
	}

	var totalXRP float64
	for _, contribution := range contributions {
		totalXRP += contribution.XRPAmount
	}

	c.JSON(http.StatusOK, gin.H{
		"totalXRP":      totalXRP,
		"contributions": contributions,
	})
}

func (h *Handler) ContributionsTotal(c *gin.Context) {
	total, count, err := h.store.Total(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusInternalServerError, wrap(ErrPersistence, err), "Failed to fetch contributions", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalXRP": total, "count": count})
}

func (h *Handler) Contact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, invalid("%v", err), "Name, email and message are required", nil)
		return
	}
	err := h.notifier.ContactReceived(c.Request.Context(), notify.ContactRequest{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: req.Message,
	})
	if err != nil {
		h.fail(c, http.StatusInternalServerError, wrap(ErrNotification, err), "Failed to send message", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message sent"})
}

func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, invalid("%v", err), "Email, wallet address and XRP amount are required", nil)
		return
	}
	err := h.notifier.SubscriptionReceived(c.Request.Context(), notify.Subscription{
		Email:         strings.TrimSpace(req.Email),
		WalletAddress: strings.TrimSpace(req.WalletAddress),
		XRPAmount:     req.XRPAmount,
	})
	if err != nil {
		h.fail(c, http.StatusInternalServerError, wrap(ErrNotification, err), "Failed to subscribe", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscribed"})
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

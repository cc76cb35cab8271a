package handlers

import (
	"net/http"
	"strings"

	"emireminder/models"
	"emireminder/services/bill"
	"emireminder/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type BillHandler struct {
	BillService bill.BillService
}

type createBillRequest struct {
	Title       string           `json:"title" binding:"required"`
	Category    string           `json:"category" binding:"required,category"`
	Amount      decimal.Decimal  `json:"amount"`
	DueDate     string           `json:"dueDate" binding:"required"`
	Frequency   models.Frequency `json:"frequency"`
	IsRecurring *bool            `json:"isRecurring"`
	Notes       string           `json:"notes"`
	Institution string           `json:"institution"`
	AccountInfo string           `json:"accountInfo"`
}

func (r createBillRequest) toBill(userID string) (models.Bill, error) {
	due, err := models.ParseDate(r.DueDate)
	if err != nil {
		return models.Bill{}, utils.InvalidInput("dueDate must be YYYY-MM-DD")
	}
	recurring := true
	if r.IsRecurring != nil {
		recurring = *r.IsRecurring
	}
	return models.Bill{
		UserID:      userID,
		Title:       r.Title,
		Category:    r.Category,
		Amount:      r.Amount,
		DueDate:     due,
		Frequency:   r.Frequency,
		IsRecurring: recurring,
		Notes:       r.Notes,
		Institution: r.Institution,
		AccountInfo: r.AccountInfo,
	}, nil
}

type updateBillRequest struct {
	Title       *string           `json:"title"`
	Category    *string           `json:"category" binding:"omitempty,category"`
	Amount      *decimal.Decimal  `json:"amount"`
	DueDate     *string           `json:"dueDate"`
	Frequency   *models.Frequency `json:"frequency"`
	IsRecurring *bool             `json:"isRecurring"`
	Notes       *string           `json:"notes"`
	Institution *string           `json:"institution"`
	AccountInfo *string           `json:"accountInfo"`
}

func (r updateBillRequest) toPatch() (models.BillPatch, error) {
	patch := models.BillPatch{
		Title:       r.Title,
		Category:    r.Category,
		Amount:      r.Amount,
		Frequency:   r.Frequency,
		IsRecurring: r.IsRecurring,
		Notes:       r.Notes,
		Institution: r.Institution,
		AccountInfo: r.AccountInfo,
	}
	if r.DueDate != nil {
		due, err := models.ParseDate(*r.DueDate)
		if err != nil {
			return models.BillPatch{}, utils.InvalidInput("dueDate must be YYYY-MM-DD")
		}
		patch.DueDate = &due
	}
	return patch, nil
}

// CreateBillHandler handles POST /api/bills.
func (h *BillHandler) CreateBillHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req createBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	b, err := req.toBill(userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	resp, err := h.BillService.CreateBill(c.Request.Context(), b)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("Bill created", zap.String("billId", resp.ID))
	c.JSON(http.StatusCreated, resp)
}

// GetBillHandler handles GET /api/bills/:id.
func (h *BillHandler) GetBillHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	resp, err := h.BillService.GetBill(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListBillsHandler handles GET /api/bills.
func (h *BillHandler) ListBillsHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	filter := models.BillFilter{
		UserID:   userID,
		Status:   strings.ToLower(c.Query("status")),
		Category: c.Query("category"),
		Sort:     c.DefaultQuery("sort", "dueDate"),
		Desc:     strings.EqualFold(c.Query("order"), "desc"),
		Page:     pageFrom(c),
	}
	switch filter.Status {
	case "", "due", "paid", "overdue":
	default:
		utils.RespondError(c, utils.InvalidInput("status must be due, paid or overdue"))
		return
	}
	switch filter.Sort {
	case "dueDate", "amount", "title":
	default:
		utils.RespondError(c, utils.InvalidInput("sort must be dueDate, amount or title"))
		return
	}

	resp, err := h.BillService.ListBills(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateBillHandler handles PUT /api/bills/:id.
func (h *BillHandler) UpdateBillHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req updateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	resp, err := h.BillService.UpdateBill(c.Request.Context(), userID, c.Param("id"), patch)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarkPaidHandler handles PATCH /api/bills/:id/mark-paid.
func (h *BillHandler) MarkPaidHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	resp, err := h.BillService.MarkPaid(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if resp.NextBill != nil {
		getLogger(c).Info("Recurring bill rolled over",
			zap.String("billId", resp.Bill.ID), zap.String("nextBillId", resp.NextBill.ID))
	}
	c.JSON(http.StatusOK, resp)
}

// MarkUnpaidHandler handles PATCH /api/bills/:id/mark-unpaid.
func (h *BillHandler) MarkUnpaidHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	resp, err := h.BillService.MarkUnpaid(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteBillHandler handles DELETE /api/bills/:id.
func (h *BillHandler) DeleteBillHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.BillService.DeleteBill(c.Request.Context(), userID, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bill deleted"})
}

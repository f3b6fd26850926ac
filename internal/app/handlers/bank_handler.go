package handlers

import (
	"context"
	"net/http"

	"payja-lending/internal/service/banksync"

	"github.com/gin-gonic/gin"
)

// EmployeeSyncer is satisfied by *banksync.SyncService.
type EmployeeSyncer interface {
	SyncBank(ctx context.Context, bankCode string) (*banksync.Result, error)
}

type BankHandler struct {
	syncer EmployeeSyncer
}

func NewBankHandler(syncer EmployeeSyncer) *BankHandler {
	return &BankHandler{syncer: syncer}
}

func (h *BankHandler) SyncEmployees(c *gin.Context) {
	res, err := h.syncer.SyncBank(c.Request.Context(), c.Param("bankCode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

package router

import (
	"payja-lending/internal/app/handlers"
	"payja-lending/internal/app/middleware"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/metric"
)

const BasePath = "/payja/v1"

type Handlers struct {
	Ussd  *handlers.UssdHandler
	Loans *handlers.LoanHandler
	Banks *handlers.BankHandler
}

func SetupRouter(serviceName string, meter metric.Meter, h Handlers) *gin.Engine {
	server := gin.New()
	server.Use(gin.Recovery())
	server.Use(otelgin.Middleware(serviceName))
	server.Use(middleware.AttachRequestDetails())
	server.Use(middleware.NewMetricMiddleware(meter))

	healthCheckHandler := handlers.NewHealthCheckHandler()
	v1 := server.Group(BasePath)
	v1.GET("/health", healthCheckHandler.HealthCheck)

	v1.POST("/ussd", h.Ussd.HandleUssd)

	v1.POST("/loans/:loanId/disburse", h.Loans.Disburse)
	v1.PATCH("/loans/:loanId/status", h.Loans.UpdateStatus)
	v1.POST("/loans/:loanId/installments/:number/payment", h.Loans.PayInstallment)

	v1.POST("/banks/:bankCode/employees/sync", h.Banks.SyncEmployees)

	return server
}

package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"heirloom.backend/internal/interfaces/http/handlers"
	"heirloom.backend/internal/interfaces/http/middleware"
	"heirloom.backend/pkg/metrics"
)

const (
	serviceName    = "heirloom-backend"
	serviceVersion = "0.1.0"
)

type routeDeps struct {
	authHandler              *handlers.AuthHandler
	assetHandler             *handlers.AssetHandler
	cryptoHandler            *handlers.CryptoHandler
	beneficiaryHandler       *handlers.BeneficiaryHandler
	verificationHandler      *handlers.VerificationHandler
	beneficiaryAccessHandler *handlers.BeneficiaryAccessHandler
	messageHandler           *handlers.MessageHandler
	authMiddleware           gin.HandlerFunc
	adminMiddleware          gin.HandlerFunc
	idempotencyMiddleware    gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine, allowedOrigins []string) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader, middleware.IdempotencyHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-Idempotency-Hit"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.RefreshToken)
			auth.GET("/me", d.authMiddleware, d.authHandler.Me)
		}

		// Beneficiary portal (token in query, no bearer)
		v1.GET("/beneficiary-access", d.beneficiaryAccessHandler.GetInheritance)

		// Asset routes (protected)
		assets := v1.Group("/assets")
		assets.Use(d.authMiddleware)
		{
			assets.POST("", d.assetHandler.CreateAsset)
			assets.GET("", d.assetHandler.ListAssets)
			assets.GET("/:id", d.assetHandler.GetAsset)
			assets.DELETE("/:id", d.assetHandler.DeleteAsset)
		}

		// Crypto wallet routes (protected)
		crypto := v1.Group("/crypto/assets")
		crypto.Use(d.authMiddleware)
		{
			crypto.POST("", d.cryptoHandler.CreateCryptoAsset)
			crypto.GET("", d.cryptoHandler.ListCryptoAssets)
			crypto.GET("/:id", d.cryptoHandler.GetCryptoAsset)
			crypto.POST("/:id/allocations", d.cryptoHandler.CreateAllocation)
			crypto.GET("/:id/allocations", d.cryptoHandler.ListAllocations)
			crypto.POST("/:id/disburse", d.idempotencyMiddleware, d.cryptoHandler.Disburse)
		}

		// Beneficiary routes (protected)
		beneficiaries := v1.Group("/beneficiaries")
		beneficiaries.Use(d.authMiddleware)
		{
			beneficiaries.POST("", d.beneficiaryHandler.CreateBeneficiary)
			beneficiaries.GET("", d.beneficiaryHandler.ListBeneficiaries)
			beneficiaries.GET("/:id", d.beneficiaryHandler.GetBeneficiary)
			beneficiaries.PUT("/:id", d.beneficiaryHandler.UpdateBeneficiary)
			beneficiaries.DELETE("/:id", d.beneficiaryHandler.DeleteBeneficiary)
		}

		// Time capsule message routes (protected)
		messages := v1.Group("/messages")
		messages.Use(d.authMiddleware)
		{
			messages.POST("", d.messageHandler.CreateMessage)
			messages.GET("", d.messageHandler.ListMessages)
			messages.DELETE("/:id", d.messageHandler.DeleteMessage)
		}

		// Claimant verification routes (protected)
		verifications := v1.Group("/verifications")
		verifications.Use(d.authMiddleware)
		{
			verifications.POST("/requests", d.verificationHandler.SubmitRequest)
			verifications.POST("/requests/:id/documents", d.verificationHandler.AddDocument)
			verifications.POST("/inheritance-claim", d.idempotencyMiddleware, d.verificationHandler.SubmitInheritanceClaim)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, d.adminMiddleware)
		{
			admin.GET("/verifications", d.verificationHandler.ListRequests)
			admin.GET("/verifications/:id", d.verificationHandler.GetRequest)
			admin.POST("/verifications/:id/review", d.verificationHandler.StartReview)
			admin.POST("/verifications/:id/approve", d.idempotencyMiddleware, d.verificationHandler.Approve)
			admin.POST("/verifications/:id/reject", d.verificationHandler.Reject)
		}
	}
}

package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	mW "github.com/paydash/backend/internal/middleware"
	"github.com/paydash/backend/internal/services"
)

type RouterConfig struct {
	Logger         *zap.Logger
	AllowedOrigins []string
	WidgetDir      string

	Tokens mW.TokenParser
	Keys   mW.KeyAuthenticator
	Authz  mW.Authorizer

	Auth          *AuthHandler
	Organizations *OrganizationHandler
	Balances      *BalanceHandler
	APIKeys       *APIKeyHandler
	Modules       *ModuleHandler
	Transactions  *TransactionHandler
	Wallet        *WalletHandler
	Health        *HealthHandler
}

// NewRouter mounts every endpoint. Routes under /organizations/{orgId} require membership;
// write routes additionally require an owner or admin role.
func NewRouter(rc RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mW.RequestLogger(rc.Logger))
	r.Use(chimw.Recoverer)
	r.Use(mW.SecurityHeaders)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rc.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mW.APIKeyHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", rc.Health.Health)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	if rc.WidgetDir != "" {
		r.Handle("/widget/*", http.StripPrefix("/widget", mW.WidgetAssets(rc.WidgetDir)))
	}

	member := mW.RequireMembership(rc.Authz, false)
	manager := mW.RequireMembership(rc.Authz, true)

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", rc.Auth.Register)
		r.Post("/auth/login", rc.Auth.Login)

		// Merchant integrations
		r.Group(func(r chi.Router) {
			r.Use(mW.APIKeyMiddleware(rc.Keys))
			r.Get("/merchant/balance", rc.Balances.MerchantBalance)
		})

		// Dashboard endpoints
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware(rc.Tokens))

			r.Get("/auth/me", rc.Auth.Me)
			r.Get("/organizations", rc.Organizations.List)
			r.Post("/organizations", rc.Organizations.Create)

			r.Route("/organizations/{"+mW.OrgURLParam+"}", func(r chi.Router) {
				r.With(member).Get("/", rc.Organizations.Get)
				r.With(member).Get("/balance", rc.Balances.OrganizationBalance)

				r.With(member).Get("/members", rc.Organizations.ListMembers)
				r.With(manager).Post("/members", rc.Organizations.AddMember)
				r.With(manager).Delete("/members/{userId}", rc.Organizations.RemoveMember)

				r.With(member).Get("/transactions", rc.Transactions.List)
				r.With(member).Get("/transactions/{txId}", rc.Transactions.Get)
				r.With(manager).Patch("/transactions/{txId}", rc.Transactions.UpdateStatus)
				r.With(member).Get("/transactions/{txId}/iso20022", rc.Transactions.ExportISO20022)

				r.Group(func(r chi.Router) {
					r.Use(manager)
					r.Get("/api-keys", rc.APIKeys.List)
					r.Post("/api-keys", rc.APIKeys.Create)
					r.Delete("/api-keys/{keyId}", rc.APIKeys.Revoke)
				})

				r.With(member).Get("/modules", rc.Modules.List)
				r.With(manager).Post("/modules", rc.Modules.Create)
				r.With(member).Get("/modules/{moduleId}", rc.Modules.Get)
				r.With(manager).Put("/modules/{moduleId}", rc.Modules.Update)
				r.With(manager).Delete("/modules/{moduleId}", rc.Modules.Delete)
				r.With(member).Get("/modules/{moduleId}/snippet", rc.Modules.Snippet)

				r.With(manager).Post("/wallet/buy", rc.Wallet.Buy)
				r.With(manager).Post("/wallet/send", rc.Wallet.Send)
				r.With(member).Post("/wallet/receive", rc.Wallet.CreateReceive)
				r.With(member).Get("/wallet/receive/{requestId}", rc.Wallet.GetReceive)
			})
		})
	})

	return r
}

var (
	_ Authenticator       = (*services.AuthService)(nil)
	_ OrganizationManager = (*services.OrganizationService)(nil)
	_ BalanceCalculator   = (*services.BalanceService)(nil)
	_ APIKeyManager       = (*services.APIKeyService)(nil)
	_ ModuleManager       = (*services.ModuleService)(nil)
	_ SnippetGenerator    = (*services.SnippetService)(nil)
	_ TransactionManager  = (*services.TransactionService)(nil)
	_ TransferExporter    = (*services.ISO20022Service)(nil)
	_ WalletOperator      = (*services.WalletService)(nil)
	_ mW.TokenParser      = (*services.AuthService)(nil)
	_ mW.KeyAuthenticator = (*services.APIKeyService)(nil)
	_ mW.Authorizer       = (*services.OrganizationService)(nil)
)

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zero-day-ai/fraudgraph/internal/repository"
	"github.com/zero-day-ai/fraudgraph/pkg/version"
)

func (s *Server) routes() (http.Handler, error) {
	m, err := newRequestMetrics(s.meter)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe(m))

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		path := s.metricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, s.metrics)
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/", s.handleIndex)

		api.Route("/clients", func(cr chi.Router) {
			cr.Get("/identification/{idNumber}", s.handleClientByIdentification)
			cr.Get("/multiple-accounts", s.handleClientsWithMultipleAccounts)
			cr.Get("/risk-score", s.handleClientsByRiskScore)
			s.mountNodes(cr, s.clients.Repository)
		})
		api.Route("/accounts", func(ar chi.Router) {
			ar.Get("/number/{accountNumber}", s.handleAccountByNumber)
			ar.Get("/with-owner", s.handleAccountsWithOwner)
			ar.Get("/high-balance-change", s.handleAccountsHighBalanceChange)
			ar.Get("/recent", s.handleAccountsRecent)
			s.mountNodes(ar, s.accounts.Repository)
		})
		api.Route("/devices", func(dr chi.Router) {
			dr.Get("/by-id/{deviceId}", s.handleDeviceByID)
			dr.Get("/multiple-clients", s.handleDevicesMultipleClients)
			dr.Get("/unusual-locations", s.handleDevicesManyLocations)
			s.mountNodes(dr, s.devices.Repository)
		})
		api.Route("/locations", func(lr chi.Router) {
			lr.Get("/coordinates", s.handleLocationsByCoordinates)
			lr.Get("/high-risk", s.handleLocationsHighRisk)
			lr.Get("/unusual/{clientId}", s.handleLocationsUnusual)
			s.mountNodes(lr, s.locations.Repository)
		})
		api.Route("/transactions", func(tr chi.Router) {
			tr.Get("/by-id/{transactionId}", s.handleTransactionByID)
			tr.Get("/date-range", s.handleTransactionsInDateRange)
			tr.Get("/by-amount", s.handleTransactionsByAmount)
			tr.Get("/suspicious", s.handleTransactionsSuspicious)
			tr.Get("/circular-patterns", s.handleTransactionsCircular)
			tr.Get("/between/{fromAccountId}/{toAccountId}", s.handleTransactionsBetween)
			s.mountNodes(tr, s.transactions.Repository)
		})

		api.Route("/fraud-detection", func(fr chi.Router) {
			fr.Get("/money-laundering", s.handleLaundering)
			fr.Get("/unusual-device-usage", s.handleSharedDevices)
			fr.Get("/rapid-transactions", s.handleRapid)
			fr.Get("/unusual-patterns", s.handleOutliers)
			fr.Get("/unusual-activity-increase", s.handleAcceleration)
			fr.Get("/risk-categories", s.handleRiskBuckets)
			fr.Get("/report", s.handleReport)
			fr.With(s.requireRawQueries).Post("/query", s.handleRawQuery)
		})
	})

	return r, nil
}

// mountNodes registers the generic CRUD routes of one entity kind.
func (s *Server) mountNodes(r chi.Router, repo *repository.Repository) {
	h := nodeHandlers{s: s, repo: repo}

	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/properties", h.addProperties)
	r.Delete("/{id}/properties", h.removeProperties)
	r.Patch("/batch/update", h.batchUpdate)
	r.Delete("/batch/delete", h.batchDelete)
	r.Post("/{fromId}/relationship/{type}/{toId}", h.createRelationship)
	r.Put("/relationship/{id}", h.updateRelationship)
	r.Delete("/relationship/{id}", h.deleteRelationship)
	r.Patch("/relationship/{id}/properties", h.addRelationshipProperties)
	r.Delete("/relationship/{id}/properties", h.removeRelationshipProperties)
	r.With(s.requireRawQueries).Post("/query", h.query)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeOne(w, http.StatusOK, map[string]string{
		"message": "Fraud Detection System API",
		"version": version.Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.health.Health(r.Context())
	code := http.StatusOK
	if !status.IsHealthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, envelope{Success: status.IsHealthy(), Data: status})
}

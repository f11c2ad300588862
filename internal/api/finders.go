package api

import (
	"fmt"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
)

type balanceChangeQuery struct {
	PercentChange float64 `mapstructure:"percent_change" validate:"min=0"`
	Days          int     `mapstructure:"days" validate:"min=0"`
}

type daysQuery struct {
	Days int `mapstructure:"days" validate:"min=0"`
}

type minAccountsQuery struct {
	MinAccounts int `mapstructure:"min_accounts" validate:"min=0"`
}

type riskScoreQuery struct {
	MinScore float64 `mapstructure:"min_score" validate:"min=0"`
	MaxScore float64 `mapstructure:"max_score" validate:"gtefield=MinScore"`
}

type minClientsQuery struct {
	MinClients int `mapstructure:"min_clients" validate:"min=0"`
}

type minLocationsQuery struct {
	MinLocations int `mapstructure:"min_locations" validate:"min=0"`
}

type coordinatesQuery struct {
	Latitude  *float64 `mapstructure:"latitude" validate:"required"`
	Longitude *float64 `mapstructure:"longitude" validate:"required"`
	Radius    float64  `mapstructure:"radius" validate:"min=0"`
}

type highRiskQuery struct {
	MinAverageRisk float64 `mapstructure:"min_average_risk" validate:"min=0,max=1"`
}

type unusualLocationsQuery struct {
	MaxTransactions int `mapstructure:"max_transactions" validate:"min=0"`
}

type dateRangeQuery struct {
	StartDate string `mapstructure:"start_date" validate:"required"`
	EndDate   string `mapstructure:"end_date" validate:"required"`
}

type amountQuery struct {
	MinAmount float64 `mapstructure:"min_amount" validate:"min=0"`
	MaxAmount float64 `mapstructure:"max_amount" validate:"gtefield=MinAmount"`
}

type suspiciousQuery struct {
	Threshold float64 `mapstructure:"threshold" validate:"min=0"`
	MinRisk   float64 `mapstructure:"min_risk" validate:"min=0,max=1"`
}

type circularQuery struct {
	MaxDepth int `mapstructure:"max_depth" validate:"min=0,max=10"`
}

// writeFound writes a single natural-key lookup.
func writeFound(w http.ResponseWriter, node graph.Projection, found bool, what, key string) {
	if !found {
		writeNotFound(w, fmt.Sprintf("No %s found with %s", what, key))
		return
	}
	writeOne(w, http.StatusOK, node)
}

func (s *Server) handleAccountByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "accountNumber")
	node, found, err := s.accounts.FindByAccountNumber(r.Context(), number)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeFound(w, node, found, "account", "account number "+number)
}

func (s *Server) handleAccountsWithOwner(w http.ResponseWriter, r *http.Request) {
	rows, err := s.accounts.FindWithOwner(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleAccountsHighBalanceChange(w http.ResponseWriter, r *http.Request) {
	var q balanceChangeQuery
	if err := s.decodeQuery(r, &q); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.accounts.FindWithHighBalanceChange(r.Context(), q.PercentChange, q.Days)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleAccountsRecent(w http.ResponseWriter, r *http.Request) {
	var q daysQuery
	if err := s.decodeQuery(r, &q); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.accounts.FindRecentlyCreated(r.Context(), q.Days)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleClientByIdentification(w http.ResponseWriter, r *http.Request) {
	idNumber := chi.URLParam(r, "idNumber")
	node, found, err := s.clients.FindByIdentificationNumber(r.Context(), idNumber)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeFound(w, node, found, "client", "identification number "+idNumber)
}

func (s *Server) handleClientsWithMultipleAccounts(w http.ResponseWriter, r *http.Request) {
	var q minAccountsQuery
	if err := s.decodeQuery(r, &q); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.clients.FindWithMultipleAccounts(r.Context(), q.MinAccounts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleClientsByRiskScore(w http.ResponseWriter, r *http.Request) {
	q := riskScoreQuery{MinScore: 0, MaxScore: 1}
	if err := s.decodeQuery(r, &q); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.clients.FindByRiskScore(r.Context(), q.MinScore, q.MaxScore)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleDeviceByID(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceId")
	node, found, err := s.devices.FindByDeviceID(r.Context(), deviceID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeFound(w, node, found, "device", "device id "+deviceID)
}

func (s *Server) handleDevicesMultipleClients(w http.ResponseWriter, r *http.Request) {
	var q minClientsQuery
	if err := s.decodeQuery(r, &q); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.devices.FindUsedByMultipleClients(r.Context(), q.MinClients)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleDevicesManyLocations(w http.ResponseWriter, r *http.Request) {
	var q minLocationsQuery
	if err := s.decodeQuery(r, &q); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.devices.FindWithManyLocations(r.Context(), q.MinLocations)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleLocationsByCoordinates(w http.ResponseWriter, r *http.Request) {
	var q coordinatesQuery
	if err := s.decodeQuery(r, &q); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.locations.FindByCoordinates(r.Context(), *q.Latitude, *q.Longitude, q.Radius)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleLocationsHighRisk(w http.ResponseWriter, r *http.Request) {
	var q highRiskQuery
	if err := s.decodeQuery(r, &q); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.locations.FindHighRisk(r.Context(), q.MinAverageRisk)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleLocationsUnusual(w http.ResponseWriter, r *http.Request) {
	var q unusualLocationsQuery
	if err := s.decodeQuery(r, &q); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.locations.FindUnusualForClient(r.Context(), chi.URLParam(r, "clientId"), q.MaxTransactions)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionId")
	node, found, err := s.transactions.FindByTransactionID(r.Context(), transactionID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeFound(w, node, found, "transaction", "transaction id "+transactionID)
}

func (s *Server) handleTransactionsInDateRange(w http.ResponseWriter, r *http.Request) {
	var q dateRangeQuery
	if err := s.decodeQuery(r, &q); err != nil {
		s.fail(w, r, err)
		return
	}
	start, ok := graph.AsTime(q.StartDate)
	if !ok {
		s.fail(w, r, graph.NewValidationError(fmt.Sprintf("invalid start date %q", q.StartDate)))
		return
	}
	end, ok := graph.AsTime(q.EndDate)
	if !ok {
		s.fail(w, r, graph.NewValidationError(fmt.Sprintf("invalid end date %q", q.EndDate)))
		return
	}
	rows, err := s.transactions.FindInDateRange(r.Context(), start, end)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleTransactionsByAmount(w http.ResponseWriter, r *http.Request) {
	q := amountQuery{MinAmount: 0, MaxAmount: math.MaxFloat64}
	if err := s.decodeQuery(r, &q); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.transactions.FindByAmount(r.Context(), q.MinAmount, q.MaxAmount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleTransactionsSuspicious(w http.ResponseWriter, r *http.Request) {
	var q suspiciousQuery
	if err := s.decodeQuery(r, &q); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.transactions.FindSuspicious(r.Context(), q.Threshold, q.MinRisk)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleTransactionsCircular(w http.ResponseWriter, r *http.Request) {
	var q circularQuery
	if err := s.decodeQuery(r, &q); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.transactions.FindCircular(r.Context(), q.MaxDepth)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleTransactionsBetween(w http.ResponseWriter, r *http.Request) {
	rows, err := s.transactions.FindBetweenAccounts(r.Context(),
		chi.URLParam(r, "fromAccountId"), chi.URLParam(r, "toAccountId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

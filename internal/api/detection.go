package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/zero-day-ai/fraudgraph/internal/fraud"
	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type sharedDevicesQuery struct {
	MinClients int `mapstructure:"min_clients" validate:"min=0"`
}

type rapidQuery struct {
	AccountID         string `mapstructure:"account_id" validate:"required"`
	MinTransactions   int    `mapstructure:"min_transactions" validate:"min=0"`
	TimeWindowMinutes int    `mapstructure:"time_window_minutes" validate:"min=0"`
}

type reportQuery struct {
	Format string `mapstructure:"format" validate:"omitempty,oneof=json xlsx"`
}

func (s *Server) handleLaundering(w http.ResponseWriter, r *http.Request) {
	var opts fraud.LaunderingOptions
	if err := s.decodeQuery(r, &opts); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.engine.LayeredLaundering(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleSharedDevices(w http.ResponseWriter, r *http.Request) {
	var q sharedDevicesQuery
	if err := s.decodeQuery(r, &q); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.engine.SharedDevices(r.Context(), q.MinClients)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleRapid(w http.ResponseWriter, r *http.Request) {
	var q rapidQuery
	if err := s.decodeQuery(r, &q); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.engine.RapidSuccession(r.Context(), q.AccountID, fraud.RapidOptions{
		MinTransactions:   q.MinTransactions,
		TimeWindowMinutes: q.TimeWindowMinutes,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleOutliers(w http.ResponseWriter, r *http.Request) {
	var opts fraud.OutlierOptions
	if err := s.decodeQuery(r, &opts); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.engine.OutlierAmounts(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleAcceleration(w http.ResponseWriter, r *http.Request) {
	var opts fraud.AccelerationOptions
	if err := s.decodeQuery(r, &opts); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.engine.ActivityAcceleration(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

func (s *Server) handleRiskBuckets(w http.ResponseWriter, r *http.Request) {
	rows, err := s.engine.RiskBuckets(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, rows)
}

// handleReport runs every account-independent algorithm. ?format=xlsx returns
// a workbook instead of JSON.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var q reportQuery
	if err := s.decodeQuery(r, &q); err != nil {
		s.fail(w, r, err)
		return
	}

	var opts fraud.RunAllOptions
	params := queryParams(r)
	for _, target := range []any{&opts.Laundering, &opts.Outliers, &opts.Acceleration} {
		if err := decodeOptions(params, target); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	var devices sharedDevicesQuery
	if err := decodeOptions(params, &devices); err != nil {
		s.fail(w, r, err)
		return
	}
	opts.MinClients = devices.MinClients

	result, err := s.engine.RunAll(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if q.Format != "xlsx" {
		writeOne(w, http.StatusOK, result)
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, report.FromReport(result)...); err != nil {
		s.fail(w, r, err)
		return
	}
	filename := fmt.Sprintf("fraud-report-%s.xlsx", result.GeneratedAt.Format(time.DateOnly))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleRawQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.validateStruct(req); err != nil {
		s.fail(w, r, err)
		return
	}
	records, err := s.exec.ExecuteRead(r.Context(), req.Query, req.Params)
	if err != nil {
		s.failWith(w, r, err, true)
		return
	}
	writeList(w, records)
}

func decodeOptions(params map[string]any, target any) error {
	if err := configDecode(params, target); err != nil {
		return graph.NewValidationError(fmt.Sprintf("invalid query parameters: %v", err))
	}
	return nil
}

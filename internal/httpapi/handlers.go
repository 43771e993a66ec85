package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gyeh/chargeflow/internal/batch"
	"github.com/gyeh/chargeflow/internal/sheet"
	"github.com/gyeh/chargeflow/internal/tebra"
)

type errorBody struct {
	Error string `json:"error"`
}

// rejectedBody is a summary-shaped reply for a file that failed validation.
type rejectedBody struct {
	Error             string              `json:"error"`
	TotalRows         int                 `json:"total_rows"`
	EncountersCreated int                 `json:"encounters_created"`
	PaymentsPosted    int                 `json:"payments_posted"`
	FailedRows        int                 `json:"failed_rows"`
	Results           []map[string]string `json:"results"`
}

func rejected(msg string) rejectedBody {
	return rejectedBody{
		Error: msg,
		Results: []map[string]string{{
			"row_number": "N/A", "practice_name": "N/A", "patient_id": "N/A", "results": msg,
		}},
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleProcess(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{"No file part"})
	}
	if fh.Filename == "" {
		return c.JSON(http.StatusBadRequest, errorBody{"No selected file"})
	}

	creds := tebra.Credentials{
		CustomerKey: c.FormValue("customer_key"),
		User:        c.FormValue("username"),
		Password:    c.FormValue("password"),
	}
	if creds.CustomerKey == "" || creds.User == "" || creds.Password == "" {
		return c.JSON(http.StatusBadRequest, errorBody{"Missing Tebra credentials"})
	}

	gw, err := s.newGateway(creds)
	if err != nil {
		s.log.Error().Err(err).Msg("gateway setup failed")
		return c.JSON(http.StatusInternalServerError, errorBody{"Failed to connect to Tebra API. Check server logs."})
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody{"failed to open uploaded file"})
	}
	sh, err := sheet.ReadFrom(f, fh.Filename)
	f.Close()
	if err != nil {
		msg := "File validation failed: " + err.Error()
		var me *sheet.MappingError
		if errors.As(err, &me) {
			s.log.Warn().Str("file", fh.Filename).Interface("missing", me.Missing).Msg("critical columns missing")
		}
		return c.JSON(http.StatusBadRequest, rejected(msg))
	}

	// The run outlives the request; a dropped client must not cut it short.
	ctx := context.WithoutCancel(c.Request().Context())
	runID := uuid.New()
	started := time.Now().UTC()
	if s.opts.Recorder != nil {
		if err := s.opts.Recorder.Start(ctx, runID, fh.Filename, "", started); err != nil {
			s.log.Warn().Err(err).Msg("ledger start failed")
		}
	}

	summary, err := batch.Run(ctx, sh.Rows, gw, s.log, batch.Options{
		RunID:     runID.String(),
		InputFile: fh.Filename,
		Match:     s.opts.Match,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("run failed")
		s.failRun(ctx, runID)
		return c.JSON(http.StatusInternalServerError, errorBody{fmt.Sprintf("An unexpected error occurred: %v. Check server logs.", err)})
	}

	if err := sh.Write(s.outputPath(summary.RunID)); err != nil {
		s.log.Error().Err(err).Msg("write processed file failed")
		s.failRun(ctx, runID)
		return c.JSON(http.StatusInternalServerError, errorBody{"Failed to save processed file. Check server logs."})
	}

	if s.opts.Recorder != nil {
		if err := s.opts.Recorder.Finish(ctx, summary, sh.Rows); err != nil {
			s.log.Warn().Err(err).Msg("ledger finish failed")
		}
	}
	return c.JSON(http.StatusOK, summary)
}

func (s *Server) failRun(ctx context.Context, runID uuid.UUID) {
	if s.opts.Recorder == nil {
		return
	}
	if err := s.opts.Recorder.Fail(ctx, runID); err != nil {
		s.log.Warn().Err(err).Str("run_id", runID.String()).Msg("ledger fail failed")
	}
}

func (s *Server) handleDownload(c echo.Context) error {
	id, err := uuid.Parse(c.Param("run"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{"invalid run id"})
	}
	path := s.outputPath(id.String())
	if _, err := os.Stat(path); err != nil {
		return c.JSON(http.StatusNotFound, errorBody{"Processed file not found. Please process a file first."})
	}
	name := fmt.Sprintf("Processed_Tebra_Data_%s.xlsx", time.Now().Format("20060102"))
	return c.Attachment(path, name)
}

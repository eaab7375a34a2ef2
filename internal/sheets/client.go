// Package sheets pushes saved attendance to the Google Apps Script Web App
// that fronts the studio's spreadsheet. The backend is trusted to upsert by
// (batch, date, classNumber), so resubmitting a session is safe; this client
// does not retry and carries no idempotency key.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danceflow/attendance-api/internal/models"
	"github.com/danceflow/attendance-api/pkg/config"
	appErrors "github.com/danceflow/attendance-api/pkg/errors"
)

// PlaceholderURL is the value shipped in the sample config. Leaving it (or an
// empty URL) in place keeps the client in simulation mode so the rest of the
// system can be exercised without a deployed Web App.
const PlaceholderURL = "PASTE_YOUR_DEPLOYED_APPS_SCRIPT_URL_HERE"

// SavePayload is the wire format the Apps Script expects.
type SavePayload struct {
	BatchName   string                    `json:"batchName"`
	SessionDate string                    `json:"sessionDate"`
	ClassNumber int                       `json:"classNumber"`
	Attendance  []models.AttendanceRecord `json:"attendance"`
	Students    []models.StudentRef       `json:"students"`
}

// Ack is the Apps Script response body. Anything but status "success" is a
// rejection.
type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Client submits attendance payloads to one statically configured endpoint.
type Client struct {
	url            string
	simulatedDelay time.Duration
	httpClient     *http.Client
	logger         *zap.Logger
}

// NewClient builds a sheet sync client from config.
func NewClient(cfg config.SheetsConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:            strings.TrimSpace(cfg.WebAppURL),
		simulatedDelay: cfg.SimulatedDelay,
		// Apps Script can be slow on cold starts; the save flow is
		// asynchronous so no client timeout is enforced here.
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Simulated reports whether the client short-circuits to fake success.
func (c *Client) Simulated() bool {
	return c.url == "" || strings.Contains(c.url, PlaceholderURL)
}

// Submit pushes one session's attendance. In simulation mode it resolves to
// success after a fixed delay without touching the network.
func (c *Client) Submit(ctx context.Context, payload SavePayload) (*Ack, error) {
	if c.Simulated() {
		c.logger.Warn("sheet url not configured, simulating save",
			zap.String("batch", payload.BatchName),
			zap.Int("class_number", payload.ClassNumber))
		timer := time.NewTimer(c.simulatedDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrSheetNetwork.Code, appErrors.ErrSheetNetwork.Status, "save cancelled")
		case <-timer.C:
			return &Ack{Status: "success", Message: "Saved locally (simulation)."}, nil
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode sheet payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build sheet request")
	}
	// Apps Script web apps parse POST bodies delivered as text/plain.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSheetNetwork.Code, appErrors.ErrSheetNetwork.Status, appErrors.ErrSheetNetwork.Message)
	}
	defer resp.Body.Close()

	var ack Ack
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSheetRejected.Code, appErrors.ErrSheetRejected.Status, "unexpected sheet response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || ack.Status != "success" {
		message := ack.Message
		if message == "" {
			message = appErrors.ErrSheetRejected.Message
		}
		return nil, appErrors.Clone(appErrors.ErrSheetRejected, message)
	}

	return &ack, nil
}

package contribution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Soar-Robotics/SoarchainPresale/internal/models"
)

// Record is the body of POST /api/contribute.
type Record struct {
	WalletAddress string  `json:"walletAddress"`
	XRPAmount     float64 `json:"xrpAmount"`
	TransactionID string  `json:"transactionId,omitempty"`
	Email         string  `json:"email,omitempty"`
}

type Totals struct {
	TotalXRP      float64               `json:"totalXRP"`
	Contributions []models.Contribution `json:"contributions"`
}

// Backend is the HTTP client for the presale API.
type Backend struct {
	baseURL    string
	httpClient *http.Client
}

func NewBackend(baseURL string, httpClient *http.Client) *Backend {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Backend{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

type apiReply struct {
	Message  string `json:"message"`
	Error    string `json:"error"`
	Recorded bool   `json:"recorded"`
}

// Record posts one contribution. Any non-2xx reply becomes a *RecordingError.
func (b *Backend) Record(ctx context.Context, rec Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/contribute", bytes.NewReader(body))
	if err != nil {
		return &RecordingError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return &RecordingError{Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var reply apiReply
	_ = json.Unmarshal(raw, &reply)
	msg := reply.Error
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	return &RecordingError{StatusCode: resp.StatusCode, Message: msg, Recorded: reply.Recorded}
}

// Totals reads the aggregated contributions for the progress display.
func (b *Backend) Totals(ctx context.Context) (*Totals, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/contributions", nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch contributions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var reply apiReply
		_ = json.NewDecoder(resp.Body).Decode(&reply)
		return nil, fmt.Errorf("fetch contributions: http %d: %s", resp.StatusCode, reply.Error)
	}
	var totals Totals
	if err := json.NewDecoder(resp.Body).Decode(&totals); err != nil {
		return nil, fmt.Errorf("decode contributions: %w", err)
	}
	return &totals, nil
}

// Progress returns total/goal as a percentage clamped to [0, 100].
func Progress(total, goal float64) float64 {
	if goal <= 0 || total <= 0 {
		return 0
	}
	p := total / goal * 100
	if p > 100 {
		return 100
	}
	return p
}

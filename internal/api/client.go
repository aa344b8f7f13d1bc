// Package api はe-learningバックエンドのREST APIクライアントを提供する。
// ベアラートークンの付与とレスポンスの正規化のみを行う薄いラッパーで、
// リトライ・バックオフは行わない。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource は現在のベアラートークンを返す。
// session.Storeが実装する。
type TokenSource interface {
	Token() string
}

// Recorder はAPI呼び出しの結果を記録する。
// metrics.Collectorが実装する。statusはネットワークエラー時に0となる。
type Recorder interface {
	RecordAPIRequest(method, endpoint string, status int, duration time.Duration)
}

// APIError はバックエンドが失敗を返した場合のエラー。
// HTTPステータスが2xx以外の場合と、success=false が返された場合に生成する。
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

// Error はバックエンドが返したメッセージをそのまま返す。
func (e *APIError) Error() string {
	return e.Message
}

// IsAPIError はerrがAPIErrorかどうかを判定する。
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsUnauthorized はerrが401のAPIErrorかどうかを判定する。
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Message は画面に表示するエラーメッセージを返す。
// APIErrorならバックエンドのメッセージ、それ以外はfallbackを返す。
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Client はバックエンドAPIのクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	tokens     TokenSource
	recorder   Recorder
}

// NewClient はClientの新しいインスタンスを生成する。
// httpClientのTimeoutが0の場合、リクエストはタイムアウトしない。
func NewClient(baseURL string, httpClient *http.Client, tokens TokenSource, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
	}
}

// SetRecorder はメトリクス記録先を設定する。
func (c *Client) SetRecorder(r Recorder) {
	c.recorder = r
}

// Do はbaseURL+endpointに対してHTTPリクエストを1回だけ送信する。
//
// Content-Typeは常に application/json を設定し、トークンがあれば
// Authorization: Bearer ヘッダーを付与する。bodyがnilでなければJSONにシリアライズする。
// レスポンスボディはステータスに関わらずJSONとして解釈し、
// 2xx以外の場合はバックエンドのmessage（なければ汎用メッセージ）を持つAPIErrorを返す。
// 2xxの場合、outがnilでなければボディをoutにデコードする。
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(method, endpoint, 0, time.Since(start))
		c.logger.Error("API request failed",
			slog.String("method", method),
			slog.String("endpoint", endpoint),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	c.record(method, endpoint, resp.StatusCode, duration)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    failureMessage(data, resp.StatusCode),
			RequestID:  requestID,
		}
		c.logger.Warn("API returned error status",
			slog.String("method", method),
			slog.String("endpoint", endpoint),
			slog.String("request_id", requestID),
			slog.Int("http_status", resp.StatusCode),
			slog.String("message", apiErr.Message),
		)
		return apiErr
	}

	c.logger.Debug("API request completed",
		slog.String("method", method),
		slog.String("endpoint", endpoint),
		slog.String("request_id", requestID),
		slog.Int("http_status", resp.StatusCode),
		slog.Float64("duration_ms", float64(duration.Nanoseconds())/float64(time.Millisecond)),
	)

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response JSON: %w", err)
	}
	return nil
}

func (c *Client) record(method, endpoint string, status int, d time.Duration) {
	if c.recorder != nil {
		c.recorder.RecordAPIRequest(method, endpoint, status, d)
	}
}

// failureMessage はエラーレスポンスのボディからmessageを取り出す。
// 取り出せない場合は汎用メッセージを返す。
func failureMessage(body []byte, status int) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return fmt.Sprintf("request failed with status %d", status)
}

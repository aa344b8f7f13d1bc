package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hitoshi/manabi/internal/model"
)

// ListCourses はコースカタログを取得する。
// GET /courses
func (c *Client) ListCourses(ctx context.Context) ([]model.Course, error) {
	return c.getCourses(ctx, "/courses")
}

// GetCourse はコース詳細を取得する。
// GET /courses/:id
func (c *Client) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, "/courses/"+url.PathEscape(id), nil, &raw); err != nil {
		return nil, err
	}
	var course model.Course
	if err := decodeEnvelope(raw, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Enroll はコースに受講登録する。
// POST /courses/:id/enroll
// HTTP 2xxでもsuccess=falseの場合はAPIErrorを返す。
func (c *Client) Enroll(ctx context.Context, id string) (*Response, error) {
	return c.postSimple(ctx, "/courses/"+url.PathEscape(id)+"/enroll", nil)
}

func (c *Client) getCourses(ctx context.Context, endpoint string) ([]model.Course, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, endpoint, nil, &raw); err != nil {
		return nil, err
	}
	var courses []model.Course
	if err := decodeEnvelope(raw, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// decodeEnvelope はカタログ系エンドポイントのレスポンスをデコードする。
// {success, data} 形式と、データを直接返す形式の両方を受け付ける。
func decodeEnvelope(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}

	if trimmed[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err == nil && len(envelope.Data) > 0 {
			trimmed = envelope.Data
		}
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("failed to parse response JSON: %w", err)
	}
	return nil
}

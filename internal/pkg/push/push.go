package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Sender delivers push notifications to device tokens. The transport is an
// external collaborator; components depend only on this interface.
type Sender interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]interface{}) []Result
}

// Result is the per-token delivery outcome.
type Result struct {
	Token   string `json:"token"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Service sends notifications through the FCM HTTP API.
type Service struct {
	serverKey  string
	endpoint   string
	httpClient *http.Client
}

const defaultEndpoint = "https://fcm.googleapis.com/fcm/send"

// New creates an FCM push sender. An empty endpoint uses the default.
func New(serverKey, endpoint string) *Service {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Service{
		serverKey:  serverKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type notificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type messagePayload struct {
	To           string               `json:"to"`
	Notification *notificationPayload `json:"notification,omitempty"`
	Data         map[string]string    `json:"data,omitempty"`
	Priority     string               `json:"priority"`
}

// SendMulticast delivers the same notification to every token, returning a
// per-token success/failure slice in input order.
func (s *Service) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]interface{}) []Result {
	results := make([]Result, 0, len(tokens))
	payloadData := normalizeDataPayload(data)
	for _, token := range tokens {
		err := s.send(ctx, token, title, body, payloadData)
		r := Result{Token: token, Success: err == nil}
		if err != nil {
			r.Error = err.Error()
		}
		results = append(results, r)
	}
	return results
}

func (s *Service) send(ctx context.Context, token, title, body string, data map[string]string) error {
	if s.serverKey == "" {
		return fmt.Errorf("push server key not configured")
	}

	msg := messagePayload{
		To:       token,
		Data:     data,
		Priority: "high",
	}
	if title != "" || body != "" {
		msg.Notification = &notificationPayload{Title: title, Body: body}
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+s.serverKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// normalizeDataPayload stringifies data values; the push transport requires
// string-valued data maps.
func normalizeDataPayload(data map[string]interface{}) map[string]string {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]string, len(data))
	for k, v := range data {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			continue
		}
		out[k] = string(b)
	}
	return out
}

// Package backend is a thin client for the upstream task-management REST API.
// Every call issues exactly one request and returns the decoded response body;
// failures are returned unchanged to the caller.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// HeaderRequestID correlates a call with upstream logs.
	HeaderRequestID = "X-Request-ID"

	tracerName       = "taskboard/backend"
	requestSpanName  = "backend.request"
	maxResponseBytes = 16 << 20
)

// TokenSource supplies the bearer token attached to upstream requests. An
// empty token sends the request unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource holding a fixed token.
type StaticToken string

// Token returns the token itself.
func (t StaticToken) Token() string { return string(t) }

// Client holds the transport configuration shared by all sessions.
type Client struct {
	baseURL string
	http    *http.Client
	log     *log.Logger
	tracer  trace.Tracer
}

// New creates a Client for the upstream rooted at baseURL, e.g.
// "https://tasks.example.com/api". A nil httpClient uses a client with a
// 15 second timeout.
func New(baseURL string, httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     logger,
		tracer:  otel.Tracer(tracerName),
	}
}

// API groups the per-resource services bound to one token source.
type API struct {
	Auth           *AuthService
	Projects       *ProjectService
	Processes      *ProcessService
	Tasks          *TaskService
	Comments       *CommentService
	Attachments    *AttachmentService
	Chat           *ChatService
	DirectMessages *DirectMessageService
	Notifications  *NotificationService
	Invitations    *InvitationService
	Subscriptions  *SubscriptionService
	Plans          *PlanService
	Reminders      *ReminderService
	Reports        *ReportService
	Users          *UserService
	Activity       *ActivityService
	Exports        *ExportService
	Settings       *SettingsService
}

type service struct {
	r *requester
}

// As binds the client to tokens and returns the resource services.
func (c *Client) As(tokens TokenSource) *API {
	s := &service{r: &requester{client: c, tokens: tokens}}
	return &API{
		Auth:           (*AuthService)(s),
		Projects:       (*ProjectService)(s),
		Processes:      (*ProcessService)(s),
		Tasks:          (*TaskService)(s),
		Comments:       (*CommentService)(s),
		Attachments:    (*AttachmentService)(s),
		Chat:           (*ChatService)(s),
		DirectMessages: (*DirectMessageService)(s),
		Notifications:  (*NotificationService)(s),
		Invitations:    (*InvitationService)(s),
		Subscriptions:  (*SubscriptionService)(s),
		Plans:          (*PlanService)(s),
		Reminders:      (*ReminderService)(s),
		Reports:        (*ReportService)(s),
		Users:          (*UserService)(s),
		Activity:       (*ActivityService)(s),
		Exports:        (*ExportService)(s),
		Settings:       (*SettingsService)(s),
	}
}

type requester struct {
	client *Client
	tokens TokenSource
}

// request describes one upstream call. body is JSON-encoded unless raw is set.
type request struct {
	method      string
	path        string
	query       url.Values
	body        any
	raw         io.Reader
	contentType string
}

func (r *requester) do(ctx context.Context, req request, out any) error {
	resp, err := r.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Method: req.method, Path: req.path, Message: err.Error()}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
	}
	return nil
}

// send issues the request and returns the response when the upstream answered
// with a 2xx status. Callers must close the body.
func (r *requester) send(ctx context.Context, req request) (resp *http.Response, err error) {
	c := r.client
	ctx, span := c.tracer.Start(ctx, requestSpanName, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.method),
			attribute.String("url.path", req.path),
		))
	start := time.Now()
	defer func() {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
		c.log.WithFields(log.Fields{
			"method":      req.method,
			"path":        req.path,
			"status":      status,
			"duration_ms": float64(time.Since(start)) / float64(time.Millisecond),
		}).Debug("backend.request")
	}()

	body, contentType, err := req.encode()
	if err != nil {
		return nil, err
	}
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set(HeaderRequestID, uuid.NewString())
	if r.tokens != nil {
		if tok := r.tokens.Token(); tok != "" {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err = c.http.Do(httpReq)
	if err != nil {
		return nil, &Error{Method: req.method, Path: req.path, Message: err.Error(), cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		apiErr := decodeError(req.method, req.path, resp)
		return resp, apiErr
	}
	return resp, nil
}

func (req request) encode() (io.Reader, string, error) {
	if req.raw != nil {
		return req.raw, req.contentType, nil
	}
	if req.body == nil {
		return nil, "", nil
	}
	data, err := sonic.Marshal(req.body)
	if err != nil {
		return nil, "", fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
	}
	return bytes.NewReader(data), "application/json", nil
}

func get[T any](ctx context.Context, r *requester, path string, query url.Values) (T, error) {
	var out T
	err := r.do(ctx, request{method: http.MethodGet, path: path, query: query}, &out)
	return out, err
}

func call[T any](ctx context.Context, r *requester, method, path string, query url.Values, body any) (T, error) {
	var out T
	err := r.do(ctx, request{method: method, path: path, query: query, body: body}, &out)
	return out, err
}

func exec(ctx context.Context, r *requester, method, path string, query url.Values, body any) error {
	return r.do(ctx, request{method: method, path: path, query: query, body: body}, nil)
}

func pathf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

func params(kv ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		q.Set(kv[i], kv[i+1])
	}
	return q
}

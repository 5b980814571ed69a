// Package remote implements the HTTP client for the interview service. All
// audio crosses this boundary base64-encoded: uploads carry the opaque
// recording blob, downloads carry raw PCM16 mono at the playback rate.
package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/voxhire/interview-core/core/interviews"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

// Client talks to one interview service instance. Calls carry no client-side
// timeout: cancellation is the caller's context, and a stalled exchange is
// surfaced as a stuck processing state rather than a synthetic failure.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client, keeping the
// instrumented transport the caller configured.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type stateBody struct {
	QuestionCount      int    `json:"question_count"`
	MainQuestionsAsked int    `json:"main_questions_asked"`
	SatisfactionLevel  string `json:"satisfaction_level"`
	CanPromptEnd       bool   `json:"can_prompt_end"`
	IsComplete         bool   `json:"is_complete"`
}

func (s stateBody) toProgress() (interviews.Progress, error) {
	var progress interviews.Progress
	if err := copier.Copy(&progress, &s); err != nil {
		return interviews.Progress{}, fmt.Errorf("error mapping progress snapshot: %w", err)
	}
	progress.SatisfactionLevel = interviews.SatisfactionLevel(s.SatisfactionLevel)
	return progress, nil
}

type startRequestBody struct {
	CandidateName string `json:"candidate_name"`
	Role          string `json:"role"`
	Voice         string `json:"voice"`
}

type startResponseBody struct {
	SessionID          string    `json:"session_id"`
	OpeningMessage     string    `json:"opening_message"`
	OpeningAudioBase64 string    `json:"opening_audio_base64"`
	State              stateBody `json:"state"`
}

// Start opens a new session. Any transport failure or non-success status is a
// ConnectionError: the attempt is fatal and retrying is an explicit user
// action.
func (c *Client) Start(ctx context.Context, cfg interviews.SetupConfig) (*interviews.StartResult, error) {
	ctx, span := tracer.Start(ctx, "start interview")
	defer span.End()
	span.SetAttributes(attribute.String("request.role", cfg.Role))
	span.SetAttributes(attribute.String("request.voice", cfg.Voice))

	var body startResponseBody
	if err := c.post(ctx, "start", "/api/interview/start", startRequestBody{
		CandidateName: cfg.CandidateName,
		Role:          cfg.Role,
		Voice:         cfg.Voice,
	}, &body, nil); err != nil {
		span.RecordError(err)
		return nil, err
	}

	audio, err := base64.StdEncoding.DecodeString(body.OpeningAudioBase64)
	if err != nil {
		err = &interviews.ConnectionError{Op: "start", Err: fmt.Errorf("error decoding opening audio: %w", err)}
		span.RecordError(err)
		return nil, err
	}

	progress, err := body.State.toProgress()
	if err != nil {
		span.RecordError(err)
		return nil, &interviews.ConnectionError{Op: "start", Err: err}
	}

	span.SetAttributes(attribute.String("response.session_id", body.SessionID))
	return &interviews.StartResult{
		SessionID:      body.SessionID,
		OpeningMessage: body.OpeningMessage,
		OpeningAudio:   audio,
		Progress:       progress,
	}, nil
}

type respondRequestBody struct {
	Audio string `json:"audio"`
}

type respondResponseBody struct {
	CandidateTranscript string    `json:"candidate_transcript"`
	InterviewerResponse string    `json:"interviewer_response"`
	Audio               string    `json:"audio"`
	State               stateBody `json:"state"`
}

type errorResponseBody struct {
	Detail string `json:"detail"`
}

// Respond uploads one captured utterance and returns the service's turn
// result. A rejection (non-success status) maps to a ProcessingError carrying
// the service's detail message; transport failures map to ConnectionError.
func (c *Client) Respond(ctx context.Context, sessionID string, capture []byte) (*interviews.RespondResult, error) {
	ctx, span := tracer.Start(ctx, "respond to interview")
	defer span.End()
	span.SetAttributes(attribute.String("request.session_id", sessionID))
	span.SetAttributes(attribute.Int("request.capture_bytes", len(capture)))

	var body respondResponseBody
	onReject := func(statusCode int, responseBody []byte) error {
		detail := errorResponseBody{}
		// A malformed error body still surfaces as a ProcessingError, just
		// without the service's detail text.
		_ = json.Unmarshal(responseBody, &detail)
		return &interviews.ProcessingError{StatusCode: statusCode, Detail: detail.Detail}
	}
	if err := c.post(ctx, "respond", "/api/interview/"+sessionID+"/respond", respondRequestBody{
		Audio: base64.StdEncoding.EncodeToString(capture),
	}, &body, onReject); err != nil {
		span.RecordError(err)
		return nil, err
	}

	audio, err := base64.StdEncoding.DecodeString(body.Audio)
	if err != nil {
		err = &interviews.ConnectionError{Op: "respond", Err: fmt.Errorf("error decoding reply audio: %w", err)}
		span.RecordError(err)
		return nil, err
	}

	progress, err := body.State.toProgress()
	if err != nil {
		span.RecordError(err)
		return nil, &interviews.ConnectionError{Op: "respond", Err: err}
	}

	return &interviews.RespondResult{
		CandidateTranscript: body.CandidateTranscript,
		InterviewerResponse: body.InterviewerResponse,
		Audio:               audio,
		Progress:            progress,
	}, nil
}

type transcriptBody struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type endResponseBody struct {
	Transcript []transcriptBody `json:"transcript"`
	State      stateBody        `json:"state"`
}

// End closes the session. Callers treat failures as non-fatal and fall back
// to their locally-held transcript.
func (c *Client) End(ctx context.Context, sessionID string) (*interviews.EndResult, error) {
	ctx, span := tracer.Start(ctx, "end interview")
	defer span.End()
	span.SetAttributes(attribute.String("request.session_id", sessionID))

	var body endResponseBody
	if err := c.post(ctx, "end", "/api/interview/"+sessionID+"/end", nil, &body, nil); err != nil {
		span.RecordError(err)
		return nil, err
	}

	progress, err := body.State.toProgress()
	if err != nil {
		span.RecordError(err)
		return nil, &interviews.ConnectionError{Op: "end", Err: err}
	}

	var transcript []interviews.TranscriptEntry
	if err := copier.Copy(&transcript, &body.Transcript); err != nil {
		span.RecordError(err)
		return nil, &interviews.ConnectionError{Op: "end", Err: fmt.Errorf("error mapping transcript: %w", err)}
	}

	return &interviews.EndResult{Transcript: transcript, Progress: progress}, nil
}

type analyzeResponseBody struct {
	Analysis interviews.Analysis `json:"analysis"`
}

// Analyze requests the post-interview scoring report. The turn machine never
// waits on this call; only the completion stage does.
func (c *Client) Analyze(ctx context.Context, sessionID string) (*interviews.Analysis, error) {
	ctx, span := tracer.Start(ctx, "analyze interview")
	defer span.End()
	span.SetAttributes(attribute.String("request.session_id", sessionID))

	var body analyzeResponseBody
	if err := c.post(ctx, "analyze", "/api/interview/"+sessionID+"/analyze", nil, &body, nil); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &body.Analysis, nil
}

type fetchStateResponseBody struct {
	State      stateBody        `json:"state"`
	Transcript []transcriptBody `json:"transcript"`
}

// State fetches the service's view of the session for reconciliation.
func (c *Client) State(ctx context.Context, sessionID string) (*interviews.StateResult, error) {
	ctx, span := tracer.Start(ctx, "fetch interview state")
	defer span.End()
	span.SetAttributes(attribute.String("request.session_id", sessionID))

	var body fetchStateResponseBody
	if err := c.get(ctx, "state", "/api/interview/"+sessionID+"/state", &body); err != nil {
		span.RecordError(err)
		return nil, err
	}

	progress, err := body.State.toProgress()
	if err != nil {
		span.RecordError(err)
		return nil, &interviews.ConnectionError{Op: "state", Err: err}
	}

	var transcript []interviews.TranscriptEntry
	if err := copier.Copy(&transcript, &body.Transcript); err != nil {
		span.RecordError(err)
		return nil, &interviews.ConnectionError{Op: "state", Err: fmt.Errorf("error mapping transcript: %w", err)}
	}

	return &interviews.StateResult{Progress: progress, Transcript: transcript}, nil
}

type voicesResponseBody struct {
	Voices []string `json:"voices"`
}

// Voices lists the interviewer voices the service accepts.
func (c *Client) Voices(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "list voices")
	defer span.End()

	var body voicesResponseBody
	if err := c.get(ctx, "voices", "/api/voices", &body); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return body.Voices, nil
}

// Health probes the service root. A nil error means the service answered
// with a success status.
func (c *Client) Health(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "health check")
	defer span.End()

	if err := c.get(ctx, "health", "/", nil); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// post issues a JSON POST and decodes a success body into out. onReject, when
// set, converts a non-success response into the exchange's typed failure;
// otherwise non-success statuses become ConnectionErrors.
func (c *Client) post(ctx context.Context, op, path string, requestBody, out any, onReject func(int, []byte) error) error {
	var reader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return &interviews.ConnectionError{Op: op, Err: fmt.Errorf("error marshalling request: %w", err)}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return &interviews.ConnectionError{Op: op, Err: fmt.Errorf("error creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, op, out, onReject)
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &interviews.ConnectionError{Op: op, Err: fmt.Errorf("error creating request: %w", err)}
	}

	return c.do(req, op, out, nil)
}

func (c *Client) do(req *http.Request, op string, out any, onReject func(int, []byte) error) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &interviews.ConnectionError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		responseBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			logger.Warn("failed to read error body", "op", op, "error", readErr)
		}
		if onReject != nil {
			return onReject(resp.StatusCode, responseBody)
		}
		return &interviews.ConnectionError{Op: op, Err: fmt.Errorf("non-OK HTTP status: %s", resp.Status)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &interviews.ConnectionError{Op: op, Err: fmt.Errorf("error decoding response: %w", err)}
	}
	return nil
}

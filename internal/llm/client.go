// Package llm talks to the OpenAI HTTP API: chat completions with a JSON
// schema response format, and audio transcription.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/chunkrecall/trainer/internal/logger"
)

const (
	DefaultBaseURL         = "https://api.openai.com/v1"
	DefaultModel           = "gpt-4o-mini"
	DefaultTranscribeModel = "whisper-1"
	DefaultTemperature     = 0.7

	requestTimeout = 60 * time.Second
)

// ErrNoAPIKey is returned when neither the call nor the client has a key.
var ErrNoAPIKey = errors.New("llm: no OpenAI API key configured")

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai error (status %d): %s", e.Status, e.Message)
}

// ValidationError reports model output that does not match the schema.
type ValidationError struct {
	Schema   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("llm: response does not match schema %q: %s", e.Schema, strings.Join(e.Problems, "; "))
}

type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	TranscribeModel string
	Temperature     float64
	HTTPClient      *http.Client
}

type Client struct {
	apiKey          string
	baseURL         string
	model           string
	transcribeModel string
	temperature     float64
	http            *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	transcribe := cfg.TranscribeModel
	if transcribe == "" {
		transcribe = DefaultTranscribeModel
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{
		apiKey:          cfg.APIKey,
		baseURL:         strings.TrimRight(baseURL, "/"),
		model:           model,
		transcribeModel: transcribe,
		temperature:     cfg.Temperature,
		http:            httpClient,
	}
}

// Schema names a JSON schema used both as the response format and to
// validate what the model returns. Strict mode rejects keywords such as
// minimum or minLength, so schemas that rely on them leave it off.
type Schema struct {
	Name       string
	Definition map[string]any
	Strict     bool
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []Message      `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) key(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if c.apiKey != "" {
		return c.apiKey, nil
	}
	return "", ErrNoAPIKey
}

// CompleteJSON sends messages with a json_schema response format,
// validates the returned document against schema and decodes it into out.
// apiKey overrides the client's key when non-empty.
func (c *Client) CompleteJSON(ctx context.Context, apiKey string, messages []Message, schema Schema, out any) error {
	log := logger.FromContext(ctx).WithPrefix("llm")

	key, err := c.key(apiKey)
	if err != nil {
		return err
	}

	body := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		ResponseFormat: responseFormat{
			Type:       "json_schema",
			JSONSchema: jsonSchema{Name: schema.Name, Strict: schema.Strict, Schema: schema.Definition},
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	start := time.Now()
	var resp chatResponse
	if err := c.do(req, &resp); err != nil {
		log.Error("chat completion %s failed after %v: %v", schema.Name, time.Since(start), err)
		return err
	}
	log.Debug("chat completion %s finished in %v", schema.Name, time.Since(start))

	if len(resp.Choices) == 0 {
		return errors.New("llm: no choices returned")
	}
	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return fmt.Errorf("llm: model refused: %s", msg.Refusal)
	}

	if err := Validate(schema, msg.Content); err != nil {
		log.Warn("invalid %s output: %v", schema.Name, err)
		return err
	}
	if err := json.Unmarshal([]byte(msg.Content), out); err != nil {
		return fmt.Errorf("decoding %s output: %w", schema.Name, err)
	}
	return nil
}

// Validate checks document against the schema definition.
func Validate(schema Schema, document string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema.Definition),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		return &ValidationError{Schema: schema.Name, Problems: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return &ValidationError{Schema: schema.Name, Problems: problems}
}

// Transcribe uploads audio for speech-to-text and returns the plain text.
func (c *Client) Transcribe(ctx context.Context, apiKey, filename string, audio io.Reader) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("llm")

	key, err := c.key(apiKey)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("model", c.transcribeModel); err != nil {
		return "", err
	}
	if err := form.WriteField("response_format", "text"); err != nil {
		return "", err
	}
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("reading audio: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading transcription: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp.StatusCode, text)
	}
	log.Debug("transcribed %s (%d bytes of text)", filename, len(text))
	return strings.TrimSpace(string(text)), nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("openai request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return apiError(resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding openai response: %w", err)
	}
	return nil
}

func apiError(status int, body []byte) *APIError {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return &APIError{Status: status, Message: parsed.Error.Message}
	}
	return &APIError{Status: status, Message: strings.TrimSpace(string(body))}
}

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrNotAuthenticated = errors.New("publisher is not authenticated")

type PublisherOption func(*Publisher)

func WithLogger(logger *zap.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithHTTPClient(client *http.Client) PublisherOption {
	return func(p *Publisher) {
		p.httpClient = client
	}
}

// Publisher delivers entities to the catalog API. One bearer token is
// obtained per run via Authenticate and reused for every upsert; there
// is no refresh-on-expiry.
type Publisher struct {
	url          string
	clientID     string
	clientSecret string

	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewPublisher(url, clientID, clientSecret string, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		url:          strings.TrimRight(url, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Authenticate exchanges the client credentials for an access token.
// Failure here is unrecoverable for the run.
func (p *Publisher) Authenticate(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"clientId":     p.clientID,
		"clientSecret": p.clientSecret,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.url+"/v1/auth/access_token", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("access token request returned status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decoding access token response: %w", err)
	}
	if payload.AccessToken == "" {
		return errors.New("access token response carried no token")
	}

	p.token = payload.AccessToken
	p.logger.Info("authenticated against catalog")
	return nil
}

// Upsert creates or merges one entity under the given blueprint. The
// response body is logged, never parsed.
func (p *Publisher) Upsert(ctx context.Context, blueprint string, entity Entity) error {
	if p.token == "" {
		return ErrNotAuthenticated
	}

	body, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("encoding entity %q: %w", entity.Identifier, err)
	}

	url := fmt.Sprintf("%s/v1/blueprints/%s/entities?upsert=true&merge=true", p.url, blueprint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upserting entity %q: %w", entity.Identifier, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upserting entity %q: status %d: %s",
			entity.Identifier, resp.StatusCode, respBody)
	}

	p.logger.Debug("entity upserted",
		zap.String("blueprint", blueprint),
		zap.String("identifier", entity.Identifier),
		zap.Int("status", resp.StatusCode),
		zap.ByteString("response", respBody))

	return nil
}

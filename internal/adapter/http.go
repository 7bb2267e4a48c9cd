package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-pass-sphere/internal/config"
	"github.com/MKhiriev/go-pass-sphere/internal/identity"
	"github.com/MKhiriev/go-pass-sphere/internal/logger"
	"github.com/MKhiriev/go-pass-sphere/internal/utils"
	"github.com/MKhiriev/go-pass-sphere/models"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	headerTraceID   = "X-Trace-ID"
	headerPrincipal = "X-Principal"
	headerSignature = "X-Signature"
)

// Adapters groups the remote collaborators built over one HTTP transport.
type Adapters struct {
	Auth      AuthAdapter
	KeyEscrow KeyEscrowAdapter
	Passwords RecordAdapter
	TOTPs     RecordAdapter
}

type httpTransport struct {
	client     *utils.HTTPClient
	basePath   string
	identities IdentitySource
	limiter    *rate.Limiter
	traceIDs   *utils.UUIDGenerator

	logger *logger.Logger
}

// NewHTTPAdapters constructs the HTTP/JSON implementations of every adapter
// interface. They share one resty client, one outbound rate limiter and the
// identity source used to sign authenticated requests.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPAdapters(adapterCfg config.ClientAdapter, identities IdentitySource, logger *logger.Logger) (*Adapters, error) {
	transport, err := newHTTPTransport(adapterCfg, identities, logger)
	if err != nil {
		return nil, err
	}

	return &Adapters{
		Auth:      &httpAuthAdapter{transport: transport},
		KeyEscrow: &httpKeyEscrowAdapter{transport: transport},
		Passwords: newHTTPRecordAdapter(transport, models.PasswordKind.Name, models.PasswordKind.Fields),
		TOTPs:     newHTTPRecordAdapter(transport, models.TOTPKind.Name, models.TOTPKind.Fields),
	}, nil
}

func newHTTPTransport(adapterCfg config.ClientAdapter, identities IdentitySource, logger *logger.Logger) (*httpTransport, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	u, _ := url.Parse(baseURL)

	limit := rate.Inf
	if adapterCfg.RateLimit > 0 {
		limit = rate.Limit(adapterCfg.RateLimit)
	}
	burst := adapterCfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &httpTransport{
		client:     utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		basePath:   u.Path,
		identities: identities,
		limiter:    rate.NewLimiter(limit, burst),
		traceIDs:   utils.NewUUIDGenerator(),
		logger:     logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// do sends one request. payload, if non-nil, is sent as JSON. Authenticated
// requests carry the delegation, the principal and an Ed25519 signature over
// the method, the full path and the body hash.
func (t *httpTransport) do(ctx context.Context, method, path string, payload any, authed bool) (*resty.Response, error) {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("error encoding request body: %w", err)
		}
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	traceID := t.traceIDs.Generate()
	req := t.client.R().
		SetContext(ctx).
		SetHeader(headerTraceID, traceID)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	if authed {
		id, ok := t.identities.Identity()
		if !ok {
			return nil, ErrNoIdentity
		}
		signature, err := identity.SignRequest(id, method, t.basePath+path, body)
		if err != nil {
			return nil, err
		}
		req.SetHeader("Authorization", "Bearer "+id.Delegation()).
			SetHeader(headerPrincipal, id.Principal().String()).
			SetHeader(headerSignature, signature)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		t.logger.Err(err).
			Str("func", "httpTransport.do").
			Str("method", method).
			Str("path", path).
			Str("trace_id", traceID).
			Msg("request failed")
		return nil, fmt.Errorf("%s %s request: %w", method, path, err)
	}

	t.logger.Debug().
		Str("func", "httpTransport.do").
		Str("method", method).
		Str("path", path).
		Str("trace_id", traceID).
		Int("status", resp.StatusCode()).
		Dur("took", resp.Time()).
		Send()

	return resp, nil
}

package adapter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-pass-sphere/internal/crypto"
	"github.com/MKhiriev/go-pass-sphere/models"
)

type httpAuthAdapter struct {
	transport *httpTransport
}

// Login implements [AuthAdapter]. It POSTs the account and the hex session
// public key to /api/auth/login and returns the issued delegation.
func (h *httpAuthAdapter) Login(ctx context.Context, account string, sessionPublicKey []byte) (models.Delegation, error) {
	req := models.LoginRequest{
		Account:   account,
		PublicKey: crypto.EncodeHex(sessionPublicKey),
	}

	resp, err := h.transport.do(ctx, http.MethodPost, "/api/auth/login", req, false)
	if err != nil {
		return models.Delegation{}, err
	}

	delegation, err := decodeResult[models.Delegation](resp)
	if err != nil {
		return models.Delegation{}, fmt.Errorf("login: %w", err)
	}
	if delegation.Token == "" {
		return models.Delegation{}, fmt.Errorf("login: %w: empty delegation", ErrMalformedReply)
	}
	return delegation, nil
}

// Logout implements [AuthAdapter].
func (h *httpAuthAdapter) Logout(ctx context.Context) error {
	resp, err := h.transport.do(ctx, http.MethodPost, "/api/auth/logout", nil, true)
	if err != nil {
		return err
	}
	if err = decodeUnit(resp); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

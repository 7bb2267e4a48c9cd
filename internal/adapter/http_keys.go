package adapter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-pass-sphere/internal/crypto"
	"github.com/MKhiriev/go-pass-sphere/models"
)

type httpKeyEscrowAdapter struct {
	transport *httpTransport
}

// RequestKeyMaterial implements [KeyEscrowAdapter]. The escrow binds the
// material to the principal of the signed request.
func (h *httpKeyEscrowAdapter) RequestKeyMaterial(ctx context.Context, transportPublicKey []byte) (string, error) {
	req := models.KeyMaterialRequest{TransportPublicKey: crypto.EncodeHex(transportPublicKey)}

	resp, err := h.transport.do(ctx, http.MethodPost, "/api/keys/encrypted", req, true)
	if err != nil {
		return "", err
	}

	material, err := decodeResult[string](resp)
	if err != nil {
		return "", fmt.Errorf("request key material: %w", err)
	}
	return material, nil
}

// GetVerificationKey implements [KeyEscrowAdapter]. The key is public, so
// the request is not signed.
func (h *httpKeyEscrowAdapter) GetVerificationKey(ctx context.Context) (string, error) {
	resp, err := h.transport.do(ctx, http.MethodGet, "/api/keys/verification", nil, false)
	if err != nil {
		return "", err
	}

	key, err := decodeResult[string](resp)
	if err != nil {
		return "", fmt.Errorf("get verification key: %w", err)
	}
	return key, nil
}

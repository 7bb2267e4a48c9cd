// Package testutil provides an in-process stand-in for the remote services the
// client talks to: the auth service, the key escrow and the ciphertext-record
// service. It speaks the same HTTP/JSON wire format and checks the same
// request signatures, so adapters and services can be tested end to end.
package testutil

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-pass-sphere/internal/crypto"
	"github.com/MKhiriev/go-pass-sphere/internal/identity"
	"github.com/MKhiriev/go-pass-sphere/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Route names accepted by FailNext and Calls.
const (
	RouteLogin           = "login"
	RouteLogout          = "logout"
	RouteKeyMaterial     = "key_material"
	RouteVerificationKey = "verification_key"
	RouteList            = "list"
	RouteCreate          = "create"
	RouteUpdate          = "update"
	RouteDelete          = "delete"
)

const (
	tokenIssuer   = "pass-sphere-auth"
	tokenTTL      = time.Hour
	principalSalt = "pass-sphere/principal/"
)

type failure struct {
	status  int
	message string
}

type storedRecord struct {
	id     uint64
	fields map[string]models.Envelope
}

// Remote is a fake of the remote services backed by an httptest.Server.
type Remote struct {
	server *httptest.Server

	escrowKey    ed25519.PrivateKey
	tokenKey     string
	masterSecret []byte

	mu          sync.Mutex
	sessions    map[string]ed25519.PublicKey
	collections map[string][]string
	records     map[string]map[string][]storedRecord
	nextID      uint64
	failures    map[string][]failure
	calls       map[string]int
	traceIDs    []string
	forgeEscrow bool
}

// NewRemote starts a Remote serving the password and TOTP collections. The
// server is closed when the test ends.
func NewRemote(t testing.TB) *Remote {
	t.Helper()

	_, escrowKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate escrow key: %v", err)
	}
	masterSecret := make([]byte, 32)
	if _, err = rand.Read(masterSecret); err != nil {
		t.Fatalf("generate master secret: %v", err)
	}

	m := &Remote{
		escrowKey:    escrowKey,
		tokenKey:     crypto.EncodeHex(masterSecret[:16]),
		masterSecret: masterSecret,
		sessions:     make(map[string]ed25519.PublicKey),
		collections: map[string][]string{
			models.PasswordKind.Name: models.PasswordKind.Fields,
			models.TOTPKind.Name:     models.TOTPKind.Fields,
		},
		records:  make(map[string]map[string][]storedRecord),
		failures: make(map[string][]failure),
		calls:    make(map[string]int),
	}

	m.server = httptest.NewServer(m.routes())
	t.Cleanup(m.server.Close)

	return m
}

func (m *Remote) routes() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(traceID)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/login", m.track(RouteLogin, m.login))
		r.Get("/api/keys/verification", m.track(RouteVerificationKey, m.verificationKey))
	})

	router.Group(func(r chi.Router) {
		r.Use(m.auth)
		r.Post("/api/auth/logout", m.track(RouteLogout, m.logout))
		r.Post("/api/keys/encrypted", m.track(RouteKeyMaterial, m.keyMaterial))
		r.Get("/api/records/{kind}", m.track(RouteList, m.list))
		r.Post("/api/records/{kind}", m.track(RouteCreate, m.create))
		r.Put("/api/records/{kind}/{id}", m.track(RouteUpdate, m.update))
		r.Delete("/api/records/{kind}/{id}", m.track(RouteDelete, m.remove))
	})

	return router
}

// URL returns the base URL of the fake.
func (m *Remote) URL() string {
	return m.server.URL
}

// PrincipalFor returns the stable principal the fake assigns to account.
func (m *Remote) PrincipalFor(account string) identity.Principal {
	return PrincipalOf(account)
}

// SecretFor returns the escrowed secret for principal.
func (m *Remote) SecretFor(principal identity.Principal) []byte {
	mac := hmac.New(sha256.New, m.masterSecret)
	mac.Write(principal)
	return mac.Sum(nil)
}

// VerificationKey returns the escrow's public key.
func (m *Remote) VerificationKey() ed25519.PublicKey {
	return m.escrowKey.Public().(ed25519.PublicKey)
}

// ForgeEscrowSignatures makes the escrow corrupt the signature of all key
// material it hands out while enabled.
func (m *Remote) ForgeEscrowSignatures(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forgeEscrow = enabled
}

// FailNext queues a failure for the next call of route. A status of 200
// produces an {"err": message} reply.
func (m *Remote) FailNext(route string, status int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[route] = append(m.failures[route], failure{status: status, message: message})
}

// Calls returns how many requests reached route, failed ones included.
func (m *Remote) Calls(route string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[route]
}

// TraceIDs returns the X-Trace-ID of every tracked request, in arrival order.
func (m *Remote) TraceIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.traceIDs...)
}

// Login registers a fresh session key for account directly, without HTTP,
// and returns the resulting identity.
func (m *Remote) Login(t testing.TB, account string) *identity.SessionIdentity {
	t.Helper()

	seed, pub, err := identity.NewSessionKey()
	if err != nil {
		t.Fatalf("new session key: %v", err)
	}
	token, err := m.issue(account, pub)
	if err != nil {
		t.Fatalf("issue delegation: %v", err)
	}
	id, err := identity.New(seed, token)
	if err != nil {
		t.Fatalf("build identity: %v", err)
	}
	return id
}

// SeedRecord stores a record with raw envelopes and returns its id. fields
// are in the collection's field order.
func (m *Remote) SeedRecord(principal identity.Principal, kind string, fields []models.Envelope) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := m.collections[kind]
	record := storedRecord{fields: make(map[string]models.Envelope, len(names))}
	for i, name := range names {
		if i < len(fields) {
			record.fields[name] = fields[i]
		}
	}
	return m.insertLocked(principal.String(), kind, record)
}

// Records returns the stored records of principal in kind.
func (m *Remote) Records(principal identity.Principal, kind string) []models.RemoteRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := m.collections[kind]
	stored := m.records[principal.String()][kind]
	out := make([]models.RemoteRecord, 0, len(stored))
	for _, record := range stored {
		remote := models.RemoteRecord{ID: record.id, Fields: make([]models.Envelope, len(names))}
		for i, name := range names {
			remote.Fields[i] = record.fields[name]
		}
		out = append(out, remote)
	}
	return out
}

func (m *Remote) issue(account string, pub ed25519.PublicKey) (string, error) {
	token, err := GenerateDelegationToken(tokenIssuer, m.PrincipalFor(account).String(), tokenTTL, m.tokenKey, time.Now())
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.sessions[token] = pub
	m.mu.Unlock()

	return token, nil
}

func (m *Remote) insertLocked(principal, kind string, record storedRecord) uint64 {
	m.nextID++
	record.id = m.nextID

	if m.records[principal] == nil {
		m.records[principal] = make(map[string][]storedRecord)
	}
	m.records[principal][kind] = append(m.records[principal][kind], record)
	return record.id
}

// ── middleware ───────────────────────────────────────────────────────────────

func traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Trace-ID"); id != "" {
			r = r.WithContext(context.WithValue(r.Context(), TraceIDCtxKey, id))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Remote) track(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.calls[route]++
		if id, ok := GetTraceIDFromContext(r.Context()); ok {
			m.traceIDs = append(m.traceIDs, id)
		}
		var injected *failure
		if queue := m.failures[route]; len(queue) > 0 {
			injected = &queue[0]
			m.failures[route] = queue[1:]
		}
		m.mu.Unlock()

		if injected != nil {
			_, _ = WriteErr(w, injected.message, injected.status)
			return
		}
		next(w, r)
	}
}

// auth checks the delegation, the principal header and the request
// signature, then stores the principal in the request context.
func (m *Remote) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := ParseBearerToken(r.Header.Get("Authorization"))
		if err != nil {
			_, _ = WriteErr(w, err.Error(), http.StatusUnauthorized)
			return
		}

		subject, err := ValidateDelegationToken(token, m.tokenKey, tokenIssuer)
		if err != nil {
			_, _ = WriteErr(w, "invalid delegation", http.StatusUnauthorized)
			return
		}

		m.mu.Lock()
		pub, ok := m.sessions[token]
		m.mu.Unlock()
		if !ok {
			_, _ = WriteErr(w, "delegation revoked", http.StatusUnauthorized)
			return
		}

		if r.Header.Get("X-Principal") != subject {
			_, _ = WriteErr(w, "principal mismatch", http.StatusUnauthorized)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			_, _ = WriteErr(w, "cannot read body", http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if !identity.VerifyRequest(pub, r.Method, r.URL.Path, body, r.Header.Get("X-Signature")) {
			_, _ = WriteErr(w, "bad request signature", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), PrincipalCtxKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ── handlers ─────────────────────────────────────────────────────────────────

func (m *Remote) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Account == "" {
		_, _ = WriteErr(w, "invalid login request", http.StatusBadRequest)
		return
	}

	pub, err := crypto.DecodeHex(req.PublicKey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		_, _ = WriteErr(w, "invalid session public key", http.StatusBadRequest)
		return
	}

	token, err := m.issue(req.Account, ed25519.PublicKey(pub))
	if err != nil {
		_, _ = WriteErr(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_, _ = WriteOK(w, models.Delegation{Token: token})
}

func (m *Remote) logout(w http.ResponseWriter, r *http.Request) {
	token, _ := ParseBearerToken(r.Header.Get("Authorization"))

	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()

	_, _ = WriteOK(w, nil)
}

func (m *Remote) verificationKey(w http.ResponseWriter, _ *http.Request) {
	_, _ = WriteOK(w, crypto.EncodeHex(m.VerificationKey()))
}

func (m *Remote) keyMaterial(w http.ResponseWriter, r *http.Request) {
	principalHex, _ := GetPrincipalFromContext(r.Context())
	principal, err := identity.ParsePrincipal(principalHex)
	if err != nil {
		_, _ = WriteErr(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req models.KeyMaterialRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		_, _ = WriteErr(w, "invalid key material request", http.StatusBadRequest)
		return
	}
	transportPub, err := crypto.DecodeHex(req.TransportPublicKey)
	if err != nil || len(transportPub) != crypto.TransportKeySize {
		_, _ = WriteErr(w, "invalid transport public key", http.StatusBadRequest)
		return
	}

	material, err := crypto.SealKeyMaterial(m.SecretFor(principal), m.escrowKey, principal, transportPub)
	if err != nil {
		_, _ = WriteErr(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m.mu.Lock()
	if m.forgeEscrow {
		material[0] ^= 0xff
	}
	m.mu.Unlock()

	_, _ = WriteOK(w, crypto.EncodeHex(material))
}

func (m *Remote) list(w http.ResponseWriter, r *http.Request) {
	principal, _ := GetPrincipalFromContext(r.Context())
	kind := chi.URLParam(r, "kind")

	m.mu.Lock()
	names, ok := m.collections[kind]
	if !ok {
		m.mu.Unlock()
		_, _ = WriteErr(w, "unknown collection "+kind, http.StatusNotFound)
		return
	}
	stored := m.records[principal][kind]
	out := make([]map[string]any, 0, len(stored))
	for _, record := range stored {
		item := map[string]any{"id": record.id}
		for _, name := range names {
			if env, present := record.fields[name]; present {
				item[name] = env
			}
		}
		out = append(out, item)
	}
	m.mu.Unlock()

	_, _ = WriteOK(w, out)
}

func (m *Remote) decodeFields(w http.ResponseWriter, r *http.Request) (map[string]models.Envelope, bool) {
	kind := chi.URLParam(r, "kind")

	m.mu.Lock()
	names, ok := m.collections[kind]
	m.mu.Unlock()
	if !ok {
		_, _ = WriteErr(w, "unknown collection "+kind, http.StatusNotFound)
		return nil, false
	}

	var body map[string]models.Envelope
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		_, _ = WriteErr(w, "invalid record body", http.StatusBadRequest)
		return nil, false
	}
	for _, name := range names {
		if _, present := body[name]; !present {
			_, _ = WriteErr(w, "missing field "+name, http.StatusOK)
			return nil, false
		}
	}
	return body, true
}

func (m *Remote) create(w http.ResponseWriter, r *http.Request) {
	principal, _ := GetPrincipalFromContext(r.Context())

	fields, ok := m.decodeFields(w, r)
	if !ok {
		return
	}

	m.mu.Lock()
	id := m.insertLocked(principal, chi.URLParam(r, "kind"), storedRecord{fields: fields})
	m.mu.Unlock()

	_, _ = WriteOK(w, id)
}

func (m *Remote) update(w http.ResponseWriter, r *http.Request) {
	principal, _ := GetPrincipalFromContext(r.Context())
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		_, _ = WriteErr(w, "invalid record id", http.StatusBadRequest)
		return
	}

	fields, ok := m.decodeFields(w, r)
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.records[principal][chi.URLParam(r, "kind")]
	for i := range stored {
		if stored[i].id == id {
			stored[i].fields = fields
			_, _ = WriteOK(w, nil)
			return
		}
	}
	_, _ = WriteErr(w, "record not found", http.StatusNotFound)
}

func (m *Remote) remove(w http.ResponseWriter, r *http.Request) {
	principal, _ := GetPrincipalFromContext(r.Context())
	kind := chi.URLParam(r, "kind")
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		_, _ = WriteErr(w, "invalid record id", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.records[principal][kind]
	for i := range stored {
		if stored[i].id == id {
			m.records[principal][kind] = append(stored[:i], stored[i+1:]...)
			_, _ = WriteOK(w, nil)
			return
		}
	}
	_, _ = WriteErr(w, "record not found", http.StatusNotFound)
}

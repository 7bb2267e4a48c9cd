package crypto

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/MKhiriev/go-pass-sphere/models"
	"golang.org/x/sync/errgroup"
)

// FieldErrors maps the index of every field that failed to decrypt to its
// error. It unwraps to the individual errors.
type FieldErrors map[int]error

func (e FieldErrors) Indices() []int {
	out := make([]int, 0, len(e))
	for i := range e {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, i := range e.Indices() {
		parts = append(parts, fmt.Sprintf("field %d: %v", i, e[i]))
	}
	return strings.Join(parts, "; ")
}

func (e FieldErrors) Unwrap() []error {
	out := make([]error, 0, len(e))
	for _, i := range e.Indices() {
		out = append(out, e[i])
	}
	return out
}

// EncryptFields encrypts every field of one record concurrently, each under
// its own nonce. The result keeps the input order.
func EncryptFields(plaintexts []string, key *SymmetricKey) ([]models.Envelope, error) {
	out := make([]models.Envelope, len(plaintexts))

	var g errgroup.Group
	for i, plaintext := range plaintexts {
		g.Go(func() error {
			env, err := EncryptField(plaintext, key)
			if err != nil {
				return fmt.Errorf("field %d: %w", i, err)
			}
			out[i] = env
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecryptFields decrypts every field of one record concurrently. All fields
// are attempted; if any fails the error is a FieldErrors and the plaintexts
// of the failed fields are empty.
func DecryptFields(envelopes []models.Envelope, key *SymmetricKey) ([]string, error) {
	out := make([]string, len(envelopes))
	errs := make([]error, len(envelopes))

	var g errgroup.Group
	for i, env := range envelopes {
		g.Go(func() error {
			out[i], errs[i] = DecryptField(env, key)
			return nil
		})
	}
	_ = g.Wait()

	failed := FieldErrors{}
	for i, err := range errs {
		if err != nil {
			failed[i] = err
		}
	}
	if len(failed) > 0 {
		return out, failed
	}
	return out, nil
}

// IsKeyError reports whether err means the key itself is unusable rather than
// the data being bad.
func IsKeyError(err error) bool {
	return errors.Is(err, ErrKeyDestroyed) || errors.Is(err, ErrInvalidKey)
}

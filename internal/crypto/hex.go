// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"encoding/hex"
	"fmt"
)

// EncodeHex returns the lowercase hex form of b, two digits per byte.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// DecodeHex parses s as pairs of hex digits. Odd-length input and non-hex
// characters fail with ErrFormat; a trailing nibble is never dropped.
// Upper-case digits are accepted. The empty string decodes to an empty slice.
func DecodeHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd-length hex string (%d chars)", ErrFormat, len(s))
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return b, nil
}

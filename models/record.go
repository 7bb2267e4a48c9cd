// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Record is a decrypted vault record. Implementations are plain value types.
type Record interface {
	// RecordID returns the remote-assigned id, or 0 for a pending creation.
	RecordID() uint64
	// SensitiveFields returns the plaintext fields in the order of the
	// record kind's Fields.
	SensitiveFields() []string
}

// Kind describes one record collection: its remote name, the wire names of
// its encrypted fields, and how to rebuild a plaintext record from them.
type Kind[T Record] struct {
	// Name is the collection path segment, e.g. "passwords".
	Name string
	// Fields lists the wire field names in SensitiveFields order.
	Fields []string
	// Build assembles a record from its id and decrypted fields. fields has
	// exactly len(Fields) entries.
	Build func(id uint64, fields []string) T
}

// PasswordRecord is a stored website/application credential.
type PasswordRecord struct {
	ID       uint64
	Name     string
	Username string
	Password string
}

func (p PasswordRecord) RecordID() uint64 { return p.ID }

func (p PasswordRecord) SensitiveFields() []string {
	return []string{p.Name, p.Username, p.Password}
}

// TOTPRecord is a stored TOTP shared secret.
type TOTPRecord struct {
	ID     uint64
	Name   string
	Issuer string
	Secret string
}

func (t TOTPRecord) RecordID() uint64 { return t.ID }

func (t TOTPRecord) SensitiveFields() []string {
	return []string{t.Name, t.Issuer, t.Secret}
}

// PasswordKind is the password collection descriptor.
var PasswordKind = Kind[PasswordRecord]{
	Name:   "passwords",
	Fields: []string{"name", "username", "password"},
	Build: func(id uint64, f []string) PasswordRecord {
		return PasswordRecord{ID: id, Name: f[0], Username: f[1], Password: f[2]}
	},
}

// TOTPKind is the TOTP secret collection descriptor.
var TOTPKind = Kind[TOTPRecord]{
	Name:   "totps",
	Fields: []string{"name", "issuer", "secret"},
	Build: func(id uint64, f []string) TOTPRecord {
		return TOTPRecord{ID: id, Name: f[0], Issuer: f[1], Secret: f[2]}
	},
}

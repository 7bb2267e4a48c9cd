// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the interactive client application runtime.
//
// It restores the stored session, runs the background workers (key
// coordinator and periodic refresh) and hands the terminal to the UI for the
// life of the process.
package client

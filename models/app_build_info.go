// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "strings"

const notAvailable = "N/A"

// AppBuildInfo is the build metadata injected with -ldflags into the client
// binary. Empty values mean the binary was built without them.
type AppBuildInfo struct {
	version string
	date    string
	commit  string
}

func NewAppBuildInfo(version, date, commit string) AppBuildInfo {
	return AppBuildInfo{
		version: strings.TrimSpace(version),
		date:    strings.TrimSpace(date),
		commit:  strings.TrimSpace(commit),
	}
}

func (a AppBuildInfo) BuildVersion() string { return a.version }
func (a AppBuildInfo) BuildDate() string    { return a.date }
func (a AppBuildInfo) BuildCommit() string  { return a.commit }

// Short renders "version (commit)" with the commit cut to 7 characters, the
// form shown in the UI footer.
func (a AppBuildInfo) Short() string {
	version, commit := a.version, a.commit
	if version == "" || version == notAvailable {
		version = notAvailable
	}
	if commit == "" || commit == notAvailable {
		return version
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return version + " (" + commit + ")"
}

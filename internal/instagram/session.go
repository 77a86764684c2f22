// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package instagram fetches post comments through a session-authenticated
// provider. Credentials live outside this package: a SessionStore hands out
// a previously established session and can re-authenticate when the stored
// one has gone stale.
package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Session is the persisted credential material for authenticated calls.
type Session struct {
	UserID    string            `json:"user_id"`
	SessionID string            `json:"session_id"`
	CSRFToken string            `json:"csrf_token"`
	UserAgent string            `json:"user_agent"`
	Cookies   map[string]string `json:"cookies"`
}

// Valid reports whether the session carries enough material to attempt an
// authenticated request. It does not guarantee the server still accepts it.
func (s *Session) Valid() bool {
	return s != nil && s.SessionID != ""
}

// SessionStore is the credential-provider abstraction. Load returns the
// persisted session if one exists; Reauthenticate establishes a fresh
// session (e.g. by logging in) and persists it for future loads.
type SessionStore interface {
	Load(ctx context.Context) (*Session, error)
	Reauthenticate(ctx context.Context) (*Session, error)
}

// FileSessionStore reads and writes the session as a JSON file, matching
// how the credential is provisioned out of band.
type FileSessionStore struct {
	Path string
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{Path: path}
}

func (f *FileSessionStore) Load(_ context.Context) (*Session, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file %s: %w", f.Path, err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session file %s: %w", f.Path, err)
	}
	if !session.Valid() {
		return nil, fmt.Errorf("session file %s holds no usable session", f.Path)
	}
	return &session, nil
}

// Reauthenticate is not supported by the file store: login flows are run
// out of band and the resulting session dropped into the file. Surfacing an
// error here lets the collector degrade to an empty comment list.
func (f *FileSessionStore) Reauthenticate(_ context.Context) (*Session, error) {
	return nil, fmt.Errorf("session file %s is stale and interactive login is disabled", f.Path)
}

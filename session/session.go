/*
Copyright 2025 PickManager Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package session adapts the external identity provider. The core only
// needs a current identity with a live access token; the sign-in
// lifecycle itself is owned outside this codebase.
package session

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/brian-nguyen/pickmanager/config"
	"github.com/brian-nguyen/pickmanager/internal/apierror"
)

// Identity is the authenticated caller: the (DisplayName, Email) pair
// keys the owner row in the directory sheet, AccessToken authorizes
// remote calls.
type Identity struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
}

// Provider supplies the current identity. The token is process-wide and
// single-writer: SignIn/RestoreSession replace it wholesale, SignOut
// clears it, any in-flight request reads it.
type Provider interface {
	CurrentIdentity() *Identity
	SignIn(ctx context.Context) (*Identity, error)
	RestoreSession(ctx context.Context) (*Identity, error)
	SignOut()
}

// FileProvider reads the identity from the configured token file, or
// falls back to the identity fields in the configuration. RestoreSession
// re-reads the file, which is how a token refreshed by an external
// helper becomes visible to a running process.
type FileProvider struct {
	mu       sync.RWMutex
	conf     config.IdentityConfig
	identity *Identity
}

func NewFileProvider(conf config.IdentityConfig) *FileProvider {
	return &FileProvider{conf: conf}
}

func (p *FileProvider) CurrentIdentity() *Identity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.identity
}

func (p *FileProvider) SignIn(ctx context.Context) (*Identity, error) {
	return p.load(ctx)
}

func (p *FileProvider) RestoreSession(ctx context.Context) (*Identity, error) {
	return p.load(ctx)
}

func (p *FileProvider) SignOut() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.identity = nil
}

func (p *FileProvider) load(_ context.Context) (*Identity, error) {
	identity, err := p.read()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.identity = identity
	p.mu.Unlock()
	return identity, nil
}

func (p *FileProvider) read() (*Identity, error) {
	if p.conf.TokenFile != "" {
		f, err := os.Open(p.conf.TokenFile)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrUnauthorized, "failed to open token file", err)
		}
		defer func() { _ = f.Close() }()

		var identity Identity
		if err := json.NewDecoder(f).Decode(&identity); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrUnauthorized, "failed to decode token file", err)
		}
		if identity.AccessToken == "" {
			return nil, apierror.NewAPIError(apierror.ErrUnauthorized, "token file has no access token", nil)
		}
		return &identity, nil
	}

	if p.conf.AccessToken == "" {
		return nil, apierror.NewAPIError(apierror.ErrUnauthorized, "no identity configured", nil)
	}
	return &Identity{
		DisplayName: p.conf.DisplayName,
		Email:       p.conf.Email,
		AccessToken: p.conf.AccessToken,
	}, nil
}

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

package pickmanager

import (
	"embed"
	"sync"

	"github.com/brian-nguyen/pickmanager/config"
	"github.com/brian-nguyen/pickmanager/database"
	"github.com/brian-nguyen/pickmanager/session"
)

// PickManager represents the main struct for the PickManager application.
// It orchestrates the local ledger store, the remote sheet client, and
// the identity session, and owns the sync state machine.
type PickManager struct {
	datasource database.IDataSource
	remote     RemoteLedger
	provider   session.Provider

	mu            sync.Mutex
	state         SyncState
	resolvedRange string
	logCounter    int
	lastSyncErr   error
}

//go:embed sql/*.sql
var SQLFiles embed.FS

// NewPickManager builds a coordinator over db, wiring the sheets client
// and the identity provider from the loaded configuration.
func NewPickManager(db database.IDataSource) (*PickManager, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	remote := NewSheetsClient(configuration.Sheets)
	provider := session.NewFileProvider(configuration.Identity)

	return newPickManager(db, remote, provider), nil
}

// newPickManager wires explicit collaborators. Tests use it to
// substitute fakes for the remote client and the identity provider.
func newPickManager(db database.IDataSource, remote RemoteLedger, provider session.Provider) *PickManager {
	return &PickManager{
		datasource: db,
		remote:     remote,
		provider:   provider,
		state:      StateIdle,
		logCounter: 1,
	}
}

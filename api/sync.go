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
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brian-nguyen/pickmanager/internal/apierror"
)

// InitializeSync runs a full pull cycle against the remote sheet.
func (a Api) InitializeSync(c *gin.Context) {
	if err := a.manager.Initialize(c.Request.Context()); err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state": a.manager.State(),
		"range": a.manager.ResolvedRange(),
	})
}

// PushAll rebuilds the table from the store and overwrites the remote
// range.
func (a Api) PushAll(c *gin.Context) {
	if err := a.manager.PushAll(c.Request.Context()); err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": a.manager.State()})
}

// SyncStatus reports the coordinator state and remote staleness.
func (a Api) SyncStatus(c *gin.Context) {
	status := gin.H{
		"state": a.manager.State(),
		"range": a.manager.ResolvedRange(),
		"stale": a.manager.LastSyncError() != nil,
	}
	if err := a.manager.LastSyncError(); err != nil {
		status["last_sync_error"] = err.Error()
	}
	c.JSON(http.StatusOK, status)
}

func (a Api) SignOut(c *gin.Context) {
	a.manager.SignOut()
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

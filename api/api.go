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
	"github.com/gin-gonic/gin"

	"github.com/brian-nguyen/pickmanager"
	"github.com/brian-nguyen/pickmanager/api/middleware"
	"github.com/brian-nguyen/pickmanager/config"
)

type Api struct {
	manager *pickmanager.PickManager
	router  *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/sync", a.InitializeSync)
	router.POST("/push", a.PushAll)
	router.GET("/sync/status", a.SyncStatus)
	router.POST("/sign-out", a.SignOut)

	router.POST("/accounts", a.CreateAccount)
	router.GET("/accounts", a.GetAllAccounts)
	router.GET("/accounts/:name", a.GetAccount)
	router.DELETE("/accounts/:name", a.DeleteAccount)
	router.POST("/accounts/:name/deposits", a.RecordDeposit)
	router.PUT("/accounts/:name/balance", a.RecordBalance)
	router.POST("/accounts/:name/reset", a.ResetAccount)

	router.DELETE("/accounts", a.Wipe)

	return a.router
}

func NewAPI(m *pickmanager.PickManager) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{manager: m, router: r}
}

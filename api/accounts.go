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

	model2 "github.com/brian-nguyen/pickmanager/api/model"
	"github.com/brian-nguyen/pickmanager/internal/apierror"
)

func (a Api) CreateAccount(c *gin.Context) {
	var newAccount model2.CreateAccount
	if err := c.ShouldBindJSON(&newAccount); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := newAccount.ValidateCreateAccount(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	account, err := a.manager.RegisterAccount(c.Request.Context(), newAccount.Name)
	if err != nil && account == nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		// The account exists locally; the remote copy is stale.
		c.JSON(http.StatusCreated, gin.H{"account": account, "sync_error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (a Api) GetAccount(c *gin.Context) {
	name := c.Param("name")

	account, err := a.manager.GetAccount(name)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, account)
}

func (a Api) GetAllAccounts(c *gin.Context) {
	accounts, err := a.manager.GetAccounts()
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (a Api) RecordDeposit(c *gin.Context) {
	name := c.Param("name")

	var body model2.RecordDeposit
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := body.ValidateRecordDeposit(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	deposit, err := a.manager.RecordDeposit(c.Request.Context(), name, body.Amount)
	if err != nil && deposit == nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusCreated, gin.H{"deposit": deposit, "sync_error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, deposit)
}

func (a Api) RecordBalance(c *gin.Context) {
	name := c.Param("name")

	var body model2.RecordBalance
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := body.ValidateRecordBalance(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	balance, err := a.manager.RecordBalance(c.Request.Context(), name, body.Amount)
	if err != nil && balance == nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"balance": balance, "sync_error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (a Api) ResetAccount(c *gin.Context) {
	name := c.Param("name")

	if err := a.manager.ResetAccount(c.Request.Context(), name); err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account reset successfully"})
}

func (a Api) DeleteAccount(c *gin.Context) {
	name := c.Param("name")

	if err := a.manager.DeleteAccount(c.Request.Context(), name); err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

func (a Api) Wipe(c *gin.Context) {
	if err := a.manager.Wipe(c.Request.Context()); err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All accounts deleted"})
}

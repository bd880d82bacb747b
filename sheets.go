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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/brian-nguyen/pickmanager/config"
	"github.com/brian-nguyen/pickmanager/internal/apierror"
	"github.com/brian-nguyen/pickmanager/internal/request"
	"github.com/brian-nguyen/pickmanager/model"
)

// RemoteLedger is the read/write surface of the remote range-addressed
// store. The coordinator depends on this interface so tests can
// substitute a fake for the live sheets API.
type RemoteLedger interface {
	FetchRange(ctx context.Context, rng, token string) (model.Grid, error)
	WriteRange(ctx context.Context, rng string, grid model.Grid, token string) error
	FindOwnerRow(ctx context.Context, directoryRange, userName, userEmail, token string) (string, error)
}

// SheetsClient speaks the spreadsheet values API: ranges addressed by
// A1 notation, cells exchanged as strings, bearer-token auth. It holds
// no retry policy; callers decide retry.
type SheetsClient struct {
	baseURL       string
	spreadsheetID string
	client        *http.Client
}

func NewSheetsClient(conf config.SheetsConfig) *SheetsClient {
	return &SheetsClient{
		baseURL:       conf.BaseUrl,
		spreadsheetID: conf.SpreadsheetId,
		client: &http.Client{
			Timeout: time.Duration(conf.TimeoutSec) * time.Second,
		},
	}
}

func (s *SheetsClient) valuesURL(rng string) string {
	return fmt.Sprintf("%s/%s/values/%s", s.baseURL, s.spreadsheetID, url.PathEscape(rng))
}

// FetchRange issues an authenticated read of a range and decodes the
// grid payload.
func (s *SheetsClient) FetchRange(ctx context.Context, rng, token string) (model.Grid, error) {
	if token == "" {
		return nil, apierror.NewAPIError(apierror.ErrUnauthorized, "access token is empty", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.valuesURL(rng), nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrTransport, "failed to build fetch request", err)
	}
	req.Header.Set("Authorization", request.BearerAuth(token))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrTransport, fmt.Sprintf("fetch of range %s failed", rng), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(resp.StatusCode, rng); err != nil {
		return nil, err
	}

	var payload struct {
		Values model.Grid `json:"values"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrDecode, fmt.Sprintf("malformed grid payload for range %s", rng), err)
	}

	return payload.Values, nil
}

// WriteRange overwrites the target range with the full grid contents.
func (s *SheetsClient) WriteRange(ctx context.Context, rng string, grid model.Grid, token string) error {
	if token == "" {
		return apierror.NewAPIError(apierror.ErrUnauthorized, "access token is empty", nil)
	}

	payload := map[string]interface{}{
		"range":          rng,
		"majorDimension": "ROWS",
		"values":         grid,
	}
	body, err := request.ToJsonReq(payload)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrDecode, "failed to encode grid payload", err)
	}

	writeURL := s.valuesURL(rng) + "?valueInputOption=RAW"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, writeURL, body)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrTransport, "failed to build write request", err)
	}
	req.Header.Set("Authorization", request.BearerAuth(token))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrTransport, fmt.Sprintf("write of range %s failed", rng), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(resp.StatusCode, rng); err != nil {
		return err
	}

	var response map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return apierror.NewAPIError(apierror.ErrDecode, fmt.Sprintf("malformed write response for range %s", rng), err)
	}

	return nil
}

// FindOwnerRow fetches the directory range and scans for the first row
// whose first two cells equal the caller's name and email; the third
// cell is that identity's data range. This is how one shared sheet is
// partitioned into per-identity sub-ranges.
func (s *SheetsClient) FindOwnerRow(ctx context.Context, directoryRange, userName, userEmail, token string) (string, error) {
	grid, err := s.FetchRange(ctx, directoryRange, token)
	if err != nil {
		return "", err
	}

	for _, row := range grid {
		if len(row) < 3 {
			continue
		}
		if row[0] == userName && row[1] == userEmail {
			return row[2], nil
		}
	}

	return "", apierror.NewAPIError(apierror.ErrNotFound,
		fmt.Sprintf("no owner row for %s <%s> in %s", userName, userEmail, directoryRange), nil)
}

func statusError(status int, rng string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apierror.NewAPIError(apierror.ErrUnauthorized, "access token rejected", nil)
	case status == http.StatusNotFound:
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("range %s not found", rng), nil)
	case status < 200 || status > 299:
		return apierror.NewAPIError(apierror.ErrTransport, fmt.Sprintf("remote returned status %d for range %s", status, rng), nil)
	}
	return nil
}

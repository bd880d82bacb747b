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
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/brian-nguyen/pickmanager/config"
	"github.com/brian-nguyen/pickmanager/internal/apierror"
	"github.com/brian-nguyen/pickmanager/model"
)

func newTestSheetsClient(t *testing.T) *SheetsClient {
	t.Helper()
	client := NewSheetsClient(config.SheetsConfig{
		BaseUrl:       "https://sheets.test/v4/spreadsheets",
		SpreadsheetId: "sheet-1",
		TimeoutSec:    5,
	})
	httpmock.ActivateNonDefault(client.client)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func TestFetchRange(t *testing.T) {
	client := newTestSheetsClient(t)

	httpmock.RegisterResponder(http.MethodGet, client.valuesURL("Sheet1!B2:E10"),
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer tok-1", req.Header.Get("Authorization"))
			return httpmock.NewJsonResponse(http.StatusOK, map[string]interface{}{
				"range":          "Sheet1!B2:E10",
				"majorDimension": "ROWS",
				"values": [][]string{
					{"Alice", "150.00", "75.00", "B2"},
					{"Bob", "20.00", "0.00", "B3"},
				},
			})
		})

	grid, err := client.FetchRange(context.Background(), "Sheet1!B2:E10", "tok-1")
	assert.NoError(t, err)
	assert.Equal(t, model.Grid{
		{"Alice", "150.00", "75.00", "B2"},
		{"Bob", "20.00", "0.00", "B3"},
	}, grid)
}

func TestFetchRange_EmptyToken(t *testing.T) {
	client := newTestSheetsClient(t)

	_, err := client.FetchRange(context.Background(), "Sheet1!B2:E10", "")
	assert.True(t, apierror.Is(err, apierror.ErrUnauthorized))
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestFetchRange_TokenRejected(t *testing.T) {
	client := newTestSheetsClient(t)

	httpmock.RegisterResponder(http.MethodGet, client.valuesURL("Sheet1!B2:E10"),
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"error":{"code":401}}`))

	_, err := client.FetchRange(context.Background(), "Sheet1!B2:E10", "expired")
	assert.True(t, apierror.Is(err, apierror.ErrUnauthorized))
}

func TestFetchRange_NotFound(t *testing.T) {
	client := newTestSheetsClient(t)

	httpmock.RegisterResponder(http.MethodGet, client.valuesURL("Nope!A1:A2"),
		httpmock.NewStringResponder(http.StatusNotFound, `{"error":{"code":404}}`))

	_, err := client.FetchRange(context.Background(), "Nope!A1:A2", "tok-1")
	assert.True(t, apierror.Is(err, apierror.ErrNotFound))
}

func TestFetchRange_ServerError(t *testing.T) {
	client := newTestSheetsClient(t)

	httpmock.RegisterResponder(http.MethodGet, client.valuesURL("Sheet1!B2:E10"),
		httpmock.NewStringResponder(http.StatusBadGateway, "upstream down"))

	_, err := client.FetchRange(context.Background(), "Sheet1!B2:E10", "tok-1")
	assert.True(t, apierror.Is(err, apierror.ErrTransport))
}

func TestFetchRange_MalformedPayload(t *testing.T) {
	client := newTestSheetsClient(t)

	httpmock.RegisterResponder(http.MethodGet, client.valuesURL("Sheet1!B2:E10"),
		httpmock.NewStringResponder(http.StatusOK, "<html>not json</html>"))

	_, err := client.FetchRange(context.Background(), "Sheet1!B2:E10", "tok-1")
	assert.True(t, apierror.Is(err, apierror.ErrDecode))
}

func TestWriteRange(t *testing.T) {
	client := newTestSheetsClient(t)

	httpmock.RegisterResponder(http.MethodPut, client.valuesURL("Sheet1!B2:E10"),
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "RAW", req.URL.Query().Get("valueInputOption"))
			assert.Equal(t, "Bearer tok-1", req.Header.Get("Authorization"))

			var payload struct {
				Range          string     `json:"range"`
				MajorDimension string     `json:"majorDimension"`
				Values         model.Grid `json:"values"`
			}
			assert.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
			assert.Equal(t, "Sheet1!B2:E10", payload.Range)
			assert.Equal(t, "ROWS", payload.MajorDimension)
			assert.Equal(t, model.Grid{{"Alice", "150.00", "75.00"}}, payload.Values)

			return httpmock.NewJsonResponse(http.StatusOK, map[string]interface{}{"updatedCells": 3})
		})

	err := client.WriteRange(context.Background(), "Sheet1!B2:E10",
		model.Grid{{"Alice", "150.00", "75.00"}}, "tok-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestWriteRange_EmptyToken(t *testing.T) {
	client := newTestSheetsClient(t)

	err := client.WriteRange(context.Background(), "Sheet1!B2:E10", model.Grid{}, "")
	assert.True(t, apierror.Is(err, apierror.ErrUnauthorized))
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestFindOwnerRow(t *testing.T) {
	client := newTestSheetsClient(t)

	httpmock.RegisterResponder(http.MethodGet, client.valuesURL("Manager!A1:C100"),
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]interface{}{
			"values": [][]string{
				{"Bob", "bob@x.com", "Sheet1!B2:E10"},
				{"Alice", "alice@x.com", "Sheet1!B20:E30"},
				{"orphan row"},
			},
		}))

	rng, err := client.FindOwnerRow(context.Background(), "Manager!A1:C100", "Alice", "alice@x.com", "tok-1")
	assert.NoError(t, err)
	assert.Equal(t, "Sheet1!B20:E30", rng)
}

func TestFindOwnerRow_EmailMismatch(t *testing.T) {
	client := newTestSheetsClient(t)

	httpmock.RegisterResponder(http.MethodGet, client.valuesURL("Manager!A1:C100"),
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]interface{}{
			"values": [][]string{
				{"Alice", "alice@x.com", "Sheet1!B20:E30"},
			},
		}))

	_, err := client.FindOwnerRow(context.Background(), "Manager!A1:C100", "Alice", "other@x.com", "tok-1")
	assert.True(t, apierror.Is(err, apierror.ErrNotFound))
}

func TestFindOwnerRow_EmptyDirectory(t *testing.T) {
	client := newTestSheetsClient(t)

	httpmock.RegisterResponder(http.MethodGet, client.valuesURL("Manager!A1:C100"),
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]interface{}{}))

	_, err := client.FindOwnerRow(context.Background(), "Manager!A1:C100", "Alice", "alice@x.com", "tok-1")
	assert.True(t, apierror.Is(err, apierror.ErrNotFound))
}

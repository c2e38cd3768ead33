package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// doGet sends a GET request to path.
func doGet(t *testing.T, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, env.baseURL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")

	resp, err := env.httpClient.Do(req)
	require.NoError(t, err)
	t.Logf("GET %s -> %d", path, resp.StatusCode)
	return resp
}

// doPost sends body as JSON.
func doPost(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, env.baseURL+path, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := env.httpClient.Do(req)
	require.NoError(t, err)
	t.Logf("POST %s -> %d", path, resp.StatusCode)
	return resp
}

// decodeJSON checks the status and decodes the body into out.
func decodeJSON(t *testing.T, resp *http.Response, wantStatus int, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, "body: %s", body)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), "body: %s", body)
	}
}

// readBody returns the raw body.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

//Personal.AI order the ending

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func doRequest(t testing.TB, app *TestApp, method, path, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	app.App.Routes().ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res.StatusCode, raw
}

func compareResponse(t testing.TB, body []byte, expectedResponse string) {
	t.Helper()

	var actual any
	require.NoError(t, json.Unmarshal(body, &actual))

	var expected any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// request ids and timestamps differ on every call
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		return k == "timestamp" || k == "requestId"
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func executeSQLFile(t testing.TB, db *pgxpool.Pool, path string) {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = db.Exec(context.Background(), string(content))
	require.NoError(t, err, "executing %s", path)
}

func queryEarnings(t testing.TB, db *pgxpool.Pool, query string, id int) *string {
	t.Helper()

	var earnings *string
	err := db.QueryRow(context.Background(), query, id).Scan(&earnings)
	require.NoError(t, err)

	return earnings
}

func decodeScreeningIDs(raw []byte) ([]int, error) {
	var body struct {
		Screenings []struct {
			Id int `json:"id"`
		} `json:"screenings"`
	}

	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}

	ids := make([]int, len(body.Screenings))
	for i, s := range body.Screenings {
		ids[i] = s.Id
	}

	return ids, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func ptr[T any](v T) *T {
	return &v
}

package collections_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersync/ledgersync/internal/collections"
	"github.com/ledgersync/ledgersync/internal/transport"
	"github.com/ledgersync/ledgersync/pkg/books"
	"github.com/ledgersync/ledgersync/pkg/errors"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	body   map[string]any
}

func newServer(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &body)
		}
		requests = append(requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			body:   body,
		})
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func lineCollection(serverURL string) *collections.REST[books.LineItem] {
	client := transport.New(serverURL, "key", time.Second)
	return collections.NewREST[books.LineItem](client, "invoice_lines", "document_id")
}

func TestRESTList(t *testing.T) {
	server, requests := newServer(t, http.StatusOK,
		`{"data":[{"id":"l-1","name":"consulting","amount":"10"},{"id":"l-2","name":"hosting","amount":"20"}]}`)

	coll := lineCollection(server.URL)
	lines, err := coll.List(context.Background(), "inv-1")
	require.NoError(t, err)

	require.Len(t, lines, 2)
	assert.Equal(t, "l-1", lines[0].ID)
	assert.True(t, lines[1].Amount.Equal(decimal.NewFromInt(20)))

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "/v1/invoice_lines", req.path)
	assert.Equal(t, "document_id=inv-1", req.query)
}

func TestRESTCreateStripsClientID(t *testing.T) {
	server, requests := newServer(t, http.StatusCreated,
		`{"data":{"id":"l-9","document_id":"inv-1","name":"support","amount":"30"}}`)

	coll := lineCollection(server.URL)
	created, err := coll.Create(context.Background(), "inv-1", books.LineItem{
		ID:     "stale-id",
		Name:   "support",
		Amount: decimal.NewFromInt(30),
	})
	require.NoError(t, err)
	assert.Equal(t, "l-9", created.ID)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/v1/invoice_lines", req.path)
	assert.NotContains(t, req.body, "id")
	assert.Equal(t, "inv-1", req.body["document_id"])
	assert.Equal(t, "support", req.body["name"])
}

func TestRESTUpdate(t *testing.T) {
	server, requests := newServer(t, http.StatusOK, `{"data":{}}`)

	coll := lineCollection(server.URL)
	err := coll.Update(context.Background(), "l-1", books.LineItem{
		ID:     "l-1",
		Name:   "consulting",
		Amount: decimal.NewFromInt(15),
	})
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPatch, req.method)
	assert.Equal(t, "/v1/invoice_lines/l-1", req.path)
	assert.NotContains(t, req.body, "id")
}

func TestRESTDelete(t *testing.T) {
	server, requests := newServer(t, http.StatusNoContent, "")

	coll := lineCollection(server.URL)
	require.NoError(t, coll.Delete(context.Background(), "l-2"))

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodDelete, req.method)
	assert.Equal(t, "/v1/invoice_lines/l-2", req.path)
}

func TestRESTNotFoundMapping(t *testing.T) {
	server, _ := newServer(t, http.StatusNotFound, `{"error":"no such line"}`)

	coll := lineCollection(server.URL)
	err := coll.Update(context.Background(), "ghost", books.LineItem{ID: "ghost", Name: "x"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestRESTJournalLines(t *testing.T) {
	server, requests := newServer(t, http.StatusOK, `{"data":[]}`)

	client := transport.New(server.URL, "", time.Second)
	coll := collections.NewREST[books.JournalLine](client, "journal_lines", "entry_id")
	assert.Equal(t, "journal_lines", coll.Name())

	_, err := coll.List(context.Background(), "je-1")
	require.NoError(t, err)
	assert.Equal(t, "entry_id=je-1", (*requests)[0].query)
}

package postal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
	"github.com/agilizaapp/web-menu-sub000/internal/postal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViaCEPLookup(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"cep":"79600-000","logradouro":"Rua das Flores","bairro":"Centro","localidade":"Três Lagoas","uf":"MS"}`))
	}))
	defer srv.Close()

	dir := postal.NewViaCEPDirectory(srv.URL, nil)

	entry, err := dir.Lookup(context.Background(), "79600-000")
	require.NoError(t, err)

	assert.Equal(t, "/ws/79600000/json/", gotPath, "code must be normalized to digits")
	assert.Equal(t, "Rua das Flores", entry.Street)
	assert.Equal(t, "Centro", entry.Neighborhood)
	assert.Equal(t, "Três Lagoas", entry.City)
	assert.Equal(t, "MS", entry.State)
}

func TestViaCEPLookupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"erro": true}`))
	}))
	defer srv.Close()

	dir := postal.NewViaCEPDirectory(srv.URL, nil)

	_, err := dir.Lookup(context.Background(), "99999999")
	assert.ErrorIs(t, err, postal.ErrNotFound)
}

func TestViaCEPLookupInvalidCode(t *testing.T) {
	dir := postal.NewViaCEPDirectory("http://localhost:0", nil)

	_, err := dir.Lookup(context.Background(), "1234")
	assert.ErrorIs(t, err, postal.ErrInvalidCode)

	_, err = dir.Lookup(context.Background(), "abcdefgh")
	assert.ErrorIs(t, err, postal.ErrInvalidCode)
}

func TestEntryFillOnlyEmptyFields(t *testing.T) {
	entry := &postal.Entry{Street: "Rua das Flores", Neighborhood: "Centro"}

	addr := &domain.Address{Street: "Rua Digitada Pelo Cliente"}
	entry.Fill(addr)

	// User-entered street must survive; empty neighborhood gets filled.
	assert.Equal(t, "Rua Digitada Pelo Cliente", addr.Street)
	assert.Equal(t, "Centro", addr.Neighborhood)

	entry.Fill(nil) // must not panic
}

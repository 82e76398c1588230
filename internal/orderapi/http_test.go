package orderapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agilizaapp/web-menu-sub000/internal/orderapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientCustomerByPhone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/restaurants/rest-1/customers", r.URL.Path)
		assert.Equal(t, "5567999999999", r.URL.Query().Get("phone"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Maria","phone":"5567999999999","address":{"street":"Rua A","number":"1*","neighborhood":"Centro","postal_code":"79600000","distance_meters":3200}}`))
	}))
	defer srv.Close()

	client, err := orderapi.NewHTTPClient(srv.URL, "rest-1", nil)
	require.NoError(t, err)

	customer, err := client.CustomerByPhone(context.Background(), "5567999999999")
	require.NoError(t, err)

	assert.Equal(t, "Maria", customer.Name)
	require.NotNil(t, customer.Address)
	require.NotNil(t, customer.Address.DistanceMeters)
	assert.Equal(t, 3200, *customer.Address.DistanceMeters)
}

func TestHTTPClientCustomerNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := orderapi.NewHTTPClient(srv.URL, "rest-1", nil)
	require.NoError(t, err)

	_, err = client.CustomerByPhone(context.Background(), "5567000000000")
	assert.ErrorIs(t, err, orderapi.ErrCustomerNotFound)
}

func TestHTTPClientCreateOrder(t *testing.T) {
	var gotBody []byte
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"order_id":42,"token":"refreshed","pix":{"copy_and_paste":"00020126pix..."}}`))
	}))
	defer srv.Close()

	client, err := orderapi.NewHTTPClient(srv.URL, "rest-1", nil)
	require.NoError(t, err)

	payload := orderapi.OrderPayload{
		Customer: orderapi.PayloadCustomer{Phone: "5567999999999", Name: "Maria"},
		Order: orderapi.PayloadOrder{
			Items: []orderapi.PayloadItem{
				{ProductID: 1, Quantity: 2},
				{ProductID: 3, Quantity: 1, Modifiers: []orderapi.PayloadModifier{{ModifierID: 7, OptionID: 70}}},
			},
			PaymentMethod: "pix",
			Delivery:      true,
		},
	}

	result, err := client.CreateOrder(context.Background(), payload, "old-token")
	require.NoError(t, err)

	assert.Equal(t, int64(42), result.OrderID)
	assert.Equal(t, "refreshed", result.Token)
	require.NotNil(t, result.Pix)
	assert.Equal(t, "00020126pix...", result.Pix.CopyAndPaste)
	assert.Equal(t, "Bearer old-token", gotAuth)

	// A line without selections must omit the modifiers key entirely;
	// the server treats [] and absent as different states.
	var wire map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &wire))
	items := wire["order"].(map[string]any)["items"].([]any)
	first := items[0].(map[string]any)
	_, hasModifiers := first["modifiers"]
	assert.False(t, hasModifiers)
	second := items[1].(map[string]any)
	assert.Contains(t, second, "modifiers")
}

func TestHTTPClientCreateOrderUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"restaurant is closed","code":"closed"}`))
	}))
	defer srv.Close()

	client, err := orderapi.NewHTTPClient(srv.URL, "rest-1", nil)
	require.NoError(t, err)

	_, err = client.CreateOrder(context.Background(), orderapi.OrderPayload{}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "restaurant is closed")
}

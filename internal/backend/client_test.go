package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"astrobooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	calls []string
}

func (r *recordingObserver) ObserveBackendCall(op, status string, _ float64) {
	r.calls = append(r.calls, op+":"+status)
}

func TestCreateOrder_SendsAmountAndBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/create-order", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(2999), body["amount"])
		assert.Equal(t, "INR", body["currency"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"order_9","amount":299900,"currency":"INR","status":"created"}`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := NewClient(srv.URL+"/", time.Second, nil).WithObserver(obs)

	order, err := c.CreateOrder(context.Background(), domain.Session{Token: "tok-1"}, 2999, "INR")
	require.NoError(t, err)
	assert.Equal(t, "order_9", order.ID)
	assert.Equal(t, int64(299900), order.AmountMinorUnits)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, []string{"create_order:ok"}, obs.calls)
}

func TestCreateOrder_DetailFromErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, nil).CreateOrder(context.Background(), domain.Session{Token: "x"}, 2999, "INR")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	msg, ok := UserMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Could not validate credentials", msg)
}

func TestCreateOrder_GenericMessageWithoutDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, nil).CreateOrder(context.Background(), domain.Session{Token: "x"}, 2999, "INR")
	msg, ok := UserMessage(err)
	assert.True(t, ok)
	assert.Equal(t, GenericErrorMessage, msg)
}

func TestCreateOrder_MissingOrderID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"amount":100}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, nil).CreateOrder(context.Background(), domain.Session{Token: "x"}, 1, "INR")
	assert.Error(t, err)
}

func TestVerifyPayment_TimeoutIsUnreachable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	obs := &recordingObserver{}
	c := NewClient(srv.URL, 50*time.Millisecond, nil).WithObserver(obs)

	_, err := c.VerifyPayment(context.Background(), domain.Session{Token: "x"}, Verification{OrderID: "o", PaymentID: "p", Signature: "s"})
	require.Error(t, err)

	var unreachable *UnreachableError
	assert.True(t, errors.As(err, &unreachable))
	msg, ok := UserMessage(err)
	assert.True(t, ok)
	assert.Equal(t, UnreachableErrorMessage, msg)
	assert.Equal(t, []string{"verify_payment:unreachable"}, obs.calls)
}

func TestVerifyPayment_PostsGatewayFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/verify-payment", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "order_1", body["razorpay_order_id"])
		assert.Equal(t, "pay_1", body["razorpay_payment_id"])
		assert.Equal(t, "sig", body["razorpay_signature"])
		w.Write([]byte(`{"status":"success","message":"Payment verified successfully"}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, time.Second, nil).VerifyPayment(context.Background(), domain.Session{}, Verification{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"})
	require.NoError(t, err)
	assert.Equal(t, "Payment verified successfully", res.Message)
}

func TestUserMessage_ForeignError(t *testing.T) {
	_, ok := UserMessage(errors.New("boom"))
	assert.False(t, ok)
}

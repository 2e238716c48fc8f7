// AngelaMos | 2026
// gateway_test.go

package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfmode/selfmode-api/internal/config"
)

func TestNewGateway_DisabledWithoutCredentials(t *testing.T) {
	gateway := NewGateway(config.IyzicoConfig{})

	_, err := gateway.RetrieveCheckoutForm(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrGatewayDisabled)

	_, err = gateway.InitializeCheckoutForm(
		context.Background(),
		&CheckoutFormRequest{},
	)
	assert.ErrorIs(t, err, ErrGatewayDisabled)

	_, err = gateway.Refund(context.Background(), &RefundRequest{})
	assert.ErrorIs(t, err, ErrGatewayDisabled)
}

func TestGateway_SignsRequests(t *testing.T) {
	const (
		apiKey    = "sandbox-api-key"
		secretKey = "sandbox-secret"
	)

	var (
		gotPath string
		gotAuth string
		gotRnd  string
		gotBody []byte
	)

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			gotRnd = r.Header.Get("x-iyzi-rnd")
			gotBody, _ = io.ReadAll(r.Body)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(
				`{"status":"success","paymentStatus":"SUCCESS","paymentId":"pay-1","buyerId":"user-1"}`,
			))
		},
	))
	defer server.Close()

	gateway := NewGateway(config.IyzicoConfig{
		APIKey:    apiKey,
		SecretKey: secretKey,
		BaseURL:   server.URL,
		Timeout:   5 * time.Second,
	})

	result, err := gateway.RetrieveCheckoutForm(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, result.Paid())
	assert.Equal(t, "user-1", result.BuyerID)

	assert.Equal(t, pathCheckoutFormRetrieve, gotPath)
	assert.JSONEq(t, `{"token":"tok-1"}`, string(gotBody))
	require.NotEmpty(t, gotRnd)

	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(gotRnd + gotPath))
	mac.Write(gotBody)
	signature := hex.EncodeToString(mac.Sum(nil))

	want := "IYZWSv2 " + base64.StdEncoding.EncodeToString([]byte(
		"apiKey:"+apiKey+"&randomKey:"+gotRnd+"&signature:"+signature,
	))
	assert.Equal(t, want, gotAuth)
}

func TestGateway_DecodesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(
				`{"status":"failure","errorMessage":"Geçersiz imza"}`,
			))
		},
	))
	defer server.Close()

	gateway := NewGateway(config.IyzicoConfig{
		APIKey:    "k",
		SecretKey: "s",
		BaseURL:   server.URL,
		Timeout:   5 * time.Second,
	})

	result, err := gateway.InitializeCheckoutForm(
		context.Background(),
		&CheckoutFormRequest{Locale: "tr"},
	)
	require.NoError(t, err)
	assert.False(t, result.Successful())
	assert.Equal(t, "Geçersiz imza", result.ErrorMessage)
}

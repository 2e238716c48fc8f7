// AngelaMos | 2026
// gateway.go

package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/selfmode/selfmode-api/internal/config"
)

var ErrGatewayDisabled = errors.New("payment gateway not configured")

const (
	pathCheckoutFormInit     = "/payment/iyzipos/checkoutform/initialize/auth/ecom"
	pathCheckoutFormRetrieve = "/payment/iyzipos/checkoutform/auth/ecom/detail"
	pathRefund               = "/payment/refund"

	statusSuccess        = "success"
	paymentStatusSuccess = "SUCCESS"
)

type Buyer struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Surname             string `json:"surname"`
	GSMNumber           string `json:"gsmNumber"`
	Email               string `json:"email"`
	IdentityNumber      string `json:"identityNumber"`
	LastLoginDate       string `json:"lastLoginDate"`
	RegistrationDate    string `json:"registrationDate"`
	RegistrationAddress string `json:"registrationAddress"`
	IP                  string `json:"ip"`
	City                string `json:"city"`
	Country             string `json:"country"`
	ZipCode             string `json:"zipCode"`
}

type Address struct {
	ContactName string `json:"contactName"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Address     string `json:"address"`
	ZipCode     string `json:"zipCode"`
}

type BasketItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category1 string `json:"category1"`
	Category2 string `json:"category2,omitempty"`
	ItemType  string `json:"itemType"`
	Price     string `json:"price"`
}

type CheckoutFormRequest struct {
	Locale              string       `json:"locale"`
	ConversationID      string       `json:"conversationId"`
	Price               string       `json:"price"`
	PaidPrice           string       `json:"paidPrice"`
	Currency            string       `json:"currency"`
	BasketID            string       `json:"basketId"`
	PaymentGroup        string       `json:"paymentGroup"`
	CallbackURL         string       `json:"callbackUrl"`
	EnabledInstallments []int        `json:"enabledInstallments"`
	Buyer               Buyer        `json:"buyer"`
	ShippingAddress     Address      `json:"shippingAddress"`
	BillingAddress      Address      `json:"billingAddress"`
	BasketItems         []BasketItem `json:"basketItems"`
}

type CheckoutFormResult struct {
	Status              string `json:"status"`
	ErrorMessage        string `json:"errorMessage"`
	Token               string `json:"token"`
	CheckoutFormContent string `json:"checkoutFormContent"`
	ConversationID      string `json:"conversationId"`
}

func (r *CheckoutFormResult) Successful() bool {
	return r.Status == statusSuccess
}

type CheckoutResult struct {
	Status         string `json:"status"`
	ErrorMessage   string `json:"errorMessage"`
	PaymentStatus  string `json:"paymentStatus"`
	PaymentID      string `json:"paymentId"`
	ConversationID string `json:"conversationId"`
	BasketID       string `json:"basketId"`
	BuyerID        string `json:"buyerId"`
	Price          string `json:"price"`
	PaidPrice      string `json:"paidPrice"`
}

// Paid reports a verified, settled payment. Both the API call and the
// payment itself must have succeeded.
func (r *CheckoutResult) Paid() bool {
	return r.Status == statusSuccess && r.PaymentStatus == paymentStatusSuccess
}

type RefundRequest struct {
	Locale               string `json:"locale"`
	ConversationID       string `json:"conversationId"`
	PaymentTransactionID string `json:"paymentTransactionId"`
	Price                string `json:"price"`
	Currency             string `json:"currency"`
	IP                   string `json:"ip"`
	Reason               string `json:"reason"`
	Description          string `json:"description"`
}

type RefundResult struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
	PaymentID    string `json:"paymentId"`
	Price        string `json:"price"`
}

func (r *RefundResult) Successful() bool {
	return r.Status == statusSuccess
}

type Gateway interface {
	InitializeCheckoutForm(
		ctx context.Context,
		req *CheckoutFormRequest,
	) (*CheckoutFormResult, error)
	RetrieveCheckoutForm(
		ctx context.Context,
		token string,
	) (*CheckoutResult, error)
	Refund(ctx context.Context, req *RefundRequest) (*RefundResult, error)
}

// iyzicoGateway speaks the iyzico REST API with IYZWSv2 request
// signing. No maintained Go SDK exists, so the wire format is
// implemented directly.
type iyzicoGateway struct {
	apiKey    string
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewGateway(cfg config.IyzicoConfig) Gateway {
	if !cfg.Configured() {
		return disabledGateway{}
	}

	return &iyzicoGateway{
		apiKey:    cfg.APIKey,
		secretKey: cfg.SecretKey,
		baseURL:   cfg.BaseURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (g *iyzicoGateway) InitializeCheckoutForm(
	ctx context.Context,
	req *CheckoutFormRequest,
) (*CheckoutFormResult, error) {
	var result CheckoutFormResult
	if err := g.post(ctx, pathCheckoutFormInit, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *iyzicoGateway) RetrieveCheckoutForm(
	ctx context.Context,
	token string,
) (*CheckoutResult, error) {
	req := map[string]string{"token": token}

	var result CheckoutResult
	if err := g.post(ctx, pathCheckoutFormRetrieve, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *iyzicoGateway) Refund(
	ctx context.Context,
	req *RefundRequest,
) (*RefundResult, error) {
	var result RefundResult
	if err := g.post(ctx, pathRefund, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *iyzicoGateway) post(
	ctx context.Context,
	path string,
	payload, out any,
) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal gateway request: %w", err)
	}

	randomKey := strconv.FormatInt(time.Now().UnixMilli(), 10) +
		uuid.New().String()[:8]

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		g.baseURL+path,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", g.authHeader(randomKey, path, body))
	httpReq.Header.Set("x-iyzi-rnd", randomKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read gateway response: %w", err)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf(
			"decode gateway response (http %d): %w",
			resp.StatusCode,
			err,
		)
	}

	return nil
}

// authHeader builds the IYZWSv2 signature: HMAC-SHA256 of
// randomKey + path + body keyed with the secret, wrapped in base64.
func (g *iyzicoGateway) authHeader(
	randomKey, path string,
	body []byte,
) string {
	mac := hmac.New(sha256.New, []byte(g.secretKey))
	mac.Write([]byte(randomKey + path))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	params := "apiKey:" + g.apiKey +
		"&randomKey:" + randomKey +
		"&signature:" + signature

	return "IYZWSv2 " + base64.StdEncoding.EncodeToString([]byte(params))
}

// disabledGateway is installed when iyzico credentials are absent.
// Payment endpoints stay routable but refuse to operate.
type disabledGateway struct{}

func (disabledGateway) InitializeCheckoutForm(
	context.Context,
	*CheckoutFormRequest,
) (*CheckoutFormResult, error) {
	return nil, ErrGatewayDisabled
}

func (disabledGateway) RetrieveCheckoutForm(
	context.Context,
	string,
) (*CheckoutResult, error) {
	return nil, ErrGatewayDisabled
}

func (disabledGateway) Refund(
	context.Context,
	*RefundRequest,
) (*RefundResult, error) {
	return nil, ErrGatewayDisabled
}

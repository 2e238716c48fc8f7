// AngelaMos | 2026
// service.go

package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/selfmode/selfmode-api/internal/assessment"
	"github.com/selfmode/selfmode-api/internal/catalog"
	"github.com/selfmode/selfmode-api/internal/config"
	"github.com/selfmode/selfmode-api/internal/core"
	"github.com/selfmode/selfmode-api/internal/user"
)

var (
	ErrPaymentFailed  = errors.New("payment was not completed")
	ErrNotRefundable  = errors.New("payment must be completed to request refund")
	ErrTokenProcessed = errors.New("callback token already processed")
)

// Defaults sent to the gateway when the profile has no value. The
// checkout form requires every buyer field to be non-empty.
const (
	defaultPhone   = "+905000000000"
	defaultCity    = "Istanbul"
	defaultCountry = "Turkey"
	defaultZipCode = "34000"
	defaultAddress = "Turkey"

	callbackTokenTTL = 24 * time.Hour
)

type AssessmentProvider interface {
	Create(
		ctx context.Context,
		userID, packageID string,
	) (*assessment.Assessment, error)
	GetForUser(
		ctx context.Context,
		id, userID string,
	) (*assessment.Assessment, error)
	SettlePayment(ctx context.Context, userID string) (string, error)
	FailPayment(ctx context.Context, userID string) (string, error)
	RefundAssessment(ctx context.Context, assessmentID string) error
}

type UserProvider interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

type PackageProvider interface {
	GetPackage(ctx context.Context, id string) (*catalog.Package, error)
}

// tokenStore claims callback tokens so replayed callbacks are rejected.
// A claim must be releasable: a token whose settlement failed has to
// stay usable for the gateway's retry.
type tokenStore interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type redisTokenStore struct {
	client *redis.Client
}

func (r redisTokenStore) Claim(
	ctx context.Context,
	key string,
	ttl time.Duration,
) (bool, error) {
	return r.client.SetNX(ctx, key, "1", ttl).Result()
}

func (r redisTokenStore) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

type Service struct {
	gateway     Gateway
	assessments AssessmentProvider
	users       UserProvider
	packages    PackageProvider
	tokens      tokenStore
	callbackURL string
	logger      *slog.Logger
}

func NewService(
	gateway Gateway,
	assessments AssessmentProvider,
	users UserProvider,
	packages PackageProvider,
	redisClient *redis.Client,
	cfg config.IyzicoConfig,
	logger *slog.Logger,
) *Service {
	var tokens tokenStore
	if redisClient != nil {
		tokens = redisTokenStore{client: redisClient}
	}

	return &Service{
		gateway:     gateway,
		assessments: assessments,
		users:       users,
		packages:    packages,
		tokens:      tokens,
		callbackURL: cfg.CallbackURL,
		logger:      logger,
	}
}

// InitiatePayment opens an attempt and a checkout form for it. The
// attempt is created first so the bracket and one-active guards run
// before the gateway is touched; a gateway failure cancels it again.
// The amount always comes from the catalog, never from the client.
func (s *Service) InitiatePayment(
	ctx context.Context,
	userID, packageID, clientIP string,
) (*CreatePaymentResponse, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("initiate payment: %w", err)
	}

	pkg, err := s.packages.GetPackage(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("initiate payment: %w", err)
	}

	a, err := s.assessments.Create(ctx, userID, packageID)
	if err != nil {
		return nil, err
	}

	conversationID := fmt.Sprintf(
		"payment_%s_%d",
		userID,
		time.Now().UnixMilli(),
	)
	basketID := fmt.Sprintf("basket_%s_%d", userID, time.Now().UnixMilli())

	result, err := s.gateway.InitializeCheckoutForm(
		ctx,
		s.buildCheckoutRequest(u, pkg, conversationID, basketID, clientIP),
	)
	if err != nil {
		s.cancelAttempt(ctx, userID)
		if errors.Is(err, ErrGatewayDisabled) {
			return nil, err
		}
		return nil, core.ExternalServiceError("iyzico", err.Error())
	}

	if !result.Successful() {
		s.cancelAttempt(ctx, userID)
		return nil, core.ExternalServiceError("iyzico", result.ErrorMessage)
	}

	return &CreatePaymentResponse{
		AssessmentID:    a.ID,
		PaymentFormHTML: result.CheckoutFormContent,
		Token:           result.Token,
		ConversationID:  conversationID,
	}, nil
}

// HandleCallback verifies the checkout token with the gateway and
// settles the buyer's pending attempt. The token is consumed exactly
// once; replays return the already-processed error.
func (s *Service) HandleCallback(
	ctx context.Context,
	token string,
) (*CallbackResponse, error) {
	result, err := s.gateway.RetrieveCheckoutForm(ctx, token)
	if err != nil {
		if errors.Is(err, ErrGatewayDisabled) {
			return nil, err
		}
		return nil, core.ExternalServiceError("iyzico", err.Error())
	}

	if err := s.consumeToken(ctx, token); err != nil {
		return nil, err
	}

	if !result.Paid() {
		if result.BuyerID != "" {
			if _, failErr := s.assessments.FailPayment(
				ctx,
				result.BuyerID,
			); failErr != nil && !errors.Is(failErr, core.ErrNotFound) {
				s.logger.WarnContext(ctx, "failed to mark payment failed",
					slog.String("buyer_id", result.BuyerID),
					slog.String("error", failErr.Error()),
				)
			}
		}
		return nil, fmt.Errorf(
			"%w: %s",
			ErrPaymentFailed,
			result.ErrorMessage,
		)
	}

	assessmentID, err := s.assessments.SettlePayment(ctx, result.BuyerID)
	if err != nil {
		// The gateway retries the same token; a failed settlement must
		// not burn it.
		s.releaseToken(ctx, token)
		return nil, fmt.Errorf("settle payment: %w", err)
	}

	return &CallbackResponse{
		PaymentID:     result.PaymentID,
		AssessmentID:  assessmentID,
		PaymentStatus: result.PaymentStatus,
	}, nil
}

// PaymentStatus reports the settlement state of the caller's attempt.
func (s *Service) PaymentStatus(
	ctx context.Context,
	assessmentID, userID string,
) (*PaymentStatusResponse, error) {
	a, err := s.assessments.GetForUser(ctx, assessmentID, userID)
	if err != nil {
		return nil, err
	}

	return &PaymentStatusResponse{
		Assessment:    assessment.ToAssessmentResponse(a),
		Status:        a.Status,
		PaymentStatus: a.PaymentStatus,
	}, nil
}

// Refund sends the refund to the gateway, then flips the attempt to
// REFUNDED. Only the owner of a paid attempt may refund it.
func (s *Service) Refund(
	ctx context.Context,
	assessmentID, userID string,
	req RefundPaymentRequest,
) (*RefundPaymentResponse, error) {
	a, err := s.assessments.GetForUser(ctx, assessmentID, userID)
	if err != nil {
		return nil, err
	}

	if a.PaymentStatus != assessment.PaymentPaid {
		return nil, ErrNotRefundable
	}

	reason := req.Reason
	if reason == "" {
		reason = "customer_request"
	}

	result, err := s.gateway.Refund(ctx, &RefundRequest{
		Locale: "tr",
		ConversationID: "refund_" + strconv.FormatInt(
			time.Now().UnixMilli(),
			10,
		),
		PaymentTransactionID: assessmentID,
		Price:                req.Amount,
		Currency:             "TRY",
		IP:                   "127.0.0.1",
		Reason:               reason,
		Description:          "Refund requested by customer",
	})
	if err != nil {
		if errors.Is(err, ErrGatewayDisabled) {
			return nil, err
		}
		return nil, core.ExternalServiceError("iyzico", err.Error())
	}

	if !result.Successful() {
		return nil, core.ExternalServiceError("iyzico", result.ErrorMessage)
	}

	if err := s.assessments.RefundAssessment(ctx, assessmentID); err != nil {
		return nil, err
	}

	return &RefundPaymentResponse{
		RefundID: result.PaymentID,
		Amount:   result.Price,
	}, nil
}

func (s *Service) buildCheckoutRequest(
	u *user.User,
	pkg *catalog.Package,
	conversationID, basketID, clientIP string,
) *CheckoutFormRequest {
	phone := defaultPhone
	if u.Phone != nil && *u.Phone != "" {
		phone = *u.Phone
	}

	if clientIP == "" {
		clientIP = "127.0.0.1"
	}

	now := time.Now().Format(time.RFC3339)
	contactName := u.FirstName + " " + u.LastName

	return &CheckoutFormRequest{
		Locale:              "tr",
		ConversationID:      conversationID,
		Price:               pkg.PriceAmount,
		PaidPrice:           pkg.PriceAmount,
		Currency:            pkg.PriceCurrency,
		BasketID:            basketID,
		PaymentGroup:        "PRODUCT",
		CallbackURL:         s.callbackURL,
		EnabledInstallments: []int{1, 2, 3, 6, 9},
		Buyer: Buyer{
			ID:                  u.ID,
			Name:                u.FirstName,
			Surname:             u.LastName,
			GSMNumber:           phone,
			Email:               u.Email,
			IdentityNumber:      "11111111111",
			LastLoginDate:       now,
			RegistrationDate:    now,
			RegistrationAddress: defaultAddress,
			IP:                  clientIP,
			City:                defaultCity,
			Country:             defaultCountry,
			ZipCode:             defaultZipCode,
		},
		ShippingAddress: Address{
			ContactName: contactName,
			City:        defaultCity,
			Country:     defaultCountry,
			Address:     defaultAddress,
			ZipCode:     defaultZipCode,
		},
		BillingAddress: Address{
			ContactName: contactName,
			City:        defaultCity,
			Country:     defaultCountry,
			Address:     defaultAddress,
			ZipCode:     defaultZipCode,
		},
		BasketItems: []BasketItem{
			{
				ID:        pkg.ID,
				Name:      pkg.Category + " - " + pkg.Level,
				Category1: pkg.Category,
				Category2: pkg.Level,
				ItemType:  "VIRTUAL",
				Price:     pkg.PriceAmount,
			},
		},
	}
}

// consumeToken claims a callback token. A token that was already
// claimed means a replayed callback.
func (s *Service) consumeToken(ctx context.Context, token string) error {
	if s.tokens == nil {
		return nil
	}

	claimed, err := s.tokens.Claim(
		ctx,
		callbackTokenKey(token),
		callbackTokenTTL,
	)
	if err != nil {
		// Redis being down must not drop a legitimate settlement.
		s.logger.WarnContext(ctx, "callback token dedupe unavailable",
			slog.String("error", err.Error()),
		)
		return nil
	}

	if !claimed {
		return ErrTokenProcessed
	}

	return nil
}

func (s *Service) releaseToken(ctx context.Context, token string) {
	if s.tokens == nil {
		return
	}

	if err := s.tokens.Release(ctx, callbackTokenKey(token)); err != nil {
		s.logger.WarnContext(ctx, "failed to release callback token",
			slog.String("error", err.Error()),
		)
	}
}

func callbackTokenKey(token string) string {
	return "payment:token:" + core.HashToken(token)
}

func (s *Service) cancelAttempt(ctx context.Context, userID string) {
	if _, err := s.assessments.FailPayment(ctx, userID); err != nil &&
		!errors.Is(err, core.ErrNotFound) {
		s.logger.WarnContext(ctx, "failed to cancel attempt",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

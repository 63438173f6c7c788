// Package billingsvc - service tích hợp billing với Stripe.
package billingsvc

import (
	"context"
	"errors"
	"fmt"

	models "agentic_voice/internal/api/auth/models"
	"agentic_voice/internal/common"
	"agentic_voice/internal/logger"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeService bọc Stripe SDK cho các thao tác customer.
// Retry và backoff do SDK tự xử lý, service chỉ chuẩn hóa lỗi và semantics not-found.
type StripeService struct {
	sc  *client.API
	log *logrus.Logger
}

// NewStripeService tạo mới StripeService.
// Secret key rỗng là lỗi cấu hình fatal.
func NewStripeService(secretKey string) (*StripeService, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key chưa được cấu hình")
	}

	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &StripeService{
		sc:  sc,
		log: logger.GetAppLogger(),
	}, nil
}

// wrapStripeError chuyển lỗi Stripe sang lỗi chuẩn EXT_002.
// Message lỗi chi tiết của Stripe chỉ ghi log, không trả cho client.
func (s *StripeService) wrapStripeError(operation string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		s.log.WithFields(logrus.Fields{
			"operation": operation,
			"code":      stripeErr.Code,
			"status":    stripeErr.HTTPStatusCode,
		}).Error("❌ [STRIPE] API error")
		return common.NewError(
			common.ErrCodeExternalStripe,
			fmt.Sprintf("Stripe trả về lỗi (HTTP %d)", stripeErr.HTTPStatusCode),
			common.StatusBadGateway,
			nil,
		)
	}

	s.log.WithFields(logrus.Fields{
		"operation": operation,
		"error":     err.Error(),
	}).Error("❌ [STRIPE] Transport error")
	return common.NewError(
		common.ErrCodeExternalStripe,
		"Không kết nối được Stripe",
		common.StatusServiceUnavailable,
		nil,
	)
}

// isStripeMissing kiểm tra lỗi là resource không tồn tại
func isStripeMissing(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == 404
	}
	return false
}

// CreateCustomer tạo Stripe customer cho user.
// Metadata mang mongoUserId, role và industry để đối soát hai chiều.
func (s *StripeService) CreateCustomer(ctx context.Context, user *models.User) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
		Name:  stripe.String(user.Name),
	}
	params.Context = ctx
	params.AddMetadata("mongoUserId", user.ID.Hex())
	params.AddMetadata("role", user.Role)
	params.AddMetadata("industry", user.IndustryType)

	customer, err := s.sc.Customers.New(params)
	if err != nil {
		return nil, s.wrapStripeError("customer.create", err)
	}

	s.log.WithFields(logrus.Fields{
		"customer_id": customer.ID,
		"email":       user.Email,
	}).Info("✅ [STRIPE] Customer created")
	return customer, nil
}

// GetCustomer lấy customer theo id.
// Customer không tồn tại hoặc đã bị xóa trả về (nil, nil).
func (s *StripeService) GetCustomer(ctx context.Context, customerID string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	customer, err := s.sc.Customers.Get(customerID, params)
	if err != nil {
		if isStripeMissing(err) {
			return nil, nil
		}
		return nil, s.wrapStripeError("customer.get", err)
	}

	if customer.Deleted {
		return nil, nil
	}
	return customer, nil
}

// UpdateCustomer cập nhật name/email của customer
func (s *StripeService) UpdateCustomer(ctx context.Context, customerID string, name string, email string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	if name != "" {
		params.Name = stripe.String(name)
	}
	if email != "" {
		params.Email = stripe.String(email)
	}

	customer, err := s.sc.Customers.Update(customerID, params)
	if err != nil {
		return nil, s.wrapStripeError("customer.update", err)
	}
	return customer, nil
}

// ListAllCustomers duyệt toàn bộ customers (iterator của SDK tự phân trang theo has_more)
func (s *StripeService) ListAllCustomers(ctx context.Context) ([]*stripe.Customer, error) {
	params := &stripe.CustomerListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(100)

	var all []*stripe.Customer
	iter := s.sc.Customers.List(params)
	for iter.Next() {
		all = append(all, iter.Customer())
	}
	if err := iter.Err(); err != nil {
		return nil, s.wrapStripeError("customer.list", err)
	}

	return all, nil
}

// FindCustomerByEmail tìm customer theo email, (nil, nil) nếu không có
func (s *StripeService) FindCustomerByEmail(ctx context.Context, email string) (*stripe.Customer, error) {
	params := &stripe.CustomerListParams{}
	params.Context = ctx
	params.Email = stripe.String(email)
	params.Limit = stripe.Int64(1)

	iter := s.sc.Customers.List(params)
	for iter.Next() {
		return iter.Customer(), nil
	}
	if err := iter.Err(); err != nil {
		return nil, s.wrapStripeError("customer.find_by_email", err)
	}
	return nil, nil
}

// TestConnection kiểm tra secret key bằng một request list nhẹ
func (s *StripeService) TestConnection(ctx context.Context) (string, error) {
	params := &stripe.CustomerListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := s.sc.Customers.List(params)
	iter.Next()
	if err := iter.Err(); err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			if stripeErr.HTTPStatusCode == 401 {
				return "", fmt.Errorf("secret key không hợp lệ (HTTP 401)")
			}
			return "", fmt.Errorf("Stripe trả về HTTP %d", stripeErr.HTTPStatusCode)
		}
		return "", fmt.Errorf("không kết nối được Stripe: %w", err)
	}

	return "Kết nối Stripe thành công", nil
}

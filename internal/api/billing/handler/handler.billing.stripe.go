// Package billinghdl - handler cho domain billing.
package billinghdl

import (
	"fmt"

	authsvc "agentic_voice/internal/api/auth/service"
	basehdl "agentic_voice/internal/api/base/handler"
	billingdto "agentic_voice/internal/api/billing/dto"
	billingsvc "agentic_voice/internal/api/billing/service"
	"agentic_voice/internal/common"
	"agentic_voice/internal/global"
	"agentic_voice/internal/utility"

	"github.com/gofiber/fiber/v3"
)

// BillingHandler xử lý các route billing (Stripe customers)
type BillingHandler struct {
	Stripe      *billingsvc.StripeService
	UserService *authsvc.UserService
}

// NewBillingHandler tạo mới BillingHandler từ cấu hình server
func NewBillingHandler() (*BillingHandler, error) {
	if global.MongoDB_ServerConfig == nil {
		return nil, fmt.Errorf("server config chưa được khởi tạo")
	}

	stripeService, err := billingsvc.NewStripeService(global.MongoDB_ServerConfig.Stripe_SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe service: %v", err)
	}

	userService, err := authsvc.NewUserService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %v", err)
	}

	return &BillingHandler{
		Stripe:      stripeService,
		UserService: userService,
	}, nil
}

// HandleCreateCustomerForUser tạo Stripe customer cho một user trong hệ thống.
// customerId được ghi ngay vào user document sau khi tạo thành công.
// @Router /billing/customers/from-user/:userId [post]
func (h *BillingHandler) HandleCreateCustomerForUser(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		userID := utility.String2ObjectID(c.Params("userId"))
		if userID.IsZero() {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				"userId không đúng định dạng MongoDB ObjectID",
				common.StatusBadRequest,
				nil,
			))
			return nil
		}

		user, err := h.UserService.FindOneById(c.Context(), userID)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		if user.CustomerID != "" {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeBusinessOperation,
				fmt.Sprintf("User đã có Stripe customer: %s", user.CustomerID),
				common.StatusConflict,
				nil,
			))
			return nil
		}

		customer, err := h.Stripe.CreateCustomer(c.Context(), &user)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		if err := h.UserService.SetForeignID(c.Context(), user.ID, "customerId", customer.ID); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		basehdl.HandleResponse(c, customer, nil)
		return nil
	})
}

// HandleGetCustomer lấy customer theo id. Customer không tồn tại/đã xóa trả về data null.
// @Router /billing/customers/:id [get]
func (h *BillingHandler) HandleGetCustomer(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id := c.Params("id")
		if id == "" {
			basehdl.HandleResponse(c, nil, common.ErrRequiredField)
			return nil
		}

		customer, err := h.Stripe.GetCustomer(c.Context(), id)
		basehdl.HandleResponse(c, customer, err)
		return nil
	})
}

// HandleUpdateCustomer cập nhật name/email của customer
// @Router /billing/customers/:id [put]
func (h *BillingHandler) HandleUpdateCustomer(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id := c.Params("id")
		if id == "" {
			basehdl.HandleResponse(c, nil, common.ErrRequiredField)
			return nil
		}

		var input billingdto.CustomerUpdateInput
		if err := basehdl.ParseBody(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}
		if err := basehdl.ValidateStruct(&input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		customer, err := h.Stripe.UpdateCustomer(c.Context(), id, input.Name, input.Email)
		basehdl.HandleResponse(c, customer, err)
		return nil
	})
}

// HandleListAllCustomers liệt kê toàn bộ customers (duyệt hết các trang)
// @Router /billing/customers/list-all [get]
func (h *BillingHandler) HandleListAllCustomers(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		customers, err := h.Stripe.ListAllCustomers(c.Context())
		basehdl.HandleResponse(c, fiber.Map{
			"total":     len(customers),
			"customers": customers,
		}, err)
		return nil
	})
}

// HandleFindCustomerByEmail tìm customer theo email, data null nếu không có
// @Router /billing/customers/find-by-email [get]
func (h *BillingHandler) HandleFindCustomerByEmail(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		email := c.Query("email")
		if email == "" {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput,
				"Thiếu tham số 'email' trong query string",
				common.StatusBadRequest,
				nil,
			))
			return nil
		}

		customer, err := h.Stripe.FindCustomerByEmail(c.Context(), email)
		basehdl.HandleResponse(c, customer, err)
		return nil
	})
}

// HandleTestConnection kiểm tra kết nối Stripe với secret key hiện tại
// @Router /billing/test-connection [post]
func (h *BillingHandler) HandleTestConnection(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		message, err := h.Stripe.TestConnection(c.Context())
		if err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeExternalStripe,
				err.Error(),
				common.StatusBadGateway,
				nil,
			))
			return nil
		}
		basehdl.HandleResponse(c, fiber.Map{"message": message}, nil)
		return nil
	})
}

// Package billingdto - input DTO cho các route billing.
package billingdto

// CustomerUpdateInput dữ liệu cập nhật Stripe customer
type CustomerUpdateInput struct {
	Name  string `json:"name,omitempty" validate:"omitempty,no_xss"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

package authdto

// UserCreateInput đầu vào tạo người dùng (CRUD).
type UserCreateInput struct {
	Name         string `json:"name" bson:"name" validate:"required,no_xss"`
	Email        string `json:"email" bson:"email" validate:"required,email"`
	Password     string `json:"password" bson:"password" validate:"required,min=8"`
	Role         string `json:"role" bson:"role" validate:"omitempty,oneof=FREE STARTER PRO ENTERPRISE ADMIN MARKETING GOD_MODE"`
	IndustryType string `json:"industryType" bson:"industryType" validate:"omitempty,no_xss"`
}

// UserUpdateInput đầu vào cập nhật thông tin người dùng.
type UserUpdateInput struct {
	Name          string `json:"name,omitempty" bson:"name,omitempty" validate:"omitempty,no_xss"`
	Role          string `json:"role,omitempty" bson:"role,omitempty" validate:"omitempty,oneof=FREE STARTER PRO ENTERPRISE ADMIN MARKETING GOD_MODE"`
	IndustryType  string `json:"industryType,omitempty" bson:"industryType,omitempty" validate:"omitempty,no_xss"`
	AccountStatus string `json:"accountStatus,omitempty" bson:"accountStatus,omitempty" validate:"omitempty,oneof=ACTIVE SUSPENDED INACTIVE"`
}

// UserLoginInput đầu vào đăng nhập người dùng.
type UserLoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

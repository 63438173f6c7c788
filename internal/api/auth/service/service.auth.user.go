// Package authsvc - service người dùng (User).
package authsvc

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	authdto "agentic_voice/internal/api/auth/dto"
	models "agentic_voice/internal/api/auth/models"
	basesvc "agentic_voice/internal/api/base/service"
	"agentic_voice/internal/common"
	"agentic_voice/internal/global"
	"agentic_voice/internal/utility"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService là cấu trúc chứa các phương thức liên quan đến người dùng
type UserService struct {
	*basesvc.BaseServiceMongoImpl[models.User]
}

// NewUserService tạo mới UserService
func NewUserService() (*UserService, error) {
	userCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}

	return &UserService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.User](userCollection),
	}, nil
}

// hashPassword băm mật khẩu với salt
func hashPassword(salt string, password string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}

// newSalt sinh salt ngẫu nhiên cho mật khẩu
func newSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Create tạo người dùng mới từ input đăng ký.
// Email là duy nhất — trùng email trả về ErrDuplicate từ unique index.
func (s *UserService) Create(ctx context.Context, input *authdto.UserCreateInput) (*models.User, error) {
	salt, err := newSalt()
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, common.MsgInternalError, common.StatusInternalServerError, err)
	}

	role := input.Role
	if role == "" {
		role = models.RoleFree
	}

	user := models.User{
		Name:          input.Name,
		Email:         input.Email,
		Role:          role,
		IndustryType:  input.IndustryType,
		AccountStatus: models.AccountStatusActive,
		Salt:          salt,
		Password:      hashPassword(salt, input.Password),
	}

	created, err := s.BaseServiceMongoImpl.InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// FindByEmail tìm người dùng theo email.
// Trả về (nil, nil) nếu không tìm thấy — "không có" là dữ liệu, không phải lỗi.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"email": email}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UpsertByEmail tạo hoặc cập nhật người dùng theo email.
// Đây là điểm vào của sync: invariant một document cho mỗi email được đảm bảo
// bởi filter theo email kết hợp unique index.
func (s *UserService) UpsertByEmail(ctx context.Context, email string, data map[string]interface{}) (*models.User, error) {
	if email == "" {
		return nil, common.ErrRequiredField
	}

	updateData := &basesvc.UpdateData{Set: data}
	if updateData.Set == nil {
		updateData.Set = map[string]interface{}{}
	}
	updateData.Set["email"] = email

	user, err := s.BaseServiceMongoImpl.Upsert(ctx, bson.M{"email": email}, updateData)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetForeignID ghi một id ngoại (customerId, hubspotContactId, vapiAssistantId) vào user.
// Được gọi ngay khi platform call thành công để id không bị mất nếu bước sau thất bại.
func (s *UserService) SetForeignID(ctx context.Context, userID primitive.ObjectID, field string, value string) error {
	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{field: value},
	}
	_, err := s.BaseServiceMongoImpl.UpdateById(ctx, userID, updateData)
	return err
}

// Login xác thực người dùng và cấp JWT token mới.
// Token mới nhất được lưu trên user document, middleware xác thực bằng cách tra token này.
func (s *UserService) Login(ctx context.Context, input *authdto.UserLoginInput) (*models.User, error) {
	user, err := s.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrInvalidCredentials
	}

	if user.Password != hashPassword(user.Salt, input.Password) {
		logrus.WithFields(logrus.Fields{"email": input.Email}).Warn("Login: Sai mật khẩu")
		return nil, common.ErrInvalidCredentials
	}

	if user.AccountStatus != models.AccountStatusActive {
		return nil, common.NewError(
			common.ErrCodeAuthCredentials,
			"Tài khoản không ở trạng thái hoạt động",
			common.StatusForbidden,
			nil,
		)
	}

	rdNumber, err := rand.Int(rand.Reader, big.NewInt(100))
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, common.MsgInternalError, common.StatusInternalServerError, err)
	}
	currentTime := time.Now().Unix()
	tokenMap, err := utility.CreateToken(global.MongoDB_ServerConfig.JwtSecret, user.ID.Hex(), strconv.FormatInt(currentTime, 16), rdNumber.String())
	if err != nil {
		return nil, err
	}

	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"token":       tokenMap["token"],
			"loginCount":  user.LoginCount + 1,
			"lastLoginAt": time.Now().UnixMilli(),
		},
	}
	updatedUser, err := s.BaseServiceMongoImpl.UpdateById(ctx, user.ID, updateData)
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": user.ID.Hex(), "error": err.Error()}).Error("Login: Lỗi khi cập nhật token vào user")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": updatedUser.ID.Hex(), "email": updatedUser.Email}).Info("Login: Đăng nhập thành công")
	return &updatedUser, nil
}

// Logout đăng xuất người dùng (xóa token hiện tại)
func (s *UserService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"token": "",
		},
	}
	_, err := s.BaseServiceMongoImpl.UpdateById(ctx, userID, updateData)
	return err
}

// FindByToken tìm người dùng theo token hiện tại (dùng bởi auth middleware)
func (s *UserService) FindByToken(ctx context.Context, token string) (*models.User, error) {
	user, err := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"token": token}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

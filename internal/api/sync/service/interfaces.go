// Package syncsvc - service đồng bộ user giữa MongoDB, Stripe, HubSpot và Vapi.
package syncsvc

import (
	"context"

	vapiclient "agentic_voice/internal/api/assistant/client"
	models "agentic_voice/internal/api/auth/models"
	crmclient "agentic_voice/internal/api/crm/client"

	"github.com/stripe/stripe-go/v76"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserStore là hệ thống bản ghi gốc (MongoDB).
// Interface tách riêng để test sync với fake store.
type UserStore interface {
	UpsertByEmail(ctx context.Context, email string, data map[string]interface{}) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindOneById(ctx context.Context, id primitive.ObjectID) (models.User, error)
	Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.User, error)
	SetForeignID(ctx context.Context, userID primitive.ObjectID, field string, value string) error
}

// BillingClient là platform billing (Stripe)
type BillingClient interface {
	CreateCustomer(ctx context.Context, user *models.User) (*stripe.Customer, error)
	GetCustomer(ctx context.Context, customerID string) (*stripe.Customer, error)
	UpdateCustomer(ctx context.Context, customerID string, name string, email string) (*stripe.Customer, error)
	TestConnection(ctx context.Context) (string, error)
}

// CrmClient là platform CRM (HubSpot)
type CrmClient interface {
	CreateOrUpdateContact(ctx context.Context, email string, properties map[string]string) (*crmclient.Object, error)
	GetContact(ctx context.Context, id string, properties []string) (*crmclient.Object, error)
	FindContactByEmail(ctx context.Context, email string, properties []string) (*crmclient.Object, error)
	UpdateContact(ctx context.Context, id string, properties map[string]string) (*crmclient.Object, error)
	TestConnection(ctx context.Context) (string, error)
}

// AssistantClient là platform voice assistant (Vapi)
type AssistantClient interface {
	CreateAssistant(ctx context.Context, input *vapiclient.AssistantInput) (*vapiclient.Assistant, error)
	GetAssistant(ctx context.Context, id string) (*vapiclient.Assistant, error)
	UpdateAssistant(ctx context.Context, id string, input *vapiclient.AssistantInput) (*vapiclient.Assistant, error)
	TestConnection(ctx context.Context) (string, error)
}

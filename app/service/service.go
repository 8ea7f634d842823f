package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/courseware-labs/ms-go-enrollments/app/entity"
	"github.com/courseware-labs/ms-go-enrollments/app/factory"
	"github.com/courseware-labs/ms-go-enrollments/app/repository"
	"github.com/courseware-labs/ms-go-enrollments/config"
)

const defaultListLimit = int32(100)

type transactionRepository interface {
	Create(ctx context.Context, tx *entity.PaymentTransaction) error
	FindByID(ctx context.Context, id string) (*entity.PaymentTransaction, error)
	FindByGatewayTransactionID(ctx context.Context, gatewayName, transactionID string) (*entity.PaymentTransaction, error)
	ListByTransactionID(ctx context.Context, transactionID string) ([]*entity.PaymentTransaction, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time, rawPayload string, payerEmail *string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status entity.TransactionStatus, rawPayload string, payerEmail *string, now time.Time) (bool, error)
	RecordPayload(ctx context.Context, id string, rawPayload string, now time.Time) error
	List(ctx context.Context, filter repository.TransactionFilter) ([]*entity.PaymentTransaction, error)
}

type grantRepository interface {
	Upsert(ctx context.Context, userID, courseID, grantedBy string, now time.Time) (bool, error)
	Find(ctx context.Context, userID, courseID string) (*entity.CourseAccessGrant, error)
	Delete(ctx context.Context, userID, courseID string) (bool, error)
}

type webhookDeliveryRepository interface {
	Create(ctx context.Context, delivery *entity.WebhookDelivery) error
}

type EnrollmentService struct {
	transactionRepo transactionRepository
	grantRepo       grantRepository
	deliveryRepo    webhookDeliveryRepository
	webhookCfg      config.WebhookConfig
	logger          logrus.FieldLogger
}

func NewEnrollmentService(
	transactionRepo transactionRepository,
	grantRepo grantRepository,
	deliveryRepo webhookDeliveryRepository,
	webhookCfg config.WebhookConfig,
) *EnrollmentService {
	return &EnrollmentService{
		transactionRepo: transactionRepo,
		grantRepo:       grantRepo,
		deliveryRepo:    deliveryRepo,
		webhookCfg:      webhookCfg,
		logger:          factory.NewModuleLogger("enrollments-service"),
	}
}

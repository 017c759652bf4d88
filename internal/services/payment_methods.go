package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"carteira/internal/amqp"
	"carteira/internal/catalog"
	"carteira/internal/core"
	"carteira/internal/log"
	"carteira/internal/ports"
)

type paymentMethodStore interface {
	ports.AccountStore
	ports.PaymentMethodStore
	ports.TransactionStore
}

type NewPaymentMethod struct {
	AccountID  string
	Name       string
	Type       core.MethodType
	Brand      string
	Last4      string
	ClosingDay int
	Color      string
	ProductID  string
}

type PaymentMethodService struct {
	store  paymentMethodStore
	events notifier
	logger *log.Logger
	now    func() time.Time
}

func NewPaymentMethodService(store paymentMethodStore, publisher Publisher, cache Invalidator, logger *log.Logger) *PaymentMethodService {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentPayment)
	return &PaymentMethodService{
		store:  store,
		events: notifier{publisher: publisher, cache: cache, logger: logger},
		logger: logger,
		now:    time.Now,
	}
}

// List orders by name. An empty accountID lists every method of the
// household.
func (s *PaymentMethodService) List(ctx context.Context, householdID, accountID string) ([]core.PaymentMethod, error) {
	pms, err := s.store.ListPaymentMethods(ctx, householdID, accountID)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	return pms, nil
}

// Create stores a payment method under one of the household's accounts.
// A catalogue product fills in the brand when none is given and must
// belong to the account's issuer.
func (s *PaymentMethodService) Create(ctx context.Context, householdID string, in NewPaymentMethod) (core.PaymentMethod, error) {
	pm := core.PaymentMethod{
		ID:          uuid.NewString(),
		HouseholdID: householdID,
		AccountID:   in.AccountID,
		Name:        strings.TrimSpace(in.Name),
		Type:        in.Type,
		Brand:       strings.TrimSpace(in.Brand),
		Last4:       in.Last4,
		ClosingDay:  in.ClosingDay,
		Color:       in.Color,
		ProductID:   in.ProductID,
		CreatedAt:   s.now().UTC(),
	}
	if pm.Color == "" {
		pm.Color = core.DefaultColor
	}
	if err := pm.Validate(); err != nil {
		return core.PaymentMethod{}, err
	}

	account, err := s.store.GetAccount(ctx, householdID, pm.AccountID)
	if err != nil {
		return core.PaymentMethod{}, reference("account_id", err)
	}

	if pm.ProductID != "" {
		product, ok := catalog.LookupProduct(pm.ProductID)
		if !ok {
			return core.PaymentMethod{}, core.Invalid("product_id", core.ErrUnknownProduct)
		}
		if !catalog.ProductAllowed(pm.ProductID, account.IssuerID) {
			return core.PaymentMethod{}, core.Invalid("product_id",
				fmt.Errorf("%w: product %s is not issued by %s", core.ErrUnknownProduct, pm.ProductID, account.IssuerID))
		}
		if pm.Brand == "" {
			pm.Brand = string(product.Brand)
		}
	}

	if err := s.store.CreatePaymentMethod(ctx, pm); err != nil {
		return core.PaymentMethod{}, fmt.Errorf("create payment method: %w", err)
	}
	s.logger.InfoContext(ctx, "Created payment method",
		log.FieldOperation, log.OpCreate,
		log.FieldHouseholdID, householdID,
		log.FieldEntityID, pm.ID,
		"type", pm.Type)
	return pm, nil
}

// Delete removes the method and every transaction made with it.
func (s *PaymentMethodService) Delete(ctx context.Context, householdID, id string) error {
	doomed, err := s.store.ListTransactions(ctx, ports.TransactionFilter{
		HouseholdID:     householdID,
		Period:          core.AllTime(),
		PaymentMethodID: id,
	})
	if err != nil {
		return fmt.Errorf("list payment method transactions: %w", err)
	}
	if err := s.store.DeletePaymentMethod(ctx, householdID, id); err != nil {
		return fmt.Errorf("delete payment method: %w", err)
	}
	s.logger.InfoContext(ctx, "Deleted payment method",
		log.FieldOperation, log.OpDelete,
		log.FieldHouseholdID, householdID,
		log.FieldEntityID, id)
	s.events.publish(ctx, amqp.EventDeleted, householdID, transactionIDs(doomed))
	return nil
}

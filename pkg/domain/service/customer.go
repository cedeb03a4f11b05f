package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"posservice/pkg/domain/model"
)

var (
	ErrPhoneRequired   = errors.New("phone number is required")
	ErrCustomerChanged = errors.New("customer cannot be changed in its current state")
)

type CustomerService interface {
	RegisterCustomer(ctx context.Context, phone, name string) (*model.Customer, error)
	UpdateCustomerProfile(ctx context.Context, customerID uuid.UUID, name string) error
	FindByPhone(ctx context.Context, phone string) (*model.Customer, error)
	DeactivateCustomer(ctx context.Context, customerID uuid.UUID) error
	AdjustLoyaltyBalance(ctx context.Context, customerID uuid.UUID, deltaPoints int64) (*model.Customer, error)
}

func NewCustomerService(repo model.CustomerRepository, dispatcher EventDispatcher) CustomerService {
	return &customerService{repo: repo, dispatcher: dispatcher}
}

type customerService struct {
	repo       model.CustomerRepository
	dispatcher EventDispatcher
}

func (s *customerService) RegisterCustomer(ctx context.Context, phone, name string) (*model.Customer, error) {
	if phone == "" {
		return nil, ErrPhoneRequired
	}

	if _, err := s.repo.FindByPhone(ctx, phone); err == nil {
		return nil, model.ErrPhoneTaken
	}

	customerID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	customer := &model.Customer{
		ID:            customerID,
		Phone:         phone,
		Name:          name,
		LoyaltyPoints: 0,
		Status:        model.Active,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.CustomerRegistered{CustomerID: customerID, Phone: phone})
	return customer, nil
}

func (s *customerService) UpdateCustomerProfile(ctx context.Context, customerID uuid.UUID, name string) error {
	customer, err := s.repo.Find(ctx, customerID)
	if err != nil {
		return err
	}
	if customer.Status != model.Active {
		return ErrCustomerChanged
	}

	customer.Name = name
	return s.updateCustomer(ctx, customer)
}

func (s *customerService) FindByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	return s.repo.FindByPhone(ctx, phone)
}

func (s *customerService) DeactivateCustomer(ctx context.Context, customerID uuid.UUID) error {
	customer, err := s.repo.Find(ctx, customerID)
	if err != nil {
		return err
	}
	if customer.Status == model.Inactive {
		return nil
	}

	customer.Status = model.Inactive

	if err := s.updateCustomer(ctx, customer); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.CustomerDeactivated{CustomerID: customerID})
	return nil
}

// AdjustLoyaltyBalance is the administrative balance correction. Checkout
// never goes through here, it applies its combined delta inside the sale's
// unit of work.
func (s *customerService) AdjustLoyaltyBalance(ctx context.Context, customerID uuid.UUID, deltaPoints int64) (*model.Customer, error) {
	if err := s.repo.AdjustLoyaltyPoints(ctx, customerID, deltaPoints); err != nil {
		return nil, err
	}

	customer, err := s.repo.Find(ctx, customerID)
	if err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.LoyaltyBalanceAdjusted{
		CustomerID:  customerID,
		DeltaPoints: deltaPoints,
		NewBalance:  customer.LoyaltyPoints,
	})
	return customer, nil
}

func (s *customerService) updateCustomer(ctx context.Context, customer *model.Customer) error {
	customer.Version++
	customer.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, customer)
}

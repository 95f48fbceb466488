package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qalicha-dev28/boutique-pos/internal/apperr"
	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/internal/repository"
)

type CreateCustomerParams struct {
	Name     string
	Phone    *string
	Email    *string
	Birthday *time.Time
	Notes    *string
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, params CreateCustomerParams) (model.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	SearchCustomers(ctx context.Context, query string) ([]model.Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, params repository.UpdateCustomerParams) (model.Customer, error)
	// CreditLoyaltyPoints is the manual credit path; sale accrual goes
	// through the sale transaction instead.
	CreditLoyaltyPoints(ctx context.Context, id uuid.UUID, points int) (model.Customer, error)
	PurchaseHistory(ctx context.Context, id uuid.UUID) ([]model.Sale, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	saleRepo     repository.SaleRepository
}

func NewCustomerService(
	customerRepo repository.CustomerRepository,
	saleRepo repository.SaleRepository,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		saleRepo:     saleRepo,
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, params CreateCustomerParams) (model.Customer, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Customer{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	customer := model.Customer{
		ID:        id,
		Name:      params.Name,
		Phone:     params.Phone,
		Email:     params.Email,
		Birthday:  params.Birthday,
		Notes:     params.Notes,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return model.Customer{}, apperr.ErrDuplicateCustomer.WrapParent(err)
		}
		return model.Customer{}, fmt.Errorf("create customer: %w", err)
	}

	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	customer, err := s.customerRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Customer{}, apperr.ErrCustomerNotFound.WrapParent(err)
		}
		return model.Customer{}, fmt.Errorf("get customer: %w", err)
	}

	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	customers, err := s.customerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	return customers, nil
}

func (s *customerService) SearchCustomers(ctx context.Context, query string) ([]model.Customer, error) {
	if query == "" {
		return nil, apperr.ValidationErr.WithMsg("search query is required")
	}

	customers, err := s.customerRepo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}

	return customers, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id uuid.UUID, params repository.UpdateCustomerParams) (model.Customer, error) {
	customer, err := s.customerRepo.Update(ctx, id, params)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return model.Customer{}, apperr.ErrCustomerNotFound.WrapParent(err)
		case errors.Is(err, repository.ErrUniqueViolation):
			return model.Customer{}, apperr.ErrDuplicateCustomer.WrapParent(err)
		default:
			return model.Customer{}, fmt.Errorf("update customer: %w", err)
		}
	}

	return customer, nil
}

func (s *customerService) CreditLoyaltyPoints(ctx context.Context, id uuid.UUID, points int) (model.Customer, error) {
	if points <= 0 {
		return model.Customer{}, apperr.ValidationErr.WithMsg("points must be positive")
	}

	customer, err := s.customerRepo.AddLoyaltyPoints(ctx, id, points)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Customer{}, apperr.ErrCustomerNotFound.WrapParent(err)
		}
		return model.Customer{}, fmt.Errorf("credit loyalty points: %w", err)
	}

	return customer, nil
}

func (s *customerService) PurchaseHistory(ctx context.Context, id uuid.UUID) ([]model.Sale, error) {
	if _, err := s.customerRepo.Get(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrCustomerNotFound.WrapParent(err)
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	sales, err := s.saleRepo.ListByCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list customer sales: %w", err)
	}

	return sales, nil
}

package apperr

import "github.com/qalicha-dev28/boutique-pos/pkg/zerror"

const (
	ValidationErrorCode = "VALIDATION_FAILED"
)

// Predefined domain errors. Handlers compare with errors.As on zerror.ZError;
// call WithMsg/WrapParent for a per-call message without mutating these.
var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	ErrMissingToken       = zerror.NewUnauthorized("MISSING_TOKEN", "missing or malformed authorization header")
	ErrInvalidToken       = zerror.NewUnauthorized("INVALID_TOKEN", "invalid or expired token")
	ErrForbidden          = zerror.NewForbidden("FORBIDDEN", "insufficient permissions")
	ErrInvalidCredentials = zerror.NewUnauthorized("INVALID_CREDENTIALS", "invalid email or password")
	ErrAccountDeactivated = zerror.NewUnauthorized("ACCOUNT_DEACTIVATED", "account is deactivated, contact admin")
	ErrEmailTaken         = zerror.NewConflict("EMAIL_TAKEN", "email already registered")

	ErrUserNotFound     = zerror.NewNotFound("USER_NOT_FOUND", "user not found")
	ErrProductNotFound  = zerror.NewNotFound("PRODUCT_NOT_FOUND", "product not found")
	ErrCategoryNotFound = zerror.NewNotFound("CATEGORY_NOT_FOUND", "category not found")
	ErrCustomerNotFound = zerror.NewNotFound("CUSTOMER_NOT_FOUND", "customer not found")
	ErrStockNotFound    = zerror.NewNotFound("STOCK_NOT_FOUND", "product inventory not found")
	ErrSaleNotFound     = zerror.NewNotFound("SALE_NOT_FOUND", "sale not found")

	ErrDuplicateProduct  = zerror.NewConflict("DUPLICATE_PRODUCT", "sku or barcode already exists")
	ErrDuplicateCategory = zerror.NewConflict("DUPLICATE_CATEGORY", "category already exists")
	ErrDuplicateCustomer = zerror.NewConflict("DUPLICATE_CUSTOMER", "phone or email already exists")

	ErrInsufficientStock = zerror.NewBadRequest("INSUFFICIENT_STOCK", "insufficient stock")
	ErrAlreadyRefunded   = zerror.NewBadRequest("ALREADY_REFUNDED", "sale already refunded")
)

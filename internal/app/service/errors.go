package service

import (
	apperrors "github.com/e4rthen/storefront-backend/internal/errors"
)

var (
	ErrUnauthenticated = apperrors.New(apperrors.KindUnauthenticated, apperrors.AuthUnauthorized, "Authentication credentials were not provided")

	ErrInvalidCredentials   = apperrors.New(apperrors.KindUnauthenticated, apperrors.AuthInvalidCredentials, "No active account found with the given credentials")
	ErrAmbiguousEmail       = apperrors.New(apperrors.KindConfiguration, apperrors.InternalConfigError, "Multiple accounts share this email address")
	ErrUsernameExists       = apperrors.New(apperrors.KindValidation, apperrors.AuthUsernameExists, "A user with that username already exists")
	ErrEmailExists          = apperrors.New(apperrors.KindValidation, apperrors.AuthEmailAlreadyExists, "A user with that email already exists")
	ErrInvalidRegistration  = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidInput, "Username, a valid email and a password of at least 8 characters are required")
	ErrTokenInvalid         = apperrors.New(apperrors.KindUnauthenticated, apperrors.AuthTokenInvalid, "Token is invalid")
	ErrTokenExpired         = apperrors.New(apperrors.KindUnauthenticated, apperrors.AuthTokenExpired, "Token has expired")
	ErrTokenRevoked         = apperrors.New(apperrors.KindUnauthenticated, apperrors.AuthTokenRevoked, "Token has been revoked")
	ErrUserNotFound         = apperrors.New(apperrors.KindNotFound, apperrors.ResourceNotFound, "User not found")
	ErrProductNotFound      = apperrors.New(apperrors.KindNotFound, apperrors.ProductNotFound, "Product not found")
	ErrInvalidProduct       = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidInput, "Product name is required and price must not be negative")
	ErrCartNotFound         = apperrors.New(apperrors.KindNotFound, apperrors.CartNotFound, "Cart not found")
	ErrCartItemNotFound     = apperrors.New(apperrors.KindNotFound, apperrors.CartItemNotFound, "Cart item not found")
	ErrInvalidQuantity      = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidInput, "Quantity must be a positive integer")
	ErrCartEmpty            = apperrors.New(apperrors.KindEmptyCart, apperrors.CartEmpty, "Cart is empty")
	ErrInvalidShippingCost  = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidInput, "Shipping cost must be a non-negative amount with at most 2 decimal places")
	ErrOrderNotFound        = apperrors.New(apperrors.KindNotFound, apperrors.OrderNotFound, "Order not found")
	ErrReportStorageMissing = apperrors.New(apperrors.KindConfiguration, apperrors.InternalConfigError, "Report storage is not configured")
)

package domain

import "errors"

var (
	ErrNotFound              = errors.New("account not found")
	ErrAlreadyExists         = errors.New("account already exists")
	ErrAdminExists           = errors.New("an admin account already exists")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInvalidAccountType    = errors.New("account type must not be blank")
	ErrInvalidCredentials    = errors.New("invalid account number or pin")
	ErrInterestNotApplicable = errors.New("interest not applicable")
)

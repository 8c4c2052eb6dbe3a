package models

// DomainError is a named business-rule violation. The code is the short
// machine-readable string the session layer turns into a human message;
// domain errors are never retried and always roll the enclosing unit back.
type DomainError struct {
	Code string
}

func (e *DomainError) Error() string { return e.Code }

var (
	ErrInsufficientBalance   = &DomainError{Code: "NOT_ENOUGH_BALANCE"}
	ErrDoubleCashout         = &DomainError{Code: "DOUBLE_CASHOUT"}
	ErrInvestmentAlreadyMade = &DomainError{Code: "INVESTMENT_ALREADY_MADE"}
	ErrUserDoesNotExist      = &DomainError{Code: "USER_DOES_NOT_EXIST"}
	ErrRecipientNotFound     = &DomainError{Code: "TO_USER_DOES_NOT_EXIST"}
	ErrIncorrectDivyOption   = &DomainError{Code: "INCORRECT_DIVY_OPTION"}
	ErrNoRecipients          = &DomainError{Code: "NO_USERS_TO_SEND_TO"}
	ErrDuplicateTransfer     = &DomainError{Code: "TRANSFER_ALREADY_MADE"}
	ErrInvalidAmount         = &DomainError{Code: "INVALID_AMOUNT"}
	ErrAccountFrozen         = &DomainError{Code: "ACCOUNT_FROZEN"}
)

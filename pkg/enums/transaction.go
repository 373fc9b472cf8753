package enums

import "fmt"

// TransactionType classifies wallet ledger rows.
type TransactionType string

const (
	TransactionTypeTopup       TransactionType = "topup"
	TransactionTypeOrder       TransactionType = "order"
	TransactionTypeAgentFee    TransactionType = "agent_fee"
	TransactionTypeRefund      TransactionType = "refund"
	TransactionTypeAdminCredit TransactionType = "admin_credit"
	TransactionTypeAdminDebit  TransactionType = "admin_debit"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeTopup,
	TransactionTypeOrder,
	TransactionTypeAgentFee,
	TransactionTypeRefund,
	TransactionTypeAdminCredit,
	TransactionTypeAdminDebit,
}

func (t TransactionType) String() string {
	return string(t)
}

func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}

// TransactionStatus tracks settlement of a ledger row.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

func (t TransactionStatus) String() string {
	return string(t)
}

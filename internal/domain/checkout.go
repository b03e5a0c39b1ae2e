package domain

// RejectionReason identifies why a checkout attempt was rejected before
// submission. The values map to the user-facing warning messages.
type RejectionReason string

const (
	RejectInsufficientBalance RejectionReason = "insufficient_balance"
	RejectNoAddresses         RejectionReason = "no_addresses"
	RejectNoAddressSelected   RejectionReason = "no_address_selected"
)

// Message returns the user-facing warning for the rejection.
func (r RejectionReason) Message() string {
	switch r {
	case RejectInsufficientBalance:
		return "You do not have enough balance in your wallet for this purchase"
	case RejectNoAddresses:
		return "Please add a new address before proceeding."
	case RejectNoAddressSelected:
		return "Please select one shipping address to proceed."
	default:
		return "Checkout request is not valid"
	}
}

// Verdict is the outcome of checkout validation.
type Verdict struct {
	Accepted bool
	Reason   RejectionReason
}

// ValidateCheckout decides whether a checkout request may be submitted. The
// checks run in a fixed order and short-circuit on the first failure, so the
// user always sees a deterministic message:
//
//  1. total cost exceeds wallet balance
//  2. no addresses on file
//  3. no address selected
func ValidateCheckout(totalCost float64, book AddressBook, walletBalance float64) Verdict {
	if totalCost > walletBalance {
		return Verdict{Reason: RejectInsufficientBalance}
	}
	if len(book.Entries) == 0 {
		return Verdict{Reason: RejectNoAddresses}
	}
	if book.SelectedID == "" {
		return Verdict{Reason: RejectNoAddressSelected}
	}
	return Verdict{Accepted: true}
}

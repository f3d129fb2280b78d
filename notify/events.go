// Package notify defines the inbound/outbound MQ envelopes of spec.md §6.2
// and §6.3, and the outbound Publisher (§4.8).
package notify

// Event discriminators, per spec.md §6.2/§6.3.
const (
	EventCustomerAddressAdded = "CustomerAddressAdded"
	EventDepositDetected      = "DepositDetected"
	EventDepositConfirmed     = "DepositConfirmed"
)

// CustomerAddressAddedPayload is the inbound address-event body
// (spec.md §6.2). AccountID absent/null means an Omnibus address.
type CustomerAddressAddedPayload struct {
	Event     string  `json:"event"`
	Address   string  `json:"address"`
	Chain     string  `json:"chain"`
	WalletID  string  `json:"wallet_id"`
	AccountID *string `json:"account_id,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
}

// DepositEvent is the outbound deposit-event body (spec.md §6.3). Event is
// either EventDepositDetected or EventDepositConfirmed; they differ only
// in Event and in Confirmations.
type DepositEvent struct {
	Event         string  `json:"event"`
	Address       string  `json:"address"`
	WalletID      string  `json:"wallet_id"`
	AccountID     *string `json:"account_id"`
	Chain         string  `json:"chain"`
	TxHash        string  `json:"tx_hash"`
	Amount        string  `json:"amount"`
	BlockNumber   uint64  `json:"block_number"`
	Confirmations uint64  `json:"confirmations"`
}

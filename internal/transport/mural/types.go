package mural

import "github.com/shopspring/decimal"

// Статусы payout request'а, присылаемые Mural.
const (
	PayoutStatusExecuted = "EXECUTED"
)

type TokenAmount struct {
	TokenAmount decimal.Decimal `json:"tokenAmount"`
	TokenSymbol string          `json:"tokenSymbol"`
}

type WalletDetails struct {
	WalletAddress string `json:"walletAddress"`
	Blockchain    string `json:"blockchain"`
}

type AccountDetails struct {
	WalletDetails *WalletDetails `json:"walletDetails,omitempty"`
}

type Account struct {
	ID             string          `json:"id"`
	AccountDetails *AccountDetails `json:"accountDetails,omitempty"`
}

type FiatAmount struct {
	FiatAmount       decimal.Decimal `json:"fiatAmount"`
	FiatCurrencyCode string          `json:"fiatCurrencyCode"`
}

type FiatPayoutStatus struct {
	Type string `json:"type"`
}

type PayoutDetails struct {
	Type             string            `json:"type"`
	FiatPayoutStatus *FiatPayoutStatus `json:"fiatPayoutStatus,omitempty"`
	FiatAmount       *FiatAmount       `json:"fiatAmount,omitempty"`
}

type Payout struct {
	ID      string         `json:"id"`
	Details *PayoutDetails `json:"details,omitempty"`
}

type PayoutRequest struct {
	ID              string   `json:"id"`
	Status          string   `json:"status"`
	SourceAccountID string   `json:"sourceAccountId"`
	Payouts         []Payout `json:"payouts,omitempty"`
}

// FiatAndRailDetails реквизиты фиатного рельса получателя (COP).
type FiatAndRailDetails struct {
	Type              string `json:"type"`
	Symbol            string `json:"symbol"`
	PhoneNumber       string `json:"phoneNumber"`
	AccountType       string `json:"accountType"`
	BankAccountNumber string `json:"bankAccountNumber"`
	DocumentNumber    string `json:"documentNumber"`
	DocumentType      string `json:"documentType"`
}

type PayoutBankDetails struct {
	Type               string             `json:"type"`
	BankName           string             `json:"bankName"`
	BankAccountOwner   string             `json:"bankAccountOwner"`
	FiatAndRailDetails FiatAndRailDetails `json:"fiatAndRailDetails"`
}

type PhysicalAddress struct {
	Address1 string `json:"address1"`
	Country  string `json:"country"`
	State    string `json:"state"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
}

type RecipientInfo struct {
	Type            string          `json:"type"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Email           string          `json:"email"`
	PhysicalAddress PhysicalAddress `json:"physicalAddress"`
}

type PayoutItem struct {
	Amount        TokenAmount       `json:"amount"`
	PayoutDetails PayoutBankDetails `json:"payoutDetails"`
	RecipientInfo RecipientInfo     `json:"recipientInfo"`
}

type CreatePayoutRequestArgs struct {
	SourceAccountID string       `json:"sourceAccountId"`
	Memo            string       `json:"memo"`
	Payouts         []PayoutItem `json:"payouts"`
}

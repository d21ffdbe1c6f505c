package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// ModuleKind discriminates payment module configurations.
type ModuleKind string

const (
	ModuleKindPaymentLink ModuleKind = "payment_link"
	ModuleKindDonation    ModuleKind = "donation"
	ModuleKindCheckout    ModuleKind = "checkout"
	// ModuleKindWallet is the organization's internal bookkeeping module. Every organization
	// has exactly one and it is never created or removed through the API.
	ModuleKindWallet ModuleKind = "wallet"
)

func (k ModuleKind) Valid() bool {
	switch k {
	case ModuleKindPaymentLink, ModuleKindDonation, ModuleKindCheckout, ModuleKindWallet:
		return true
	}
	return false
}

// Reserved reports whether the kind is managed by the system rather than by merchants.
func (k ModuleKind) Reserved() bool {
	return k == ModuleKindWallet
}

var ErrUnknownModuleKind = errors.New("unknown module kind")

// ModuleConfig is the kind-specific configuration of a payment module.
// The set of implementations is closed; see DecodeModuleConfig.
type ModuleConfig interface {
	Kind() ModuleKind
	Validate() error
	sealed()
}

type PaymentLinkConfig struct {
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description,omitempty"`
	RedirectURL       string          `json:"redirectUrl,omitempty"`
	AllowCustomAmount bool            `json:"allowCustomAmount"`
}

func (PaymentLinkConfig) Kind() ModuleKind { return ModuleKindPaymentLink }
func (PaymentLinkConfig) sealed()          {}

func (c PaymentLinkConfig) Validate() error {
	if !c.AllowCustomAmount && !c.Amount.IsPositive() {
		return errors.New("amount must be positive unless custom amounts are allowed")
	}
	if c.Amount.IsNegative() {
		return errors.New("amount must not be negative")
	}
	if len(c.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	return validateOptionalURL("redirectUrl", c.RedirectURL)
}

type DonationConfig struct {
	SuggestedAmounts []decimal.Decimal `json:"suggestedAmounts"`
	MinAmount        decimal.Decimal   `json:"minAmount"`
	Message          string            `json:"message,omitempty"`
}

func (DonationConfig) Kind() ModuleKind { return ModuleKindDonation }
func (DonationConfig) sealed()          {}

func (c DonationConfig) Validate() error {
	if c.MinAmount.IsNegative() {
		return errors.New("minAmount must not be negative")
	}
	if len(c.SuggestedAmounts) > 6 {
		return errors.New("at most 6 suggested amounts are allowed")
	}
	for _, a := range c.SuggestedAmounts {
		if !a.IsPositive() {
			return errors.New("suggested amounts must be positive")
		}
		if a.LessThan(c.MinAmount) {
			return fmt.Errorf("suggested amount %s is below minAmount", a)
		}
	}
	if len(c.Message) > 280 {
		return errors.New("message too long (max 280 characters)")
	}
	return nil
}

type CheckoutTheme string

const (
	ThemeLight CheckoutTheme = "light"
	ThemeDark  CheckoutTheme = "dark"
)

type CheckoutConfig struct {
	ButtonLabel string        `json:"buttonLabel"`
	Theme       CheckoutTheme `json:"theme"`
	SuccessURL  string        `json:"successUrl"`
	CancelURL   string        `json:"cancelUrl,omitempty"`
}

func (CheckoutConfig) Kind() ModuleKind { return ModuleKindCheckout }
func (CheckoutConfig) sealed()          {}

func (c CheckoutConfig) Validate() error {
	if c.ButtonLabel == "" || len(c.ButtonLabel) > 40 {
		return errors.New("buttonLabel is required (max 40 characters)")
	}
	if c.Theme != ThemeLight && c.Theme != ThemeDark {
		return errors.New("theme must be 'light' or 'dark'")
	}
	if c.SuccessURL == "" {
		return errors.New("successUrl is required")
	}
	if err := validateOptionalURL("successUrl", c.SuccessURL); err != nil {
		return err
	}
	return validateOptionalURL("cancelUrl", c.CancelURL)
}

// WalletConfig belongs to the reserved wallet module.
type WalletConfig struct {
	Asset string `json:"asset"`
}

func (WalletConfig) Kind() ModuleKind { return ModuleKindWallet }
func (WalletConfig) sealed()          {}

func (c WalletConfig) Validate() error {
	if c.Asset == "" {
		return errors.New("asset is required")
	}
	return nil
}

// DecodeModuleConfig decodes raw JSON into the configuration type selected by kind.
func DecodeModuleConfig(kind ModuleKind, raw []byte) (ModuleConfig, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	var (
		cfg ModuleConfig
		err error
	)
	switch kind {
	case ModuleKindPaymentLink:
		var c PaymentLinkConfig
		err = json.Unmarshal(raw, &c)
		cfg = c
	case ModuleKindDonation:
		var c DonationConfig
		err = json.Unmarshal(raw, &c)
		cfg = c
	case ModuleKindCheckout:
		var c CheckoutConfig
		err = json.Unmarshal(raw, &c)
		cfg = c
	case ModuleKindWallet:
		var c WalletConfig
		err = json.Unmarshal(raw, &c)
		cfg = c
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownModuleKind, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", kind, err)
	}
	return cfg, nil
}

// EncodeModuleConfig validates cfg and returns its JSON form.
func EncodeModuleConfig(cfg ModuleConfig) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("module config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", cfg.Kind(), err)
	}
	return json.Marshal(cfg)
}

// PaymentModule is an embeddable payment widget owned by an organization.
type PaymentModule struct {
	ID             string       `json:"id" db:"id"`
	OrganizationID string       `json:"organizationId" db:"organization_id"`
	Name           string       `json:"name" db:"name"`
	Kind           ModuleKind   `json:"kind" db:"kind"`
	Config         ModuleConfig `json:"config" db:"config"`
	Enabled        bool         `json:"enabled" db:"enabled"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time    `json:"updatedAt" db:"updated_at"`
}

// UnmarshalJSON decodes the config through the kind discriminator.
func (m *PaymentModule) UnmarshalJSON(data []byte) error {
	type alias PaymentModule
	aux := struct {
		*alias
		Config json.RawMessage `json:"config"`
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	cfg, err := DecodeModuleConfig(m.Kind, aux.Config)
	if err != nil {
		return err
	}
	m.Config = cfg
	return nil
}

func validateOptionalURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL", field)
	}
	return nil
}

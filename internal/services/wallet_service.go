package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/paydash/backend/internal/audit"
	"github.com/paydash/backend/internal/cache"
	"github.com/paydash/backend/internal/models"
)

const (
	receiveRequestTTL = 15 * time.Minute
	qrImageSize       = 256
)

type WalletStore interface {
	EnsureWalletModule(ctx context.Context, wallet *models.PaymentModule) (*models.PaymentModule, error)
	ListLedger(ctx context.Context, orgID string) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error)
}

// ReceiveRequest is a short-lived request for an inbound transfer, shared as a QR code.
type ReceiveRequest struct {
	ID             string           `json:"id"`
	OrganizationID string           `json:"organizationId"`
	Asset          string           `json:"asset"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	Memo           string           `json:"memo,omitempty"`
	URI            string           `json:"uri"`
	QRCode         string           `json:"qrCode"`
	CreatedAt      time.Time        `json:"createdAt"`
	ExpiresAt      time.Time        `json:"expiresAt"`
}

type WalletService struct {
	store    WalletStore
	prices   QuoteProvider
	requests cache.Cache
	asset    string
	currency string
	clock    cache.Clock
	audit    *audit.Logger
	logger   *zap.Logger
}

func NewWalletService(store WalletStore, prices QuoteProvider, requests cache.Cache, asset, currency string, auditLog *audit.Logger, logger *zap.Logger) *WalletService {
	return &WalletService{
		store:    store,
		prices:   prices,
		requests: requests,
		asset:    asset,
		currency: currency,
		clock:    cache.SystemClock{},
		audit:    auditLog,
		logger:   logger,
	}
}

// Buy records a pending inbound purchase of amount units, valued at the current quote
// when one is available.
func (s *WalletService) Buy(ctx context.Context, orgID string, amount decimal.Decimal) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, validationErrorf("amount must be positive")
	}

	meta := models.Metadata{}
	quote, _, err := s.prices.CurrentQuote(ctx)
	if err != nil {
		s.logger.Warn("buying without a price quote", zap.String("org_id", orgID), zap.Error(err))
	} else {
		meta["priceUsd"] = quote.PriceUSD.String()
		meta["usdValue"] = amount.Mul(quote.PriceUSD).StringFixed(2)
	}

	return s.record(ctx, orgID, models.KindBuy, models.DirectionIn, amount, "", meta)
}

// Send records a pending outbound transfer. The posted balance, less sends still pending,
// must cover amount.
func (s *WalletService) Send(ctx context.Context, orgID string, amount decimal.Decimal, recipient, memo string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, validationErrorf("amount must be positive")
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return nil, validationErrorf("recipient is required")
	}

	ledger, err := s.store.ListLedger(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	if spendable := SumLedger(ledger).Spendable(); spendable.LessThan(amount) {
		return nil, fmt.Errorf("spendable %s is less than %s: %w", spendable, amount, ErrInsufficientFunds)
	}

	var meta models.Metadata
	if memo != "" {
		meta = models.Metadata{"memo": memo}
	}
	return s.record(ctx, orgID, models.KindSend, models.DirectionOut, amount, recipient, meta)
}

func (s *WalletService) record(ctx context.Context, orgID string, kind models.TransactionKind, dir models.Direction, amount decimal.Decimal, counterparty string, meta models.Metadata) (*models.Transaction, error) {
	wallet, err := s.walletModule(ctx, orgID)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.CreateTransaction(ctx, &models.Transaction{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		ModuleID:       &wallet.ID,
		Kind:           kind,
		Direction:      dir,
		Status:         models.StatusPending,
		Amount:         amount,
		Currency:       s.currency,
		Counterparty:   counterparty,
		Metadata:       meta,
	})
	if err != nil {
		s.audit.LogError(ctx, orgID, "", err)
		return nil, err
	}

	s.logger.Info("wallet operation recorded",
		zap.String("org_id", orgID),
		zap.String("tx_id", tx.ID),
		zap.String("kind", string(kind)))
	s.audit.LogWalletOperation(ctx, orgID, tx.ID, string(kind), amount.String(), string(tx.Status))
	return tx, nil
}

// CreateReceiveRequest builds a payment URI for the organization wallet, renders it as a
// PNG QR code and keeps the request for receiveRequestTTL.
func (s *WalletService) CreateReceiveRequest(ctx context.Context, orgID string, amount *decimal.Decimal, memo string) (*ReceiveRequest, error) {
	if amount != nil && !amount.IsPositive() {
		return nil, validationErrorf("amount must be positive")
	}
	if utf8.RuneCountInString(memo) > 140 {
		return nil, validationErrorf("memo must be at most 140 characters")
	}
	if _, err := s.walletModule(ctx, orgID); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	req := &ReceiveRequest{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Asset:          s.asset,
		Amount:         amount,
		Memo:           memo,
		CreatedAt:      now,
		ExpiresAt:      now.Add(receiveRequestTTL),
	}
	req.URI = receiveURI(req)

	qr, err := qrcode.New(req.URI, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(qrImageSize)); err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}
	req.QRCode = base64.StdEncoding.EncodeToString(buf.Bytes())

	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if err := s.requests.Set(ctx, receiveKey(orgID, req.ID), data, receiveRequestTTL); err != nil {
		return nil, fmt.Errorf("failed to store receive request: %w", err)
	}
	return req, nil
}

// GetReceiveRequest returns an unexpired receive request of the organization.
func (s *WalletService) GetReceiveRequest(ctx context.Context, orgID, requestID string) (*ReceiveRequest, error) {
	data, ok, err := s.requests.Get(ctx, receiveKey(orgID, requestID))
	if err != nil {
		return nil, fmt.Errorf("failed to load receive request: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("receive request %q: %w", requestID, ErrNotFound)
	}

	var req ReceiveRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("invalid or expired receive request")
	}
	return &req, nil
}

// walletModule loads the organization's wallet module, creating it for organizations
// that predate it.
func (s *WalletService) walletModule(ctx context.Context, orgID string) (*models.PaymentModule, error) {
	wallet, err := s.store.EnsureWalletModule(ctx, &models.PaymentModule{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Name:           "Wallet",
		Kind:           models.ModuleKindWallet,
		Config:         models.WalletConfig{Asset: s.asset},
		Enabled:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet module: %w", err)
	}
	return wallet, nil
}

func receiveKey(orgID, requestID string) string {
	return fmt.Sprintf("receive:%s:%s", orgID, requestID)
}

func receiveURI(req *ReceiveRequest) string {
	q := url.Values{}
	q.Set("org", req.OrganizationID)
	q.Set("request", req.ID)
	if req.Amount != nil {
		q.Set("amount", req.Amount.String())
	}
	if req.Memo != "" {
		q.Set("memo", req.Memo)
	}
	return fmt.Sprintf("paydash:%s?%s", req.Asset, q.Encode())
}

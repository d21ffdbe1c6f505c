package services

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moov-io/iso20022/pkg/common"
	"github.com/moov-io/iso20022/pkg/pacs_v08"

	"github.com/paydash/backend/internal/models"
)

const (
	pacs008MessageType = "pacs.008.001.08"
	agentBIC           = "PAYDASHX"
)

type TransferStore interface {
	GetTransaction(ctx context.Context, orgID, txID string) (*models.Transaction, error)
	GetOrganization(ctx context.Context, orgID string) (*models.Organization, error)
}

// ISO20022Service renders outbound wallet transfers as pacs.008 credit transfers.
type ISO20022Service struct {
	store TransferStore
	now   func() time.Time
}

func NewISO20022Service(store TransferStore) *ISO20022Service {
	return &ISO20022Service{store: store, now: time.Now}
}

type TransferExport struct {
	MessageType string `json:"messageType"`
	XML         string `json:"xml"`
}

// ExportTransfer loads an outbound transfer of the organization and converts it to XML.
func (iso *ISO20022Service) ExportTransfer(ctx context.Context, orgID, txID string) (*TransferExport, error) {
	if _, err := uuid.Parse(txID); err != nil {
		return nil, fmt.Errorf("transaction %q: %w", txID, ErrNotFound)
	}
	tx, err := iso.store.GetTransaction(ctx, orgID, txID)
	if err != nil {
		return nil, err
	}
	org, err := iso.store.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	doc, err := iso.CreatePacs008(tx, org)
	if err != nil {
		return nil, err
	}
	xmlData, err := iso.ConvertToXML(doc)
	if err != nil {
		return nil, err
	}
	return &TransferExport{MessageType: pacs008MessageType, XML: xmlData}, nil
}

// CreatePacs008 creates a pacs.008 FIToFICustomerCreditTransfer message
func (iso *ISO20022Service) CreatePacs008(tx *models.Transaction, org *models.Organization) (*pacs_v08.FIToFICustomerCreditTransferV08, error) {
	if tx.Direction != models.DirectionOut || tx.Kind != models.KindSend {
		return nil, validationErrorf("only outbound transfers can be exported")
	}
	if tx.Status == models.StatusFailed {
		return nil, validationErrorf("failed transfers cannot be exported")
	}

	msgID := compactID(uuid.NewString())
	txID := compactID(tx.ID)
	endToEnd := txID
	if tx.Reference != "" {
		endToEnd = truncate(tx.Reference, 35)
	}
	creDtTm := iso.now().UTC()
	settlementDate := tx.CreatedAt.UTC()
	amount := tx.Amount.InexactFloat64()

	doc := &pacs_v08.FIToFICustomerCreditTransferV08{
		GrpHdr: pacs_v08.GroupHeader93{
			MsgId:   common.Max35Text(msgID),
			CreDtTm: common.ISODateTime(creDtTm),
			NbOfTxs: "1",
			TtlIntrBkSttlmAmt: &pacs_v08.ActiveCurrencyAndAmount{
				Ccy:   common.ActiveCurrencyCode(tx.Currency),
				Value: amount,
			},
			IntrBkSttlmDt: (*common.ISODate)(&settlementDate),
			SttlmInf: pacs_v08.SettlementInstruction7{
				SttlmMtd: "CLRG",
			},
		},
		CdtTrfTxInf: []pacs_v08.CreditTransferTransaction39{
			{
				PmtId: pacs_v08.PaymentIdentification7{
					InstrId:    &[]common.Max35Text{common.Max35Text(txID)}[0],
					EndToEndId: common.Max35Text(endToEnd),
					TxId:       &[]common.Max35Text{common.Max35Text(txID)}[0],
				},
				IntrBkSttlmAmt: pacs_v08.ActiveCurrencyAndAmount{
					Ccy:   common.ActiveCurrencyCode(tx.Currency),
					Value: amount,
				},
				IntrBkSttlmDt: (*common.ISODate)(&settlementDate),
				ChrgBr:        "SLEV",
				DbtrAgt: pacs_v08.BranchAndFinancialInstitutionIdentification6{
					FinInstnId: pacs_v08.FinancialInstitutionIdentification18{
						BICFI: &[]common.BICFIDec2014Identifier{common.BICFIDec2014Identifier(agentBIC)}[0],
					},
				},
				Dbtr: pacs_v08.PartyIdentification135{
					Nm: &[]common.Max140Text{common.Max140Text(truncate(org.Name, 140))}[0],
				},
				CdtrAgt: pacs_v08.BranchAndFinancialInstitutionIdentification6{
					FinInstnId: pacs_v08.FinancialInstitutionIdentification18{
						BICFI: &[]common.BICFIDec2014Identifier{common.BICFIDec2014Identifier(agentBIC)}[0],
					},
				},
				Cdtr: pacs_v08.PartyIdentification135{
					Nm: &[]common.Max140Text{common.Max140Text(truncate(tx.Counterparty, 140))}[0],
				},
			},
		},
	}

	return doc, nil
}

// ConvertToXML converts ISO20022 document to XML string
func (iso *ISO20022Service) ConvertToXML(doc any) (string, error) {
	xmlData, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal XML: %w", err)
	}
	return xml.Header + string(xmlData), nil
}

func compactID(id string) string {
	return truncate(strings.ReplaceAll(id, "-", ""), 35)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// JSON keys the extraction prompt asks the model to produce
const (
	KeyIssueDate       = "発行日"
	KeyNumber          = "見積書番号"
	KeyClientName      = "見積先名"
	KeyClientAddress   = "見積先住所"
	KeyIssuer          = "見積元情報"
	KeyValidUntil      = "有効期限"
	KeyDeliveryDate    = "納期"
	KeyItems           = "明細"
	KeySubtotalExclTax = "合計金額_税抜"
	KeyTotalInclTax    = "合計金額_税込"

	KeyItemDescription = "品目"
	KeyItemUnitPrice   = "単価"
	KeyItemQuantity    = "数量"
	KeyItemUnit        = "単位"
	KeyItemTaxCategory = "税区分"
)

// Display values used when the model leaves a field out
const (
	DefaultIssueDate    = "日付不明"
	DefaultClientName   = "（見積先名不明）"
	DefaultValidUntil   = "発行日より1ヶ月"
	DefaultDeliveryDate = "別途協議"
)

// Input field names, as used by the form and the JSON API
const (
	FieldCredential  = "api_key"
	FieldEmailBody   = "email_body"
	FieldCompanyInfo = "company_info"
)

// QuotationRequest is what the user submits when generation is triggered
type QuotationRequest struct {
	EmailBody  string
	IssuerInfo string
	Credential string
}

// Validate reports the first empty field in the order credential, email body, company info.
// The credential is only checked when the completion provider needs one.
func (r QuotationRequest) Validate(requireCredential bool) error {
	if requireCredential && strings.TrimSpace(r.Credential) == "" {
		return &MissingInputError{Field: FieldCredential}
	}
	if strings.TrimSpace(r.EmailBody) == "" {
		return &MissingInputError{Field: FieldEmailBody}
	}
	if strings.TrimSpace(r.IssuerInfo) == "" {
		return &MissingInputError{Field: FieldCompanyInfo}
	}
	return nil
}

// IssuerKind tells which shape the model used for the issuer block
type IssuerKind int

const (
	IssuerText IssuerKind = iota
	IssuerEntries
)

// IssuerEntry is one label/value pair of an issuer mapping
type IssuerEntry struct {
	Label string
	Value string
}

// IssuerInfo holds the issuer block either as free text or as ordered label/value pairs
type IssuerInfo struct {
	Kind    IssuerKind
	Text    string
	Entries []IssuerEntry
}

// Lines returns one display line per text line or per entry, in source order
func (i IssuerInfo) Lines() []string {
	if i.Kind == IssuerEntries {
		lines := make([]string, 0, len(i.Entries))
		for _, e := range i.Entries {
			lines = append(lines, e.Label+": "+e.Value)
		}
		return lines
	}
	return strings.Split(i.Text, "\n")
}

// MarshalJSON keeps entry order, which a Go map would lose
func (i IssuerInfo) MarshalJSON() ([]byte, error) {
	if i.Kind != IssuerEntries {
		return json.Marshal(i.Text)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for n, e := range i.Entries {
		if n > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// LineItem is one row of the itemized table
type LineItem struct {
	Description string `json:"品目"`
	UnitPrice   Number `json:"単価"`
	Quantity    Number `json:"数量"`
	Unit        string `json:"単位"`
	TaxCategory string `json:"税区分,omitempty"`
}

// Amount is always derived; an "amount" sent by the model is ignored
func (li LineItem) Amount() Number {
	return li.UnitPrice.Mul(li.Quantity)
}

// QuotationRecord is the decoded model reply with every default already applied
type QuotationRecord struct {
	IssueDate       string     `json:"発行日"`
	Number          string     `json:"見積書番号"`
	ClientName      string     `json:"見積先名"`
	ClientAddress   string     `json:"見積先住所"`
	Issuer          IssuerInfo `json:"見積元情報"`
	ValidUntil      string     `json:"有効期限"`
	DeliveryDate    string     `json:"納期"`
	Items           []LineItem `json:"明細"`
	SubtotalExclTax Number     `json:"合計金額_税抜"`
	TotalInclTax    Number     `json:"合計金額_税込"`
}

// NewQuotationRecord returns a record holding only defaults
func NewQuotationRecord() *QuotationRecord {
	return &QuotationRecord{
		IssueDate:    DefaultIssueDate,
		ClientName:   DefaultClientName,
		ValidUntil:   DefaultValidUntil,
		DeliveryDate: DefaultDeliveryDate,
		Issuer:       IssuerInfo{Kind: IssuerText},
		Items:        []LineItem{},
	}
}

// TaxAmount is total minus subtotal, using whatever defaults those fields got.
// A missing total or subtotal yields a misleading figure; that is kept as is.
func (r *QuotationRecord) TaxAmount() Number {
	return r.TotalInclTax.Sub(r.SubtotalExclTax)
}

// RenderedDocument is the finished file handed to the download response
type RenderedDocument struct {
	FileName string
	MIMEType string
	Bytes    []byte
}

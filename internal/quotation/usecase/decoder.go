package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"quotegen-backend/internal/quotation/domain"
)

// StripFence removes a markdown code fence that starts or ends the reply.
// Prose around the JSON is left alone, so such replies still fail to parse.
func StripFence(reply string) string {
	text := strings.TrimSpace(reply)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// DecodeReply turns the model reply into a record with defaults applied.
// Missing keys are fine; unparseable text is a MalformedOutputError carrying the raw reply.
func DecodeReply(reply string) (*domain.QuotationRecord, error) {
	body := []byte(StripFence(reply))
	if !json.Valid(body) {
		var probe any
		err := json.Unmarshal(body, &probe)
		if err == nil {
			err = errors.New("invalid JSON")
		}
		return nil, &domain.MalformedOutputError{Raw: reply, Err: err}
	}

	if t := firstByte(body); t != '{' {
		return nil, &domain.RecordError{Reason: "top-level value is not an object"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &domain.RecordError{Reason: err.Error()}
	}

	rec := domain.NewQuotationRecord()
	rec.IssueDate = textField(fields[domain.KeyIssueDate], domain.DefaultIssueDate)
	rec.Number = textField(fields[domain.KeyNumber], "")
	rec.ClientName = textField(fields[domain.KeyClientName], domain.DefaultClientName)
	rec.ClientAddress = textField(fields[domain.KeyClientAddress], "")
	rec.ValidUntil = textField(fields[domain.KeyValidUntil], domain.DefaultValidUntil)
	rec.DeliveryDate = textField(fields[domain.KeyDeliveryDate], domain.DefaultDeliveryDate)

	issuer, err := issuerField(fields[domain.KeyIssuer])
	if err != nil {
		return nil, &domain.RecordError{Field: domain.KeyIssuer, Reason: err.Error()}
	}
	rec.Issuer = issuer

	if rec.SubtotalExclTax, err = numberField(fields[domain.KeySubtotalExclTax]); err != nil {
		return nil, &domain.RecordError{Field: domain.KeySubtotalExclTax, Reason: err.Error()}
	}
	if rec.TotalInclTax, err = numberField(fields[domain.KeyTotalInclTax]); err != nil {
		return nil, &domain.RecordError{Field: domain.KeyTotalInclTax, Reason: err.Error()}
	}

	items, err := itemsField(fields[domain.KeyItems])
	if err != nil {
		return nil, err
	}
	rec.Items = items

	return rec, nil
}

func firstByte(b []byte) byte {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || string(raw) == "null"
}

// displayText unquotes strings and prints anything else as compact JSON
func displayText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(bytes.TrimSpace(raw))
	}
	return buf.String()
}

func textField(raw json.RawMessage, def string) string {
	if isAbsent(raw) {
		return def
	}
	return displayText(raw)
}

func numberField(raw json.RawMessage) (domain.Number, error) {
	if isAbsent(raw) {
		return domain.Number{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return domain.Number{}, err
	}
	num, ok := tok.(json.Number)
	if !ok {
		return domain.Number{}, fmt.Errorf("expected a number, got %s", string(bytes.TrimSpace(raw)))
	}
	return domain.ParseNumber(num.String())
}

func issuerField(raw json.RawMessage) (domain.IssuerInfo, error) {
	if isAbsent(raw) {
		return domain.IssuerInfo{Kind: domain.IssuerText}, nil
	}
	if firstByte(raw) != '{' {
		return domain.IssuerInfo{Kind: domain.IssuerText, Text: displayText(raw)}, nil
	}

	// Walk tokens so entries keep the order the model wrote them in
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return domain.IssuerInfo{}, err
	}
	info := domain.IssuerInfo{Kind: domain.IssuerEntries, Entries: []domain.IssuerEntry{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return domain.IssuerInfo{}, err
		}
		label, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return domain.IssuerInfo{}, err
		}
		info.Entries = append(info.Entries, domain.IssuerEntry{Label: label, Value: displayText(value)})
	}
	return info, nil
}

func itemsField(raw json.RawMessage) ([]domain.LineItem, error) {
	items := []domain.LineItem{}
	if isAbsent(raw) {
		return items, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, &domain.RecordError{Field: domain.KeyItems, Reason: "expected a list of line items"}
	}

	for i, elem := range elems {
		var fields map[string]json.RawMessage
		if firstByte(elem) != '{' || json.Unmarshal(elem, &fields) != nil {
			return nil, &domain.RecordError{Field: fmt.Sprintf("%s[%d]", domain.KeyItems, i), Reason: "expected an object"}
		}

		item := domain.LineItem{
			Description: textField(fields[domain.KeyItemDescription], ""),
			Unit:        textField(fields[domain.KeyItemUnit], ""),
			TaxCategory: textField(fields[domain.KeyItemTaxCategory], ""),
		}
		var err error
		if item.UnitPrice, err = numberField(fields[domain.KeyItemUnitPrice]); err != nil {
			return nil, &domain.RecordError{Field: fmt.Sprintf("%s[%d].%s", domain.KeyItems, i, domain.KeyItemUnitPrice), Reason: err.Error()}
		}
		if item.Quantity, err = numberField(fields[domain.KeyItemQuantity]); err != nil {
			return nil, &domain.RecordError{Field: fmt.Sprintf("%s[%d].%s", domain.KeyItems, i, domain.KeyItemQuantity), Reason: err.Error()}
		}
		items = append(items, item)
	}
	return items, nil
}

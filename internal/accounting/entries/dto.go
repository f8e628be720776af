package entries

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/primanota-erp/primanota/internal/accounting/vat"
)

// VatRowRequest is one (taxable base, rate) pair of the request breakdown.
type VatRowRequest struct {
	TaxableBase float64 `json:"taxable_base" validate:"gt=0"`
	RateID      int64   `json:"rate_id" validate:"required"`
}

// GenerateEntryRequest is the API shape of a new registration.
type GenerateEntryRequest struct {
	FunctionID     int64           `json:"function_id" validate:"required"`
	Date           string          `json:"date" validate:"required"`
	CounterpartyID int64           `json:"counterparty_id,omitempty"`
	DocumentNumber string          `json:"document_number,omitempty"`
	DocumentDate   string          `json:"document_date,omitempty"`
	DueDate        string          `json:"due_date,omitempty"`
	DocumentTotal  float64         `json:"document_total" validate:"gte=0"`
	Description    string          `json:"description"`
	VatRows        []VatRowRequest `json:"vat_rows,omitempty" validate:"dive"`
	OpenItemIDs    []int64         `json:"open_item_ids,omitempty"`
	SourceRef      string          `json:"source_ref,omitempty"`
}

const dateLayout = "2006-01-02"

// ToInput parses the request into a service input.
func (r GenerateEntryRequest) ToInput() (GenerateInput, error) {
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return GenerateInput{}, fmt.Errorf("entries: invalid date %q", r.Date)
	}
	header := DocumentHeader{
		Date:           date,
		CounterpartyID: r.CounterpartyID,
		DocumentNumber: r.DocumentNumber,
		DocumentTotal:  r.DocumentTotal,
		Description:    r.Description,
	}
	if r.DocumentDate != "" {
		if header.DocumentDate, err = time.Parse(dateLayout, r.DocumentDate); err != nil {
			return GenerateInput{}, fmt.Errorf("entries: invalid document date %q", r.DocumentDate)
		}
	}
	if r.DueDate != "" {
		if header.DueDate, err = time.Parse(dateLayout, r.DueDate); err != nil {
			return GenerateInput{}, fmt.Errorf("entries: invalid due date %q", r.DueDate)
		}
	}
	input := GenerateInput{
		FunctionID:     r.FunctionID,
		Header:         header,
		OpenItemIDs:    r.OpenItemIDs,
		CounterpartyID: r.CounterpartyID,
	}
	for _, row := range r.VatRows {
		input.VatRows = append(input.VatRows, vat.BreakdownRow{TaxableBase: row.TaxableBase, RateID: row.RateID})
	}
	if r.SourceRef != "" {
		ref, err := uuid.Parse(r.SourceRef)
		if err != nil {
			return GenerateInput{}, fmt.Errorf("entries: invalid source ref %q", r.SourceRef)
		}
		input.SourceRef = ref
	}
	return input, nil
}

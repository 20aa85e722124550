package entity

import (
	"time"

	"github.com/google/uuid"
)

// LabelRecord is one extracted shipping label ready for persistence or export.
type LabelRecord struct {
	Organization string  `json:"organization"`
	Page         int     `json:"page"`
	Slot         int     `json:"slot"`
	Folio        int     `json:"folio"`
	DeliveryDate string  `json:"delivery_date"`
	DeliveryHour *string `json:"delivery_hour,omitempty"`
	Quantity     string  `json:"quantity"`
	ClientInfo   string  `json:"client_info"`
	ClientName   string  `json:"client_name"`
	PostalCode   string  `json:"postal_code"`
	State        string  `json:"state"`
	City         string  `json:"city"`
	Code         string  `json:"code"`
	SalesNumber  string  `json:"sales_number"`
	Product      string  `json:"product"`
	SKU          *string `json:"sku,omitempty"`
	DisplayDate  string  `json:"display_date"`
	Color        string  `json:"color"`
}

// StoredLabel is a LabelRecord as read back from the label store.
type StoredLabel struct {
	ID         uuid.UUID   `json:"id"`
	Record     LabelRecord `json:"record"`
	SourceFile string      `json:"source_file"`
	PrintedBy  string      `json:"printed_by"`
	PrintedAt  time.Time   `json:"printed_at"`
	CreatedAt  time.Time   `json:"created_at"`
}

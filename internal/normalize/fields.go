// Package normalize turns raw region text into typed label fields.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/joseph-ayodele/labels-tracker/constants"
)

// Options carry run-level inputs for normalization.
type Options struct {
	// Reference supplies the year for day/month dates. Zero means now.
	Reference time.Time
	// States overrides the state dictionary.
	States []string
}

func (o Options) referenceYear() int {
	if o.Reference.IsZero() {
		return time.Now().Year()
	}
	return o.Reference.Year()
}

func (o Options) states() []string {
	if len(o.States) > 0 {
		return o.States
	}
	return constants.States()
}

var (
	quantityNoiseRe = regexp.MustCompile(`(?i)cantidad|productos|unidad(es)?`)
	packIDRe        = regexp.MustCompile(`(?i)pack\s*id:`)
	skuRe           = regexp.MustCompile(`SKU:\s*(\S+)`)
	nonDigitRe      = regexp.MustCompile(`\D+`)
)

// Quantity removes the printed captions around the unit count.
func Quantity(raw string) string {
	return collapse(quantityNoiseRe.ReplaceAllString(raw, ""))
}

// Code keeps the digits of a tracking code; "" means no code.
func Code(raw string) string {
	return nonDigitRe.ReplaceAllString(raw, "")
}

func SalesNumber(raw string) string {
	return Code(packIDRe.ReplaceAllString(raw, ""))
}

// Product splits "<name> SKU: <token>" into the name and the SKU.
func Product(raw string) (string, *string) {
	m := skuRe.FindStringSubmatchIndex(raw)
	if m == nil {
		return collapse(raw), nil
	}
	sku := raw[m[2]:m[3]]
	return collapse(raw[:m[0]] + " " + raw[m[1]:]), &sku
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Fields is one slot's normalized values.
type Fields struct {
	Quantity    string
	Date        Date
	Code        string
	SalesNumber string
	Product     string
	SKU         *string
	ClientInfo  string
	Address     Address
	// Populated is true when any region of the slot read text.
	Populated bool
}

// Apply normalizes every field present in raw.
func Apply(raw map[constants.Field]string, opts Options) Fields {
	var out Fields
	for field, text := range raw {
		if strings.TrimSpace(text) == "" {
			continue
		}
		out.Populated = true
		switch field {
		case constants.FieldQuantity:
			out.Quantity = Quantity(text)
		case constants.FieldDeliveryDate:
			out.Date = DeliveryDate(text, opts)
		case constants.FieldBarcode:
			out.Code = Code(text)
		case constants.FieldSalesNumber:
			out.SalesNumber = SalesNumber(text)
		case constants.FieldProduct:
			out.Product, out.SKU = Product(text)
		case constants.FieldClientInfo:
			out.ClientInfo = collapse(text)
			out.Address = ClientInfo(text, opts)
		}
	}
	return out
}

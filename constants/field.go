package constants

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field is the logical name of a sampled label region (slot suffix removed).
type Field string

// Stable values (operators draw regions with these exact labels).
const (
	FieldDeliveryDate Field = "FECHA ENTREGA"
	FieldQuantity     Field = "CANTIDAD"
	FieldClientInfo   Field = "CLIENTE INFO"
	FieldBarcode      Field = "CODIGO DE BARRA"
	FieldSalesNumber  Field = "NUM DE VENTA"
	FieldProduct      Field = "PRODUCTO"
)

var allFields = []Field{
	FieldDeliveryDate,
	FieldQuantity,
	FieldClientInfo,
	FieldBarcode,
	FieldSalesNumber,
	FieldProduct,
}

// MarkerField is probed on the first page to choose a layout variant.
const MarkerField = FieldDeliveryDate

func AllFields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

// CanonicalField maps a free-form region label (without slot suffix) to a known field.
// Matching is case and accent insensitive and, like the operators' labels, accepts
// any label that contains the canonical name.
func CanonicalField(label string) (Field, bool) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(StripAccents(label)), " "))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]Field{
		"FECHA DE ENTREGA":  FieldDeliveryDate,
		"ENTREGA":           FieldDeliveryDate,
		"CODIGO DE BARRAS":  FieldBarcode,
		"CODIGO":            FieldBarcode,
		"NUMERO DE VENTA":   FieldSalesNumber,
		"NUM VENTA":         FieldSalesNumber,
		"CLIENTE":           FieldClientInfo,
		"DATOS DEL CLIENTE": FieldClientInfo,
	}
	if f, ok := synonyms[normalized]; ok {
		return f, true
	}

	for _, f := range allFields {
		if strings.Contains(normalized, string(f)) {
			return f, true
		}
	}
	return "", false
}

// StripAccents removes combining marks ("Código" -> "Codigo").
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

package constants

// DefaultRegionName is used for state and city when a label has a postal code
// but no recognizable state.
const DefaultRegionName = "San Luis Potosí"

var mexicanStates = []string{
	"Aguascalientes", "Baja California", "Baja California Sur", "Campeche", "Chiapas",
	"Chihuahua", "Coahuila", "Colima", "Durango", "Guanajuato", "Guerrero",
	"Hidalgo", "Jalisco", "Michoacán", "Morelos", "Nayarit", "Nuevo León",
	"Oaxaca", "Puebla", "Querétaro", "Quintana Roo", "San Luis Potosí", "Sinaloa",
	"Sonora", "Tabasco", "Tamaulipas", "Tlaxcala", "Veracruz", "Yucatán", "Zacatecas",
	"Ciudad de México", "Estado de México",
}

// States returns the state dictionary used for address detection.
func States() []string {
	out := make([]string, len(mexicanStates))
	copy(out, mexicanStates)
	return out
}

package constants

import "time"

// weekday index follows time.Weekday (0=Sunday).
var (
	weekdayAbbrev = [7]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"}
	weekdayName   = [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

	// Sunday and Saturday share orange.
	weekdayColor = [7]string{
		"#FFA500", // domingo
		"#0000FF", // lunes
		"#000000", // martes
		"#008000", // miércoles
		"#800080", // jueves
		"#FF0000", // viernes
		"#FFA500", // sábado
	}
)

func WeekdayAbbrev(d time.Weekday) string { return weekdayAbbrev[d%7] }
func WeekdayName(d time.Weekday) string   { return weekdayName[d%7] }
func WeekdayColor(d time.Weekday) string  { return weekdayColor[d%7] }

// WeekdayNames returns the Spanish weekday names, accented and unaccented.
func WeekdayNames() []string {
	out := make([]string, 0, 9)
	out = append(out, weekdayName[:]...)
	return append(out, "miercoles", "sabado")
}

// DefaultColor is used when no delivery date is known.
const DefaultColor = "#000000"

package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/labels-tracker/constants"
)

var (
	deliveryHourRe   = regexp.MustCompile(`(?i)antes\s+de\s+(\d{1,2}):(\d{2})\s*hs\.?`)
	deliverMarkerRe  = regexp.MustCompile(`(?i)entregar:?`)
	weekdayNamesRe   = regexp.MustCompile(`(?i)` + strings.Join(constants.WeekdayNames(), "|"))
	digitRunRe       = regexp.MustCompile(`\d+`)
	monthAbbrevByKey = map[string]time.Month{
		"ene": time.January, "feb": time.February, "mar": time.March, "abr": time.April,
		"may": time.May, "jun": time.June, "jul": time.July, "ago": time.August,
		"sep": time.September, "oct": time.October, "nov": time.November, "dic": time.December,
	}
)

// Date is a resolved delivery date. OK is false when nothing parsed; Hour may
// still be set in that case.
type Date struct {
	Time    time.Time
	ISO     string
	Hour    string
	Display string
	Color   string
	OK      bool
}

// NewDate derives the display fields for t.
func NewDate(t time.Time, hour string) Date {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Date{
		Time:    t,
		ISO:     t.Format(time.DateOnly),
		Hour:    hour,
		Display: fmt.Sprintf("%s-%s %d", t.Format(time.DateOnly), constants.WeekdayAbbrev(t.Weekday()), t.Day()),
		Color:   constants.WeekdayColor(t.Weekday()),
		OK:      true,
	}
}

// DeliveryDate parses label date text such as "Entregar: viernes 7/feb antes de
// 14:00 hs" or "07/02/2025". Month-name dates take the reference year.
func DeliveryDate(raw string, opts Options) Date {
	text := strings.TrimSpace(raw)

	var hour string
	if m := deliveryHourRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		hour = fmt.Sprintf("%02d:%s", h, m[2])
		text = strings.Replace(text, m[0], "", 1)
	}

	text = deliverMarkerRe.ReplaceAllString(text, "")
	text = weekdayNamesRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(strings.Replace(text, ":", "", 1))

	t, ok := parseDayMonth(text, opts.referenceYear())
	if !ok {
		return Date{Hour: hour, Color: constants.DefaultColor}
	}
	return NewDate(t, hour)
}

func parseDayMonth(text string, refYear int) (time.Time, bool) {
	parts := strings.Split(text, "/")
	if len(parts) < 2 {
		return time.Time{}, false
	}

	dayRuns := digitRunRe.FindAllString(parts[0], -1)
	if len(dayRuns) == 0 {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(dayRuns[len(dayRuns)-1])

	var month time.Month
	year := refYear
	if len(parts) == 3 {
		m := digitRunRe.FindString(parts[1])
		y := digitRunRe.FindString(parts[2])
		if m == "" || y == "" {
			return time.Time{}, false
		}
		mi, _ := strconv.Atoi(m)
		month = time.Month(mi)
		year, _ = strconv.Atoi(y)
		if len(y) <= 2 {
			year += 2000
		}
	} else {
		key := strings.ToLower(constants.StripAccents(strings.TrimSpace(parts[1])))
		if r := []rune(key); len(r) >= 3 {
			key = string(r[:3])
		}
		var found bool
		if month, found = monthAbbrevByKey[key]; !found {
			return time.Time{}, false
		}
	}

	if month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

// Package statement extracts purchase lines from BBVA card-statement
// text and writes them as a workbook for the intake directory.
package statement

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MSICharge is one deferred interest-free installment purchase.
type MSICharge struct {
	OperationDate  time.Time
	Description    string
	OriginalAmount float64
	PendingBalance float64
	RequiredPayment float64
	PaymentNumber  string
	InterestRate   string
}

// RegularCharge is one regular (non-installment) purchase or credit.
type RegularCharge struct {
	OperationDate time.Time
	ChargeDate    time.Time
	Amount        float64
	Description   string
}

// Statement is the parsed content of one statement.
type Statement struct {
	MSI     []MSICharge
	Regular []RegularCharge
}

var (
	msiSection = regexp.MustCompile(`(?is)COMPRAS Y CARGOS DIFERIDOS A MESES SIN INTERESES(.+?)COMPRAS Y CARGOS DIFERIDOS A MESES CON INTERESES`)
	regularSection = regexp.MustCompile(`(?is)CARGOS,COMPRAS Y ABONOS REGULARES\(NO A MESES\)(.+?)TOTAL CARGOS`)

	msiLine = regexp.MustCompile(`(?i)(\d{2}-[a-z]{3}-\d{4})\s+(.+?)\s+\$([\d,]+\.\d{2})\s+\$([\d,]+\.\d{2})\s+\$([\d,]+\.\d{2})\s+(\d+ de \d+)\s+([\d.]+%)`)
	regularLine = regexp.MustCompile(`(?i)(\d{2}-[a-z]{3}-\d{4})\s+(\d{2}-[a-z]{3}-\d{4})\s+(.+?)\s+([+-]\s*\$?[\d,]+\.\d{2})`)
)

// Statement dates are printed with Spanish month abbreviations.
var spanishMonths = map[string]time.Month{
	"ene": time.January, "feb": time.February, "mar": time.March,
	"abr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "ago": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dic": time.December,
}

// Parse scans the statement text for the installment and regular charge
// sections. Missing sections yield empty slices, not an error.
func Parse(text string) *Statement {
	st := &Statement{}

	if m := msiSection.FindStringSubmatch(text); m != nil {
		for _, line := range msiLine.FindAllStringSubmatch(m[1], -1) {
			date, ok := parseDate(line[1])
			if !ok {
				continue
			}
			st.MSI = append(st.MSI, MSICharge{
				OperationDate:   date,
				Description:     strings.TrimSpace(line[2]),
				OriginalAmount:  parseAmount(line[3]),
				PendingBalance:  parseAmount(line[4]),
				RequiredPayment: parseAmount(line[5]),
				PaymentNumber:   line[6],
				InterestRate:    line[7],
			})
		}
	}

	if m := regularSection.FindStringSubmatch(text); m != nil {
		for _, line := range regularLine.FindAllStringSubmatch(m[1], -1) {
			opDate, ok := parseDate(line[1])
			if !ok {
				continue
			}
			chargeDate, _ := parseDate(line[2])
			st.Regular = append(st.Regular, RegularCharge{
				OperationDate: opDate,
				ChargeDate:    chargeDate,
				Amount:        parseAmount(line[4]),
				Description:   strings.TrimSpace(line[3]),
			})
		}
	}

	return st
}

// LatestOperationDate returns the newest regular-charge date, used to
// name the output workbook. ok is false when no charge parsed.
func (s *Statement) LatestOperationDate() (time.Time, bool) {
	var latest time.Time
	for _, c := range s.Regular {
		if c.OperationDate.After(latest) {
			latest = c.OperationDate
		}
	}
	return latest, !latest.IsZero()
}

func parseDate(s string) (time.Time, bool) {
	parts := strings.Split(strings.ToLower(s), "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, ok := spanishMonths[parts[1]]
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// parseAmount strips "$", thousands separators and spaces; a leading
// "-" keeps the amount negative.
func parseAmount(s string) float64 {
	clean := strings.NewReplacer("+", "", " ", "", "$", "", ",", "").Replace(s)
	v, err := strconv.ParseFloat(strings.TrimPrefix(clean, "-"), 64)
	if err != nil {
		return 0
	}
	if strings.Contains(s, "-") {
		return -v
	}
	return v
}

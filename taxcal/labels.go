package taxcal

import "fmt"

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// MonthName returns the Indonesian month name, or "" for out-of-range input.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// PeriodLabel formats a period for display, e.g. "Januari 2024".
func PeriodLabel(month, year int) string {
	return fmt.Sprintf("%s %d", MonthName(month), year)
}

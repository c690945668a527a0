// Package threshold holds the check predicates of the Overwatch agents.
// Each predicate maps a raw reading to a report check state.
package threshold

import (
	"time"

	"github.com/Guliveer/overwatch-agents/internal/report"
)

const (
	// DiskFreeRedBytes is the free-space floor of a volume.
	DiskFreeRedBytes uint64 = 2 << 30

	// DiskFreeMinTotalFactor guards small volumes: the free-space check only
	// applies to volumes of at least this many times DiskFreeRedBytes.
	DiskFreeMinTotalFactor = 4

	// DiskPercentRed is the used-space percentage at which a volume turns red.
	DiskPercentRed = 92.0

	// SwapPercentRed is the swap usage above which swap turns red.
	SwapPercentRed = 80.0

	// CertRemainingDaysRed is the certificate validity floor in days.
	CertRemainingDaysRed = 10.0

	// LastErrorWindow is how long a matched log error keeps its file red.
	LastErrorWindow = 10 * time.Minute
)

// DiskFree checks the free bytes of a volume.
func DiskFree(total, free uint64) report.CheckState {
	return report.StateOf(total >= DiskFreeMinTotalFactor*DiskFreeRedBytes && free < DiskFreeRedBytes)
}

// DiskPercent checks the used percentage of a volume.
func DiskPercent(percent float64) report.CheckState {
	return report.StateOf(percent >= DiskPercentRed)
}

// SwapPercent checks the used percentage of swap.
func SwapPercent(percent float64) report.CheckState {
	return report.StateOf(percent > SwapPercentRed)
}

// HTTPStatus checks a response status code.
func HTTPStatus(code int) report.CheckState {
	return report.StateOf(code != 200)
}

// Contains checks the presence of an expected substring.
func Contains(present bool) report.CheckState {
	return report.StateOf(!present)
}

// CertRemaining checks the remaining validity of a TLS certificate.
func CertRemaining(days float64) report.CheckState {
	return report.StateOf(days < CertRemainingDaysRed)
}

// LastErrorRecency checks how recently a log error was matched.
// A zero last time means no error was ever seen.
func LastErrorRecency(last, now time.Time) report.CheckState {
	if last.IsZero() {
		return report.Green
	}
	return report.StateOf(now.Sub(last) < LastErrorWindow)
}

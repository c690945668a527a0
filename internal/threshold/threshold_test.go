package threshold

import (
	"testing"
	"time"

	"github.com/Guliveer/overwatch-agents/internal/report"
)

const (
	mib = uint64(1) << 20
	gib = uint64(1) << 30
)

func TestDiskFree(t *testing.T) {
	tests := []struct {
		name        string
		total, free uint64
		want        report.CheckState
	}{
		{"small volume almost full", 1 * gib, 100 * mib, report.Green},
		{"just below guard", 8*gib - 1, 0, report.Green},
		{"guard boundary low free", 8 * gib, 2*gib - 1, report.Red},
		{"guard boundary exact free", 8 * gib, 2 * gib, report.Green},
		{"large volume low free", 500 * gib, 1 * gib, report.Red},
		{"large volume plenty free", 500 * gib, 100 * gib, report.Green},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DiskFree(tt.total, tt.free); got != tt.want {
				t.Errorf("DiskFree(%d, %d) = %s, want %s", tt.total, tt.free, got, tt.want)
			}
		})
	}
}

func TestDiskPercent(t *testing.T) {
	tests := []struct {
		percent float64
		want    report.CheckState
	}{
		{0, report.Green},
		{91.99, report.Green},
		{92, report.Red},
		{100, report.Red},
	}
	for _, tt := range tests {
		if got := DiskPercent(tt.percent); got != tt.want {
			t.Errorf("DiskPercent(%v) = %s, want %s", tt.percent, got, tt.want)
		}
	}
}

func TestSwapPercent(t *testing.T) {
	tests := []struct {
		percent float64
		want    report.CheckState
	}{
		{0, report.Green},
		{80, report.Green},
		{80.01, report.Red},
		{100, report.Red},
	}
	for _, tt := range tests {
		if got := SwapPercent(tt.percent); got != tt.want {
			t.Errorf("SwapPercent(%v) = %s, want %s", tt.percent, got, tt.want)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	for code, want := range map[int]report.CheckState{
		200: report.Green,
		201: report.Red,
		301: report.Red,
		404: report.Red,
		500: report.Red,
	} {
		if got := HTTPStatus(code); got != want {
			t.Errorf("HTTPStatus(%d) = %s, want %s", code, got, want)
		}
	}
}

func TestContains(t *testing.T) {
	if Contains(true) != report.Green {
		t.Error("present substring should be green")
	}
	if Contains(false) != report.Red {
		t.Error("missing substring should be red")
	}
}

func TestCertRemaining(t *testing.T) {
	if CertRemaining(9.99) != report.Red {
		t.Error("9.99 days should be red")
	}
	if CertRemaining(10) != report.Green {
		t.Error("10 days should be green")
	}
	if CertRemaining(-1) != report.Red {
		t.Error("expired certificate should be red")
	}
}

func TestLastErrorRecency(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		last time.Time
		want report.CheckState
	}{
		{"never", time.Time{}, report.Green},
		{"just now", now, report.Red},
		{"nine minutes", now.Add(-9 * time.Minute), report.Red},
		{"ten minutes", now.Add(-10 * time.Minute), report.Green},
		{"an hour", now.Add(-time.Hour), report.Green},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LastErrorRecency(tt.last, now); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

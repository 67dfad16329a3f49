// Package kpimetrics computes the derived production ratios used across
// report rows and dashboard windows. All functions are pure; every
// division is guarded so a zero divisor yields 0, never NaN or Inf.
package kpimetrics

// Totals carries raw production counters for one report row or one
// aggregated window.
type Totals struct {
	PrintsCompleted float64 `json:"printsCompleted"`
	JobsCompleted   float64 `json:"jobsCompleted"`
	Misprints       float64 `json:"misprints"`
	ScreensUsed     float64 `json:"screensUsed"`
	HoursWorked     float64 `json:"hoursWorked"`
}

// Calculated holds the derived ratios for a set of totals.
type Calculated struct {
	PrintsPerHour float64 `json:"printsPerHour"`
	JobsPerHour   float64 `json:"jobsPerHour"`
	DefectRate    float64 `json:"defectRate"`
	ScreensPerJob float64 `json:"screensPerJob"`
	OrderAccuracy float64 `json:"orderAccuracy"`
}

// Calculate derives the ratio metrics from raw totals.
func Calculate(t Totals) Calculated {
	return Calculated{
		PrintsPerHour: ratio(t.PrintsCompleted, t.HoursWorked),
		JobsPerHour:   ratio(t.JobsCompleted, t.HoursWorked),
		DefectRate:    ratio(t.Misprints, t.PrintsCompleted) * 100,
		ScreensPerJob: ratio(t.ScreensUsed, t.JobsCompleted),
		OrderAccuracy: OrderAccuracy(t.PrintsCompleted, t.Misprints),
	}
}

// OrderAccuracy returns ((prints - misprints) / prints) * 100, or 0 when
// prints is not positive. Dashboard windows call this on summed totals so
// the accuracy is weighted by volume, not averaged per row.
func OrderAccuracy(prints, misprints float64) float64 {
	return ratio(prints-misprints, prints) * 100
}

// Change returns the day-over-day percentage delta. Both zero yields 0;
// a zero yesterday with nonzero today yields 100.
func Change(today, yesterday float64) float64 {
	if yesterday == 0 {
		if today > 0 {
			return 100
		}
		return 0
	}
	return (today - yesterday) / yesterday * 100
}

func ratio(numerator, divisor float64) float64 {
	if divisor <= 0 {
		return 0
	}
	return numerator / divisor
}

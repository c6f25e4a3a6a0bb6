// Package cycle computes monthly traffic-reset dates. All math is done
// in UTC calendar fields; a cycle day of 0 means the last day of the
// target month, and days past the end of a month clamp to its last day.
package cycle

import "time"

// InitialReset returns the first reset date for a newly created node.
// If from falls on or before this month's target day the reset lands in
// the current month, otherwise it rolls to the next month.
func InitialReset(from time.Time, day int) time.Time {
	f := from.UTC()
	year, month, d := f.Date()
	if d <= targetDay(day, lastDay(year, month)) {
		return monthReset(year, month, day)
	}
	return monthReset(year, month+1, day)
}

// RolloverReset returns the reset date following a rollover: always the
// target day of the month after from, so a reset never repeats within
// the same month.
func RolloverReset(from time.Time, day int) time.Time {
	f := from.UTC()
	year, month, _ := f.Date()
	return monthReset(year, month+1, day)
}

// monthReset builds midnight UTC of the target day within year/month.
// time.Date normalizes out-of-range months, so month may exceed December.
func monthReset(year int, month time.Month, day int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	t := targetDay(day, lastDay(first.Year(), first.Month()))
	return time.Date(first.Year(), first.Month(), t, 0, 0, 0, 0, time.UTC)
}

func targetDay(day, last int) int {
	if day == 0 || day > last {
		return last
	}
	return day
}

func lastDay(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

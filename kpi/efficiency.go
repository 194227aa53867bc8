/*
efficiency.go - Time-efficiency scoring

PURPOSE:
  Combines hours utilization and task deadline compliance into the
  Efektivitas Waktu score.

FORMULA:
  hours      = min(100, actual/target * 100), or 100 with no target
  compliance = on-time tasks / total tasks * 100, or 100 with no tasks
  final      = hours*0.5 + compliance*0.5, 2 decimal places

  Hours efficiency is capped at 100: overworking does not inflate the
  score above the maximum.
*/
package kpi

import (
	"github.com/shopspring/decimal"
	"github.com/taxdesk/kpi-engine/taxcal"
)

var hundred = decimal.NewFromInt(100)

// EfektivitasWaktuInput collects the raw figures for time-efficiency
// scoring, typically derived from an employee's jobdesks via JobdeskStats.
type EfektivitasWaktuInput struct {
	TargetHours float64
	ActualHours float64
	TasksOnTime int
	TotalTasks  int
}

// EfektivitasWaktu computes the time-efficiency score. Untracked hours
// and an empty task list each earn full credit rather than a penalty.
func EfektivitasWaktu(in EfektivitasWaktuInput) decimal.Decimal {
	hours := hundred
	if in.TargetHours > 0 {
		hours = decimal.NewFromFloat(in.ActualHours).
			Div(decimal.NewFromFloat(in.TargetHours)).
			Mul(hundred)
		if hours.GreaterThan(hundred) {
			hours = hundred
		}
	}

	compliance := hundred
	if in.TotalTasks > 0 {
		compliance = decimal.NewFromInt(int64(in.TasksOnTime)).
			Div(decimal.NewFromInt(int64(in.TotalTasks))).
			Mul(hundred)
	}

	half := decimal.NewFromFloat(0.5)
	return hours.Mul(half).Add(compliance.Mul(half)).Round(2)
}

// JobdeskStats derives the time-efficiency input from raw jobdesk records
// as of the given day, applying the optimistic on-time policy per task.
func JobdeskStats(jobdesks []Jobdesk, today taxcal.Date) EfektivitasWaktuInput {
	in := EfektivitasWaktuInput{TotalTasks: len(jobdesks)}
	for _, j := range jobdesks {
		in.TargetHours += j.TargetHours
		in.ActualHours += j.ActualHours
		if j.OnTime(today) {
			in.TasksOnTime++
		}
	}
	return in
}

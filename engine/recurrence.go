/*
recurrence.go - Recurrence expander

PURPOSE:
  Turns a recurring-transaction template into concrete dated Events within
  a window. Pure function of template + window; disabled templates expand
  to nothing.

CLAMPING:
  A template anchored on day 31 lands on the 30th in a 30-day month and on
  the 28th/29th in February. One occurrence per calendar month touching the
  window, kept only when it falls inside [start, end] inclusive.

PRIORITY:
  Recurrence-derived events are always medium priority; recurring
  obligations are not user-prioritizable in this model.
*/
package engine

import "fmt"

// ExpandRecurrence emits one Event per monthly occurrence of the template
// whose clamped date falls within [start, end] inclusive.
func ExpandRecurrence(tpl RecurrenceTemplate, start, end Date) []Event {
	if !tpl.Enabled {
		return nil
	}

	anchor := tpl.DayOfMonth
	if anchor < 1 {
		anchor = 1
	}

	var events []Event
	year, month := start.Year(), start.Month()
	for {
		occ := ClampDay(year, month, anchor)
		if occ.After(end) {
			break
		}
		if occ.AfterOrEqual(start) {
			events = append(events, newEvent(
				fmt.Sprintf("rec-%s-%s", tpl.ID, occ),
				OriginRecurrence,
				occ,
				tpl.Description,
				tpl.Category,
				tpl.Direction,
				tpl.Amount,
				PriorityMedium,
			))
		}
		// next month
		if month == 12 {
			year, month = year+1, 1
		} else {
			month++
		}
	}
	return events
}

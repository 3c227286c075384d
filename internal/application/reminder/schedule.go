package reminder

import "time"

const anchorHour = 9 // reminders go out at 09:00 local

// buildSchedule computes the send-at instants for one seeding call.
//
// Test mode (testEveryMinutes > 0): exactly 6 instants, now + k·testEveryMinutes
// for k = 1..6, regardless of the event date.
//
// Production mode: the anchor is today at 09:00 in loc, pushed to tomorrow if
// already past. From there the walk advances intervalDays at a time, emitting
// every instant strictly before eventDate − 24h. One final instant at
// eventDate − 2h is appended only while it is still in the future; an event
// already within two hours gets no final reminder.
//
// The returned instants are strictly increasing and, except under the test
// override, all lie in the future relative to now.
func buildSchedule(now, eventDate time.Time, intervalDays, testEveryMinutes int, loc *time.Location) []time.Time {
	if testEveryMinutes > 0 {
		out := make([]time.Time, 0, 6)
		for k := 1; k <= 6; k++ {
			out = append(out, now.Add(time.Duration(k*testEveryMinutes)*time.Minute))
		}
		return out
	}

	local := now.In(loc)
	cursor := time.Date(local.Year(), local.Month(), local.Day(), anchorHour, 0, 0, 0, loc)
	if !cursor.After(now) {
		cursor = cursor.Add(24 * time.Hour)
	}

	var out []time.Time
	dayBefore := eventDate.Add(-24 * time.Hour)
	for cursor.Before(dayBefore) {
		out = append(out, cursor)
		cursor = cursor.Add(time.Duration(intervalDays) * 24 * time.Hour)
	}

	if twoHoursBefore := eventDate.Add(-2 * time.Hour); twoHoursBefore.After(now) {
		out = append(out, twoHoursBefore)
	}
	return out
}

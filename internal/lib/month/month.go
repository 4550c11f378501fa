// Package month считает календарные даты окончания подписок.
package month

import (
	"time"
)

// AddMonths сдвигает t на n календарных месяцев. Если в целевом месяце
// нет такого дня (31 января + 1 месяц), результат прижимается к последнему
// дню месяца, а не переносится на следующий, как в time.AddDate.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// DaysLeft возвращает количество полных и неполных суток до end, не меньше нуля.
func DaysLeft(end, now time.Time) int {
	if !end.After(now) {
		return 0
	}
	left := end.Sub(now)
	days := int(left / (24 * time.Hour))
	if left%(24*time.Hour) != 0 {
		days++
	}
	return days
}

func daysIn(year int, m time.Month, loc *time.Location) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, loc).Day()
}

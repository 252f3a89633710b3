// Package dates содержит чистую календарную арифметику для движка сверки:
// нормализацию момента времени к календарному дню, перечисление дней
// в диапазоне и вычитание множества покрытых дат.
//
// Все функции работают с time.Time, усечённым до полуночи UTC, —
// один день журнала соответствует одному такому значению.
package dates

import "time"

// Day усекает момент времени до календарного дня в UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Yesterday возвращает день, предшествующий дню момента now.
func Yesterday(now time.Time) time.Time {
	return Day(now).AddDate(0, 0, -1)
}

// DaysBetween считает количество полных дней от from до to (floor).
// Если to раньше from, результат отрицательный.
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}

// ElapsedDays считает число полных суток, фактически прошедших от from
// до to, без усечения к календарному дню: аккаунт, созданный в 23:59,
// в 00:01 следующего дня ещё не прожил ни одних суток.
func ElapsedDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// Range перечисляет все календарные дни диапазона [from, to] по возрастанию.
// Если to раньше from, возвращает пустой срез.
func Range(from, to time.Time) []time.Time {
	from, to = Day(from), Day(to)
	if to.Before(from) {
		return nil
	}
	days := make([]time.Time, 0, DaysBetween(from, to)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Subtract возвращает дни из days, отсутствующие в covered, сохраняя порядок.
// Сравнение идёт по календарному дню, элементы covered нормализуются.
func Subtract(days, covered []time.Time) []time.Time {
	set := make(map[time.Time]struct{}, len(covered))
	for _, c := range covered {
		set[Day(c)] = struct{}{}
	}
	var missing []time.Time
	for _, d := range days {
		if _, ok := set[Day(d)]; !ok {
			missing = append(missing, d)
		}
	}
	return missing
}

// Max возвращает более позднюю из двух дат.
func Max(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

package dateutil

import "time"

// Layout — ключ дня "YYYY-MM-DD". Одна таймзона (UTC) на всю систему,
// а не на каждый вызов.
const Layout = "2006-01-02"

type Clock interface {
	Today() string
	Yesterday() string
}

// SystemClock читает настоящее время в UTC.
type SystemClock struct{}

func (SystemClock) Today() string {
	return time.Now().UTC().Format(Layout)
}

func (SystemClock) Yesterday() string {
	// AddDate корректно переходит через границы месяца и года
	return time.Now().UTC().AddDate(0, 0, -1).Format(Layout)
}

// FixedClock — часы с фиксированной датой для тестов.
type FixedClock struct {
	Date time.Time
}

func (c FixedClock) Today() string {
	return c.Date.Format(Layout)
}

func (c FixedClock) Yesterday() string {
	return c.Date.AddDate(0, 0, -1).Format(Layout)
}

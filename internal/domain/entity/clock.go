package entity

import "time"

// Now instante actual en UTC truncado a microsegundos (precisión de timestamptz),
// así el orden en memoria y en PostgreSQL coincide.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

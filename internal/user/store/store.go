// Package store persists users in memory or PostgreSQL. Both implementations
// return sentinel errors; callers translate them into domain errors.
package store

import "time"

var nowFunc = time.Now

package store

import "time"

// Timestamps are stored as INTEGER milliseconds since the Unix epoch.
// Every column holding a time goes through this pair on write and read.

func toEpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// nullableID maps the zero id to NULL so AUTOINCREMENT assigns one.
func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

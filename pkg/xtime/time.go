package xtime

import (
	"database/sql/driver"
	"strconv"
	"time"
)

// Time is a unix-seconds timestamp that scans to and from the
// integer columns of the record store.
type Time struct {
	Time time.Time
}

func (lt *Time) Scan(src interface{}) error {
	tm := time.Unix(src.(int64), 0)
	lt.Time = tm
	return nil
}

func (lt *Time) Value() (driver.Value, error) {
	if lt == nil {
		return nil, nil
	}
	return driver.Value(lt.Time.Unix()), nil
}

func (lt Time) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(lt.Time.Unix(), 10)), nil
}

func (lt *Time) UnmarshalJSON(b []byte) error {
	sec, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	lt.Time = time.Unix(sec, 0)
	return nil
}

func (lt *Time) Unix() int64 {
	if lt == nil {
		return 0
	}
	return lt.Time.Unix()
}

func Now() Time {
	return Time{time.Now()}
}

func FromUnix(sec int64) *Time {
	return &Time{time.Unix(sec, 0)}
}

func FromTimePtr(t *time.Time) *Time {
	if t == nil {
		return nil
	}
	return &Time{*t}
}

func (lt *Time) TimePtr() *time.Time {
	if lt == nil {
		return nil
	}

	return &lt.Time
}

package clock

import "fmt"

// Timestamp packs month, day, hour and minute into one integer as
// ((month*100+day)*100+hour)*100+minute. Zero means "never stamped".
type Timestamp int

// Encode packs a calendar position into a Timestamp.
func Encode(month, day, hour, minute int) Timestamp {
	return Timestamp(((month*100+day)*100+hour)*100 + minute)
}

// Decode unpacks a Timestamp.
func (t Timestamp) Decode() (month, day, hour, minute int) {
	v := int(t)
	minute = v % 100
	v /= 100
	hour = v % 100
	v /= 100
	day = v % 100
	month = v / 100
	return month, day, hour, minute
}

// IsZero reports whether the timestamp was never set.
func (t Timestamp) IsZero() bool { return t == 0 }

var monthNames = [...]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// String renders the timestamp as DD-MON-HH:MM. Hours are stored hour-ending, so
// the displayed hour is one less, and a minute of 60 rolls into the next hour.
func (t Timestamp) String() string {
	if t.IsZero() {
		return "-"
	}
	month, day, hour, minute := t.Decode()
	if month < 1 || month > 12 {
		month = 1
	}
	hour--
	if minute == 60 {
		hour++
		minute = 0
	}
	if hour < 0 {
		hour = 0
	}
	return fmt.Sprintf("%02d-%s-%02d:%02d", day, monthNames[month-1], hour, minute)
}

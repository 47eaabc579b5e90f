package field

import (
	"fmt"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// DefaultDateFormat is the format used when DateOptions.Format is empty.
const DefaultDateFormat = "%Y-%m-%d"

// DateOptions configures date, datetime and timestamp fields.
type DateOptions struct {
	// Format parses string input. Either a Go reference layout
	// ("2006-01-02") or a strftime pattern ("%Y/%m/%d").
	// Default: DefaultDateFormat.
	Format string

	// IsTimestamp parses input as seconds since the Unix epoch instead.
	IsTimestamp bool

	// Location is attached to parsed values that carry no zone of their
	// own, and is the zone of timestamps. Default: time.UTC.
	Location *time.Location
}

func (o DateOptions) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func (o DateOptions) format() string {
	if o.Format == "" {
		return DefaultDateFormat
	}
	return o.Format
}

// parseTime parses v according to the options.
func (o DateOptions) parseTime(v any) (time.Time, error) {
	if o.IsTimestamp {
		return o.parseTimestamp(v)
	}

	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	format := o.format()
	t, err := o.parseString(format, s)
	if err != nil {
		return time.Time{}, &ValidationError{
			Message: fmt.Sprintf("time data '%s' does not match format '%s'", s, format),
		}
	}
	return t, nil
}

func (o DateOptions) parseString(format, s string) (time.Time, error) {
	if !strings.Contains(format, "%") {
		return time.ParseInLocation(format, s, o.location())
	}
	t, err := strftime.Parse(format, s)
	if err != nil {
		return time.Time{}, err
	}
	if hasZone(format) {
		return t, nil
	}
	// strftime.Parse yields UTC for naive input.
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), o.location()), nil
}

func (o DateOptions) parseTimestamp(v any) (time.Time, error) {
	f, err := toFloat(v)
	if err != nil {
		return time.Time{}, err
	}
	secs := f.(float64)
	whole := int64(secs)
	nanos := int64((secs - float64(whole)) * 1e9)
	return time.Unix(whole, nanos).In(o.location()), nil
}

// hasZone reports whether a strftime pattern carries zone directives.
func hasZone(format string) bool {
	for i := 0; i < len(format)-1; i++ {
		if format[i] != '%' {
			continue
		}
		i++
		if format[i] == ':' && i < len(format)-1 {
			i++
		}
		switch format[i] {
		case 'z', 'Z', '+':
			return true
		}
	}
	return false
}

func timestampCoercer(opts DateOptions) Coerce {
	opts.IsTimestamp = true
	return func(v any) (any, error) {
		return opts.parseTime(v)
	}
}

func dateTimeCoercer(opts DateOptions) Coerce {
	return func(v any) (any, error) {
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
		if v == nil {
			return nil, errCoerce
		}
		return opts.parseTime(v)
	}
}

func dateCoercer(opts DateOptions) Coerce {
	return func(v any) (any, error) {
		t, ok := v.(time.Time)
		if !ok {
			if v == nil {
				return nil, errCoerce
			}
			var err error
			if t, err = opts.parseTime(v); err != nil {
				return nil, err
			}
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
}

func timeTypeName(opts DateOptions) string {
	if opts.IsTimestamp {
		return "float64"
	}
	return "time"
}

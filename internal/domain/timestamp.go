package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout — формат timestamp without time zone в JSON
const TimestampLayout = "2006-01-02T15:04:05.999999999"

// layouts, которые принимаются при разборе строк из JSON и из БД
var timestampParseLayouts = []string{
	TimestampLayout,
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02",
}

// Timestamp — момент времени без часового пояса (postgres TIMESTAMP).
// Хранится как время в UTC, часовой пояс при сериализации не выводится.
type Timestamp struct {
	time.Time
}

// NewTimestamp отбрасывает часовой пояс t, сохраняя показания часов в UTC.
func NewTimestamp(t time.Time) Timestamp {
	t = t.In(time.UTC)
	return Timestamp{Time: t}
}

// ParseTimestamp разбирает строку в одном из поддерживаемых форматов.
// Смещение, если оно указано, переводится в UTC.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampParseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimestamp(t), nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

func (t Timestamp) String() string {
	return t.Time.Format(TimestampLayout)
}

// MarshalJSON выводит время без смещения, например "2024-03-01T10:15:00".
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}

	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Scan реализует sql.Scanner. Драйверы отдают TIMESTAMP как time.Time,
// sqlite может вернуть строку.
func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*t = Timestamp{Time: time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), time.UTC)}
		return nil
	case string:
		parsed, err := ParseTimestamp(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		parsed, err := ParseTimestamp(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case nil:
		*t = Timestamp{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
}

// Value реализует driver.Valuer.
func (t Timestamp) Value() (driver.Value, error) {
	return t.Time.In(time.UTC), nil
}

package schema

import "fmt"

type RoundedFloat float64

func (f RoundedFloat) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%.2f", f)), nil
}

const (
	DateTimeFormat = "2006-01-02T15:04:05"
	DateFormat     = "2006-01-02"
	TimeFormat     = "15:04"
)

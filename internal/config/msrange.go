package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MsRange is an inclusive LOW,HIGH range of milliseconds. It doubles as a
// pflag.Value and a YAML scalar.
type MsRange struct {
	Low, High int
}

// ParseMsRange parses "LOW,HIGH".
func ParseMsRange(s string) (MsRange, error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return MsRange{}, fmt.Errorf("%w: expected: NUM1,NUM2", ErrInvalid)
	}
	low, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return MsRange{}, fmt.Errorf("%w: invalid low value", ErrInvalid)
	}
	high, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return MsRange{}, fmt.Errorf("%w: invalid high value", ErrInvalid)
	}
	if low <= 0 || high <= 0 || low > high {
		return MsRange{}, fmt.Errorf("%w: range must be >0 and low <= high", ErrInvalid)
	}
	return MsRange{Low: low, High: high}, nil
}

// Durations returns the bounds as durations.
func (r MsRange) Durations() (lo, hi time.Duration) {
	return time.Duration(r.Low) * time.Millisecond, time.Duration(r.High) * time.Millisecond
}

func (r *MsRange) String() string { return fmt.Sprintf("%d,%d", r.Low, r.High) }

func (r *MsRange) Set(s string) error {
	v, err := ParseMsRange(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func (r *MsRange) Type() string { return "low,high" }

func (r MsRange) MarshalYAML() (any, error) {
	return fmt.Sprintf("%d,%d", r.Low, r.High), nil
}

func (r *MsRange) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("failed to decode range: %w", err)
	}
	return r.Set(s)
}

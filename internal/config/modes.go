package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidMode is returned when a capture or cascade mode cannot be parsed.
var ErrInvalidMode = errors.New("config: invalid mode")

// CaptureMode selects the isotopic assumption for cascade generation. The
// numeric values match the historical command codes (1 natural, 2 157Gd,
// 3 155Gd).
type CaptureMode int

const (
	CaptureUnset       CaptureMode = 0
	CaptureNatural     CaptureMode = 1
	CaptureEnriched157 CaptureMode = 2
	CaptureEnriched155 CaptureMode = 3
)

func (m CaptureMode) String() string {
	switch m {
	case CaptureNatural:
		return "natural"
	case CaptureEnriched157:
		return "enriched157"
	case CaptureEnriched155:
		return "enriched155"
	case CaptureUnset:
		return "unset"
	}
	return fmt.Sprintf("capture(%d)", int(m))
}

// Valid reports whether m is one of the enumerated modes.
func (m CaptureMode) Valid() bool {
	return m >= CaptureNatural && m <= CaptureEnriched155
}

// ParseCaptureMode accepts names ("natural", "enriched155", "155gd", ...) and
// the numeric codes 1-3.
func ParseCaptureMode(s string) (CaptureMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "natural", "nat", "natgd":
		return CaptureNatural, nil
	case "enriched157", "157gd", "gd157":
		return CaptureEnriched157, nil
	case "enriched155", "155gd", "gd155":
		return CaptureEnriched155, nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		if m := CaptureMode(n); m.Valid() {
			return m, nil
		}
	}
	return CaptureUnset, fmt.Errorf("%w: capture mode %q", ErrInvalidMode, s)
}

func (m CaptureMode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

func (m *CaptureMode) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseCaptureMode(value.Value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// CascadeMode selects which parts of the gamma cascade are generated.
type CascadeMode int

const (
	CascadeUnset     CascadeMode = 0
	CascadeAll       CascadeMode = 1
	CascadeDiscrete  CascadeMode = 2
	CascadeContinuum CascadeMode = 3
)

func (m CascadeMode) String() string {
	switch m {
	case CascadeAll:
		return "all"
	case CascadeDiscrete:
		return "discrete"
	case CascadeContinuum:
		return "continuum"
	case CascadeUnset:
		return "unset"
	}
	return fmt.Sprintf("cascade(%d)", int(m))
}

func (m CascadeMode) Valid() bool {
	return m >= CascadeAll && m <= CascadeContinuum
}

// ParseCascadeMode accepts "all", "discrete", "continuum" and the codes 1-3.
func ParseCascadeMode(s string) (CascadeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "both":
		return CascadeAll, nil
	case "discrete", "disc":
		return CascadeDiscrete, nil
	case "continuum", "cont":
		return CascadeContinuum, nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		if m := CascadeMode(n); m.Valid() {
			return m, nil
		}
	}
	return CascadeUnset, fmt.Errorf("%w: cascade mode %q", ErrInvalidMode, s)
}

func (m CascadeMode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

func (m *CascadeMode) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseCascadeMode(value.Value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Certification is a legitimacy judgment about one certification mark on a label
type Certification struct {
	Name        string            `json:"name" yaml:"name"`
	Issuer      string            `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Verified    VerificationState `json:"verified" yaml:"verified"`
	Trustworthy bool              `json:"trustworthy" yaml:"trustworthy"`
	Warning     string            `json:"warning,omitempty" yaml:"warning,omitempty"`
}

// NewCertification creates an unverified certification that is trustworthy by default
func NewCertification(name string) Certification {
	return Certification{
		Name:        name,
		Verified:    Unverified,
		Trustworthy: true,
	}
}

// certificationFields mirrors Certification with an optional trust flag
type certificationFields struct {
	Name        string            `json:"name" yaml:"name"`
	Issuer      string            `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Verified    VerificationState `json:"verified" yaml:"verified"`
	Trustworthy *bool             `json:"trustworthy" yaml:"trustworthy"`
	Warning     string            `json:"warning,omitempty" yaml:"warning,omitempty"`
}

func (f certificationFields) certification() Certification {
	c := Certification{
		Name:        f.Name,
		Issuer:      f.Issuer,
		Verified:    f.Verified,
		Trustworthy: true,
		Warning:     f.Warning,
	}
	if f.Trustworthy != nil {
		c.Trustworthy = *f.Trustworthy
	}
	return c
}

// UnmarshalJSON decodes a certification; an absent trustworthy field means true
func (c *Certification) UnmarshalJSON(data []byte) error {
	var f certificationFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*c = f.certification()
	return nil
}

// UnmarshalYAML decodes a certification; an absent trustworthy field means true
func (c *Certification) UnmarshalYAML(node *yaml.Node) error {
	var f certificationFields
	if err := node.Decode(&f); err != nil {
		return err
	}
	*c = f.certification()
	return nil
}

// VerificationState is the tri-state verification outcome of a certification
type VerificationState int

const (
	Unverified        VerificationState = 0
	PartiallyVerified VerificationState = 1
	Verified          VerificationState = 2
)

func (v VerificationState) String() string {
	switch v {
	case Verified:
		return "verified"
	case PartiallyVerified:
		return "partial"
	default:
		return "unverified"
	}
}

// ParseVerificationState accepts the canonical names plus the legacy "true"/"false"
func ParseVerificationState(s string) (VerificationState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verified", "true", "yes":
		return Verified, nil
	case "partial", "partially_verified", "partially verified":
		return PartiallyVerified, nil
	case "unverified", "false", "no", "":
		return Unverified, nil
	default:
		return Unverified, fmt.Errorf("unknown verification state: %q", s)
	}
}

// MarshalJSON encodes the state as its canonical name
func (v VerificationState) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON accepts a canonical name, a legacy boolean, or null
func (v *VerificationState) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			*v = Verified
		} else {
			*v = Unverified
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("verification state must be a string or boolean: %w", err)
	}

	state, err := ParseVerificationState(s)
	if err != nil {
		return err
	}
	*v = state
	return nil
}

// MarshalYAML encodes the state as its canonical name
func (v VerificationState) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}

// UnmarshalYAML accepts a canonical name or a legacy boolean
func (v *VerificationState) UnmarshalYAML(node *yaml.Node) error {
	state, err := ParseVerificationState(node.Value)
	if err != nil {
		return err
	}
	*v = state
	return nil
}

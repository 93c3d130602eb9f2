package domain

// TokenConfigInput is a raw token-creation request as submitted by a form.
// Nothing in it has been checked; optional flags may be absent (nil).
type TokenConfigInput struct {
	Name            string `json:"name" yaml:"name"`
	Symbol          string `json:"symbol" yaml:"symbol"`
	InitialSupply   string `json:"initialSupply" yaml:"initialSupply"`
	Decimals        int    `json:"decimals" yaml:"decimals"`
	AdvancedEnabled bool   `json:"advancedEnabled" yaml:"advancedEnabled"`

	CanBurn               *bool `json:"canBurn,omitempty" yaml:"canBurn,omitempty"`
	CanMint               *bool `json:"canMint,omitempty" yaml:"canMint,omitempty"`
	CanPause              *bool `json:"canPause,omitempty" yaml:"canPause,omitempty"`
	BlacklistEnabled      *bool `json:"blacklistEnabled,omitempty" yaml:"blacklistEnabled,omitempty"`
	DeflationEnabled      *bool `json:"deflationEnabled,omitempty" yaml:"deflationEnabled,omitempty"`
	SuperDeflationEnabled *bool `json:"superDeflationEnabled,omitempty" yaml:"superDeflationEnabled,omitempty"`
}

// BasicFields are the fields every token configuration carries.
type BasicFields struct {
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	InitialSupply string `json:"initialSupply"` // canonical decimal string, > 0
	Decimals      uint8  `json:"decimals"`      // 1..18
}

// AdvancedFields are the optional token behaviour flags.
// They exist only when advanced settings are enabled.
type AdvancedFields struct {
	CanBurn               bool `json:"canBurn"`
	CanMint               bool `json:"canMint"`
	CanPause              bool `json:"canPause"`
	BlacklistEnabled      bool `json:"blacklistEnabled"`
	DeflationEnabled      bool `json:"deflationEnabled"`
	SuperDeflationEnabled bool `json:"superDeflationEnabled"`
}

// TokenConfig is a validated token configuration.
// A nil Advanced is the basic variant; the advanced flags then cannot be set.
type TokenConfig struct {
	Basic    BasicFields     `json:"basic"`
	Advanced *AdvancedFields `json:"advanced,omitempty"`
}

// NewBasicConfig creates the basic variant.
func NewBasicConfig(b BasicFields) TokenConfig {
	return TokenConfig{Basic: b}
}

// NewAdvancedConfig creates the advanced variant.
func NewAdvancedConfig(b BasicFields, a AdvancedFields) TokenConfig {
	return TokenConfig{Basic: b, Advanced: &a}
}

// AdvancedEnabled reports whether this is the advanced variant.
func (c TokenConfig) AdvancedEnabled() bool {
	return c.Advanced != nil
}

// Flags returns the advanced flags; all false for the basic variant.
func (c TokenConfig) Flags() AdvancedFields {
	if c.Advanced == nil {
		return AdvancedFields{}
	}
	return *c.Advanced
}

// Input projects the configuration back into a raw input.
// Validating the result yields an identical configuration.
func (c TokenConfig) Input() TokenConfigInput {
	in := TokenConfigInput{
		Name:            c.Basic.Name,
		Symbol:          c.Basic.Symbol,
		InitialSupply:   c.Basic.InitialSupply,
		Decimals:        int(c.Basic.Decimals),
		AdvancedEnabled: c.AdvancedEnabled(),
	}
	if c.Advanced != nil {
		f := *c.Advanced
		in.CanBurn = &f.CanBurn
		in.CanMint = &f.CanMint
		in.CanPause = &f.CanPause
		in.BlacklistEnabled = &f.BlacklistEnabled
		in.DeflationEnabled = &f.DeflationEnabled
		in.SuperDeflationEnabled = &f.SuperDeflationEnabled
	}
	return in
}

// Equal reports whether two configurations hold the same values.
func (c TokenConfig) Equal(other TokenConfig) bool {
	if c.Basic != other.Basic {
		return false
	}
	if c.AdvancedEnabled() != other.AdvancedEnabled() {
		return false
	}
	return c.Flags() == other.Flags()
}

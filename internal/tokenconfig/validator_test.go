package tokenconfig

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memecoin-creator/internal/domain"
)

func validInput() domain.TokenConfigInput {
	return domain.TokenConfigInput{
		Name:          "Good Luck Token",
		Symbol:        "GLT",
		InitialSupply: "21000000",
		Decimals:      18,
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestValidate_ValidBasic(t *testing.T) {
	cfg, fe := Validate(validInput())
	require.Empty(t, fe)

	assert.Equal(t, "Good Luck Token", cfg.Basic.Name)
	assert.Equal(t, "GLT", cfg.Basic.Symbol)
	assert.Equal(t, "21000000", cfg.Basic.InitialSupply)
	assert.Equal(t, uint8(18), cfg.Basic.Decimals)
	assert.False(t, cfg.AdvancedEnabled())
	assert.Nil(t, cfg.Advanced)
}

func TestValidate_Boundaries(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*domain.TokenConfigInput)
	}{
		{"name_1_char", func(in *domain.TokenConfigInput) { in.Name = "x" }},
		{"name_50_chars", func(in *domain.TokenConfigInput) { in.Name = strings.Repeat("x", 50) }},
		{"name_50_multibyte_chars", func(in *domain.TokenConfigInput) { in.Name = strings.Repeat("é", 50) }},
		{"symbol_1_char", func(in *domain.TokenConfigInput) { in.Symbol = "X" }},
		{"symbol_10_chars", func(in *domain.TokenConfigInput) { in.Symbol = strings.Repeat("X", 10) }},
		{"decimals_1", func(in *domain.TokenConfigInput) { in.Decimals = 1 }},
		{"decimals_18", func(in *domain.TokenConfigInput) { in.Decimals = 18 }},
		{"fractional_supply", func(in *domain.TokenConfigInput) { in.InitialSupply = "0.5" }},
		{"exponent_supply", func(in *domain.TokenConfigInput) { in.InitialSupply = "1e6" }},
		{"padded_supply", func(in *domain.TokenConfigInput) { in.InitialSupply = "  42 " }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, fe := Validate(in)
			assert.Empty(t, fe)
		})
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*domain.TokenConfigInput)
		field  domain.Field
		kind   domain.ErrorKind
	}{
		{"empty_name", func(in *domain.TokenConfigInput) { in.Name = "" }, domain.FieldName, domain.ErrorEmptyField},
		{"long_name", func(in *domain.TokenConfigInput) { in.Name = strings.Repeat("x", 51) }, domain.FieldName, domain.ErrorTooLong},
		{"empty_symbol", func(in *domain.TokenConfigInput) { in.Symbol = "" }, domain.FieldSymbol, domain.ErrorEmptyField},
		{"long_symbol", func(in *domain.TokenConfigInput) { in.Symbol = strings.Repeat("X", 11) }, domain.FieldSymbol, domain.ErrorTooLong},
		{"non_numeric_supply", func(in *domain.TokenConfigInput) { in.InitialSupply = "abc" }, domain.FieldInitialSupply, domain.ErrorNotNumeric},
		{"negative_supply", func(in *domain.TokenConfigInput) { in.InitialSupply = "-5" }, domain.FieldInitialSupply, domain.ErrorNotPositive},
		{"zero_supply", func(in *domain.TokenConfigInput) { in.InitialSupply = "0" }, domain.FieldInitialSupply, domain.ErrorNotPositive},
		{"empty_supply", func(in *domain.TokenConfigInput) { in.InitialSupply = "" }, domain.FieldInitialSupply, domain.ErrorNotPositive},
		{"huge_exponent_supply", func(in *domain.TokenConfigInput) { in.InitialSupply = "1e100000000" }, domain.FieldInitialSupply, domain.ErrorNotNumeric},
		{"decimals_0", func(in *domain.TokenConfigInput) { in.Decimals = 0 }, domain.FieldDecimals, domain.ErrorOutOfRange},
		{"decimals_19", func(in *domain.TokenConfigInput) { in.Decimals = 19 }, domain.FieldDecimals, domain.ErrorOutOfRange},
		{"decimals_negative", func(in *domain.TokenConfigInput) { in.Decimals = -1 }, domain.FieldDecimals, domain.ErrorOutOfRange},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			cfg, fe := Validate(in)
			require.Len(t, fe, 1, "errors: %v", fe)
			assert.True(t, fe.Has(tc.field, tc.kind), "expected %s on %s, got %v", tc.kind, tc.field, fe)
			assert.Equal(t, domain.TokenConfig{}, cfg)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	in := domain.TokenConfigInput{
		Name:          "",
		Symbol:        "",
		InitialSupply: "0",
		Decimals:      18,
	}

	_, fe := Validate(in)
	require.Len(t, fe, 3)
	assert.Equal(t, domain.ErrorEmptyField, fe[domain.FieldName])
	assert.Equal(t, domain.ErrorEmptyField, fe[domain.FieldSymbol])
	assert.Equal(t, domain.ErrorNotPositive, fe[domain.FieldInitialSupply])

	// Every rule at once
	in.Decimals = 0
	in.InitialSupply = "abc"
	_, fe = Validate(in)
	assert.Len(t, fe, 4)
	assert.Equal(t, domain.ErrorNotNumeric, fe[domain.FieldInitialSupply])
	assert.Equal(t, domain.ErrorOutOfRange, fe[domain.FieldDecimals])
}

func TestValidate_AdvancedDisabledDropsFlags(t *testing.T) {
	in := validInput()
	in.AdvancedEnabled = false
	in.CanBurn = ptr(true)
	in.CanMint = ptr(true)
	in.CanPause = ptr(true)
	in.BlacklistEnabled = ptr(true)
	in.DeflationEnabled = ptr(true)
	in.SuperDeflationEnabled = ptr(true)

	cfg, fe := Validate(in)
	require.Empty(t, fe)
	assert.False(t, cfg.AdvancedEnabled())
	assert.Equal(t, domain.AdvancedFields{}, cfg.Flags())
}

func TestValidate_AdvancedEnabled(t *testing.T) {
	in := validInput()
	in.AdvancedEnabled = true
	in.CanBurn = ptr(true)
	in.CanPause = ptr(false)
	// deflation and super deflation may both be set
	in.DeflationEnabled = ptr(true)
	in.SuperDeflationEnabled = ptr(true)

	cfg, fe := Validate(in)
	require.Empty(t, fe)
	require.True(t, cfg.AdvancedEnabled())
	assert.Equal(t, domain.AdvancedFields{
		CanBurn:               true,
		DeflationEnabled:      true,
		SuperDeflationEnabled: true,
	}, cfg.Flags())
}

func TestValidate_AdvancedEnabledAbsentFlagsDefaultFalse(t *testing.T) {
	in := validInput()
	in.AdvancedEnabled = true

	cfg, fe := Validate(in)
	require.Empty(t, fe)
	assert.True(t, cfg.AdvancedEnabled())
	assert.Equal(t, domain.AdvancedFields{}, cfg.Flags())
}

func TestValidate_CanonicalSupply(t *testing.T) {
	testCases := []struct {
		raw  string
		want string
	}{
		{"21000000", "21000000"},
		{"001.500", "1.5"},
		{"1e3", "1000"},
		{" 7 ", "7"},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			in := validInput()
			in.InitialSupply = tc.raw
			cfg, fe := Validate(in)
			require.Empty(t, fe)
			assert.Equal(t, tc.want, cfg.Basic.InitialSupply)
		})
	}
}

func TestValidate_Idempotent(t *testing.T) {
	inputs := []domain.TokenConfigInput{
		validInput(),
		{Name: "Meme", Symbol: "MEME", InitialSupply: "1.2500e2", Decimals: 9, AdvancedEnabled: true, CanMint: ptr(true)},
		{Name: "Flags Off", Symbol: "OFF", InitialSupply: "5", Decimals: 1, CanBurn: ptr(true)},
	}

	for _, in := range inputs {
		first, fe := Validate(in)
		require.Empty(t, fe)

		second, fe := Validate(first.Input())
		require.Empty(t, fe)
		assert.True(t, first.Equal(second), "first %+v second %+v", first, second)
		assert.Equal(t, first, second)
	}
}

func TestValidate_Deterministic(t *testing.T) {
	in := domain.TokenConfigInput{Name: "", Symbol: strings.Repeat("Y", 20), InitialSupply: "-1", Decimals: 40}
	want := domain.FieldErrors{
		domain.FieldName:          domain.ErrorEmptyField,
		domain.FieldSymbol:        domain.ErrorTooLong,
		domain.FieldInitialSupply: domain.ErrorNotPositive,
		domain.FieldDecimals:      domain.ErrorOutOfRange,
	}

	var wg sync.WaitGroup
	results := make([]domain.FieldErrors, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = Validate(in)
		}(i)
	}
	wg.Wait()

	for _, fe := range results {
		assert.Equal(t, want, fe)
	}
}

func TestFieldErrors_Error(t *testing.T) {
	fe := domain.FieldErrors{
		domain.FieldSymbol: domain.ErrorTooLong,
		domain.FieldName:   domain.ErrorEmptyField,
	}
	assert.Equal(t, "invalid token config: name: EmptyField, symbol: TooLong", fe.Error())
}

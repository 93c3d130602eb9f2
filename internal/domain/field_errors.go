package domain

import (
	"sort"
	"strings"
)

// Field identifies a token configuration field.
// Values match the form input identifiers so errors can be routed back.
type Field string

const (
	FieldName                  Field = "name"
	FieldSymbol                Field = "symbol"
	FieldInitialSupply         Field = "initialSupply"
	FieldDecimals              Field = "decimals"
	FieldAdvancedEnabled       Field = "advancedEnabled"
	FieldCanBurn               Field = "canBurn"
	FieldCanMint               Field = "canMint"
	FieldCanPause              Field = "canPause"
	FieldBlacklistEnabled      Field = "blacklistEnabled"
	FieldDeflationEnabled      Field = "deflationEnabled"
	FieldSuperDeflationEnabled Field = "superDeflationEnabled"
)

// String returns the string representation of Field.
func (f Field) String() string {
	return string(f)
}

// ErrorKind is a field-level validation failure.
type ErrorKind string

const (
	ErrorEmptyField  ErrorKind = "EmptyField"
	ErrorTooLong     ErrorKind = "TooLong"
	ErrorNotNumeric  ErrorKind = "NotNumeric"
	ErrorNotPositive ErrorKind = "NotPositive"
	ErrorOutOfRange  ErrorKind = "OutOfRange"
)

// String returns the string representation of ErrorKind.
func (k ErrorKind) String() string {
	return string(k)
}

// IsValid checks if the kind is one of the known kinds.
func (k ErrorKind) IsValid() bool {
	switch k {
	case ErrorEmptyField, ErrorTooLong, ErrorNotNumeric, ErrorNotPositive, ErrorOutOfRange:
		return true
	}
	return false
}

// FieldErrors maps each invalid field to its failure kind.
// An empty (or nil) FieldErrors means the input was valid.
type FieldErrors map[Field]ErrorKind

// Error implements error. Fields are listed in lexical order.
func (fe FieldErrors) Error() string {
	fields := fe.Fields()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, string(f)+": "+string(fe[f]))
	}
	return "invalid token config: " + strings.Join(parts, ", ")
}

// Fields returns the failing fields in lexical order.
func (fe FieldErrors) Fields() []Field {
	fields := make([]Field, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Has reports whether field failed with the given kind.
func (fe FieldErrors) Has(field Field, kind ErrorKind) bool {
	got, ok := fe[field]
	return ok && got == kind
}

// Known reports whether every kind in fe is a known ErrorKind.
func (fe FieldErrors) Known() bool {
	for _, k := range fe {
		if !k.IsValid() {
			return false
		}
	}
	return true
}

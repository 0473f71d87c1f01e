// Copyright (c) 2016-2017 The btcsuite developers
// Copyright (c) 2025 The fqshuffle developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

// ExplicitString is a string that distinguishes between being unset and
// being set to the empty string.  Unlike a plain string flag, it records
// whether the value was ever assigned by the config file or command line
// so a caller can tell an explicitly given value apart from its default
// (e.g. a config file path named on the command line versus the default
// one).
type ExplicitString struct {
	Value         string
	explicitlySet bool
}

// NewExplicitString creates a new explicit string with the value set to
// defaultValue, but without marking it as explicitly set.
func NewExplicitString(defaultValue string) *ExplicitString {
	return &ExplicitString{Value: defaultValue}
}

// ExplicitlySet returns whether the string was explicitly set by the
// UnmarshalFlag interface.
func (es *ExplicitString) ExplicitlySet() bool {
	return es.explicitlySet
}

// UnmarshalFlag satisfies the flags.Unmarshaler interface so an
// ExplicitString can be used directly as a go-flags struct field.
func (es *ExplicitString) UnmarshalFlag(value string) error {
	es.Value = value
	es.explicitlySet = true
	return nil
}

// String satisfies the fmt.Stringer interface.
func (es *ExplicitString) String() string {
	return es.Value
}

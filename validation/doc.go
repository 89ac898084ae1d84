// Package validation checks configuration structs and command-line input.
//
// Struct tags are checked with go-playground/validator; field names in
// messages follow the mapstructure key so they match the config file:
//
//	type Fixtures struct {
//	    NullToken string `mapstructure:"null_token" validate:"required"`
//	}
//	err := validation.ValidateStruct(cfg)
//
// Hand-written checks collect errors the same way:
//
//	v := validation.New()
//	v.Required("table", table).Pattern("table", table, identPattern)
//	err := v.Err()
package validation

// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package tools

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"

	"github.com/567-labs/instructor-go/pkg/instructor"
	"github.com/go-playground/validator/v10"
)

// mustSchemaParametersFor generates the JSON schema for a tool's parameters
// from its typed argument struct. Schemas are derived once at registration
// time, so a malformed argument type is a startup panic, not a runtime error.
func mustSchemaParametersFor[T any]() map[string]interface{} {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		panic("schema type is nil")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	params, err := schemaParametersForType(t)
	if err != nil {
		panic(err)
	}
	return params
}

func schemaParametersForType(t reflect.Type) (map[string]interface{}, error) {
	schema, err := instructor.NewSchema(t)
	if err != nil {
		return nil, err
	}

	defName := t.Name()
	for _, fn := range schema.Functions {
		if fn.Name != defName {
			continue
		}
		return jsonSchemaToMap(fn.Parameters)
	}

	return nil, fmt.Errorf("schema definition %q not found", defName)
}

func jsonSchemaToMap(schema interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var params map[string]interface{}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	return params, nil
}

var argValidator = validator.New()

// unmarshalAndValidate decodes loosely-typed tool arguments into the typed
// argument struct and runs its validate tags.
func unmarshalAndValidate[T any](args map[string]interface{}) (T, error) {
	var decoded T
	raw, err := json.Marshal(args)
	if err != nil {
		return decoded, err
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return decoded, decodeFieldError(err)
	}
	if err := argValidator.Struct(&decoded); err != nil {
		return decoded, validationFieldError(err)
	}
	return decoded, nil
}

func decodeFieldError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Errorf("argument '%s' has the wrong type", typeErr.Field)
	}
	return err
}

func validationFieldError(err error) error {
	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fmt.Errorf("argument '%s' failed %s validation", fieldErrs[0].Field(), fieldErrs[0].Tag())
	}
	return err
}

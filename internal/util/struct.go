package util

import (
	"fmt"
	"reflect"
	"strings"
)

// IsStructInitialized returns an error naming the first exported pointer, interface, map or slice
// field of s which is still nil. Fields tagged `wire:"-"` are skipped.
func IsStructInitialized(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return fmt.Errorf("struct is nil")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return fmt.Errorf("expected struct, got %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || strings.TrimSpace(field.Tag.Get("wire")) == "-" {
			continue
		}

		//nolint:exhaustive
		switch v.Field(i).Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			if v.Field(i).IsNil() {
				return fmt.Errorf("field %s is not initialized", field.Name)
			}
		}
	}

	return nil
}

package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// envPrefix and envSep implement spec.md §6.1: "Environment variables with
// prefix APP_, double-underscore separator, override fields." For example
// APP_BLOCKCHAIN__ETH__START_BLOCK=100 overrides
// Blockchain["ETH"].StartBlock, and APP_REPOSITORY__MEMORY_DB=true
// overrides Repository.MemoryDB.
const (
	envPrefix = "APP_"
	envSep    = "__"
)

// applyEnvOverrides walks cfg's field tree, building the same
// prefix-joined path an operator would set in the environment, and applies
// any matching variable it finds.
func applyEnvOverrides(cfg *Config) error {
	return walkAndOverride(reflect.ValueOf(cfg).Elem(), []string{})
}

func walkAndOverride(v reflect.Value, path []string) error {
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			name := tagName(field)
			if err := walkAndOverride(v.Field(i), append(path, name)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		for _, key := range v.MapKeys() {
			elem := v.MapIndex(key)
			// Map values from a TOML decode are not addressable; copy,
			// mutate, and write back.
			cp := reflect.New(elem.Type()).Elem()
			cp.Set(elem)
			if err := walkAndOverride(cp, append(path, key.String())); err != nil {
				return err
			}
			v.SetMapIndex(key, cp)
		}
		return nil
	default:
		return applyLeaf(v, path)
	}
}

func tagName(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("toml"); ok && tag != "" && tag != "-" {
		return tag
	}
	return f.Name
}

func envVarName(path []string) string {
	upper := make([]string, len(path))
	for i, p := range path {
		upper[i] = strings.ToUpper(p)
	}
	return envPrefix + strings.Join(upper, envSep)
}

func applyLeaf(v reflect.Value, path []string) error {
	if !v.CanSet() {
		return nil
	}
	name := envVarName(path)
	raw, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("env %s: %w", name, err)
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("env %s: %w", name, err)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("env %s: %w", name, err)
		}
		v.SetUint(n)
	}
	return nil
}

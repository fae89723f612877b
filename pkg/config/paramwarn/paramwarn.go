// Package paramwarn implements the three-severity config extraction policy
// described by spec.md §7 — ERROR, WARN+DEFAULT, WARN+IGNORE — grounded on
// core/common/ParamExtractor.cpp's PARAM_ERROR / PARAM_WARNING_DEFAULT /
// PARAM_WARNING_IGNORE macros.
package paramwarn

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/loongcollector/agent/pkg/alarm"
)

// Extractor reads typed fields out of a raw JSON-decoded map, applying the
// severity policy and recording a zap log line plus an alarm.Record for
// every problem it encounters.
type Extractor struct {
	Module     string
	ConfigName string
	Project    string
	Logstore   string
	Region     string

	Raw    map[string]interface{}
	Logger *zap.Logger
	Alarms *alarm.Ring
}

func (e *Extractor) warn(message string) {
	if e.Logger != nil {
		e.Logger.Warn(message, zap.String("module", e.Module), zap.String("config_name", e.ConfigName))
	}
	if e.Alarms != nil {
		e.Alarms.Add(alarm.Record{
			Project: e.Project, Logstore: e.Logstore, Region: e.Region,
			Module: e.Module, ConfigName: e.ConfigName, Message: message,
		})
	}
}

// RequiredString reads a mandatory string field. A missing or wrong-typed
// value is an ERROR: it returns an error the caller must fail the config
// load on.
func (e *Extractor) RequiredString(key string) (string, error) {
	v, ok := e.Raw[key]
	if !ok {
		return "", fmt.Errorf("paramwarn: required field %q missing in %s", key, e.Module)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("paramwarn: field %q in %s must be a string, got %T", key, e.Module, v)
	}
	return s, nil
}

// OptionalString reads an optional string field, falling back to def and
// emitting a WARN+DEFAULT alarm if the field is present but the wrong
// type.
func (e *Extractor) OptionalString(key, def string) string {
	v, ok := e.Raw[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		e.warn(fmt.Sprintf("field %q must be a string, using default %q", key, def))
		return def
	}
	return s
}

// OptionalUint reads an optional non-negative integer field, falling back
// to def (WARN+DEFAULT) on a wrong type or negative value.
func (e *Extractor) OptionalUint(key string, def uint64) uint64 {
	v, ok := e.Raw[key]
	if !ok {
		return def
	}
	f, ok := v.(float64)
	if !ok || f < 0 {
		e.warn(fmt.Sprintf("field %q must be a non-negative number, using default %d", key, def))
		return def
	}
	return uint64(f)
}

// OptionalBool reads an optional boolean field, falling back to def
// (WARN+DEFAULT) on a wrong type.
func (e *Extractor) OptionalBool(key string, def bool) bool {
	v, ok := e.Raw[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		e.warn(fmt.Sprintf("field %q must be a boolean, using default %v", key, def))
		return def
	}
	return b
}

// IgnoreUnknown reports (WARN+IGNORE, no default substitution) any key in
// Raw not present in known, used once after every expected field has been
// extracted to flag configuration typos without failing the load.
func (e *Extractor) IgnoreUnknown(known map[string]struct{}) {
	for k := range e.Raw {
		if _, ok := known[k]; !ok {
			e.warn(fmt.Sprintf("unknown field %q ignored", k))
		}
	}
}

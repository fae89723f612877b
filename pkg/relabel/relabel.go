// Package relabel implements Prometheus-style label relabeling: a list of
// RelabelConfig rules applied in order against a LabelsBuilder, grounded
// byte-for-byte on core/prometheus/Relabel.cpp.
package relabel

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Action identifies one relabel rule's operation.
type Action string

const (
	Replace    Action = "replace"
	Keep       Action = "keep"
	Drop       Action = "drop"
	KeepEqual  Action = "keepequal"
	DropEqual  Action = "dropequal"
	HashMod    Action = "hashmod"
	LabelMap   Action = "labelmap"
	LabelDrop  Action = "labeldrop"
	LabelKeep  Action = "labelkeep"
	Lowercase  Action = "lowercase"
	Uppercase  Action = "uppercase"
)

// Config is one relabel rule.
type Config struct {
	SourceLabels []string
	Separator    string
	Regex        *regexp.Regexp
	TargetLabel  string
	Replacement  string
	Action       Action
	Modulus      uint64
}

const defaultSeparator = ";"

func (c *Config) separator() string {
	if c.Separator != "" {
		return c.Separator
	}
	return defaultSeparator
}

// LabelsBuilder accumulates and mutates a label set in place, matching
// Labels.cpp's dual map-backed mode.
type LabelsBuilder struct {
	keys   []string
	values map[string]string
}

func NewLabelsBuilder(initial map[string]string) *LabelsBuilder {
	lb := &LabelsBuilder{values: make(map[string]string, len(initial))}
	for k, v := range initial {
		lb.Set(k, v)
	}
	return lb
}

func (lb *LabelsBuilder) Get(key string) string {
	return lb.values[key]
}

func (lb *LabelsBuilder) Set(key, value string) {
	if _, ok := lb.values[key]; !ok {
		lb.keys = append(lb.keys, key)
	}
	lb.values[key] = value
}

func (lb *LabelsBuilder) Delete(key string) {
	if _, ok := lb.values[key]; !ok {
		return
	}
	delete(lb.values, key)
	for i, k := range lb.keys {
		if k == key {
			lb.keys = append(lb.keys[:i], lb.keys[i+1:]...)
			break
		}
	}
}

func (lb *LabelsBuilder) Range(fn func(key, value string)) {
	for _, k := range lb.keys {
		fn(k, lb.values[k])
	}
}

func (lb *LabelsBuilder) Map() map[string]string {
	out := make(map[string]string, len(lb.values))
	for k, v := range lb.values {
		out[k] = v
	}
	return out
}

// Process applies every rule in cfgs to lb in order, returning false if a
// drop/dropequal rule (or a failed keep/keepequal) eliminates the label
// set entirely.
func Process(lb *LabelsBuilder, cfgs []Config) bool {
	for i := range cfgs {
		if !Relabel(lb, &cfgs[i]) {
			return false
		}
	}
	return true
}

// Relabel applies one rule to lb. Returns false if the entire label set
// should be dropped as a result.
func Relabel(lb *LabelsBuilder, c *Config) bool {
	switch c.Action {
	case Replace:
		return relabelReplace(lb, c)
	case Keep:
		return matchesSourceRegex(lb, c)
	case Drop:
		return !matchesSourceRegex(lb, c)
	case KeepEqual:
		return lb.Get(c.SourceLabels[0]) == lb.Get(c.TargetLabel)
	case DropEqual:
		return lb.Get(c.SourceLabels[0]) != lb.Get(c.TargetLabel)
	case HashMod:
		return relabelHashMod(lb, c)
	case LabelMap:
		return relabelLabelMap(lb, c)
	case LabelDrop:
		return relabelLabelDrop(lb, c)
	case LabelKeep:
		return relabelLabelKeep(lb, c)
	case Lowercase:
		lb.Set(c.TargetLabel, strings.ToLower(lb.Get(c.SourceLabels[0])))
		return true
	case Uppercase:
		lb.Set(c.TargetLabel, strings.ToUpper(lb.Get(c.SourceLabels[0])))
		return true
	default:
		return true
	}
}

func joinSourceValues(lb *LabelsBuilder, c *Config) string {
	vals := make([]string, len(c.SourceLabels))
	for i, s := range c.SourceLabels {
		vals[i] = lb.Get(s)
	}
	return strings.Join(vals, c.separator())
}

func matchesSourceRegex(lb *LabelsBuilder, c *Config) bool {
	if c.Regex == nil {
		return false
	}
	return c.Regex.MatchString(joinSourceValues(lb, c))
}

func relabelReplace(lb *LabelsBuilder, c *Config) bool {
	if c.Regex == nil {
		lb.Set(c.TargetLabel, c.Replacement)
		return true
	}
	joined := joinSourceValues(lb, c)
	match := c.Regex.FindStringSubmatchIndex(joined)
	if match == nil {
		return true
	}
	result := c.Regex.ExpandString(nil, c.Replacement, joined, match)
	lb.Set(c.TargetLabel, string(result))
	return true
}

// relabelHashMod hashes the joined source values with MD5 and takes the
// last 8 bytes of the digest as a big-endian uint64, mod Modulus, matching
// Relabel.cpp's exact HASHMOD algorithm.
func relabelHashMod(lb *LabelsBuilder, c *Config) bool {
	sum := md5.Sum([]byte(joinSourceValues(lb, c)))
	hash := binary.BigEndian.Uint64(sum[8:16])
	if c.Modulus == 0 {
		lb.Set(c.TargetLabel, "0")
		return true
	}
	lb.Set(c.TargetLabel, strconv.FormatUint(hash%c.Modulus, 10))
	return true
}

func relabelLabelMap(lb *LabelsBuilder, c *Config) bool {
	if c.Regex == nil {
		return true
	}
	var toSet []struct{ k, v string }
	lb.Range(func(key, value string) {
		if !c.Regex.MatchString(key) {
			return
		}
		newKey := c.Regex.ReplaceAllString(key, c.Replacement)
		toSet = append(toSet, struct{ k, v string }{newKey, value})
	})
	for _, kv := range toSet {
		lb.Set(kv.k, kv.v)
	}
	return true
}

func relabelLabelDrop(lb *LabelsBuilder, c *Config) bool {
	if c.Regex == nil {
		return true
	}
	var toDelete []string
	lb.Range(func(key, value string) {
		if c.Regex.MatchString(key) {
			toDelete = append(toDelete, key)
		}
	})
	for _, k := range toDelete {
		lb.Delete(k)
	}
	return true
}

func relabelLabelKeep(lb *LabelsBuilder, c *Config) bool {
	if c.Regex == nil {
		return true
	}
	var toDelete []string
	lb.Range(func(key, value string) {
		if !c.Regex.MatchString(key) {
			toDelete = append(toDelete, key)
		}
	})
	for _, k := range toDelete {
		lb.Delete(k)
	}
	return true
}

// ValidateAction reports whether action is a recognized relabel action.
func ValidateAction(action string) (Action, error) {
	switch Action(action) {
	case Replace, Keep, Drop, KeepEqual, DropEqual, HashMod, LabelMap, LabelDrop, LabelKeep, Lowercase, Uppercase:
		return Action(action), nil
	default:
		return "", fmt.Errorf("relabel: unknown action %q", action)
	}
}

// Package config decodes pipeline JSON configuration into typed structs,
// via encoding/json plus paramwarn's severity-policy extractors, per
// spec.md §6.
package config

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/loongcollector/agent/pkg/alarm"
	"github.com/loongcollector/agent/pkg/compression"
	"github.com/loongcollector/agent/pkg/config/paramwarn"
)

// BatchConfig configures one Batcher instance, shared by every flusher
// type per spec.md §4.5/§4.6.
type BatchConfig struct {
	TimeoutSecs     int64
	GroupBatchingOn bool
	MaxEventSize    int64
	MaxEventCnt     int
	MaxGroupSize    int64
	MaxGroupCnt     int
}

// SLSFlusherConfig configures an SLS flusher.
type SLSFlusherConfig struct {
	Endpoint     string
	Project      string
	Logstore     string
	AccessKeyID  string
	AccessSecret string
	Compression  compression.Type
	Batch        BatchConfig
}

// RemoteWriteFlusherConfig configures a Prometheus remote_write flusher.
type RemoteWriteFlusherConfig struct {
	URL         string
	Compression compression.Type
	Batch       BatchConfig
}

// PushGatewayFlusherConfig configures a Pushgateway-style flusher.
type PushGatewayFlusherConfig struct {
	URL   string
	Job   string
	Batch BatchConfig
}

// LocalFileFlusherConfig configures a flusher that writes serialized
// output to a local file, primarily for testing and debugging pipelines
// without a network destination.
type LocalFileFlusherConfig struct {
	Path  string
	Batch BatchConfig
}

// ParseBatchConfig extracts a BatchConfig via the paramwarn severity
// policy, applying the documented defaults on missing or malformed
// fields.
func ParseBatchConfig(raw map[string]interface{}, module, configName string, logger *zap.Logger, alarms *alarm.Ring) BatchConfig {
	e := &paramwarn.Extractor{Module: module, ConfigName: configName, Raw: raw, Logger: logger, Alarms: alarms}
	return BatchConfig{
		TimeoutSecs:     int64(e.OptionalUint("timeout_secs", 3)),
		GroupBatchingOn: e.OptionalBool("group_batch", false),
		MaxEventSize:    int64(e.OptionalUint("max_event_size", 3*1024*1024)),
		MaxEventCnt:     int(e.OptionalUint("max_event_cnt", 4096)),
		MaxGroupSize:    int64(e.OptionalUint("max_group_size", 10*1024*1024)),
		MaxGroupCnt:     int(e.OptionalUint("max_group_cnt", 128)),
	}
}

// ParseSLSFlusherConfig decodes one SLS flusher's JSON body.
func ParseSLSFlusherConfig(body json.RawMessage, configName string, logger *zap.Logger, alarms *alarm.Ring) (*SLSFlusherConfig, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("config: decode sls flusher: %w", err)
	}
	e := &paramwarn.Extractor{Module: "flusher_sls", ConfigName: configName, Raw: raw, Logger: logger, Alarms: alarms}

	endpoint, err := e.RequiredString("Endpoint")
	if err != nil {
		return nil, err
	}
	project, err := e.RequiredString("Project")
	if err != nil {
		return nil, err
	}
	logstore, err := e.RequiredString("Logstore")
	if err != nil {
		return nil, err
	}

	return &SLSFlusherConfig{
		Endpoint:     endpoint,
		Project:      project,
		Logstore:     logstore,
		AccessKeyID:  e.OptionalString("AccessKeyID", ""),
		AccessSecret: e.OptionalString("AccessKeySecret", ""),
		Compression:  compression.Type(e.OptionalString("Compression", string(compression.LZ4))),
		Batch:        ParseBatchConfig(raw, "flusher_sls", configName, logger, alarms),
	}, nil
}

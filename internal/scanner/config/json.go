package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/scansync/internal/flagx"
	"github.com/dmitrijs2005/scansync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "10s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServiceBaseURL      string          `json:"service_base_url"`
	UserID              string          `json:"user_id"`
	DataDir             string          `json:"data_dir"`
	LookupTimeout       *timex.Duration `json:"lookup_timeout"`
	DebounceWindow      *timex.Duration `json:"debounce_window"`
	CacheFreshFor       *timex.Duration `json:"cache_fresh_for"`
	CacheGCAfter        *timex.Duration `json:"cache_gc_after"`
	FailedRetention     *timex.Duration `json:"failed_retention"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	QueueMaxSize        *int            `json:"queue_max_size"`
	SyncConcurrency     *int            `json:"sync_concurrency"`
	ForceOffline        *bool           `json:"force_offline"`
}

// parseJson overlays Config with values loaded from a JSON file selected via
// the -c or -config flags. Absent fields leave the existing values alone;
// read or unmarshal errors panic (caller should recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServiceBaseURL != "" {
		cfg.ServiceBaseURL = jc.ServiceBaseURL
	}
	if jc.UserID != "" {
		cfg.UserID = jc.UserID
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.LookupTimeout != nil {
		cfg.LookupTimeout = time.Duration(jc.LookupTimeout.Duration)
	}
	if jc.DebounceWindow != nil {
		cfg.DebounceWindow = time.Duration(jc.DebounceWindow.Duration)
	}
	if jc.CacheFreshFor != nil {
		cfg.CacheFreshFor = time.Duration(jc.CacheFreshFor.Duration)
	}
	if jc.CacheGCAfter != nil {
		cfg.CacheGCAfter = time.Duration(jc.CacheGCAfter.Duration)
	}
	if jc.FailedRetention != nil {
		cfg.FailedRetention = time.Duration(jc.FailedRetention.Duration)
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.QueueMaxSize != nil {
		cfg.QueueMaxSize = *jc.QueueMaxSize
	}
	if jc.SyncConcurrency != nil {
		cfg.SyncConcurrency = *jc.SyncConcurrency
	}
	if jc.ForceOffline != nil {
		cfg.ForceOffline = *jc.ForceOffline
	}
}

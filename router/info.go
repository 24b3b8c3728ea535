package router

// InfoResponse is returned by GET /api/v1/info/.
type InfoResponse struct {
	Build    BuildInfo    `json:"build"`
	Process  ProcessInfo  `json:"process"`
	Runtime  RuntimeInfo  `json:"runtime"`
	Pipeline PipelineInfo `json:"pipeline"`
	Database DatabaseInfo `json:"database"`
}

type BuildInfo struct {
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
	Branch    string `json:"branch,omitempty"`
	BuildDate string `json:"buildDate,omitempty"`
}

type ProcessInfo struct {
	PID           int    `json:"pid"`
	Hostname      string `json:"hostname,omitempty"`
	UptimeSeconds int    `json:"uptimeSeconds"`
}

type RuntimeInfo struct {
	GoVersion     string `json:"goVersion,omitempty"`
	NumGoroutines int    `json:"numGoroutines,omitempty"`
	HeapAlloc     uint64 `json:"heapAlloc"`
	Sys           uint64 `json:"sys"`
}

// PipelineInfo lists the effective analysis settings of this instance.
// The tier service url is left out, it may carry credentials.
type PipelineInfo struct {
	VulnerabilityDatabase string  `json:"vulnerabilityDatabase"`
	RateLimit             float64 `json:"rateLimit"`
	MaxAttempts           int     `json:"maxAttempts"`
	Concurrency           int     `json:"concurrency"`
	MaxFailureRatio       float64 `json:"maxFailureRatio"`
	SeverityPrecedence    string  `json:"severityPrecedence"`
	PipelineTimeout       string  `json:"pipelineTimeout"`
	DefaultTier           string  `json:"defaultTier"`
	ExternalTierService   bool    `json:"externalTierService"`
}

type PoolInfo struct {
	DBName          string `json:"dbName,omitempty"`
	MaxOpenConns    int32  `json:"maxOpenConns,omitempty"`
	ConnMaxLifetime string `json:"connMaxLifetime,omitempty"`
	TotalConns      int    `json:"totalConns"`
	IdleConns       int    `json:"idleConns"`
	AcquiredConns   int    `json:"acquiredConns"`
}

type DatabaseInfo struct {
	Status           string    `json:"status"`
	Error            string    `json:"error,omitempty"`
	MigrationVersion *uint     `json:"migrationVersion,omitempty"`
	MigrationDirty   *bool     `json:"migrationDirty,omitempty"`
	Pool             *PoolInfo `json:"pool,omitempty"`
}

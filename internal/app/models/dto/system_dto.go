package dto

// SystemStatusResponse reports host and database health figures
type SystemStatusResponse struct {
	Hostname      string  `json:"hostname"`
	UptimeSeconds uint64  `json:"uptimeSeconds"`
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryUsedMB  uint64  `json:"memoryUsedMb"`
	MemoryTotalMB uint64  `json:"memoryTotalMb"`
	MemoryPercent float64 `json:"memoryPercent"`
	DBSizeBytes   int64   `json:"dbSizeBytes"`
	DBSizePretty  string  `json:"dbSizePretty"`
	GoVersion     string  `json:"goVersion"`
	NumGoroutines int     `json:"numGoroutines"`
}

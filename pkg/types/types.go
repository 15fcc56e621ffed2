package types

import "time"

// LogRecord is a single matched access-log request.
type LogRecord struct {
	SourceAddress string    `json:"address"`
	Timestamp     time.Time `json:"timestamp"`
	RawDate       string    `json:"date"` // Date token as written in the log, offset included
	Method        string    `json:"method"`
	Path          string    `json:"path"`
	Query         string    `json:"query"` // "-" when the request had no query string
	Status        string    `json:"status"`
	UserAgent     string    `json:"user_agent"`
}

// ScanStats tracks what happened to every line of a scan
type ScanStats struct {
	FilesScanned int64 `json:"files_scanned"`
	FilesFailed  int64 `json:"files_failed"`
	LinesRead    int64 `json:"lines_read"`
	Undecodable  int64 `json:"undecodable"`
	Unmatched    int64 `json:"unmatched"`
	BadTimestamp int64 `json:"bad_timestamp"`
	Filtered     int64 `json:"filtered"`
	Matched      int64 `json:"matched"`
}

// Add accumulates other into s
func (s *ScanStats) Add(other ScanStats) {
	s.FilesScanned += other.FilesScanned
	s.FilesFailed += other.FilesFailed
	s.LinesRead += other.LinesRead
	s.Undecodable += other.Undecodable
	s.Unmatched += other.Unmatched
	s.BadTimestamp += other.BadTimestamp
	s.Filtered += other.Filtered
	s.Matched += other.Matched
}

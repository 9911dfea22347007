package domain

// Operation identifies the replica operation carried by a report payload
type Operation string

const (
	// OperationAdd registers replicas with a lifetime
	OperationAdd Operation = "add_replicas"

	// OperationDelete unregisters replicas. The payload shape is defined and
	// validated, but no command currently drives it.
	OperationDelete Operation = "delete_replicas"
)

// IsValid checks if the operation is a known value
func (op Operation) IsValid() bool {
	switch op {
	case OperationAdd, OperationDelete:
		return true
	}
	return false
}

// FileEntry is one replica record inside a report payload
type FileEntry struct {
	Scope   string `json:"scope"`
	Name    string `json:"name"`
	Bytes   int64  `json:"bytes"`
	Adler32 string `json:"adler32"`
}

// ReportPayload is the unit of delivery to the catalog's reporting endpoint.
// It is constructed only from GOOD descriptors at flush time.
type ReportPayload struct {
	Files     []FileEntry `json:"files"`
	RSE       string      `json:"rse"`
	Lifetime  int64       `json:"lifetime,omitempty"`
	Operation Operation   `json:"operation"`
}

// PassStats are the cumulative counters for one scan pass. They persist
// across batch flushes and are reported once the pass is done.
type PassStats struct {
	// RunID tags all log records and the history row of this pass
	RunID string

	Scanned      int
	Unusable     int
	Incomplete   int
	Unregistered int
	Bad          int
	Reported     int
	Flushes      int
}

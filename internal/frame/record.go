package frame

// Well-known canonical column names. Provider rules may require additional
// columns; these are the ones the engine itself understands.
const (
	ColTimestamp  = "timestamp"
	ColJoint      = "joint"
	ColMetric     = "metric"
	ColValue      = "value"
	ColUnit       = "unit"
	ColSessionID  = "session_id"
	ColSubjectID  = "subject_id"
	ColActivity   = "activity"
	ColSourceHash = "source_hash"
	ColSourceFile = "source_file"
)

// PassthroughColumns are identity columns kept by projection when present,
// even if the canonical schema neither requires nor defaults them.
var PassthroughColumns = []string{
	ColSessionID, ColSubjectID, ColActivity, ColUnit, ColMetric,
}

// Record is the typed view of one canonical measurement row. Fixed fields
// cover the columns the engine understands; Extra carries any further
// columns the canonical schema requires.
type Record struct {
	Timestamp  string
	Joint      string
	Metric     string
	Value      string
	Unit       string
	SessionID  string
	SubjectID  string
	Activity   string
	SourceHash string
	SourceFile string
	Extra      map[string]string
}

// RecordFromRow builds the typed view of a canonical row. Columns outside
// the fixed set land in Extra.
func RecordFromRow(row Row) Record {
	rec := Record{
		Timestamp:  row[ColTimestamp],
		Joint:      row[ColJoint],
		Metric:     row[ColMetric],
		Value:      row[ColValue],
		Unit:       row[ColUnit],
		SessionID:  row[ColSessionID],
		SubjectID:  row[ColSubjectID],
		Activity:   row[ColActivity],
		SourceHash: row[ColSourceHash],
		SourceFile: row[ColSourceFile],
	}
	for k, v := range row {
		switch k {
		case ColTimestamp, ColJoint, ColMetric, ColValue, ColUnit,
			ColSessionID, ColSubjectID, ColActivity, ColSourceHash, ColSourceFile:
		default:
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[k] = v
		}
	}
	return rec
}

// ValueNumber parses the record's value cell.
func (r Record) ValueNumber() (float64, error) {
	return ParseNumber(r.Value)
}

// TimestampNumber parses the record's timestamp cell.
func (r Record) TimestampNumber() (float64, error) {
	return ParseNumber(r.Timestamp)
}

package ingest

// Row is the parsed representation of one CSV line.
//
// All fields are strings as they appeared in the file; date is expected
// to be YYYY-MM-DD but is not enforced, and time is a free-form label.
// Exactly one of LoadFcst/LoadAct is populated for a well-formed row of
// a given kind, but both are carried so a row can round-trip the API
// without knowing its kind.
type Row struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	LoadFcst string `json:"load_fcst,omitempty"`
	LoadAct  string `json:"load_act,omitempty"`
	Revision string `json:"revision,omitempty"`
}

// RecordKey uniquely identifies a record within one table.
type RecordKey struct {
	Date string
	Time string
}

// Key returns the (date, time) record key.
func (r Row) Key() RecordKey {
	return RecordKey{Date: r.Date, Time: r.Time}
}

// Value returns the row's value field for the given kind.
func (r Row) Value(k Kind) string {
	if k.ValueColumn == "load_act" {
		return r.LoadAct
	}
	return r.LoadFcst
}

// Valid reports whether the row can be stored: both key fields present
// and at least one value field populated.
func (r Row) Valid() bool {
	return r.Date != "" && r.Time != "" && (r.LoadFcst != "" || r.LoadAct != "")
}

package mysqlwrapper

import "errors"

// Record is the flat wire shape of a result, used by the CLI and the HTTP
// gateway. Absent fields do not apply to the outcome.
type Record struct {
	Status       bool   `json:"status"`
	Msg          string `json:"msg"`
	Data         any    `json:"data,omitempty"`
	DataCount    *int   `json:"data_count,omitempty"`
	InsertID     *int64 `json:"insert_id,omitempty"`
	RowsAffected *int64 `json:"rows_affected,omitempty"`
	ErrCode      *int   `json:"err_code,omitempty"`
	ErrKind      Kind   `json:"err_kind,omitempty"`
	Error        string `json:"error,omitempty"`
	SQLStmt      string `json:"sql_stmt,omitempty"`
	CachedData   *bool  `json:"cached_data,omitempty"`
	CacheCreated *bool  `json:"cache_created,omitempty"`
	CacheWarning string `json:"cache_warning,omitempty"`
}

// InsertRecord converts an insert result.
func InsertRecord(r *InsertResult) Record {
	rec := Record{Status: true, Msg: r.Message}
	if r.HasInsertID {
		rec.InsertID = &r.InsertID
	}
	return rec
}

// UpdateRecord converts an update result.
func UpdateRecord(r *UpdateResult) Record {
	return Record{Status: true, Msg: r.Message, RowsAffected: &r.RowsAffected}
}

// DeleteRecord converts a delete result.
func DeleteRecord(r *DeleteResult) Record {
	return Record{Status: true, Msg: r.Message, RowsAffected: &r.RowsAffected}
}

// SelectRecord converts a select result. Data is always present, empty
// when no rows matched.
func SelectRecord(r *SelectResult) Record {
	count := r.Count
	rec := Record{
		Status:       true,
		Msg:          r.Message,
		Data:         r.Data(),
		DataCount:    &count,
		CacheWarning: r.CacheWarning,
	}
	if r.Cached {
		rec.CachedData = &r.Cached
	}
	if r.CacheCreated || r.CacheWarning != "" {
		rec.CacheCreated = &r.CacheCreated
	}
	return rec
}

// ErrorRecord converts any failure. *Error values keep their kind, code
// and statement.
func ErrorRecord(err error) Record {
	var werr *Error
	if !errors.As(err, &werr) {
		return Record{Status: false, Msg: err.Error()}
	}

	rec := Record{
		Status:  false,
		Msg:     werr.Message,
		ErrKind: werr.Kind,
		SQLStmt: werr.Statement,
	}
	if werr.Err != nil {
		rec.Error = werr.Err.Error()
	}
	if werr.Code != 0 {
		code := werr.Code
		rec.ErrCode = &code
	}
	return rec
}

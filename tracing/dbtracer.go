package tracing

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/sarchlab/memoprop/datarecording"
	"github.com/sarchlab/memoprop/hooking"
	"github.com/tebeka/atexit"
)

// AccessTable is the table DBTracer records into.
const AccessTable = "memoprop_access"

// AccessRecord is one row of AccessTable.
type AccessRecord struct {
	ID    string
	Time  int64 // Unix nanoseconds
	Attr  string
	Key   string
	Scope string
	Pos   string
	Owner string
	Fill  bool
	Err   string
}

// DBTracer records accessor events through a DataRecorder.
type DBTracer struct {
	mu       sync.Mutex
	recorder datarecording.DataRecorder
	now      func() time.Time
	count    int
}

// NewDBTracer creates a DBTracer and the access table if the recorder does
// not have it yet. Buffered records are flushed when the program exits
// through atexit.
func NewDBTracer(recorder datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{
		recorder: recorder,
		now:      time.Now,
	}

	if !slices.Contains(recorder.ListTables(), AccessTable) {
		recorder.CreateTable(AccessTable, AccessRecord{})
	}

	atexit.Register(func() { t.Terminate() })

	return t
}

// Func records one event.
func (t *DBTracer) Func(ctx hooking.HookCtx) {
	access, ok := accessOf(ctx)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	record := AccessRecord{
		ID:    xid.New().String(),
		Time:  t.now().UnixNano(),
		Attr:  access.Attr,
		Key:   access.Key,
		Scope: access.Scope.String(),
		Pos:   ctx.Pos.Name,
		Owner: DescribeOwner(access.Owner),
		Fill:  access.Fill,
	}

	if access.Err != nil {
		record.Err = access.Err.Error()
	}

	t.recorder.InsertData(AccessTable, record)
	t.count++
}

// NumRecords returns how many events have been recorded.
func (t *DBTracer) NumRecords() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.count
}

// Terminate flushes the buffered records.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.recorder.Flush()
}

// AccessFilter selects recorded events.
type AccessFilter struct {
	// Attr keeps only events of this attribute when not empty.
	Attr string

	// Limit caps the number of records returned. 0 means no limit.
	Limit int
}

// ReadAccessRecords reads recorded events back in recording order. It also
// returns the number of events matching the filter before Limit applies.
func ReadAccessRecords(
	ctx context.Context,
	reader datarecording.DataReader,
	filter AccessFilter,
) ([]AccessRecord, int, error) {
	reader.MapTable(AccessTable, AccessRecord{})

	params := datarecording.QueryParams{
		Limit:   filter.Limit,
		OrderBy: "Time ASC, ID ASC",
	}

	if filter.Attr != "" {
		params.Where = "Attr = ?"
		params.Args = []any{filter.Attr}
	}

	rows, total, err := reader.Query(ctx, AccessTable, params)
	if err != nil {
		return nil, 0, errors.Wrap(err, "read access records")
	}

	records := make([]AccessRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, *row.(*AccessRecord))
	}

	return records, total, nil
}

// Package datarecording stores flat Go structs as rows of SQLite tables.
package datarecording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

const defaultBatchSize = 100000

// FileExt is appended to the path given to Open.
const FileExt = ".sqlite3"

// DataRecorder is a backend that can record and store data
type DataRecorder interface {
	// CreateTable creates a new table whose columns are the fields of
	// sampleEntry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers an entry of the type the table was created with.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all tables created.
	ListTables() []string

	// Flush writes all the buffered entries into the database.
	Flush()

	// Close flushes and closes the database.
	Close() error
}

// Open creates a recorder writing to path + FileExt. An empty path picks a
// unique name. The file must not exist yet.
func Open(path string) (DataRecorder, error) {
	if path == "" {
		path = "memoprop_recording_" + xid.New().String()
	}

	filename := path + FileExt

	if _, err := os.Stat(filename); err == nil {
		return nil, errors.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", filename)
	}

	w := newSQLiteWriter(db)
	w.dbName = filename

	return w, nil
}

// New is like Open but panics on failure.
func New(path string) DataRecorder {
	w, err := Open(path)
	if err != nil {
		panic(err)
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n",
		w.(*sqliteWriter).dbName)

	return w
}

// NewWithDB creates a new DataRecorder with a given database.
func NewWithDB(db *sql.DB) DataRecorder {
	return newSQLiteWriter(db)
}

func newSQLiteWriter(db *sql.DB) *sqliteWriter {
	w := &sqliteWriter{
		DB:        db,
		batchSize: defaultBatchSize,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	entries    []any
}

// sqliteWriter is the writer that writes data into SQLite database
type sqliteWriter struct {
	*sql.DB

	lock       sync.Mutex
	dbName     string
	tables     map[string]*table
	batchSize  int
	entryCount int
}

func isAllowedKind(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func checkStructFields(entry any) error {
	t := reflect.TypeOf(entry)
	if t == nil || t.Kind() != reflect.Struct {
		return errors.Errorf("entry %T is not a struct", entry)
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if !isAllowedKind(field.Type.Kind()) {
			return errors.Errorf("field %s of %T has unsupported kind %s",
				field.Name, entry, field.Type.Kind())
		}
	}

	return nil
}

func fieldNames(t reflect.Type) []string {
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		names = append(names, t.Field(i).Name)
	}

	return names
}

func (w *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	if err := checkStructFields(sampleEntry); err != nil {
		panic(err)
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	if _, exists := w.tables[tableName]; exists {
		panic(fmt.Sprintf("table %s already exists", tableName))
	}

	structType := reflect.TypeOf(sampleEntry)
	fields := strings.Join(fieldNames(structType), ", \n\t")

	createTableSQL := `CREATE TABLE ` + tableName +
		` (` + "\n\t" + fields + "\n" + `);`
	w.mustExecute(createTableSQL)

	w.tables[tableName] = &table{
		structType: structType,
		entries:    []any{},
	}
}

func (w *sqliteWriter) InsertData(tableName string, entry any) {
	w.lock.Lock()
	defer w.lock.Unlock()

	t, exists := w.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.structType {
		panic(fmt.Sprintf("table %s stores %s, got %T",
			tableName, t.structType, entry))
	}

	t.entries = append(t.entries, entry)

	w.entryCount++
	if w.entryCount >= w.batchSize {
		w.flush()
	}
}

func (w *sqliteWriter) ListTables() []string {
	w.lock.Lock()
	defer w.lock.Unlock()

	tables := make([]string, 0, len(w.tables))
	for t := range w.tables {
		tables = append(tables, t)
	}

	return tables
}

func (w *sqliteWriter) Flush() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.flush()
}

func (w *sqliteWriter) flush() {
	if w.entryCount == 0 {
		return
	}

	tx, err := w.Begin()
	if err != nil {
		panic(errors.Wrap(err, "begin flush"))
	}

	for tableName, t := range w.tables {
		if len(t.entries) == 0 {
			continue
		}

		w.insertEntries(tx, tableName, t)
		t.entries = nil
	}

	if err := tx.Commit(); err != nil {
		panic(errors.Wrap(err, "commit flush"))
	}

	w.entryCount = 0
}

func (w *sqliteWriter) insertEntries(tx *sql.Tx, tableName string, t *table) {
	placeholders := make([]string, t.structType.NumField())
	for i := range placeholders {
		placeholders[i] = "?"
	}

	sqlStr := "INSERT INTO " + tableName +
		" VALUES (" + strings.Join(placeholders, ", ") + ")"

	stmt, err := tx.Prepare(sqlStr)
	if err != nil {
		panic(errors.Wrapf(err, "prepare insert into %s", tableName))
	}
	defer stmt.Close()

	for _, entry := range t.entries {
		v := reflect.ValueOf(entry)

		values := make([]any, 0, v.NumField())
		for i := 0; i < v.NumField(); i++ {
			values = append(values, v.Field(i).Interface())
		}

		if _, err := stmt.Exec(values...); err != nil {
			panic(errors.Wrapf(err, "insert into %s", tableName))
		}
	}
}

func (w *sqliteWriter) Close() error {
	w.Flush()

	return w.DB.Close()
}

func (w *sqliteWriter) mustExecute(query string) sql.Result {
	res, err := w.Exec(query)
	if err != nil {
		panic(errors.Wrapf(err, "failed to execute: %s", query))
	}

	return res
}

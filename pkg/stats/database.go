package stats

import (
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Database holds the dataset for the life of the process. The file is read
// at most once; a failed load is remembered and never retried.
type Database struct {
	Path  string
	Shape Shape

	once sync.Once
	ds   *Dataset
	err  error
}

func NewDatabase(path string, shape Shape) *Database {
	return &Database{Path: path, Shape: shape}
}

// Dataset returns the cached dataset, loading it on first use.
func (db *Database) Dataset() (*Dataset, error) {
	db.once.Do(func() {
		db.ds, db.err = LoadFile(db.Path, db.Shape)
	})
	return db.ds, db.err
}

// Reload reads the file again without touching the cached copy.
func (db *Database) Reload() (*Dataset, error) {
	return LoadFile(db.Path, db.Shape)
}

// Info prints a short description of the loaded dataset.
func (db *Database) Info(w io.Writer) error {
	ds, err := db.Dataset()
	if err != nil {
		return err
	}

	first, last := ds.YearBounds()
	p := message.NewPrinter(language.English)
	_, err = p.Fprintf(w, `
	File      : %s (%s)
	Years     : %s - %s
	Countries : %d
	Rows      : %d
	Columns   : %s
	Bounds    : %v
	`, ds.Path, ds.Shape, strconv.Itoa(first), strconv.Itoa(last), len(ds.Countries()), len(ds.Records),
		strings.Join(ds.Columns, ", "), ds.HasBounds)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// Dump writes a detailed, type-annotated rendering of o.
func Dump(w io.Writer, o ...interface{}) {
	spew.Fdump(w, o...)
}

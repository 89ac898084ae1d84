// Package flatxml reads flat XML dataset fixtures:
//
//	<dataset>
//	  <users id="1" first_name="Bob"/>
//	  <users id="2" first_name="Amy" last_name="Zed"/>
//	  <roles/>
//	</dataset>
//
// Each child element of the root is one row of the table it is named
// after. A table's columns are the attribute names of its first row, in
// document order, followed by any attribute first seen on a later row. A
// row without an attribute holds nil for that column. An element with no
// attributes declares a table without adding a row.
//
// Importing the package registers it for the ".xml" extension.
package flatxml

import (
	"encoding/xml"
	"errors"
	"io"
	"os"

	"github.com/kbukum/dbunit/dataset"
	apperrors "github.com/kbukum/dbunit/errors"
)

// Extension is the file extension this package registers.
const Extension = ".xml"

func init() {
	dataset.RegisterLoader(Extension, func(path string) (dataset.DataSet, error) {
		return Load(path)
	})
}

// Load parses the fixture file at path.
func Load(path string) (*dataset.DefaultDataSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.InvalidInput("source", "cannot open fixture "+path).WithCause(err)
	}
	defer f.Close()
	return parse(f, path)
}

// Parse reads a flat XML dataset from r.
func Parse(r io.Reader) (*dataset.DefaultDataSet, error) {
	return parse(r, "flat XML input")
}

type pendingTable struct {
	name    string
	columns []string
	known   map[string]bool
	rows    []dataset.Row
}

func (p *pendingTable) addRow(attrs []xml.Attr) {
	if len(attrs) == 0 {
		return
	}
	row := make(dataset.Row, len(attrs))
	for _, a := range attrs {
		col := a.Name.Local
		if !p.known[col] {
			p.known[col] = true
			p.columns = append(p.columns, col)
		}
		row[col] = a.Value
	}
	p.rows = append(p.rows, row)
}

func parse(r io.Reader, source string) (*dataset.DefaultDataSet, error) {
	dec := xml.NewDecoder(r)

	var (
		order  []*pendingTable
		byName = make(map[string]*pendingTable)
		depth  int
		root   bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.InvalidFormat(source, err.Error()).WithCause(err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			switch depth {
			case 1:
				root = true
			case 2:
				name := el.Name.Local
				p, ok := byName[name]
				if !ok {
					p = &pendingTable{name: name, known: make(map[string]bool)}
					byName[name] = p
					order = append(order, p)
				}
				p.addRow(el.Attr)
			default:
				return nil, apperrors.InvalidFormat(source, "row element <"+el.Name.Local+"> must not have children")
			}
		case xml.EndElement:
			depth--
		}
	}
	if !root {
		return nil, apperrors.InvalidFormat(source, "missing root element")
	}

	ds, _ := dataset.NewDataSet()
	for _, p := range order {
		tbl := dataset.NewTable(dataset.NewTableMetaData(p.name, p.columns))
		tbl.AddRows(p.rows...)
		if err := ds.AddTable(tbl); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

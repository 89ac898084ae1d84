// Package yamlset reads YAML dataset fixtures:
//
//	users:
//	  - id: 1
//	    first_name: Bob
//	    last_name: null
//	  - id: 2
//	    first_name: Amy
//	roles: []
//
// Tables keep document order and columns keep first-seen key order. Scalars
// decode to their YAML types; null and absent keys are nil.
//
// Importing the package registers it for ".yml" and ".yaml".
package yamlset

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/dbunit/dataset"
	apperrors "github.com/kbukum/dbunit/errors"
)

func init() {
	load := func(path string) (dataset.DataSet, error) { return Load(path) }
	dataset.RegisterLoader(".yml", load)
	dataset.RegisterLoader(".yaml", load)
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

// Parse reads a YAML dataset from r.
func Parse(r io.Reader) (*dataset.DefaultDataSet, error) {
	return parse(r, "YAML input")
}

func parse(r io.Reader, source string) (*dataset.DefaultDataSet, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			ds, _ := dataset.NewDataSet()
			return ds, nil
		}
		return nil, apperrors.InvalidFormat(source, err.Error()).WithCause(err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	ds, _ := dataset.NewDataSet()
	if root.Tag == "!!null" {
		return ds, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, apperrors.InvalidFormat(source, "top level must map table names to rows")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		tbl, err := parseTable(name, root.Content[i+1])
		if err != nil {
			return nil, apperrors.InvalidFormat(source, err.Error())
		}
		if err := ds.AddTable(tbl); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func parseTable(name string, node *yaml.Node) (*dataset.DefaultTable, error) {
	var (
		columns []string
		known   = make(map[string]bool)
		rows    []dataset.Row
	)
	switch {
	case node.Tag == "!!null":
	case node.Kind != yaml.SequenceNode:
		return nil, fmt.Errorf("table %s (line %d): rows must be a list", name, node.Line)
	}

	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("table %s (line %d): each row must be a mapping", name, item.Line)
		}
		row := make(dataset.Row, len(item.Content)/2)
		for k := 0; k+1 < len(item.Content); k += 2 {
			col := item.Content[k].Value
			v, err := scalar(item.Content[k+1])
			if err != nil {
				return nil, fmt.Errorf("table %s column %s: %w", name, col, err)
			}
			if !known[col] {
				known[col] = true
				columns = append(columns, col)
			}
			row[col] = v
		}
		rows = append(rows, row)
	}

	tbl := dataset.NewTable(dataset.NewTableMetaData(name, columns))
	tbl.AddRows(rows...)
	return tbl, nil
}

func scalar(node *yaml.Node) (any, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("line %d: cell values must be scalars", node.Line)
	}
	if node.Tag == "!!null" {
		return nil, nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

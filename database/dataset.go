package database

import (
	"context"
	"fmt"
	"slices"

	"gorm.io/gorm"

	"github.com/kbukum/dbunit/dataset"
	"github.com/kbukum/dbunit/purger"
)

// QueryTable runs query and returns its result as a table called name.
// Columns follow the result set; []byte cells become strings. The table
// has no primary keys.
func (c *Conn) QueryTable(ctx context.Context, name, query string, args ...interface{}) (*dataset.DefaultTable, error) {
	return c.queryTable(ctx, name, nil, query, args...)
}

func (c *Conn) queryTable(ctx context.Context, name string, primaryKeys []string, query string, args ...interface{}) (*dataset.DefaultTable, error) {
	rows, err := c.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, FromDatabase(err, query)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, FromDatabase(err, query)
	}
	tbl := dataset.NewTable(dataset.NewTableMetaData(name, columns, primaryKeys...))

	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, FromDatabase(err, query)
		}
		row := make(dataset.Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		tbl.AddRow(row)
	}
	if err := rows.Err(); err != nil {
		return nil, FromDatabase(err, query)
	}
	return tbl, nil
}

// QueryDataSet reads whole tables into a dataset, in the order given. With
// no tables it reads every managed table except purger.DefaultExcludedTables.
// Primary keys come from the schema as reported by the gorm migrator.
func (c *Conn) QueryDataSet(ctx context.Context, tables ...string) (*dataset.DefaultDataSet, error) {
	if len(tables) == 0 {
		all, err := c.ManagedTables(ctx)
		if err != nil {
			return nil, err
		}
		tables = slices.DeleteFunc(all, func(t string) bool {
			return slices.Contains(purger.DefaultExcludedTables, t)
		})
	}

	ds, _ := dataset.NewDataSet()
	for _, name := range tables {
		pks, err := c.PrimaryKeys(ctx, name)
		if err != nil {
			return nil, err
		}
		tbl, err := c.queryTable(ctx, name, pks, "SELECT * FROM "+quoteIdent(c.platform, name))
		if err != nil {
			return nil, err
		}
		if err := ds.AddTable(tbl); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// PrimaryKeys returns the primary key columns of table in column order.
func (c *Conn) PrimaryKeys(ctx context.Context, table string) ([]string, error) {
	types, err := c.db.WithContext(ctx).Migrator().ColumnTypes(table)
	if err != nil {
		return nil, FromDatabase(err, "")
	}
	var keys []string
	for _, ct := range types {
		if pk, ok := ct.PrimaryKey(); ok && pk {
			keys = append(keys, ct.Name())
		}
	}
	return keys, nil
}

// InsertDataSet inserts every row of every table of ds in one transaction,
// tables in iteration order. nil cells are inserted as NULL; columns
// missing from the database fail the statement.
func (c *Conn) InsertDataSet(ctx context.Context, ds dataset.DataSet) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for name, tbl := range dataset.All(ds) {
			for i := 0; i < tbl.RowCount(); i++ {
				row, err := tbl.Row(i)
				if err != nil {
					return err
				}
				if len(row) == 0 {
					continue
				}
				if err := tx.Table(name).Create(map[string]interface{}(row)).Error; err != nil {
					return FromDatabase(err, fmt.Sprintf("INSERT INTO %s (row %d)", name, i))
				}
			}
		}
		return nil
	})
}

// QueryTable runs query on d. See Conn.QueryTable.
func (d *DB) QueryTable(ctx context.Context, name, query string, args ...interface{}) (*dataset.DefaultTable, error) {
	return d.Conn().QueryTable(ctx, name, query, args...)
}

// QueryDataSet reads tables from d. See Conn.QueryDataSet.
func (d *DB) QueryDataSet(ctx context.Context, tables ...string) (*dataset.DefaultDataSet, error) {
	return d.Conn().QueryDataSet(ctx, tables...)
}

// InsertDataSet inserts ds into d. See Conn.InsertDataSet.
func (d *DB) InsertDataSet(ctx context.Context, ds dataset.DataSet) error {
	return d.Conn().InsertDataSet(ctx, ds)
}

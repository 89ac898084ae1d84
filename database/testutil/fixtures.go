package testutil

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/kbukum/dbunit/dataset"
)

// LoadDataSet inserts the fixture at source (a path or a dataset.DataSet)
// into c after purging it. Tokens are replaced through builder when it is
// not nil.
func LoadDataSet(ctx context.Context, c *Component, source any, builder *dataset.Builder) error {
	if builder == nil {
		builder = dataset.NewBuilder()
	}
	ds, err := builder.CreateDataSet(source)
	if err != nil {
		return err
	}
	if err := c.Reset(ctx); err != nil {
		return err
	}
	db, err := c.started()
	if err != nil {
		return err
	}
	return db.InsertDataSet(ctx, ds)
}

// MustLoadDataSet is LoadDataSet that fails the test on error.
func MustLoadDataSet(t testing.TB, c *Component, source any) {
	t.Helper()
	if err := LoadDataSet(context.Background(), c, source, nil); err != nil {
		t.Fatalf("LoadDataSet(%s) failed: %v", describeSource(source), err)
	}
}

// AssertDataSetEqual fails the test when expected and actual differ.
// Both go through builder, so sort keys and replacements apply to each.
func AssertDataSetEqual(t testing.TB, builder *dataset.Builder, expected, actual any) {
	t.Helper()
	if builder == nil {
		builder = dataset.NewBuilder()
	}
	want, err := builder.CreateDataSet(expected)
	if err != nil {
		t.Fatalf("expected dataset: %v", err)
	}
	got, err := builder.CreateDataSet(actual)
	if err != nil {
		t.Fatalf("actual dataset: %v", err)
	}
	if err := dataset.AssertDataSetsEqual(want, got); err != nil {
		t.Error(err)
	}
}

// AssertTablesMatch compares the tables of expected against the live
// content of those tables in c.
func AssertTablesMatch(t testing.TB, c *Component, expected any, builder *dataset.Builder) {
	t.Helper()
	if builder == nil {
		builder = dataset.NewBuilder()
	}
	want, err := builder.CreateDataSet(expected)
	if err != nil {
		t.Fatalf("expected dataset: %v", err)
	}
	db, err := c.started()
	if err != nil {
		t.Fatal(err)
	}
	actual, err := db.QueryDataSet(context.Background(), dataset.TableNames(want)...)
	if err != nil {
		t.Fatalf("query actual tables: %v", err)
	}
	AssertDataSetEqual(t, builder, want, actual)
}

// TableExists checks if a table exists in the database.
func TableExists(db *gorm.DB, table string) bool {
	return db.Migrator().HasTable(table)
}

// CountRows returns the number of rows in a table.
func CountRows(db *gorm.DB, table string) (int64, error) {
	var count int64
	err := db.Table(table).Count(&count).Error
	return count, err
}

// AssertTableEmpty fails the test if the table is not empty.
func AssertTableEmpty(t testing.TB, db *gorm.DB, table string) {
	t.Helper()
	AssertRowCount(t, db, table, 0)
}

// AssertRowCount fails the test if the table doesn't have the expected row count.
func AssertRowCount(t testing.TB, db *gorm.DB, table string, expected int64) {
	t.Helper()
	count, err := CountRows(db, table)
	if err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}
	if count != expected {
		t.Errorf("table %s row count = %d, want %d", table, count, expected)
	}
}

func describeSource(source any) string {
	if s, ok := source.(string); ok {
		return s
	}
	return fmt.Sprintf("%T", source)
}

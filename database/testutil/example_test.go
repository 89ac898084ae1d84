package testutil_test

import (
	"context"
	"fmt"

	"github.com/kbukum/dbunit/database/testutil"
	"github.com/kbukum/dbunit/dataset"
)

func Example() {
	ctx := context.Background()
	db := testutil.NewComponent().WithSchema(`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)`)
	if err := db.Start(ctx); err != nil {
		panic(err)
	}
	defer db.Stop(ctx)

	users := dataset.NewTable(dataset.NewTableMetaData("users", []string{"id", "name"}))
	users.AddRows(dataset.Row{"id": 1, "name": "Amy"}, dataset.Row{"id": 2, "name": "Bob"})
	fixture, _ := dataset.NewDataSet(users)

	if err := testutil.LoadDataSet(ctx, db, fixture, nil); err != nil {
		panic(err)
	}
	n, _ := testutil.CountRows(db.DB(), "users")
	fmt.Println(n)
	// Output: 2
}

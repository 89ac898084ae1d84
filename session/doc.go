// Package session holds the state shared by the tests of one test run:
// the database connection, whether the database was initialized and the
// schema created, and which shared fixtures are loaded.
//
// A session is opened once, usually in TestMain, and threaded into tests:
//
//	var sess *session.Session
//
//	func TestMain(m *testing.M) {
//	    ctx := context.Background()
//	    cfg, err := session.LoadConfig()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    sess, err = session.Open(ctx, cfg)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := sess.SetUpSchema(ctx, session.AutoMigrate(&User{})); err != nil {
//	        log.Fatal(err)
//	    }
//	    code := m.Run()
//	    sess.Close()
//	    os.Exit(code)
//	}
//
//	func TestCreateUser(t *testing.T) {
//	    tc := sess.Begin(t)
//	    tc.Check(sess.CleanInsert(tc.Context(), "testdata/users.yml"))
//	    tc.Check(createUser(sess.DB().GormDB, "Bob"))
//	    tc.Builder().AddSortBy("users", "name").SetExcludeColumnsForTable("users", "id")
//	    tc.AssertTables("testdata/users_after.yml")
//	}
//
// Failures other than dataset assertions are reported together with the
// statements the test executed, newest first, and the call trace up to the
// testing package.
package session

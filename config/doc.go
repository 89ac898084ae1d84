// Package config loads configuration files and environment variables into
// structs with Viper.
//
//	var cfg session.Config
//	err := config.LoadConfig("dbunit", &cfg, config.WithEnvAlias("DB", "database"))
//
// The first of dbunit.yml, config/dbunit.yml or testdata/dbunit.yml found in
// the working directory or up to two parents is read, then a .env file found
// the same way is loaded into the environment. Environment variables carrying
// the prefix (DBUNIT_ by default) override file values: DBUNIT_DATABASE_HOST
// sets database.host, DBUNIT_DATABASE_MAX_OPEN_CONNS sets
// database.max_open_conns. An alias maps a second prefix onto a key, so with
// the alias above DB_HOST also sets database.host.
package config

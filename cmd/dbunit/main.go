// Command dbunit renders and compares dataset fixture files.
//
//	dbunit show users.yml --sort users=name --exclude users=id
//	dbunit diff expected.xml actual.yml --null '##NULL##'
//	dbunit dump users orders
//
// Exit status is 1 when datasets differ or a command fails.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/dbunit/dataset"
	_ "github.com/kbukum/dbunit/dataset/flatxml"
	_ "github.com/kbukum/dbunit/dataset/yamlset"
	"github.com/kbukum/dbunit/session"
	"github.com/kbukum/dbunit/validation"
	"github.com/kbukum/dbunit/version"
)

// builderFlags are shared by every command that builds datasets.
type builderFlags struct {
	sort    []string
	exclude []string
	replace []string
	substr  []string
	null    []string
	now     string
}

func (f *builderFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringArrayVar(&f.sort, "sort", nil, "sort a table by columns: table=col1,col2 (repeatable)")
	fl.StringArrayVar(&f.exclude, "exclude", nil, "drop columns from a table: table=col1,col2 (repeatable)")
	fl.StringArrayVar(&f.replace, "replace", nil, "replace cells equal to a token: token=value (repeatable)")
	fl.StringArrayVar(&f.substr, "substr", nil, "replace a substring inside cells: token=value (repeatable)")
	fl.StringArrayVar(&f.null, "null", nil, "replace cells equal to the token with NULL (repeatable)")
	fl.StringVar(&f.now, "now", "", "replace cells equal to the token with the current time")
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.$]*$`)

// builder validates every flag and returns the configured builder.
func (f *builderFlags) builder() (*dataset.Builder, error) {
	v := validation.New()
	b := dataset.NewBuilder()

	for _, spec := range f.sort {
		if table, cols, ok := tableColumns(v, "sort", spec); ok {
			b.AddSortBy(table, cols...)
		}
	}
	for _, spec := range f.exclude {
		if table, cols, ok := tableColumns(v, "exclude", spec); ok {
			b.SetExcludeColumnsForTable(table, cols...)
		}
	}
	for _, spec := range f.replace {
		if token, value, ok := pair(v, "replace", spec); ok {
			b.AddFullReplacement(token, value)
		}
	}
	for _, spec := range f.substr {
		if token, value, ok := pair(v, "substr", spec); ok {
			b.AddSubStringReplacement(token, value)
		}
	}
	for _, token := range f.null {
		v.Required("null", token)
		b.AddFullReplacement(token, nil)
	}
	if f.now != "" {
		b.AddFullReplacement(f.now, time.Now().Format(session.DefaultNowFormat))
	}

	if err := v.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

func pair(v *validation.Validator, flag, spec string) (string, string, bool) {
	key, value, ok := strings.Cut(spec, "=")
	v.Custom(ok, flag, fmt.Sprintf("%q is not key=value", spec))
	v.Custom(!ok || key != "", flag, fmt.Sprintf("%q has an empty key", spec))
	return key, value, ok && key != ""
}

func tableColumns(v *validation.Validator, flag, spec string) (string, []string, bool) {
	table, list, ok := pair(v, flag, spec)
	if !ok {
		return "", nil, false
	}
	before := len(v.Errors())
	v.Pattern(flag, table, identPattern)
	var cols []string
	for _, c := range strings.Split(list, ",") {
		c = strings.TrimSpace(c)
		v.Required(flag, c)
		cols = append(cols, c)
	}
	return table, cols, len(v.Errors()) == before
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dbunit",
		Short: "Render and compare database fixture datasets",
		Long: `dbunit loads flat XML (.xml) and YAML (.yml, .yaml) dataset fixtures,
applies column exclusion, token replacement and sorting, and renders or
compares the result.

Examples:
  dbunit show testdata/users.yml --sort users=name
  dbunit diff expected.xml actual.yml --exclude users=id,created_at --null '##NULL##'
  dbunit dump users --sort users=id`,
		Version:      version.Get().Full(),
		SilenceUsage: true,
	}
	root.AddCommand(newShowCmd(), newDiffCmd(), newDumpCmd())
	return root
}

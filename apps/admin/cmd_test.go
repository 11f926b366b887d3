package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/analytics"
	"github.com/trezcool/maktaba/core/catalog"
	"github.com/trezcool/maktaba/core/review"
	testutil "github.com/trezcool/maktaba/tests"
)

const seedPath = "testdata/catalog.yaml"

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	conf := core.NewTestConfig()
	cli, closeFn, err := newCommandLine(context.Background(), conf, testutil.NewLogger(conf), false)
	if err != nil {
		t.Fatalf("newCommandLine() failed: %v", err)
	}
	t.Cleanup(closeFn)

	var out bytes.Buffer
	cli.out = &out
	return cli, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
}

func runCLITests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
			case err != nil:
				t.Errorf("cli.run() unexpected error = %v", err)
			case tt.wantOut != "" && out.String() != tt.wantOut:
				t.Errorf("cli.run() output = %q, wantOut %q", out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_root(t *testing.T) {
	cli, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	})
}

func Test_commandLine_migrate(t *testing.T) {
	// sqlx.Open does not connect; goose is mocked below.
	db, err := sqlx.Open("postgres", "postgres://localhost/maktaba?sslmode=disable")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	var out bytes.Buffer
	cli := &commandLine{db: db, out: &out}

	origGooseRun := gooseRunFunc
	defer func() { gooseRunFunc = origGooseRun }()
	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, &out, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "add_review_edits", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	})

	t.Run("without a SQL database", func(t *testing.T) {
		noSQL := &commandLine{out: &out}
		assert.Equal(t, errNoSQLDatabase, noSQL.run([]string{"admin", "migrate", "up"}))

		_, _, err := newCommandLine(context.Background(), core.NewTestConfig(), testutil.NewLogger(nil), true /* migrateOnly */)
		assert.Equal(t, errNoSQLDatabase, err)
	})
}

func Test_commandLine_addOwner(t *testing.T) {
	cli, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "no args", args: []string{"addowner"}, wantErr: errHelp},
		{name: "email but no name", args: []string{"addowner", "--email", "amina@test.cd"}, wantErr: errHelp},
		{name: "invalid email", args: []string{"addowner", "--email", "amina", "--name", "Amina"}, wantErrStr: "email: email must be a valid email address"},
		{name: "registered", args: []string{"addowner", "--email", " Amina@Test.cd ", "--name", "Amina"}, wantOut: "owner amina@test.cd registered\n"},
		{name: "already registered", args: []string{"addowner", "--email", "amina@test.cd", "--name", "Amina"}, wantErrStr: catalog.ErrOwnerExists.Error()},
	})

	owner, err := cli.catalogSvc.GetOwner(context.Background(), "amina@test.cd")
	require.NoError(t, err)
	assert.Equal(t, "Amina", owner.Name)
	assert.Equal(t, catalog.RoleAdmin, owner.Role)
}

func Test_commandLine_seed(t *testing.T) {
	cli, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "no file", args: []string{"seed"}, wantErr: errHelp},
		{name: "missing file", args: []string{"seed", "--file", "testdata/nope.yaml"}, wantErrStr: "reading seed file: open testdata/nope.yaml: no such file or directory"},
		{name: "seeded", args: []string{"seed", "--file", seedPath}, wantOut: "seeded 2 owners, 3 resources, 12 reviews\n"},
		{name: "owners are kept", args: []string{"seed", "--file", seedPath}, wantOut: "seeded 0 owners, 3 resources, 12 reviews\n"},
	})

	ctx := context.Background()
	owners, err := cli.catalogSvc.QueryOwners(ctx)
	require.NoError(t, err)
	assert.Len(t, owners, 2)

	resources, err := cli.catalogSvc.QueryByOwner(ctx, "kofi@maktaba.test")
	require.NoError(t, err)
	require.Len(t, resources, 2)
	for _, res := range resources {
		assert.True(t, res.Flagged, "%s has ten one-star reviews", res.Title)
	}
	suspended, err := cli.catalogSvc.GetOwner(ctx, "kofi@maktaba.test")
	require.NoError(t, err)
	assert.False(t, suspended.Suspended, "20 one-star reviews are below the suspension threshold")
}

func Test_commandLine_reevaluate(t *testing.T) {
	cli, out := setup(t)
	require.NoError(t, cli.run([]string{"admin", "seed", "--file", seedPath}))

	resources, err := cli.catalogSvc.QueryByOwner(context.Background(), "kofi@maktaba.test")
	require.NoError(t, err)
	require.Len(t, resources, 1)
	res := resources[0]

	runCLITests(t, cli, out, []cliTest{
		{name: "no resource", args: []string{"reevaluate"}, wantErr: errHelp},
		{name: "unknown resource", args: []string{"reevaluate", "--resource", "nope"}, wantErrStr: `finding resource: resource "nope" not found`},
	})

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "reevaluate", "--resource", res.ID}))
	var got review.Outcome
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, review.Outcome{
		Evaluated:        true,
		ResourceID:       res.ID,
		ResourceOneStars: 10,
		OwnerID:          "kofi@maktaba.test",
		OwnerOneStars:    10,
	}, got, "already flagged resources are not flagged twice")
}

func Test_commandLine_report(t *testing.T) {
	cli, out := setup(t)
	require.NoError(t, cli.run([]string{"admin", "seed", "--file", seedPath}))

	runCLITests(t, cli, out, []cliTest{
		{name: "unknown owner", args: []string{"report", "--owner", "ghost@test.cd"}, wantErrStr: `finding owner: owner "ghost@test.cd" not found`},
	})
	assert.ErrorContains(t, cli.run([]string{"admin", "report", "--limit", "lol"}), `invalid argument "lol" for "--limit" flag`)

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "report", "--owner", "amina@maktaba.test", "--limit", "1"}))
	var got analytics.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))

	assert.Equal(t, analytics.Totals{Resources: 3, Reviews: 12, Categories: 3, Average: 1.6}, got.Totals)
	require.Len(t, got.TopRated, 1)
	assert.Equal(t, "Intro to Physics", got.TopRated[0].Title)
	require.NotNil(t, got.OwnerPerformance)
	assert.Equal(t, "amina@maktaba.test", got.OwnerPerformance.Owner.ID)
	assert.Equal(t, 4.5, got.OwnerPerformance.Average)
	assert.Equal(t, 2, got.OwnerPerformance.ReviewCount)
}

// hubctl is the developer companion of the hub: it mints tokens and seeds the
// user directory and project memberships of a local store.
//
//	hubctl token --user alice --ttl 24h
//	hubctl seed --user alice --name Alice --project P1 --project P2
//	hubctl inspect --prefix member:alice:
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"taskhub/auth"
	"taskhub/domain"
	"taskhub/infrastructure/sqlstore"
	"taskhub/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		printUsage(out)
		return fmt.Errorf("missing command")
	}
	switch args[0] {
	case "token":
		return runToken(args[1:], out)
	case "seed":
		return runSeed(args[1:], out)
	case "inspect":
		return runInspect(args[1:], out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "usage: hubctl <token|seed|inspect> [flags]")
}

func runToken(args []string, out io.Writer) error {
	var (
		userID string
		role   string
		ttl    time.Duration
		secret string
		issuer string
	)
	flagSet := pflag.NewFlagSet("token", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringVarP(&userID, "user", "u", "", "user id the token is issued for")
	flagSet.StringVar(&role, "role", string(domain.RoleMember), "role claim")
	flagSet.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	flagSet.StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "signing secret (default $JWT_SECRET)")
	flagSet.StringVar(&issuer, "issuer", envOr("JWT_ISSUER", "taskhub"), "issuer claim (default $JWT_ISSUER)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if userID == "" {
		return fmt.Errorf("--user is required")
	}
	if secret == "" {
		return fmt.Errorf("--secret or JWT_SECRET is required")
	}

	token, err := auth.NewTokenManager(secret, issuer).Generate(userID, domain.Role(role), ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}

type seeder interface {
	saveUser(ctx context.Context, user domain.User) error
	addMember(ctx context.Context, userID, projectID string) error
	close() error
}

func runSeed(args []string, out io.Writer) error {
	var (
		driver     string
		path       string
		user       domain.User
		role       string
		inactive   bool
		projectIDs []string
	)
	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringVar(&driver, "driver", envOr("STORE_DRIVER", "badger"), "store driver: badger or sqlite")
	flagSet.StringVar(&path, "path", "", "store location (default $BADGER_FILEPATH or $SQLITE_PATH)")
	flagSet.StringVarP(&user.ID, "user", "u", "", "user id")
	flagSet.StringVar(&user.DisplayName, "name", "", "display name")
	flagSet.StringVar(&user.Email, "email", "", "email address")
	flagSet.StringVar(&role, "role", string(domain.RoleMember), "role")
	flagSet.BoolVar(&inactive, "inactive", false, "store the user as deactivated")
	flagSet.StringSliceVarP(&projectIDs, "project", "p", nil, "project ids the user belongs to (repeatable)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if user.ID == "" {
		return fmt.Errorf("--user is required")
	}
	user.Role = domain.Role(role)
	user.Active = !inactive
	if user.DisplayName == "" {
		user.DisplayName = user.ID
	}

	store, err := openSeeder(driver, path)
	if err != nil {
		return err
	}
	defer func() { _ = store.close() }()

	ctx := context.Background()
	if err := store.saveUser(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	for _, projectID := range projectIDs {
		if err := store.addMember(ctx, user.ID, projectID); err != nil {
			return fmt.Errorf("add %s to %s: %w", user.ID, projectID, err)
		}
	}
	fmt.Fprintf(out, "seeded %s with %d project(s) in %s\n", user.ID, len(projectIDs), driver)
	return nil
}

func openSeeder(driver, path string) (seeder, error) {
	switch driver {
	case "badger":
		if path == "" {
			path = envOr("BADGER_FILEPATH", "./data/badger")
		}
		db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
		if err != nil {
			return nil, fmt.Errorf("database opening failed: %w", err)
		}
		return &badgerSeeder{
			db:          db,
			users:       repositories.NewUserRepository(db),
			memberships: repositories.NewMembershipRepository(db),
		}, nil
	case "sqlite":
		if path == "" {
			path = envOr("SQLITE_PATH", "./data/taskhub.db")
		}
		store, err := sqlstore.Open(path)
		if err != nil {
			return nil, err
		}
		return &sqliteSeeder{store: store}, nil
	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}
}

type badgerSeeder struct {
	db          *badger.DB
	users       *repositories.UserRepository
	memberships *repositories.MembershipRepository
}

func (s *badgerSeeder) saveUser(_ context.Context, user domain.User) error {
	return s.users.SaveUser(user)
}

func (s *badgerSeeder) addMember(_ context.Context, userID, projectID string) error {
	return s.memberships.AddMember(userID, projectID)
}

func (s *badgerSeeder) close() error { return s.db.Close() }

type sqliteSeeder struct {
	store *sqlstore.Store
}

func (s *sqliteSeeder) saveUser(ctx context.Context, user domain.User) error {
	return s.store.SaveUser(ctx, user)
}

func (s *sqliteSeeder) addMember(ctx context.Context, userID, projectID string) error {
	return s.store.AddMember(ctx, userID, projectID)
}

func (s *sqliteSeeder) close() error { return s.store.Close() }

func runInspect(args []string, out io.Writer) error {
	var path, prefix string
	flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringVar(&path, "path", envOr("BADGER_FILEPATH", "./data/badger"), "badger directory")
	flagSet.StringVar(&prefix, "prefix", "", "only list keys starting with this prefix")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() { _ = db.Close() }()

	entries, err := repositories.Inspect(context.Background(), db, prefix)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Key", "Kind", "At", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	for _, entry := range entries {
		at := "-"
		if !entry.At.IsZero() {
			at = entry.At.Format(time.RFC3339)
		}
		table.Append([]string{entry.Key, entry.Kind, at, entry.Detail})
	}
	table.Render()
	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

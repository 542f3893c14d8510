// Package seed loads the demo accounts, spots and gear reviews.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fakie/cmd/identity"
	"fakie/cmd/identity/ids"
	"fakie/cmd/internal/catalog"
)

// DemoPassword is shared by every demo account.
const DemoPassword = "password123"

// Accounts creates accounts unless their email already exists.
type Accounts interface {
	EnsureAccount(ctx context.Context, in identity.RegisterInput, role identity.Role) (identity.Account, bool, error)
}

// Result counts what a run created.
type Result struct {
	Accounts int
	Spots    int
	Gear     int
}

// Seeder writes the demo data set.
type Seeder struct {
	Accounts Accounts
	Spots    catalog.Store[catalog.Spot]
	Gear     catalog.Store[catalog.Gear]
	Log      *slog.Logger
	Now      func() time.Time
}

type demoAccount struct {
	key      string
	username string
	email    string
	role     identity.Role
}

var demoAccounts = []demoAccount{
	{key: "admin", username: "admin", email: "admin@fakie.com", role: identity.RoleAdmin},
	{key: "mike", username: "skater_mike", email: "mike@example.com", role: identity.RoleMember},
	{key: "tony", username: "tony_grind", email: "tony@example.com", role: identity.RoleMember},
}

// Run is idempotent: accounts are matched by email, and spots and gear are only
// written into empty tables.
func (s Seeder) Run(ctx context.Context) (Result, error) {
	if s.Accounts == nil || s.Spots == nil || s.Gear == nil {
		return Result{}, errors.New("seed: missing dependency")
	}
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now()
	}

	var res Result
	owners := make(map[string]string, len(demoAccounts))
	for _, d := range demoAccounts {
		a, created, err := s.Accounts.EnsureAccount(ctx, identity.RegisterInput{
			Username: d.username,
			Email:    d.email,
			Password: DemoPassword,
		}, d.role)
		if err != nil {
			return res, fmt.Errorf("seed: account %s: %w", d.email, err)
		}
		owners[d.key] = a.ID
		if created {
			res.Accounts++
		}
	}
	log.Info("seed.accounts", "created", res.Accounts)

	n, err := seedAll(ctx, s.Spots, demoSpots, owners, now, catalog.NewSpot)
	if err != nil {
		return res, fmt.Errorf("seed: spots: %w", err)
	}
	res.Spots = n
	log.Info("seed.spots", "created", n)

	n, err = seedAll(ctx, s.Gear, demoGear, owners, now, catalog.NewGear)
	if err != nil {
		return res, fmt.Errorf("seed: gear: %w", err)
	}
	res.Gear = n
	log.Info("seed.gear", "created", n)

	return res, nil
}

type demoRecord[I any] struct {
	owner string
	in    I
}

// seedAll writes items oldest first so the first item lists last, one second apart.
func seedAll[T catalog.Record, I catalog.Input[T]](
	ctx context.Context,
	store catalog.Store[T],
	items []demoRecord[I],
	owners map[string]string,
	now time.Time,
	newRecord func(id, owner string, at time.Time) T,
) (int, error) {
	existing, err := store.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	start := now.Add(-time.Duration(len(items)) * time.Second)
	for i, item := range items {
		if fields := item.in.Validate(false); fields != nil {
			return i, fmt.Errorf("invalid demo record %d: %v", i, fields)
		}
		owner, ok := owners[item.owner]
		if !ok {
			return i, fmt.Errorf("unknown demo owner %q", item.owner)
		}
		at := start.Add(time.Duration(i) * time.Second)
		id, err := ids.NewULID(at)
		if err != nil {
			return i, err
		}
		rec := newRecord(id, owner, at)
		item.in.Apply(&rec)
		if err := store.Create(ctx, rec); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

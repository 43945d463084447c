// Command seed provisions the admin account from ADMIN_LOGIN and
// ADMIN_PASSWORD.  With -sample it also registers a few demo guests with
// stay history; guests whose CPF is already registered are skipped, so the
// command can be re-run safely.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/iliyamo/inn-guest-registry/internal/auth"
	"github.com/iliyamo/inn-guest-registry/internal/config"
	"github.com/iliyamo/inn-guest-registry/internal/database"
	"github.com/iliyamo/inn-guest-registry/internal/logger"
	"github.com/iliyamo/inn-guest-registry/internal/model"
	"github.com/iliyamo/inn-guest-registry/internal/registry"
	"github.com/iliyamo/inn-guest-registry/internal/repository"
)

func main() {
	sample := flag.Bool("sample", false, "also register sample guests and stays")
	flag.Parse()

	cfg, err := config.LoadDatabase()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(os.Stdout, cfg.LogLevel)

	if err := run(context.Background(), cfg, *sample, log); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, sample bool, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := database.Migrate(db, database.Up); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	store := repository.NewStore(db)

	admin, err := auth.Provision(ctx, store, cfg.AdminLogin, cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("provision admin: %w", err)
	}
	log.Info("admin ready", "login", admin.Login, "id", admin.ID)

	if !sample {
		return nil
	}
	return seedSample(ctx, registry.NewService(store, registry.WithLogger(log)), log)
}

type sampleGuest struct {
	guest registry.GuestInput
	stays []registry.StayInput
}

func sampleGuests() []sampleGuest {
	d := func(s string) model.Date {
		v, _ := model.ParseDate(s)
		return v
	}
	return []sampleGuest{
		{
			guest: registry.GuestInput{FullName: "João Silva", CPF: "111.444.777-35", Email: "joao.silva@example.com", Phone: "(11) 98765-4321", BirthDate: d("1985-03-15")},
			stays: []registry.StayInput{
				{CheckIn: d("2024-01-10"), CheckOut: d("2024-01-15")},
				{CheckIn: d("2024-03-02"), CheckOut: d("2024-03-05"), Notes: "Returning guest, room 4"},
			},
		},
		{
			guest: registry.GuestInput{FullName: "Maria Oliveira", CPF: "529.982.247-25", Email: "maria.oliveira@example.com", Phone: "(21) 3333-4444", BirthDate: d("1992-07-22")},
			stays: []registry.StayInput{
				{CheckIn: d("2024-02-01"), CheckOut: d("2024-02-03")},
			},
		},
		{
			guest: registry.GuestInput{FullName: "Pedro Santos", CPF: "390.533.447-05", Email: "pedro.santos@example.com", Phone: "(31) 99876-5432", BirthDate: d("1978-11-30")},
			stays: []registry.StayInput{
				{CheckIn: d("2023-12-20"), CheckOut: d("2023-12-27"), Notes: "Holiday stay"},
				{CheckIn: d("2024-04-10"), CheckOut: d("2024-04-12")},
				{CheckIn: d("2024-06-01"), CheckOut: d("2024-06-08")},
			},
		},
	}
}

func seedSample(ctx context.Context, svc *registry.Service, log *slog.Logger) error {
	for _, sg := range sampleGuests() {
		reg, err := svc.RegisterGuest(ctx, registry.RegisterInput{Guest: sg.guest, Stay: sg.stays[0]})
		if errors.Is(err, model.ErrConflict) {
			log.Info("sample guest already registered", "name", sg.guest.FullName)
			continue
		}
		if err != nil {
			return fmt.Errorf("register %s: %w", sg.guest.FullName, err)
		}
		for _, st := range sg.stays[1:] {
			if _, err := svc.CheckIn(ctx, reg.Guest.ID, st); err != nil {
				return fmt.Errorf("check in %s: %w", sg.guest.FullName, err)
			}
		}
		log.Info("sample guest registered", "name", reg.Guest.FullName, "stays", len(sg.stays))
	}
	return nil
}

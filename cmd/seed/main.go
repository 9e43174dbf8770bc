package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/db"
	"github.com/hackgods/clinic-scheduling/internal/logger"
	"github.com/hackgods/clinic-scheduling/internal/timeutil"
	"github.com/hackgods/clinic-scheduling/internal/workhours"
)

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

func main() {
	doctors := flag.Int("doctors", 50, "number of doctors to create")
	secretaries := flag.Int("secretaries", 5, "number of secretaries to create")
	patients := flag.Int("patients", 5000, "number of patients to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	zlog.Info("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, db.WithApplicationName("clinic-seed"))
	if err != nil {
		zlog.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	migrator := db.NewEmbeddedMigrator(pool, zlog)
	if _, err := migrator.Up(ctx); err != nil {
		zlog.Fatal("migrate", zap.Error(err))
	}
	statuses, err := migrator.Status(ctx)
	if err != nil {
		zlog.Fatal("migration status", zap.Error(err))
	}
	for _, st := range statuses {
		zlog.Debug("migration", zap.Int("version", st.Version), zap.String("name", st.Name), zap.Bool("applied", st.Applied))
	}

	faker := gofakeit.New(0)
	s := &seeder{pool: pool, faker: faker, log: zlog}

	if err := s.seedDoctors(ctx, *doctors); err != nil {
		zlog.Fatal("seed doctors", zap.Error(err))
	}
	if err := s.seedSecretaries(ctx, *secretaries); err != nil {
		zlog.Fatal("seed secretaries", zap.Error(err))
	}
	if err := s.seedPatients(ctx, *patients); err != nil {
		zlog.Fatal("seed patients", zap.Error(err))
	}

	zlog.Info("seed complete")
}

type seeder struct {
	pool  *pgxpool.Pool
	faker *gofakeit.Faker
	log   *zap.Logger
}

// Every doctor also gets a staff row with the same id so they can record
// their own bookings.
func (s *seeder) seedDoctors(ctx context.Context, count int) error {
	s.log.Info("seeding doctors", zap.Int("count", count))

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		id := uuid.New()
		name := "Dr " + s.faker.LastName()
		spec := s.faker.RandomString(specialties)
		hours := workhours.Encode(s.randomWorkHours())

		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, name, specialty, work_hours, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
		`, id, name, spec, hours)
		if err != nil {
			return fmt.Errorf("insert doctor: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO staff (id, name, role, created_at)
			VALUES ($1, $2, $3, now())
		`, id, name, string(appointment.RoleDoctor))
		if err != nil {
			return fmt.Errorf("insert doctor staff row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.log.Info("doctors seeded")
	return nil
}

func (s *seeder) seedSecretaries(ctx context.Context, count int) error {
	for i := 0; i < count; i++ {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO staff (id, name, role, created_at)
			VALUES ($1, $2, $3, now())
		`, uuid.New(), s.faker.Name(), string(appointment.RoleSecretary))
		if err != nil {
			return fmt.Errorf("insert secretary: %w", err)
		}
	}

	s.log.Info("secretaries seeded", zap.Int("count", count))
	return nil
}

func (s *seeder) seedPatients(ctx context.Context, count int) error {
	s.log.Info("seeding patients", zap.Int("count", count))

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, name, email, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())
			`, uuid.New(), s.faker.Name(), s.faker.Email())
			if err != nil {
				_ = tx.Rollback(ctx)
				return fmt.Errorf("insert patient: %w", err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		s.log.Info("patients seeded", zap.Int("done", end), zap.Int("total", count))
	}

	return nil
}

// randomWorkHours gives a weekday schedule with a morning and usually an
// afternoon range, and a Saturday morning now and then.
func (s *seeder) randomWorkHours() workhours.Model {
	m := workhours.Model{}

	for _, day := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday} {
		if s.faker.Number(0, 9) == 0 {
			continue // day off
		}

		open := timeutil.NewTimeOfDay(s.faker.Number(8, 9), 30*s.faker.Number(0, 1))
		morning := workhours.Range{Open: open, Close: timeutil.NewTimeOfDay(12, 30*s.faker.Number(0, 1))}

		if s.faker.Bool() {
			m.Set(day, morning)
			continue
		}
		afternoon := workhours.Range{
			Open:  timeutil.NewTimeOfDay(s.faker.Number(13, 14), 0),
			Close: timeutil.NewTimeOfDay(s.faker.Number(17, 19), 0),
		}
		m.Set(day, morning, afternoon)
	}

	if s.faker.Number(0, 3) == 0 {
		m.Set(time.Saturday, workhours.Range{Open: timeutil.NewTimeOfDay(9, 0), Close: timeutil.NewTimeOfDay(12, 0)})
	}

	return m
}

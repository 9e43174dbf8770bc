package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/db"
	"github.com/hackgods/clinic-scheduling/internal/logger"
	"github.com/hackgods/clinic-scheduling/internal/timeutil"
	"github.com/hackgods/clinic-scheduling/internal/workhours"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	BookingRatio float64
	StatusRatio  float64
	ReadRatio    float64
	PatientLimit int
	DoctorLimit  int
	DaysAhead    int
	PostgresDSN  string
}

type simDoctor struct {
	ID    uuid.UUID
	Hours workhours.Model
}

type DataPool struct {
	Patients []uuid.UUID
	Doctors  []simDoctor
	Staff    []uuid.UUID

	mu           sync.RWMutex
	appointments []uuid.UUID
}

func (dp *DataPool) AddAppointment(id uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) RandomAppointment(f *gofakeit.Faker) (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return uuid.Nil, false
	}
	return dp.appointments[f.Number(0, len(dp.appointments)-1)], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]

	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Booking      OperationMetrics
	StatusChange OperationMetrics
	ReadByID     OperationMetrics
	Availability OperationMetrics
	Planning     OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
	log     *zap.Logger
}

func main() {
	cfg := loadConfig()

	zlog, err := logger.New(getEnv("LOG_LEVEL", "info"), getEnv("APP_ENV", "dev"))
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := validateConfig(cfg); err != nil {
		zlog.Fatal("invalid config", zap.Error(err))
	}

	zlog.Info("simulator starting",
		zap.Duration("duration", cfg.Duration),
		zap.Int("workers", cfg.Workers),
		zap.Float64("booking", cfg.BookingRatio),
		zap.Float64("status", cfg.StatusRatio),
		zap.Float64("read", cfg.ReadRatio),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, db.WithMaxConns(2), db.WithApplicationName("clinic-simulate"))
	if err != nil {
		zlog.Fatal("connect postgres", zap.Error(err))
	}
	defer pgPool.Close()

	dataPool, err := loadDataPool(ctx, pgPool, cfg)
	if err != nil {
		zlog.Fatal("load data pool", zap.Error(err))
	}

	zlog.Info("data loaded",
		zap.Int("patients", len(dataPool.Patients)),
		zap.Int("doctors", len(dataPool.Doctors)),
		zap.Int("staff", len(dataPool.Staff)),
	)

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    zlog,
	}

	sim.Run()
	sim.PrintReport()

	auditCtx, cancelAudit := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelAudit()

	overlaps, err := auditDoubleBookings(auditCtx, pgPool)
	if err != nil {
		zlog.Fatal("double booking audit", zap.Error(err))
	}
	if overlaps > 0 {
		zlog.Fatal("double bookings found", zap.Int("pairs", overlaps))
	}
	zlog.Info("audit passed: no overlapping active appointments")
}

func loadConfig() SimConfig {
	baseCfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load base config: %v", err)
	}

	cfg := SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.5),
		StatusRatio:  getFloat("SIM_STATUS_RATIO", 0.2),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.3),
		PatientLimit: getInt("SIM_PATIENT_LIMIT", 4000),
		DoctorLimit:  getInt("SIM_DOCTOR_LIMIT", 5),
		DaysAhead:    getInt("SIM_DAYS_AHEAD", 5),
		PostgresDSN:  baseCfg.PostgresDSN,
	}

	// Normalize ratios
	total := cfg.BookingRatio + cfg.StatusRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.StatusRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.DaysAhead <= 0 {
		return fmt.Errorf("SIM_DAYS_AHEAD must be > 0")
	}
	return nil
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool, cfg SimConfig) (*DataPool, error) {
	dataPool := &DataPool{}

	patients, err := loadIDs(ctx, pool, `SELECT id FROM patients LIMIT $1`, cfg.PatientLimit)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	dataPool.Patients = patients

	staff, err := loadIDs(ctx, pool, `SELECT id FROM staff WHERE role = 'secretary' LIMIT $1`, 100)
	if err != nil {
		return nil, fmt.Errorf("load staff: %w", err)
	}
	dataPool.Staff = staff

	// A handful of doctors keeps contention high.
	rows, err := pool.Query(ctx, `
		SELECT id, work_hours FROM doctors
		WHERE work_hours <> ''
		ORDER BY id
		LIMIT $1
	`, cfg.DoctorLimit)
	if err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d simDoctor
		var hours string
		if err := rows.Scan(&d.ID, &hours); err != nil {
			return nil, err
		}
		d.Hours, _ = workhours.Decode(hours)
		dataPool.Doctors = append(dataPool.Doctors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(dataPool.Patients) == 0 {
		return nil, fmt.Errorf("no patients loaded")
	}
	if len(dataPool.Doctors) == 0 {
		return nil, fmt.Errorf("no doctors with working hours loaded")
	}
	if len(dataPool.Staff) == 0 {
		return nil, fmt.Errorf("no secretaries loaded")
	}

	return dataPool, nil
}

func loadIDs(ctx context.Context, pool *pgxpool.Pool, query string, limit int) ([]uuid.UUID, error) {
	rows, err := pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.log.Info("starting simulation")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.log.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	f := gofakeit.New(uint64(time.Now().UnixNano()) + uint64(workerID))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := f.Float64()
			switch {
			case r < s.config.BookingRatio:
				s.doBooking(ctx, f)
			case r < s.config.BookingRatio+s.config.StatusRatio:
				s.doStatusChange(ctx, f)
			default:
				switch f.Number(0, 2) {
				case 0:
					s.doReadByID(ctx, f)
				case 1:
					s.doAvailability(ctx, f)
				case 2:
					s.doPlanning(ctx, f)
				}
			}
		}
	}
}

// randomStart picks a quarter hour inside one of the doctor's ranges on one
// of the next DaysAhead days, or false when the doctor is off that day.
func (s *Simulator) randomStart(f *gofakeit.Faker, d simDoctor) (time.Time, bool) {
	today := timeutil.DateOf(timeutil.SystemClock{}.Now())
	day := today.AddDays(f.Number(1, s.config.DaysAhead))

	ranges := d.Hours.RangesFor(day.Weekday())
	if len(ranges) == 0 {
		return time.Time{}, false
	}
	r := ranges[f.Number(0, len(ranges)-1)]
	if !r.Valid() {
		return time.Time{}, false
	}

	quarters := (int(r.Close) - int(r.Open)) / 15
	if quarters == 0 {
		return time.Time{}, false
	}
	return day.At(r.Open.Add(15 * f.Number(0, quarters-1))), true
}

func (s *Simulator) doBooking(ctx context.Context, f *gofakeit.Faker) {
	doctor := s.pool.Doctors[f.Number(0, len(s.pool.Doctors)-1)]
	start, ok := s.randomStart(f, doctor)
	if !ok {
		return
	}

	reqBody := map[string]any{
		"patient_id":       s.pool.Patients[f.Number(0, len(s.pool.Patients)-1)].String(),
		"doctor_id":        doctor.ID.String(),
		"creator_id":       s.pool.Staff[f.Number(0, len(s.pool.Staff)-1)].String(),
		"start":            start.Format("2006-01-02T15:04"),
		"duration_minutes": 15 * f.Number(1, 3),
	}
	body, _ := json.Marshal(reqBody)

	began := time.Now()
	status, respBody, err := s.send(ctx, http.MethodPost, "/appointments", body)
	latency := time.Since(began)

	success := err == nil && status == http.StatusCreated
	if success {
		var apptResp struct {
			ID uuid.UUID `json:"id"`
		}
		if json.Unmarshal(respBody, &apptResp) == nil && apptResp.ID != uuid.Nil {
			s.pool.AddAppointment(apptResp.ID)
		}
	}

	s.metrics.Booking.Record(latency, success, err == nil && status == http.StatusConflict)
}

// doStatusChange cancels or re-confirms a known appointment. Confirming a
// cancelled one has to win its slot back.
func (s *Simulator) doStatusChange(ctx context.Context, f *gofakeit.Faker) {
	apptID, ok := s.pool.RandomAppointment(f)
	if !ok {
		return
	}

	statuses := []string{"Confirmed", "Cancelled by patient", "Cancelled by clinic", "Scheduled"}
	body, _ := json.Marshal(map[string]string{"status": f.RandomString(statuses)})

	began := time.Now()
	status, _, err := s.send(ctx, http.MethodPost, "/appointments/"+apptID.String()+"/status", body)
	latency := time.Since(began)

	s.metrics.StatusChange.Record(latency, err == nil && status == http.StatusOK, err == nil && status == http.StatusConflict)
}

func (s *Simulator) doReadByID(ctx context.Context, f *gofakeit.Faker) {
	apptID, ok := s.pool.RandomAppointment(f)
	if !ok {
		return
	}

	began := time.Now()
	status, _, err := s.send(ctx, http.MethodGet, "/appointments/"+apptID.String(), nil)
	s.metrics.ReadByID.Record(time.Since(began), err == nil && status == http.StatusOK, false)
}

func (s *Simulator) doAvailability(ctx context.Context, f *gofakeit.Faker) {
	doctor := s.pool.Doctors[f.Number(0, len(s.pool.Doctors)-1)]
	day := timeutil.DateOf(time.Now()).AddDays(f.Number(1, s.config.DaysAhead))

	began := time.Now()
	status, _, err := s.send(ctx, http.MethodGet,
		fmt.Sprintf("/doctors/%s/availability?date=%s&step=15", doctor.ID, day), nil)
	s.metrics.Availability.Record(time.Since(began), err == nil && status == http.StatusOK, false)
}

func (s *Simulator) doPlanning(ctx context.Context, f *gofakeit.Faker) {
	doctor := s.pool.Doctors[f.Number(0, len(s.pool.Doctors)-1)]
	day := timeutil.DateOf(time.Now()).AddDays(f.Number(1, s.config.DaysAhead))

	began := time.Now()
	status, _, err := s.send(ctx, http.MethodGet,
		fmt.Sprintf("/doctors/%s/planning?week=%s", doctor.ID, day), nil)
	s.metrics.Planning.Record(time.Since(began), err == nil && status == http.StatusOK, false)
}

func (s *Simulator) send(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody, err
}

// auditDoubleBookings counts pairs of active appointments of one doctor
// whose intervals overlap. Anything above zero means the booking path
// let a race through.
func auditDoubleBookings(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	var n int
	err := pool.QueryRow(ctx, `
		SELECT count(*)
		FROM appointments a
		JOIN appointments b
		  ON a.doctor_id = b.doctor_id
		 AND a.id < b.id
		 AND a.start_at < b.end_at
		 AND b.start_at < a.end_at
		WHERE a.status IN ('SCHEDULED', 'CONFIRMED')
		  AND b.status IN ('SCHEDULED', 'CONFIRMED')
	`).Scan(&n)
	return n, err
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Printf("Doctors: %d\n", len(s.pool.Doctors))
	fmt.Println()

	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Status change", &s.metrics.StatusChange)
	printOperationReport("Read by ID", &s.metrics.ReadByID)
	printOperationReport("Availability", &s.metrics.Availability)
	printOperationReport("Planning", &s.metrics.Planning)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

package audit_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/chargeflow/internal/audit"
	"github.com/gyeh/chargeflow/internal/batch"
	"github.com/gyeh/chargeflow/internal/db"
	"github.com/gyeh/chargeflow/internal/model"
)

const (
	testPort     = 15433
	testDB       = "chargeflowtest"
	testUser     = "postgres"
	testPassword = "postgres"
)

var testDSN string

func TestMain(m *testing.M) {
	if os.Getenv("CHARGEFLOW_PG_TESTS") != "1" {
		fmt.Fprintln(os.Stderr, "SKIP: set CHARGEFLOW_PG_TESTS=1 to run ledger tests")
		os.Exit(0)
	}

	testDSN = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)

	pg := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			StartTimeout(30 * time.Second),
	)
	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start embedded postgres: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if err := pg.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
	}
	os.Exit(code)
}

func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pool, err := db.NewPool(ctx, testDSN)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := pool.Exec(ctx, "DROP SCHEMA IF EXISTS chargeflow CASCADE"); err != nil {
		t.Fatalf("drop schema: %v", err)
	}
	if err := db.ApplyMigrations(ctx, pool, zerolog.Nop()); err != nil {
		pool.Close()
		t.Fatalf("migrations: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func sampleRows() []*model.Row {
	cols := model.ColumnMap{}
	ok := model.NewRow(2, cols, map[string]string{"Patient ID": "100", "Practice": "Acme Clinic", "Encounter ID": "9001"})
	ok.AddMessage("Encounter #9001 Created.")
	bad := model.NewRow(3, cols, map[string]string{"Patient ID": "101", "Practice": "Acme Clinic"})
	bad.AddMessage("P2 Invalid: Payment amount $0 must be > 0.")
	return []*model.Row{ok, bad}
}

func TestMigrations_Idempotent(t *testing.T) {
	pool := setupDB(t)
	if err := db.ApplyMigrations(context.Background(), pool, zerolog.Nop()); err != nil {
		t.Fatalf("second migration run should be idempotent: %v", err)
	}

	var recorded int
	err := pool.QueryRow(context.Background(),
		`SELECT count(*) FROM chargeflow.schema_migrations`).Scan(&recorded)
	if err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if recorded != 2 {
		t.Errorf("schema_migrations has %d entries, want 2", recorded)
	}
}

func TestLedger_StartFinish(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	ledger := audit.New(pool, zerolog.Nop())

	runID := uuid.New()
	started := time.Now().UTC().Truncate(time.Millisecond)
	if err := ledger.Start(ctx, runID, "charges.csv", "abc123", started); err != nil {
		t.Fatalf("Start: %v", err)
	}

	rows := sampleRows()
	summary := &model.RunSummary{RunID: runID.String(), StartedAt: started}
	batch.Finalize(summary, rows)

	// Twice: results are replaced, not duplicated.
	for i := 0; i < 2; i++ {
		if err := ledger.Finish(ctx, summary, rows); err != nil {
			t.Fatalf("Finish #%d: %v", i+1, err)
		}
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM chargeflow.row_results WHERE run_id = $1", runID).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("row_results = %d, want 2", count)
	}

	runs, err := ledger.RunsForFile(ctx, "abc123")
	if err != nil {
		t.Fatalf("RunsForFile: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != audit.StatusPartial || runs[0].TotalRows != 2 || runs[0].FailedRows != 1 {
		t.Errorf("unexpected runs: %+v", runs)
	}

	failed, err := ledger.FailedRows(ctx, runID)
	if err != nil {
		t.Fatalf("FailedRows: %v", err)
	}
	want := []model.RowResult{{
		RowNumber: 3, PracticeName: "Acme Clinic", PatientID: "101",
		Results: "P2 Invalid: Payment amount $0 must be > 0.",
	}}
	if diff := cmp.Diff(want, failed); diff != "" {
		t.Errorf("failed rows mismatch (-want +got):\n%s", diff)
	}
}

func TestLedger_Fail(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	ledger := audit.New(pool, zerolog.Nop())

	runID := uuid.New()
	if err := ledger.Start(ctx, runID, "charges.csv", "def456", time.Now()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := ledger.Fail(ctx, runID); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	var status string
	if err := pool.QueryRow(ctx, "SELECT status FROM chargeflow.runs WHERE run_id = $1", runID).Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != audit.StatusFailed {
		t.Errorf("status = %q, want %q", status, audit.StatusFailed)
	}
}

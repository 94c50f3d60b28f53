package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/assist-by/swing/internal/domain"
	"github.com/assist-by/swing/internal/feature"
)

// SQLiteRecorder는 추출 결과를 SQLite에 저장합니다
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteRecorder는 데이터베이스를 열고(없으면 생성) 마이그레이션을 수행합니다
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite 열기 실패: %w", err)
	}

	// HTTP 조회와 수집기 기록이 동시에 일어남
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("WAL 모드 설정 실패: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("busy_timeout 설정 실패: %w", err)
	}

	r := &SQLiteRecorder{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("마이그레이션 실패: %w", err)
	}

	log.Printf("sqlite 저장소 열림: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id           TEXT PRIMARY KEY,
			symbol       TEXT NOT NULL,
			interval     TEXT NOT NULL,
			candle_count INTEGER NOT NULL,
			first_open   INTEGER NOT NULL,
			last_open    INTEGER NOT NULL,
			created_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol ON runs(symbol, interval, created_at)`,
		`CREATE TABLE IF NOT EXISTS extrema (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    TEXT NOT NULL REFERENCES runs(id),
			bar_index INTEGER NOT NULL,
			open_time INTEGER NOT NULL,
			kind      TEXT NOT NULL,
			price     REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS swings (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL REFERENCES runs(id),
			kind          TEXT NOT NULL,
			confirm_index INTEGER NOT NULL,
			extreme_index INTEGER NOT NULL,
			price         REAL NOT NULL,
			extreme_time  INTEGER NOT NULL,
			confirm_time  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_swings_run ON swings(run_id, confirm_index)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordFeatures는 실행 정보와 극값, 스윙을 하나의 트랜잭션으로 저장합니다
func (r *SQLiteRecorder) RecordFeatures(ctx context.Context, set *feature.Set) (string, error) {
	if set == nil || len(set.Candles) == 0 {
		return "", fmt.Errorf("저장할 캔들 데이터가 없습니다")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("트랜잭션 시작 실패: %w", err)
	}
	defer tx.Rollback()

	runID := uuid.NewString()
	candles := set.Candles
	if _, err := tx.ExecContext(ctx, `INSERT INTO runs
		(id, symbol, interval, candle_count, first_open, last_open, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		runID, set.Symbol, string(set.Interval), len(candles),
		candles[0].OpenTime.UnixMilli(), candles[len(candles)-1].OpenTime.UnixMilli(),
		r.now().UnixNano(),
	); err != nil {
		return "", fmt.Errorf("실행 정보 저장 실패: %w", err)
	}

	insertExtremum := func(kind domain.SwingKind, indices []int) error {
		for _, i := range indices {
			if _, err := tx.ExecContext(ctx, `INSERT INTO extrema
				(run_id, bar_index, open_time, kind, price) VALUES (?,?,?,?,?)`,
				runID, i, candles[i].OpenTime.UnixMilli(), kind.String(), candles[i].Close,
			); err != nil {
				return fmt.Errorf("극값 저장 실패: %w", err)
			}
		}
		return nil
	}
	if err := insertExtremum(domain.SwingTop, set.TopIndices()); err != nil {
		return "", err
	}
	if err := insertExtremum(domain.SwingBottom, set.BottomIndices()); err != nil {
		return "", err
	}

	for _, sp := range set.Swings {
		if _, err := tx.ExecContext(ctx, `INSERT INTO swings
			(run_id, kind, confirm_index, extreme_index, price, extreme_time, confirm_time)
			VALUES (?,?,?,?,?,?,?)`,
			runID, sp.Kind.String(), sp.ConfirmIndex, sp.ExtremeIndex, sp.Price,
			candles[sp.ExtremeIndex].OpenTime.UnixMilli(), candles[sp.ConfirmIndex].OpenTime.UnixMilli(),
		); err != nil {
			return "", fmt.Errorf("스윙 저장 실패: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("트랜잭션 커밋 실패: %w", err)
	}
	return runID, nil
}

// LatestSwings는 가장 최근 실행의 스윙을 조회합니다. limit이 0 이하이면 전부 반환합니다
func (r *SQLiteRecorder) LatestSwings(ctx context.Context, symbol string, interval domain.TimeInterval, limit int) ([]SwingRecord, error) {
	symbol = strings.ToUpper(symbol)

	var runID string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM runs
		WHERE symbol = ? AND interval = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		symbol, string(interval),
	).Scan(&runID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("최근 실행 조회 실패: %w", err)
	}

	if limit <= 0 {
		limit = -1 // SQLite에서 LIMIT -1은 제한 없음
	}
	rows, err := r.db.QueryContext(ctx, `SELECT kind, confirm_index, extreme_index, price, extreme_time, confirm_time
		FROM swings WHERE run_id = ?
		ORDER BY confirm_index DESC, id DESC LIMIT ?`,
		runID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("스윙 조회 실패: %w", err)
	}
	defer rows.Close()

	var records []SwingRecord
	for rows.Next() {
		var (
			kind                     string
			extremeTime, confirmTime int64
		)
		rec := SwingRecord{RunID: runID, Symbol: symbol, Interval: string(interval)}
		if err := rows.Scan(&kind, &rec.ConfirmIndex, &rec.ExtremeIndex, &rec.Price, &extremeTime, &confirmTime); err != nil {
			return nil, fmt.Errorf("스윙 읽기 실패: %w", err)
		}
		rec.KindName = kind
		if kind == domain.SwingBottom.String() {
			rec.Kind = domain.SwingBottom
		}
		rec.ExtremeTime = time.UnixMilli(extremeTime).UTC()
		rec.ConfirmTime = time.UnixMilli(confirmTime).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 확정 순서(오름차순)로 되돌림
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("sqlite 저장소 닫는 중")
	return r.db.Close()
}

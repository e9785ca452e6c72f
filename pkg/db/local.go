package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cfstudy/checklist-backend/pkg/enrollment"
	"github.com/cfstudy/checklist-backend/pkg/progress"
	"github.com/cfstudy/checklist-backend/pkg/types"
)

// LocalDBService keeps the whole study in a single sqlite file on the device
// running the service. Records are stored as one JSON document per code, so
// every mutation stays a whole-record read-modify-write, same as the remote
// backend.
type LocalDBService struct {
	db      *sql.DB
	timeout int
}

const localSchema = `
CREATE TABLE IF NOT EXISTS participants (
	code TEXT PRIMARY KEY,
	data TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS counters (
	name TEXT PRIMARY KEY,
	seq INTEGER NOT NULL
);
`

func NewLocalDBService(configs types.LocalDBConfig) (*LocalDBService, error) {
	if configs.Path == "" {
		return nil, errors.New("local DB path not set")
	}
	if err := os.MkdirAll(filepath.Dir(configs.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", configs.Path)
	if err != nil {
		return nil, err
	}
	if _, err := sqlDB.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, err
	}
	if _, err := sqlDB.Exec(localSchema); err != nil {
		return nil, err
	}

	service := &LocalDBService{
		db:      sqlDB,
		timeout: configs.Timeout,
	}
	if err := service.seedCodeCounter(); err != nil {
		return nil, err
	}
	return service, nil
}

func (dbService *LocalDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

func (dbService *LocalDBService) Close() error {
	return dbService.db.Close()
}

func (dbService *LocalDBService) Ping(ctx context.Context) error {
	return dbService.db.PingContext(ctx)
}

func (dbService *LocalDBService) BackendName() string {
	return "sqlite"
}

func (dbService *LocalDBService) seedCodeCounter() error {
	participants, err := dbService.FindAllParticipants()
	if err != nil {
		return err
	}
	codes := make([]string, len(participants))
	for i, p := range participants {
		codes[i] = p.Code
	}
	seed, _ := enrollment.ParseCodeNumber(enrollment.NextCode(codes))

	ctx, cancel := dbService.getContext()
	defer cancel()
	_, err = dbService.db.ExecContext(ctx, `
		INSERT INTO counters (name, seq) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET seq = MAX(seq, excluded.seq)`,
		participantCodeCounter, seed-1,
	)
	return err
}

func (dbService *LocalDBService) FindParticipantByCode(code string) (types.Participant, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	participant := types.Participant{}
	var data string
	err := dbService.db.QueryRowContext(ctx,
		"SELECT data FROM participants WHERE code = ?", code,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return participant, types.ErrNotFound
	}
	if err != nil {
		return participant, err
	}
	err = json.Unmarshal([]byte(data), &participant)
	return participant, err
}

func (dbService *LocalDBService) FindAllParticipants() ([]types.Participant, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	rows, err := dbService.db.QueryContext(ctx,
		"SELECT data FROM participants ORDER BY code ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := []types.Participant{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return participants, err
		}
		var participant types.Participant
		if err := json.Unmarshal([]byte(data), &participant); err != nil {
			return participants, err
		}
		participants = append(participants, participant)
	}
	return participants, rows.Err()
}

func (dbService *LocalDBService) saveParticipant(participant types.Participant) (types.Participant, error) {
	data, err := json.Marshal(participant)
	if err != nil {
		return participant, err
	}

	ctx, cancel := dbService.getContext()
	defer cancel()
	_, err = dbService.db.ExecContext(ctx, `
		INSERT INTO participants (code, data) VALUES (?, ?)
		ON CONFLICT(code) DO UPDATE SET data = excluded.data`,
		participant.Code, string(data),
	)
	return participant, err
}

func (dbService *LocalDBService) CreateParticipant(req types.ParticipantCreate) (types.Participant, error) {
	if err := enrollment.ValidateRegistration(req); err != nil {
		return types.Participant{}, err
	}

	group := req.Group
	if group == "" {
		all, err := dbService.FindAllParticipants()
		if err != nil {
			return types.Participant{}, err
		}
		group = enrollment.BalancedGroup(all)
	}

	ctx, cancel := dbService.getContext()
	defer cancel()

	// Counter bump and insert share one transaction, so a failed insert does
	// not burn a code.
	tx, err := dbService.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Participant{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE counters SET seq = seq + 1 WHERE name = ?", participantCodeCounter,
	); err != nil {
		return types.Participant{}, err
	}
	var seq int
	if err := tx.QueryRowContext(ctx,
		"SELECT seq FROM counters WHERE name = ?", participantCodeCounter,
	).Scan(&seq); err != nil {
		return types.Participant{}, err
	}

	participant := newParticipant(enrollment.FormatCode(seq), group, req)
	data, err := json.Marshal(participant)
	if err != nil {
		return types.Participant{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO participants (code, data) VALUES (?, ?)",
		participant.Code, string(data),
	); err != nil {
		return types.Participant{}, err
	}
	if err := tx.Commit(); err != nil {
		return types.Participant{}, err
	}
	return participant, nil
}

func (dbService *LocalDBService) MarkStep(code string, session int, stepID string, note string, completedAt int64) (types.Participant, error) {
	participant, err := dbService.FindParticipantByCode(code)
	if err != nil {
		return participant, err
	}
	if err := progress.MarkStep(&participant, session, stepID, note, completedAt); err != nil {
		return participant, err
	}
	return dbService.saveParticipant(participant)
}

func (dbService *LocalDBService) UnmarkStep(code string, session int, stepID string) (types.Participant, error) {
	participant, err := dbService.FindParticipantByCode(code)
	if err != nil {
		return participant, err
	}
	if err := progress.UnmarkStep(&participant, session, stepID); err != nil {
		return participant, err
	}
	return dbService.saveParticipant(participant)
}

func (dbService *LocalDBService) UpdateParticipant(code string, patch types.ParticipantUpdate) (types.Participant, error) {
	participant, err := dbService.FindParticipantByCode(code)
	if err != nil {
		return participant, err
	}
	applyUpdate(&participant, patch)
	return dbService.saveParticipant(participant)
}

func (dbService *LocalDBService) ForceStatus(code string, status string) (types.Participant, error) {
	if !isKnownStatus(status) {
		return types.Participant{}, fmt.Errorf("%w: unknown status %q", types.ErrValidation, status)
	}
	participant, err := dbService.FindParticipantByCode(code)
	if err != nil {
		return participant, err
	}
	participant.Status = status
	return dbService.saveParticipant(participant)
}

func (dbService *LocalDBService) ImportParticipants(participants []types.Participant) (int, error) {
	imported := 0
	for _, p := range participants {
		if p.Code == "" {
			continue
		}
		if _, err := dbService.saveParticipant(p); err != nil {
			return imported, err
		}
		imported++
	}
	// Imported codes may run past the sequence; realign it.
	return imported, dbService.seedCodeCounter()
}

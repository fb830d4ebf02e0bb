package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanlian/yanlian/pkg/model"
	"github.com/yanlian/yanlian/pkg/scheduler/solver"
)

// ScheduleRecord 一次求解结果的持久化记录
type ScheduleRecord struct {
	ID         uuid.UUID          `json:"id"`
	RosterID   uuid.UUID          `json:"roster_id"`
	Year       int                `json:"year"`
	Month      int                `json:"month"`
	Level      int                `json:"level"`
	Complete   bool               `json:"complete"`
	Schedule   model.Schedule     `json:"schedule"`
	Statistics *solver.Statistics `json:"statistics,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// DiagnosticRecord 未排槽位诊断的持久化记录
type DiagnosticRecord struct {
	ID         uuid.UUID         `json:"id"`
	ScheduleID uuid.UUID         `json:"schedule_id"`
	Detail     solver.Diagnostic `json:"detail"`
}

// ScheduleRepositoryInterface 排班仓储接口
type ScheduleRepositoryInterface interface {
	Create(ctx context.Context, record *ScheduleRecord, diagnostics []solver.Diagnostic) error
	GetByID(ctx context.Context, id uuid.UUID) (*ScheduleRecord, error)
	GetLatest(ctx context.Context, rosterID uuid.UUID, year, month int) (*ScheduleRecord, error)
	GetDiagnostics(ctx context.Context, scheduleID uuid.UUID) ([]solver.Diagnostic, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, rosterID uuid.UUID, filter ListFilter) ([]*ScheduleRecord, int, error)
}

// ScheduleRepository 排班仓储实现
type ScheduleRepository struct {
	db DB
}

// NewScheduleRepository 创建排班仓储
func NewScheduleRepository(db DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create 保存排班记录及其诊断
func (r *ScheduleRepository) Create(ctx context.Context, record *ScheduleRecord, diagnostics []solver.Diagnostic) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreatedAt = time.Now()

	scheduleJSON, err := json.Marshal(record.Schedule)
	if err != nil {
		return fmt.Errorf("序列化排班失败: %w", err)
	}
	statsJSON, err := json.Marshal(record.Statistics)
	if err != nil {
		return fmt.Errorf("序列化统计失败: %w", err)
	}

	query := `
		INSERT INTO schedules (id, roster_id, year, month, level, complete, schedule, statistics, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := r.db.ExecContext(ctx, query,
		record.ID, record.RosterID, record.Year, record.Month,
		record.Level, record.Complete, scheduleJSON, statsJSON, record.CreatedAt,
	); err != nil {
		return fmt.Errorf("保存排班记录失败: %w", err)
	}

	for _, diag := range diagnostics {
		detailJSON, err := json.Marshal(diag)
		if err != nil {
			return fmt.Errorf("序列化诊断失败: %w", err)
		}
		diagQuery := `
			INSERT INTO diagnostics (id, schedule_id, week, day_slot, date, shift, scenario, detail)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		if _, err := r.db.ExecContext(ctx, diagQuery,
			uuid.New(), record.ID, diag.Week, diag.DaySlot,
			diag.Date, string(diag.Shift), diag.Scenario, detailJSON,
		); err != nil {
			return fmt.Errorf("保存诊断记录失败: %w", err)
		}
	}

	return nil
}

// GetByID 根据ID获取排班记录
func (r *ScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*ScheduleRecord, error) {
	query := `
		SELECT id, roster_id, year, month, level, complete, schedule, statistics, created_at
		FROM schedules
		WHERE id = $1
	`
	return scanScheduleRecord(r.db.QueryRowContext(ctx, query, id))
}

// GetLatest 获取名册在指定月份的最新排班
func (r *ScheduleRepository) GetLatest(ctx context.Context, rosterID uuid.UUID, year, month int) (*ScheduleRecord, error) {
	query := `
		SELECT id, roster_id, year, month, level, complete, schedule, statistics, created_at
		FROM schedules
		WHERE roster_id = $1 AND year = $2 AND month = $3
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanScheduleRecord(r.db.QueryRowContext(ctx, query, rosterID, year, month))
}

// GetDiagnostics 获取排班的全部诊断
func (r *ScheduleRepository) GetDiagnostics(ctx context.Context, scheduleID uuid.UUID) ([]solver.Diagnostic, error) {
	query := `
		SELECT detail FROM diagnostics
		WHERE schedule_id = $1
		ORDER BY week, day_slot, shift, scenario
	`
	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("查询诊断失败: %w", err)
	}
	defer rows.Close()

	var diagnostics []solver.Diagnostic
	for rows.Next() {
		var detailJSON []byte
		if err := rows.Scan(&detailJSON); err != nil {
			return nil, fmt.Errorf("扫描诊断失败: %w", err)
		}
		var diag solver.Diagnostic
		if err := json.Unmarshal(detailJSON, &diag); err != nil {
			return nil, fmt.Errorf("解析诊断失败: %w", err)
		}
		diagnostics = append(diagnostics, diag)
	}

	return diagnostics, nil
}

// Delete 删除排班记录（诊断随之级联删除）
func (r *ScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = $1", id); err != nil {
		return fmt.Errorf("删除排班记录失败: %w", err)
	}
	return nil
}

// List 列出名册的排班记录
func (r *ScheduleRepository) List(ctx context.Context, rosterID uuid.UUID, filter ListFilter) ([]*ScheduleRecord, int, error) {
	conditions := []string{"roster_id = $1"}
	args := []interface{}{rosterID}
	argNum := 2

	if filter.Year > 0 {
		conditions = append(conditions, fmt.Sprintf("year = $%d", argNum))
		args = append(args, filter.Year)
		argNum++
	}
	if filter.Month > 0 {
		conditions = append(conditions, fmt.Sprintf("month = $%d", argNum))
		args = append(args, filter.Month)
		argNum++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM schedules %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计排班数量失败: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, roster_id, year, month, level, complete, schedule, statistics, created_at
		FROM schedules %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, whereClause, filter.OrderBy, filter.OrderDir, argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询排班列表失败: %w", err)
	}
	defer rows.Close()

	var records []*ScheduleRecord
	for rows.Next() {
		record, err := scanScheduleRecordRow(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}

	return records, total, nil
}

// scanScheduleRecord 扫描单行排班记录
func scanScheduleRecord(row *sql.Row) (*ScheduleRecord, error) {
	record := &ScheduleRecord{}
	var scheduleJSON, statsJSON []byte

	err := row.Scan(
		&record.ID, &record.RosterID, &record.Year, &record.Month,
		&record.Level, &record.Complete, &scheduleJSON, &statsJSON, &record.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描排班记录失败: %w", err)
	}

	return decodeScheduleRecord(record, scheduleJSON, statsJSON)
}

// scanScheduleRecordRow 从多行结果扫描
func scanScheduleRecordRow(rows Scanner) (*ScheduleRecord, error) {
	record := &ScheduleRecord{}
	var scheduleJSON, statsJSON []byte

	if err := rows.Scan(
		&record.ID, &record.RosterID, &record.Year, &record.Month,
		&record.Level, &record.Complete, &scheduleJSON, &statsJSON, &record.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("扫描排班记录失败: %w", err)
	}

	return decodeScheduleRecord(record, scheduleJSON, statsJSON)
}

// decodeScheduleRecord 解析 JSONB 字段
func decodeScheduleRecord(record *ScheduleRecord, scheduleJSON, statsJSON []byte) (*ScheduleRecord, error) {
	if err := json.Unmarshal(scheduleJSON, &record.Schedule); err != nil {
		return nil, fmt.Errorf("解析排班失败: %w", err)
	}
	if len(statsJSON) > 0 && string(statsJSON) != "null" {
		if err := json.Unmarshal(statsJSON, &record.Statistics); err != nil {
			return nil, fmt.Errorf("解析统计失败: %w", err)
		}
	}
	return record, nil
}

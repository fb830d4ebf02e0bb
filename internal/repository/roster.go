package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yanlian/yanlian/pkg/model"
)

// Roster 演员名册：一组演员、情景批准与规则的配置快照
type Roster struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Config    *model.Config `json:"config"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// RosterRepositoryInterface 名册仓储接口
type RosterRepositoryInterface interface {
	Create(ctx context.Context, roster *Roster) error
	GetByID(ctx context.Context, id uuid.UUID) (*Roster, error)
	Update(ctx context.Context, roster *Roster) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]*Roster, int, error)
}

// RosterRepository 名册仓储实现
type RosterRepository struct {
	db DB
}

// NewRosterRepository 创建名册仓储
func NewRosterRepository(db DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// Create 创建名册
func (r *RosterRepository) Create(ctx context.Context, roster *Roster) error {
	if roster.ID == uuid.Nil {
		roster.ID = uuid.New()
	}
	now := time.Now()
	roster.CreatedAt = now
	roster.UpdatedAt = now

	configJSON, err := json.Marshal(roster.Config)
	if err != nil {
		return fmt.Errorf("序列化名册配置失败: %w", err)
	}

	query := `
		INSERT INTO rosters (id, name, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query,
		roster.ID, roster.Name, configJSON, roster.CreatedAt, roster.UpdatedAt,
	); err != nil {
		return fmt.Errorf("创建名册失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取名册
func (r *RosterRepository) GetByID(ctx context.Context, id uuid.UUID) (*Roster, error) {
	query := `
		SELECT id, name, config, created_at, updated_at
		FROM rosters
		WHERE id = $1
	`
	return scanRoster(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新名册
func (r *RosterRepository) Update(ctx context.Context, roster *Roster) error {
	roster.UpdatedAt = time.Now()

	configJSON, err := json.Marshal(roster.Config)
	if err != nil {
		return fmt.Errorf("序列化名册配置失败: %w", err)
	}

	query := `
		UPDATE rosters SET name = $2, config = $3, updated_at = $4
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query,
		roster.ID, roster.Name, configJSON, roster.UpdatedAt,
	); err != nil {
		return fmt.Errorf("更新名册失败: %w", err)
	}

	return nil
}

// Delete 删除名册
func (r *RosterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM rosters WHERE id = $1", id); err != nil {
		return fmt.Errorf("删除名册失败: %w", err)
	}
	return nil
}

// List 列出名册
func (r *RosterRepository) List(ctx context.Context, filter ListFilter) ([]*Roster, int, error) {
	whereClause := ""
	var args []interface{}
	argNum := 1

	if filter.Search != "" {
		whereClause = fmt.Sprintf("WHERE name ILIKE $%d", argNum)
		args = append(args, "%"+filter.Search+"%")
		argNum++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM rosters %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计名册数量失败: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, config, created_at, updated_at
		FROM rosters %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, whereClause, filter.OrderBy, filter.OrderDir, argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询名册列表失败: %w", err)
	}
	defer rows.Close()

	var rosters []*Roster
	for rows.Next() {
		roster, err := scanRosterRow(rows)
		if err != nil {
			return nil, 0, err
		}
		rosters = append(rosters, roster)
	}

	return rosters, total, nil
}

// scanRoster 扫描单行名册
func scanRoster(row *sql.Row) (*Roster, error) {
	roster := &Roster{}
	var configJSON []byte

	err := row.Scan(&roster.ID, &roster.Name, &configJSON, &roster.CreatedAt, &roster.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描名册失败: %w", err)
	}

	if err := json.Unmarshal(configJSON, &roster.Config); err != nil {
		return nil, fmt.Errorf("解析名册配置失败: %w", err)
	}

	return roster, nil
}

// scanRosterRow 从多行结果扫描
func scanRosterRow(rows Scanner) (*Roster, error) {
	roster := &Roster{}
	var configJSON []byte

	if err := rows.Scan(&roster.ID, &roster.Name, &configJSON, &roster.CreatedAt, &roster.UpdatedAt); err != nil {
		return nil, fmt.Errorf("扫描名册失败: %w", err)
	}

	if err := json.Unmarshal(configJSON, &roster.Config); err != nil {
		return nil, fmt.Errorf("解析名册配置失败: %w", err)
	}

	return roster, nil
}

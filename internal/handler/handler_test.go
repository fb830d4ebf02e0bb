package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yanlian/yanlian/pkg/model"
)

// testConfig 两个情景、三名演员的最小配置
func testConfig() *model.Config {
	return &model.Config{
		People: []model.Person{
			{ID: "张三"},
			{ID: "李四"},
			{ID: "王五"},
		},
		ScenarioApprovals: map[string][]string{
			"问诊": {"张三", "李四", "王五"},
			"告知": {"张三", "李四", "王五"},
		},
		DaySlotScenarios: map[string][]string{
			model.DaySlot1: {"问诊", "告知"},
		},
	}
}

// testWeeks 单周单训练日（2026-03-03 周二）
func testWeeks() []model.Week {
	return []model.Week{
		{Days: []model.DayInfo{{Date: "2026-03-03", Weekday: "Tuesday"}}},
	}
}

func testAvailability() map[string]map[string]any {
	return map[string]map[string]any{
		"2026-03-03": {"张三": "both", "李四": "both", "王五": "both"},
	}
}

func postJSON(t *testing.T, handlerFunc http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("请求序列化失败: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handlerFunc(rec, req)
	return rec
}

func TestGenerate_Success(t *testing.T) {
	h := NewScheduleHandler(nil)

	rec := postJSON(t, h.Generate, GenerateRequest{
		Year:         2026,
		Month:        3,
		Weeks:        testWeeks(),
		Availability: testAvailability(),
		Config:       testConfig(),
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200, 响应: %s", rec.Code, rec.Body.String())
	}

	var resp GenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if !resp.Success {
		t.Error("success 应为 true")
	}
	if resp.Data == nil || !resp.Data.Complete {
		t.Errorf("期望完整解, 响应: %s", rec.Body.String())
	}
	if len(resp.Data.Errors) != 0 {
		t.Errorf("完整解不应有诊断, 实际 %d 条", len(resp.Data.Errors))
	}
}

func TestGenerate_MethodNotAllowed(t *testing.T) {
	h := NewScheduleHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("状态码 = %d, 期望 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "POST") {
		t.Errorf("错误信息应提示POST方法: %s", rec.Body.String())
	}
}

func TestGenerate_InvalidBody(t *testing.T) {
	h := NewScheduleHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{不是JSON"))
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("状态码 = %d, 期望 400", rec.Code)
	}
}

func TestGenerate_ValidationErrors(t *testing.T) {
	h := NewScheduleHandler(nil)

	cases := []struct {
		name  string
		req   GenerateRequest
		field string
	}{
		{
			name:  "缺少配置",
			req:   GenerateRequest{Year: 2026, Month: 3},
			field: "config",
		},
		{
			name: "演员列表为空",
			req: GenerateRequest{
				Year: 2026, Month: 3,
				Config: &model.Config{
					DaySlotScenarios: map[string][]string{model.DaySlot1: {"问诊"}},
				},
			},
			field: "config.people",
		},
		{
			name: "月份越界",
			req: GenerateRequest{
				Year: 2026, Month: 13,
				Config: testConfig(),
			},
			field: "month",
		},
		{
			name: "晚场占比越界",
			req: GenerateRequest{
				Year: 2026, Month: 3,
				Config: func() *model.Config {
					cfg := testConfig()
					bad := 1.5
					cfg.People[0].Constraint = &model.PersonConstraint{MaxEveningRatio: &bad}
					return cfg
				}(),
			},
			field: "config.people.张三",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, h.Generate, tc.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("状态码 = %d, 期望 400, 响应: %s", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tc.field) {
				t.Errorf("响应应包含字段 %q: %s", tc.field, rec.Body.String())
			}
		})
	}
}

func TestGenerate_WeekPlanOutOfRange(t *testing.T) {
	h := NewScheduleHandler(nil)

	date := "2026-03-03"
	rec := postJSON(t, h.Generate, GenerateRequest{
		Year:         2026,
		Month:        3,
		Weeks:        testWeeks(),
		WeekPlans:    map[int]model.WeekPlan{5: {model.DaySlot1: &date}},
		Availability: testAvailability(),
		Config:       testConfig(),
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("状态码 = %d, 期望 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "week_plans.5") {
		t.Errorf("响应应指出越界的周索引: %s", rec.Body.String())
	}
}

func TestValidate_CleanSchedule(t *testing.T) {
	h := NewScheduleHandler(nil)

	person := "张三"
	schedule := model.Schedule{
		{
			model.DaySlot1: &model.DayAssignment{
				Date:    "2026-03-03",
				Morning: map[string]*string{"问诊": &person},
				Evening: map[string]*string{"问诊": &person},
			},
		},
	}

	rec := postJSON(t, h.Validate, ValidateRequest{
		Schedule: schedule,
		Weeks:    testWeeks(),
		Availability: map[string]map[string]any{
			"2026-03-03": {"张三": "both"},
		},
		Config: &model.Config{
			People:            []model.Person{{ID: "张三"}},
			ScenarioApprovals: map[string][]string{"问诊": {"张三"}},
			DaySlotScenarios:  map[string][]string{model.DaySlot1: {"问诊"}},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200, 响应: %s", rec.Code, rec.Body.String())
	}

	var resp ValidateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if !resp.Valid {
		t.Errorf("无违规排班应通过验证, 违规: %+v", resp.Violations)
	}
}

func TestValidate_DetectsDoubleBooking(t *testing.T) {
	h := NewScheduleHandler(nil)

	person := "张三"
	schedule := model.Schedule{
		{
			model.DaySlot1: &model.DayAssignment{
				Date: "2026-03-03",
				Morning: map[string]*string{
					"问诊": &person,
					"告知": &person,
				},
				Evening: map[string]*string{},
			},
		},
	}

	rec := postJSON(t, h.Validate, ValidateRequest{
		Schedule: schedule,
		Weeks:    testWeeks(),
		Availability: map[string]map[string]any{
			"2026-03-03": {"张三": "both"},
		},
		Config: &model.Config{
			People:            []model.Person{{ID: "张三"}},
			ScenarioApprovals: map[string][]string{"问诊": {"张三"}, "告知": {"张三"}},
			DaySlotScenarios:  map[string][]string{model.DaySlot1: {"问诊", "告知"}},
		},
	})

	var resp ValidateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if resp.Valid {
		t.Error("同班次重复分配应判定为无效")
	}
	found := false
	for _, v := range resp.Violations {
		if v.Type == "double_booking" {
			found = true
		}
	}
	if !found {
		t.Errorf("应报告 double_booking 违规, 实际: %+v", resp.Violations)
	}
}

func TestFairnessHandler(t *testing.T) {
	zhang, li := "张三", "李四"
	schedule := model.Schedule{
		{
			model.DaySlot1: &model.DayAssignment{
				Date:    "2026-03-03",
				Morning: map[string]*string{"问诊": &zhang},
				Evening: map[string]*string{"问诊": &li},
			},
		},
	}

	rec := postJSON(t, GetFairnessHandler, StatsRequest{
		Schedule: schedule,
		Config: &model.Config{
			People: []model.Person{{ID: "张三"}, {ID: "李四"}},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200, 响应: %s", rec.Code, rec.Body.String())
	}

	var resp FairnessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if resp.Data == nil || len(resp.Data.PersonStats) != 2 {
		t.Errorf("应包含两名演员的统计: %s", rec.Body.String())
	}
}

func TestCoverageHandler(t *testing.T) {
	zhang := "张三"
	schedule := model.Schedule{
		{
			model.DaySlot1: &model.DayAssignment{
				Date:    "2026-03-03",
				Morning: map[string]*string{"问诊": &zhang},
				Evening: map[string]*string{"问诊": nil},
			},
		},
	}

	rec := postJSON(t, GetCoverageHandler, StatsRequest{Schedule: schedule})

	var resp CoverageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if resp.Data == nil || resp.Data.FilledSlots != 1 || resp.Data.TotalSlots != 2 {
		t.Errorf("覆盖率统计不符: %s", rec.Body.String())
	}
}

func TestExportTextHandler(t *testing.T) {
	zhang := "张三"
	rec := postJSON(t, ExportTextHandler, ExportRequest{
		Schedule: model.Schedule{
			{
				model.DaySlot1: &model.DayAssignment{
					Date:    "2026-03-03",
					Morning: map[string]*string{"问诊": &zhang},
					Evening: map[string]*string{"问诊": nil},
				},
			},
		},
		Config: testConfig(),
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, 期望 text/plain", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "张三") || !strings.Contains(body, "（未排）") {
		t.Errorf("导出内容不完整: %s", body)
	}
}

func TestExportICSHandler(t *testing.T) {
	zhang := "张三"
	rec := postJSON(t, ExportICSHandler, ExportRequest{
		Schedule: model.Schedule{
			{
				model.DaySlot1: &model.DayAssignment{
					Date:    "2026-03-03",
					Morning: map[string]*string{"问诊": &zhang},
					Evening: map[string]*string{},
				},
			},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200, 响应: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q, 期望 text/calendar", ct)
	}
	if !strings.Contains(rec.Body.String(), "BEGIN:VEVENT") {
		t.Errorf("ICS内容应包含事件: %s", rec.Body.String())
	}
}

func TestReplacementsHandler(t *testing.T) {
	zhang, li := "张三", "李四"
	rec := postJSON(t, GetReplacementsHandler, ReplacementRequest{
		Schedule: model.Schedule{
			{
				model.DaySlot1: &model.DayAssignment{
					Date:    "2026-03-03",
					Morning: map[string]*string{"问诊": &zhang},
					Evening: map[string]*string{"问诊": &li},
				},
			},
		},
		Availability: testAvailability(),
		Config:       testConfig(),
		Target: model.Slot{
			Week:     0,
			DaySlot:  model.DaySlot1,
			Date:     "2026-03-03",
			Shift:    model.ShiftMorning,
			Scenario: "问诊",
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200, 响应: %s", rec.Code, rec.Body.String())
	}

	var resp ReplacementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if len(resp.Recommendations) == 0 {
		t.Fatal("应至少推荐一名顶替演员")
	}
	if resp.Recommendations[0].Person != "王五" {
		t.Errorf("空闲演员王五应排在首位, 实际 %s", resp.Recommendations[0].Person)
	}
}

func TestConstraintLibraryHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	GetConstraintLibraryHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200", rec.Code)
	}

	var resp struct {
		Library []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"library"`
		Levels []struct {
			Level int `json:"level"`
		} `json:"levels"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if len(resp.Library) == 0 {
		t.Error("约束库不应为空")
	}
	if len(resp.Levels) != 4 {
		t.Errorf("松弛级别数 = %d, 期望 4", len(resp.Levels))
	}
}

package constraint

import (
	"testing"

	"github.com/yanlian/yanlian/pkg/model"
)

func ratio(v float64) *float64 { return &v }

func testConfig() *model.Config {
	return &model.Config{
		People: []model.Person{
			{ID: "张三"},
			{ID: "李四", Constraint: &model.PersonConstraint{AllowedDays: []string{"Tuesday"}}},
			{ID: "王五", Constraint: &model.PersonConstraint{MaxEveningRatio: ratio(0)}},
		},
		ScenarioApprovals: map[string][]string{
			"问诊": {"张三", "李四", "王五"},
			"告知": {"张三"},
		},
		ConflictRules: []model.ConflictRule{
			{ScenarioA: "问诊", ScenarioB: "告知", Scope: model.ConflictSameShift},
		},
	}
}

func testAvailability() model.AvailabilitySet {
	return model.NormalizeAvailabilitySet(map[string]map[string]any{
		"2026-03-03": {"张三": "both", "李四": "both", "王五": "am"},
		"2026-03-04": {"张三": "am"},
	})
}

func slotAt(date, weekday string, shift model.Shift, scenario string) model.Slot {
	return model.Slot{Week: 0, DaySlot: model.DaySlot1, Date: date, Weekday: weekday, Shift: shift, Scenario: scenario}
}

func TestContext_ApplyUndo(t *testing.T) {
	ctx := NewContext(testConfig(), testAvailability())
	slot := slotAt("2026-03-03", "Tuesday", model.ShiftEvening, "问诊")

	ctx.Apply(slot, "张三")

	if ctx.UsageCount("张三") != 1 {
		t.Errorf("UsageCount = %d, expected 1", ctx.UsageCount("张三"))
	}
	if ctx.EveningCount("张三") != 1 {
		t.Errorf("EveningCount = %d, expected 1", ctx.EveningCount("张三"))
	}
	if !ctx.UsedInWeekShift(0, model.ShiftEvening, "张三") {
		t.Error("本周晚场应已占用")
	}
	if ctx.UsedInWeekShift(0, model.ShiftMorning, "张三") {
		t.Error("早场不应被占用")
	}

	ctx.Undo(slot, "张三")

	if ctx.UsageCount("张三") != 0 {
		t.Errorf("撤销后 UsageCount = %d, expected 0", ctx.UsageCount("张三"))
	}
	if ctx.UsedInWeekShift(0, model.ShiftEvening, "张三") {
		t.Error("撤销后不应再占用")
	}
}

func TestContext_Eligible_Approval(t *testing.T) {
	ctx := NewContext(testConfig(), testAvailability())
	slot := slotAt("2026-03-03", "Tuesday", model.ShiftMorning, "告知")

	if !ctx.Eligible(slot, "张三", LevelStrict) {
		t.Error("张三被批准且可用，应合格")
	}
	if ctx.Eligible(slot, "李四", LevelStrict) {
		t.Error("李四未被告知情景批准，不应合格")
	}
}

func TestContext_Eligible_Availability(t *testing.T) {
	ctx := NewContext(testConfig(), testAvailability())

	// 王五仅早场可用
	if !ctx.Eligible(slotAt("2026-03-03", "Tuesday", model.ShiftMorning, "问诊"), "王五", LevelStrict) {
		t.Error("王五早场应合格")
	}
	if ctx.Eligible(slotAt("2026-03-03", "Tuesday", model.ShiftEvening, "问诊"), "王五", LevelIgnoreConflicts) {
		t.Error("可用性规则永不松弛，王五晚场不应合格")
	}
}

func TestContext_Eligible_WeekShiftUnique(t *testing.T) {
	ctx := NewContext(testConfig(), testAvailability())
	first := slotAt("2026-03-03", "Tuesday", model.ShiftMorning, "问诊")
	ctx.Apply(first, "张三")

	// 同周同班次的另一情景，即使在最高松弛级别也不合格
	second := slotAt("2026-03-04", "Wednesday", model.ShiftMorning, "告知")
	if ctx.Eligible(second, "张三", LevelIgnoreConflicts) {
		t.Error("周班次唯一规则永不松弛")
	}

	// 晚场不受早场占用影响
	evening := slotAt("2026-03-03", "Tuesday", model.ShiftEvening, "告知")
	if !ctx.Eligible(evening, "张三", LevelStrict) {
		t.Error("晚场应不受早场占用影响")
	}
}

func TestContext_Eligible_DayRestriction(t *testing.T) {
	ctx := NewContext(testConfig(), testAvailability())

	// 李四仅允许周二；2026-03-04 为周三
	wednesday := slotAt("2026-03-04", "Wednesday", model.ShiftMorning, "问诊")
	avail := model.AvailabilitySet{"2026-03-04": {"李四": model.AvailabilityBoth}}
	ctx = NewContext(testConfig(), avail)

	if ctx.Eligible(wednesday, "李四", LevelStrict) {
		t.Error("严格级别应拒绝非允许日")
	}
	if ctx.Eligible(wednesday, "李四", LevelIgnoreEveningRatio) {
		t.Error("级别1仍应拒绝非允许日")
	}
	if !ctx.Eligible(wednesday, "李四", LevelIgnoreDayRestrictions) {
		t.Error("级别2应忽略出勤日限制")
	}
}

func TestContext_Eligible_EveningRatio(t *testing.T) {
	cfg := testConfig()
	avail := model.AvailabilitySet{
		"2026-03-03": {"王五": model.AvailabilityBoth},
	}
	ctx := NewContext(cfg, avail)
	evening := slotAt("2026-03-03", "Tuesday", model.ShiftEvening, "问诊")

	// 占比0完全禁排晚场
	if ctx.Eligible(evening, "王五", LevelStrict) {
		t.Error("占比0应完全禁排晚场")
	}
	if !ctx.Eligible(evening, "王五", LevelIgnoreEveningRatio) {
		t.Error("级别1应忽略晚场占比上限")
	}
}

func TestContext_Eligible_EveningRatioProgressive(t *testing.T) {
	cfg := &model.Config{
		People: []model.Person{
			{ID: "赵六", Constraint: &model.PersonConstraint{MaxEveningRatio: ratio(0.5)}},
		},
		ScenarioApprovals: map[string][]string{"问诊": {"赵六"}},
	}
	avail := model.AvailabilitySet{
		"2026-03-03": {"赵六": model.AvailabilityBoth},
		"2026-03-04": {"赵六": model.AvailabilityBoth},
	}
	ctx := NewContext(cfg, avail)

	// 无任何分配时不评估占比
	evening := slotAt("2026-03-03", "Tuesday", model.ShiftEvening, "问诊")
	if !ctx.Eligible(evening, "赵六", LevelStrict) {
		t.Error("无历史分配时应允许晚场")
	}

	// 1次晚场后占比 1/1 >= 0.5，应被拒绝
	ctx.Apply(evening, "赵六")
	evening2 := model.Slot{Week: 1, DaySlot: model.DaySlot1, Date: "2026-03-10", Weekday: "Tuesday", Shift: model.ShiftEvening, Scenario: "问诊"}
	avail["2026-03-10"] = map[string]model.Availability{"赵六": model.AvailabilityBoth}
	if ctx.Eligible(evening2, "赵六", LevelStrict) {
		t.Error("占比达到上限后应拒绝晚场")
	}

	// 增加一次早场后占比 1/2 >= 0.5 仍达上限
	morning := slotAt("2026-03-04", "Wednesday", model.ShiftMorning, "问诊")
	ctx.Apply(morning, "赵六")
	if ctx.Eligible(evening2, "赵六", LevelStrict) {
		t.Error("占比 1/2 仍达 0.5 上限，应拒绝")
	}
}

func TestContext_Eligible_Conflict(t *testing.T) {
	// 互斥规则单独可见需要放开周班次唯一：用不同人的场景验证规则本身
	cfg := testConfig()
	avail := model.AvailabilitySet{
		"2026-03-03": {"张三": model.AvailabilityBoth},
		"2026-03-04": {"张三": model.AvailabilityBoth},
	}
	ctx := NewContext(cfg, avail)

	first := slotAt("2026-03-03", "Tuesday", model.ShiftMorning, "问诊")
	ctx.Apply(first, "张三")

	// 同周同班次的互斥情景：周班次唯一与互斥规则同时拒绝
	second := slotAt("2026-03-04", "Wednesday", model.ShiftMorning, "告知")
	if ctx.Eligible(second, "张三", LevelStrict) {
		t.Error("严格级别应拒绝互斥情景")
	}
	if ctx.Eligible(second, "张三", LevelIgnoreConflicts) {
		t.Error("级别3忽略互斥但周班次唯一仍生效")
	}
}

func TestContext_FirstRejection_Order(t *testing.T) {
	cfg := testConfig()
	avail := model.AvailabilitySet{
		"2026-03-03": {"张三": model.AvailabilityMorning},
	}
	ctx := NewContext(cfg, avail)

	// 可用性排在首位
	evening := slotAt("2026-03-03", "Tuesday", model.ShiftEvening, "问诊")
	if code, ok := ctx.FirstRejection(evening, "张三"); !ok || code != ReasonNotAvailable {
		t.Errorf("FirstRejection = %v %v, expected %v", code, ok, ReasonNotAvailable)
	}

	// 合格者无拒绝原因
	morning := slotAt("2026-03-03", "Tuesday", model.ShiftMorning, "问诊")
	if _, ok := ctx.FirstRejection(morning, "张三"); ok {
		t.Error("合格者不应有拒绝原因")
	}
}

func TestContext_FirstRejection_ConflictOverridesTaken(t *testing.T) {
	cfg := testConfig()
	avail := model.AvailabilitySet{
		"2026-03-03": {"张三": model.AvailabilityBoth},
	}
	ctx := NewContext(cfg, avail)

	ctx.Apply(slotAt("2026-03-03", "Tuesday", model.ShiftMorning, "问诊"), "张三")

	// 已承担的情景与目标互斥时，原因归为情景互斥
	conflicting := slotAt("2026-03-03", "Tuesday", model.ShiftMorning, "告知")
	if code, _ := ctx.FirstRejection(conflicting, "张三"); code != ReasonScenarioConflict {
		t.Errorf("FirstRejection = %v, expected %v", code, ReasonScenarioConflict)
	}
}

func TestRule_EnforcedAt(t *testing.T) {
	tests := []struct {
		name      string
		relaxedAt Level
		level     Level
		expected  bool
	}{
		{"核心规则级别3仍生效", LevelNever, LevelIgnoreConflicts, true},
		{"晚场占比严格级别生效", LevelIgnoreEveningRatio, LevelStrict, true},
		{"晚场占比级别1被忽略", LevelIgnoreEveningRatio, LevelIgnoreEveningRatio, false},
		{"互斥规则级别2仍生效", LevelIgnoreConflicts, LevelIgnoreDayRestrictions, true},
		{"互斥规则级别3被忽略", LevelIgnoreConflicts, LevelIgnoreConflicts, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := Rule{RelaxedAt: tt.relaxedAt}
			if result := rule.EnforcedAt(tt.level); result != tt.expected {
				t.Errorf("EnforcedAt(%v) = %v, expected %v", tt.level, result, tt.expected)
			}
		})
	}
}

func TestLevels_Order(t *testing.T) {
	levels := Levels()
	if len(levels) != 4 {
		t.Fatalf("应有4个松弛级别, got %d", len(levels))
	}
	for i := 1; i < len(levels); i++ {
		if levels[i] <= levels[i-1] {
			t.Error("松弛级别应严格升序")
		}
	}
}

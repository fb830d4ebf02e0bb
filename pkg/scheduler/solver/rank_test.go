package solver

import (
	"reflect"
	"testing"

	"github.com/yanlian/yanlian/pkg/model"
	"github.com/yanlian/yanlian/pkg/scheduler/constraint"
)

func rankContext(t *testing.T, people []model.Person, approvals map[string][]string) *constraint.Context {
	t.Helper()
	cfg := &model.Config{People: people, ScenarioApprovals: approvals}
	availability := model.AvailabilitySet{
		"2026-03-03": {},
	}
	for _, p := range people {
		availability["2026-03-03"][p.ID] = model.AvailabilityBoth
	}
	return constraint.NewContext(cfg, availability)
}

func TestRankCandidates_UsageFirst(t *testing.T) {
	people := []model.Person{{ID: "张三"}, {ID: "李四"}, {ID: "王五"}}
	cctx := rankContext(t, people, map[string][]string{"问诊": {"张三", "李四", "王五"}})

	slot := model.Slot{Week: 0, DaySlot: model.DaySlot1, Date: "2026-03-03",
		Weekday: "Tuesday", Shift: model.ShiftMorning, Scenario: "问诊"}
	cctx.Apply(slot, "张三")

	profile := map[string]int{"张三": 10, "李四": 10, "王五": 10}
	got := rankCandidates([]string{"张三", "李四", "王五"}, cctx, model.ShiftMorning, profile)

	// 张三已有一次分配，应排到最后
	want := []string{"李四", "王五", "张三"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("排序 = %v, expected %v", got, want)
	}
}

func TestRankCandidates_PreferMorningDemotedInEvening(t *testing.T) {
	people := []model.Person{
		{ID: "张三", Constraint: &model.PersonConstraint{PreferMorning: true}},
		{ID: "李四"},
	}
	cctx := rankContext(t, people, map[string][]string{"问诊": {"张三", "李四"}})
	profile := map[string]int{"张三": 5, "李四": 5}

	// 晚场：偏好早场者后置
	got := rankCandidates([]string{"张三", "李四"}, cctx, model.ShiftEvening, profile)
	if !reflect.DeepEqual(got, []string{"李四", "张三"}) {
		t.Errorf("晚场排序 = %v, expected [李四 张三]", got)
	}

	// 早场：偏好不参与排序，保持原序
	got = rankCandidates([]string{"张三", "李四"}, cctx, model.ShiftMorning, profile)
	if !reflect.DeepEqual(got, []string{"张三", "李四"}) {
		t.Errorf("早场排序 = %v, expected [张三 李四]", got)
	}
}

func TestRankCandidates_ScarcityTiebreak(t *testing.T) {
	people := []model.Person{{ID: "张三"}, {ID: "李四"}}
	cctx := rankContext(t, people, map[string][]string{"问诊": {"张三", "李四"}})

	// 机会少的优先
	profile := map[string]int{"张三": 8, "李四": 2}
	got := rankCandidates([]string{"张三", "李四"}, cctx, model.ShiftMorning, profile)
	if !reflect.DeepEqual(got, []string{"李四", "张三"}) {
		t.Errorf("排序 = %v, expected [李四 张三]", got)
	}
}

func TestRankCandidates_StableOnTies(t *testing.T) {
	people := []model.Person{{ID: "张三"}, {ID: "李四"}, {ID: "王五"}}
	cctx := rankContext(t, people, map[string][]string{"问诊": {"张三", "李四", "王五"}})
	profile := map[string]int{"张三": 3, "李四": 3, "王五": 3}

	input := []string{"王五", "张三", "李四"}
	got := rankCandidates(input, cctx, model.ShiftMorning, profile)

	if !reflect.DeepEqual(got, input) {
		t.Errorf("全平手应保持原序: got %v", got)
	}
	// 原切片不被修改
	if !reflect.DeepEqual(input, []string{"王五", "张三", "李四"}) {
		t.Error("rankCandidates 不应修改入参切片")
	}
}

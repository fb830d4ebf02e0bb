package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanlian/yanlian/pkg/model"
)

// 各班次的默认起止时间（本地时间，24小时制）
const (
	morningStartHour = 9
	morningEndHour   = 12
	eveningStartHour = 18
	eveningEndHour   = 21
)

// ICSExporter 导出 iCalendar (RFC 5545) 格式的排班日历
type ICSExporter struct {
	calendarName string
	now          func() time.Time
}

// NewICSExporter 创建日历导出器
func NewICSExporter(calendarName string) *ICSExporter {
	if calendarName == "" {
		calendarName = "情景演练排班"
	}
	return &ICSExporter{calendarName: calendarName, now: time.Now}
}

// Export 将排班渲染为 ICS 日历
// 每个已排槽位生成一个事件；同班次的多个情景各自独立成事件
func (e *ICSExporter) Export(schedule model.Schedule) (string, error) {
	var b strings.Builder

	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:-//yanlian//scenario-drill-scheduler//CN")
	writeLine(&b, "CALSCALE:GREGORIAN")
	writeLine(&b, "X-WR-CALNAME:"+escapeText(e.calendarName))

	stamp := e.now().UTC().Format("20060102T150405Z")

	for _, weekSched := range schedule {
		for _, daySlot := range model.DaySlots() {
			day := weekSched[daySlot]
			if day == nil {
				continue
			}

			date, err := time.Parse(model.DateFormat, day.Date)
			if err != nil {
				return "", fmt.Errorf("无效的训练日日期 %q: %w", day.Date, err)
			}

			for _, shift := range model.Shifts() {
				cells := day.Assignments(shift)
				scenarios := make([]string, 0, len(cells))
				for scenario := range cells {
					scenarios = append(scenarios, scenario)
				}
				sort.Strings(scenarios)

				for _, scenario := range scenarios {
					person := cells[scenario]
					if person == nil {
						continue
					}
					e.writeEvent(&b, date, shift, scenario, *person, stamp)
				}
			}
		}
	}

	writeLine(&b, "END:VCALENDAR")
	return b.String(), nil
}

// writeEvent 写入单个 VEVENT
func (e *ICSExporter) writeEvent(b *strings.Builder, date time.Time, shift model.Shift, scenario, person, stamp string) {
	startHour, endHour := morningStartHour, morningEndHour
	if shift == model.ShiftEvening {
		startHour, endHour = eveningStartHour, eveningEndHour
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), startHour, 0, 0, 0, date.Location())
	end := time.Date(date.Year(), date.Month(), date.Day(), endHour, 0, 0, 0, date.Location())

	writeLine(b, "BEGIN:VEVENT")
	writeLine(b, "UID:"+uuid.New().String()+"@yanlian")
	writeLine(b, "DTSTAMP:"+stamp)
	writeLine(b, "DTSTART:"+start.Format("20060102T150405"))
	writeLine(b, "DTEND:"+end.Format("20060102T150405"))
	writeLine(b, fmt.Sprintf("SUMMARY:%s %s - %s",
		escapeText(shiftLabel(shift)), escapeText(scenario), escapeText(person)))
	writeLine(b, "DESCRIPTION:"+escapeText(fmt.Sprintf("情景演练：%s（%s），演员：%s",
		scenario, shiftLabel(shift), person)))
	writeLine(b, "END:VEVENT")
}

// writeLine 写入一行并按 RFC 5545 使用 CRLF 结尾
func writeLine(b *strings.Builder, line string) {
	b.WriteString(foldLine(line))
	b.WriteString("\r\n")
}

// foldLine 按 RFC 5545 将超过75字节的行折行
func foldLine(line string) string {
	const limit = 75
	if len(line) <= limit {
		return line
	}

	var b strings.Builder
	for len(line) > limit {
		// 在字节上限内找最后一个完整的 UTF-8 边界
		cut := limit
		for cut > 0 && !isUTF8Start(line[cut]) {
			cut--
		}
		if cut == 0 {
			cut = limit
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
	}
	b.WriteString(line)
	return b.String()
}

// isUTF8Start 判断字节是否是 UTF-8 序列的首字节
func isUTF8Start(c byte) bool {
	return c&0xC0 != 0x80
}

// escapeText 转义 ICS 文本值中的特殊字符
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

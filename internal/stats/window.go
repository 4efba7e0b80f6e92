package stats

import (
	"time"
)

// Filter 表示统计管道聚合历史的时间窗口。
type Filter string

const (
	// FilterDaily 聚合当前自然日（本地零点起）
	FilterDaily Filter = "daily"
	// FilterMonthly 聚合当前自然月（当月1日零点起）
	FilterMonthly Filter = "monthly"
)

// ParseFilter 解析窗口参数，无法识别时回落到默认的Daily。
func ParseFilter(raw string) Filter {
	if Filter(raw) == FilterMonthly {
		return FilterMonthly
	}
	return FilterDaily
}

// WindowStart 计算窗口的起始时刻。
// Daily是当天本地零点；Monthly是当月1日本地零点。
// Monthly的窗口起点永远不晚于Daily，因此切换到Monthly只会扩大纳入的记录集。
func WindowStart(f Filter, now time.Time) time.Time {
	switch f {
	case FilterMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
}

package notifier

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"PriceBox/internal/calculator"
	"PriceBox/internal/model"
	"PriceBox/internal/pipeline"
	"PriceBox/internal/recorder"
)

// HelpText lists the bot commands.
const HelpText = "可用命令:\n• /chart 日期 [开始 结束] 例如 /chart 2024-01-01 09:00 12:00\n• /dates 查看数据日期范围\n• /history 查看最近归档记录\n• /archive 立即归档下一批日期"

// ChartLink returns the web UI address for sel, or "" when publicURL is empty.
func ChartLink(publicURL string, sel model.Selection) string {
	if publicURL == "" {
		return ""
	}
	q := url.Values{}
	q.Set("date", sel.Date.Format(model.DateLayout))
	q.Set("start", sel.Start.String())
	q.Set("end", sel.End.String())
	return strings.TrimRight(publicURL, "/") + "/?" + q.Encode()
}

// FormatChartSummary describes one pipeline result as a Telegram message.
func FormatChartSummary(res *pipeline.Result, instrument, publicURL string) string {
	sel := res.Selection
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s价格分布</b> | %s %s - %s\n\n",
		instrument, sel.Date.Format(model.DateLayout), sel.Start, sel.End))
	b.WriteString(fmt.Sprintf("时间段: %d | 记录数: %d\n", len(res.Series), res.Records))
	b.WriteString(fmt.Sprintf("🟢 上涨: %d | 🔴 下跌: %d\n", res.Up(), res.Down()))

	if low, high, err := calculator.ValueRange(res.Series); err == nil {
		b.WriteString(fmt.Sprintf("最低: %.5g | 最高: %.5g\n", low, high))
	}
	if n := len(res.Series); n > 0 {
		b.WriteString(fmt.Sprintf("首段: %s | 末段: %s\n", res.Series[0].Label, res.Series[n-1].Label))
	}
	if link := ChartLink(publicURL, sel); link != "" {
		b.WriteString(fmt.Sprintf("\n<a href=\"%s\">查看图表</a>", html.EscapeString(link)))
	}
	return b.String()
}

// FormatDates describes the date range of the loaded dataset.
func FormatDates(ds *model.Dataset) string {
	dates := ds.Dates()
	if len(dates) == 0 {
		return "数据集为空"
	}
	var b strings.Builder
	b.WriteString("📅 <b>数据日期范围</b>\n\n")
	b.WriteString(fmt.Sprintf("起始: %s\n", ds.MinDate().Format(model.DateLayout)))
	b.WriteString(fmt.Sprintf("结束: %s\n", ds.MaxDate().Format(model.DateLayout)))
	b.WriteString(fmt.Sprintf("交易日: %d | 记录数: %d\n", len(dates), ds.Len()))
	return b.String()
}

func statusIcon(status string) string {
	switch status {
	case recorder.StatusOK:
		return "✅"
	case recorder.StatusEmpty:
		return "⚪"
	default:
		return "❌"
	}
}

// FormatArchiveSummary reports one archive batch.
func FormatArchiveSummary(runs []recorder.ExportRun, remaining int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>归档完成</b> | %d 个日期\n\n", len(runs)))

	var ok, empty, failed int
	for _, r := range runs {
		switch r.Status {
		case recorder.StatusOK:
			ok++
		case recorder.StatusEmpty:
			empty++
		default:
			failed++
		}
		line := fmt.Sprintf("%s %s", statusIcon(r.Status), r.Date)
		if r.Status == recorder.StatusOK {
			line += fmt.Sprintf(" (%d段, %d文件)", r.Series, len(r.Files))
		} else if r.Note != "" {
			line += " " + r.Note
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(fmt.Sprintf("\n成功: %d | 无数据: %d | 失败: %d", ok, empty, failed))
	if remaining > 0 {
		b.WriteString(fmt.Sprintf("\n待归档: %d", remaining))
	}
	return b.String()
}

// FormatHistory lists recent archive runs, newest first.
func FormatHistory(runs []recorder.ExportRun) string {
	if len(runs) == 0 {
		return "暂无归档记录"
	}
	var b strings.Builder
	b.WriteString("🗂 <b>最近归档</b>\n\n")
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("%s %s %s-%s 段数%d (%s)\n",
			statusIcon(r.Status), r.Date, r.Start, r.End, r.Series, r.At.Format("2006-01-02 15:04")))
	}
	return b.String()
}

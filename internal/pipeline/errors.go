package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTime is returned when start or end text is not HH:MM.
	ErrInvalidTime = errors.New("invalid time input")
	// ErrInvalidDate is returned when the date text is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date input")
	// ErrEmptyDate means no record matches the selected date.
	ErrEmptyDate = errors.New("no records for selected date")
	// ErrEmptyRange means the date matched but nothing falls in the time window.
	ErrEmptyRange = errors.New("no records in selected time range")
)

// IsWarning reports whether err is an empty-result condition rather than a failure.
func IsWarning(err error) bool {
	return errors.Is(err, ErrEmptyDate) || errors.Is(err, ErrEmptyRange)
}

// IsInputError reports whether err was caused by malformed user input.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidTime) || errors.Is(err, ErrInvalidDate)
}

// UserMessage renders err in the wording shown to the viewer. date is the
// selected date as the user typed it.
func UserMessage(err error, date string) string {
	switch {
	case errors.Is(err, ErrEmptyDate):
		return fmt.Sprintf("没有找到 %s 的数据。请尝试选择其他日期。", date)
	case errors.Is(err, ErrEmptyRange):
		return "在所选时间范围内没有数据。"
	case errors.Is(err, ErrInvalidTime):
		return "请输入有效的时间格式 (HH:MM)。"
	case errors.Is(err, ErrInvalidDate):
		return "请输入有效的日期格式 (YYYY-MM-DD)。"
	default:
		return fmt.Sprintf("处理数据时发生错误: %v", err)
	}
}

package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"PriceBox/internal/model"
	"PriceBox/internal/pipeline"
	"PriceBox/internal/recorder"
)

// fakeAPI is a minimal Telegram Bot API.
type fakeAPI struct {
	mu       sync.Mutex
	sent     []string
	failures int
	updates  string
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/botTOKEN/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failures > 0 {
			f.failures--
			http.Error(w, `{"ok":false}`, http.StatusBadGateway)
			return
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["chat_id"] != "42" || payload["parse_mode"] != "HTML" {
			t.Errorf("unexpected payload: %v", payload)
		}
		text, _ := payload["text"].(string)
		f.sent = append(f.sent, text)
		fmt.Fprint(w, `{"ok":true,"result":{}}`)
	})
	mux.HandleFunc("/botTOKEN/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		body := f.updates
		f.updates = `{"ok":true,"result":[]}`
		f.mu.Unlock()
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode getUpdates payload: %v", err)
		}
		if _, ok := payload["offset"]; !ok {
			t.Error("missing offset")
		}
		fmt.Fprint(w, body)
	})
	return mux
}

func (f *fakeAPI) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newTestNotifier(t *testing.T, api *fakeAPI) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL
	return tn
}

func TestSend(t *testing.T) {
	api := &fakeAPI{}
	tn := newTestNotifier(t, api)
	if err := tn.Send("hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := api.messages(); len(got) != 1 || got[0] != "hello" {
		t.Errorf("sent = %v", got)
	}
}

func TestSendWithRetry(t *testing.T) {
	retryBase = time.Millisecond
	defer func() { retryBase = time.Second }()

	api := &fakeAPI{failures: 2}
	tn := newTestNotifier(t, api)
	if err := tn.SendWithRetry(context.Background(), "retry me", 3); err != nil {
		t.Fatalf("SendWithRetry: %v", err)
	}
	if got := api.messages(); len(got) != 1 {
		t.Errorf("expected one delivered message, got %v", got)
	}

	api.failures = 10
	if err := tn.SendWithRetry(context.Background(), "give up", 1); err == nil {
		t.Error("expected error after exhausting retries")
	}
}

func TestSendWithRetry_CancelsInFlight(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	started := time.Now()
	if err := tn.SendWithRetry(ctx, "slow", 0); err == nil {
		t.Error("expected error from cancelled send")
	}
	if elapsed := time.Since(started); elapsed > 5*time.Second {
		t.Errorf("send was not cancelled, took %v", elapsed)
	}
}

func TestEnabled(t *testing.T) {
	var nilNotifier *TelegramNotifier
	if nilNotifier.Enabled() {
		t.Error("nil notifier should be disabled")
	}
	if NewTelegramNotifier("", "", "").Enabled() {
		t.Error("empty token should be disabled")
	}
	if !NewTelegramNotifier("t", "c", "").Enabled() {
		t.Error("token and chat should be enabled")
	}
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":false,"description":"Bad Request: chat not found"}`)
	}))
	defer srv.Close()
	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL
	err := tn.Send("x")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("expected API error, got %v", err)
	}
}

func TestStartPolling(t *testing.T) {
	api := &fakeAPI{updates: `{"ok":true,"result":[
		{"update_id":6,"message":{"text":"/archive","chat":{"id":99}}},
		{"update_id":7,"message":{"text":" /dates ","chat":{"id":42}}}]}`}
	tn := newTestNotifier(t, api)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	handled := make(chan string, 1)
	go func() {
		defer close(done)
		tn.StartPolling(ctx, func(cmd string) string {
			handled <- cmd
			return "reply"
		})
	}()

	select {
	case got := <-handled:
		if got != "/dates" {
			t.Errorf("handler got %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no command handled")
	}

	deadline := time.Now().Add(5 * time.Second)
	for len(api.messages()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
	if msgs := api.messages(); len(msgs) != 1 || msgs[0] != "reply" {
		t.Errorf("replies = %v", msgs)
	}
}

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		Selection: model.Selection{
			Date:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Start: model.MustClock("09:00"),
			End:   model.MustClock("10:30"),
		},
		Series: []model.ChartSeries{
			{Label: "09:00", Values: []float64{1.30, 1.31, 1.29, 1.305}, Tag: model.TagUp},
			{Label: "09:05", Values: []float64{1.30, 1.32, 1.28, 1.29}, Tag: model.TagDown},
		},
		Records: 2,
	}
}

func TestFormatChartSummary(t *testing.T) {
	msg := FormatChartSummary(sampleResult(), "镑日", "http://viewer.local/")
	for _, want := range []string{
		"镑日价格分布", "2024-01-01 09:00 - 10:30",
		"时间段: 2", "上涨: 1", "下跌: 1",
		"最低: 1.28", "最高: 1.32",
		`href="http://viewer.local/?date=2024-01-01&amp;end=10%3A30&amp;start=09%3A00"`,
	} {
		if !strings.Contains(msg, want) && !strings.Contains(msg, strings.ReplaceAll(want, "&amp;", "&")) {
			t.Errorf("summary missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(FormatChartSummary(sampleResult(), "镑日", ""), "href") {
		t.Error("no link expected without public url")
	}
}

func TestFormatDates(t *testing.T) {
	ds := model.NewDataset([]model.Record{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	})
	msg := FormatDates(ds)
	for _, want := range []string{"起始: 2024-01-01", "结束: 2024-01-02", "交易日: 2", "记录数: 3"} {
		if !strings.Contains(msg, want) {
			t.Errorf("dates message missing %q:\n%s", want, msg)
		}
	}
	if FormatDates(model.NewDataset(nil)) != "数据集为空" {
		t.Error("unexpected message for empty dataset")
	}
}

func TestFormatArchiveSummary(t *testing.T) {
	runs := []recorder.ExportRun{
		{Date: "2024-01-01", Status: recorder.StatusOK, Series: 3, Files: []string{"a", "b"}},
		{Date: "2024-01-02", Status: recorder.StatusEmpty, Note: "在所选时间范围内没有数据。"},
		{Date: "2024-01-03", Status: recorder.StatusError, Note: "disk full"},
	}
	msg := FormatArchiveSummary(runs, 4)
	for _, want := range []string{"3 个日期", "2024-01-01 (3段, 2文件)", "disk full", "成功: 1 | 无数据: 1 | 失败: 1", "待归档: 4"} {
		if !strings.Contains(msg, want) {
			t.Errorf("archive summary missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatHistory(t *testing.T) {
	if FormatHistory(nil) != "暂无归档记录" {
		t.Error("unexpected empty history message")
	}
	msg := FormatHistory([]recorder.ExportRun{{
		Date: "2024-01-01", Start: "00:00", End: "23:55", Status: recorder.StatusOK, Series: 12,
		At: time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC),
	}})
	if !strings.Contains(msg, "2024-01-01 00:00-23:55 段数12 (2024-03-01 18:30)") {
		t.Errorf("history = %s", msg)
	}
}

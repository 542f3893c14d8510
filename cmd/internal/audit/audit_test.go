package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSink_LevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	s := LogSink{Log: slog.New(slog.NewJSONHandler(&buf, nil))}

	s.Record(context.Background(), Event{
		Action:    ActionLoginFailed,
		IP:        "10.0.0.1",
		UserAgent: "curl/8",
		At:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Meta:      map[string]any{"reason": "bad_password"},
	})

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode: %v (%s)", err, buf.String())
	}
	if line["level"] != "WARN" || line["msg"] != ActionLoginFailed {
		t.Fatalf("line=%v", line)
	}
	if line["remote"] != "10.0.0.1" || line["reason"] != "bad_password" {
		t.Fatalf("line=%v", line)
	}
	if _, ok := line["account_id"]; ok {
		t.Fatalf("empty account id must be omitted")
	}
}

func TestMulti_FansOut(t *testing.T) {
	var got []string
	m := Multi{
		Func(func(_ context.Context, e Event) { got = append(got, "a:"+e.Action) }),
		nil,
		Func(func(_ context.Context, e Event) { got = append(got, "b:"+e.Action) }),
	}
	m.Record(context.Background(), Event{Action: ActionRegister})
	if len(got) != 2 || got[0] != "a:auth.register" || got[1] != "b:auth.register" {
		t.Fatalf("got=%v", got)
	}
}

func TestPostgresSink_Record(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	var logs bytes.Buffer
	s, err := NewPostgresSink(mock, "", slog.New(slog.NewJSONHandler(&logs, nil)))
	require.NoError(t, err)
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	meta := `{"route":"login"}`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO "fakie"."audit_log"`).
			WithArgs(nil, ActionRateLimitReject, at, "10.0.0.1", nil, &meta).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		s.Record(ctx, Event{Action: ActionRateLimitReject, IP: "10.0.0.1", At: at, Meta: map[string]any{"route": "login"}})
	})

	t.Run("insert failure is logged", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO "fakie"."audit_log"`).
			WithArgs("acct", ActionLogout, at, nil, nil, (*string)(nil)).
			WillReturnError(errors.New("db error"))

		s.Record(ctx, Event{Action: ActionLogout, AccountID: "acct", At: at})
		assert.Contains(t, logs.String(), "audit.insert.fail")
	})

	t.Run("blank action is skipped", func(t *testing.T) {
		s.Record(ctx, Event{Action: "  "})
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

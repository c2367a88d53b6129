package bulk

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
	}{
		{StatusCreated, false},
		{StatusRunning, false},
		{StatusCanceling, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusCanceled, true},
		{StatusExpired, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestCountUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Count
		wantErr bool
	}{
		{"quoted", `"1024"`, 1024, false},
		{"bare", `1024`, 1024, false},
		{"zero", `"0"`, 0, false},
		{"null", `null`, 0, false},
		{"empty string", `""`, 0, false},
		{"garbage", `"lots"`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Count
			err := json.Unmarshal([]byte(tt.input), &c)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalJSON(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && c != tt.want {
				t.Errorf("UnmarshalJSON(%s) = %d, want %d", tt.input, c, tt.want)
			}
		})
	}
}

func TestOperationUnmarshal(t *testing.T) {
	payload := `{
		"id": "gid://shopify/BulkOperation/9",
		"type": "MUTATION",
		"status": "COMPLETED",
		"query": "mutation { }",
		"createdAt": "2024-07-01T10:00:00Z",
		"completedAt": "2024-07-01T10:05:00Z",
		"objectCount": "250",
		"fileSize": "8192",
		"url": "https://storage.example.com/r.jsonl",
		"partialDataUrl": null,
		"errorCode": null
	}`

	var op Operation
	if err := json.Unmarshal([]byte(payload), &op); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if op.Kind != KindMutation {
		t.Errorf("Kind = %s, want MUTATION", op.Kind)
	}
	if op.ObjectCount != 250 || op.FileSize != 8192 {
		t.Errorf("counts = %d/%d, want 250/8192", op.ObjectCount, op.FileSize)
	}
	if op.CompletedAt == nil || !op.CompletedAt.Equal(time.Date(2024, 7, 1, 10, 5, 0, 0, time.UTC)) {
		t.Errorf("CompletedAt = %v", op.CompletedAt)
	}
	if op.PartialDataURL != "" || op.ErrorCode != "" {
		t.Errorf("null fields should stay empty, got %q %q", op.PartialDataURL, op.ErrorCode)
	}
}

func TestStagedTargetParameter(t *testing.T) {
	target := StagedTarget{Parameters: []StagedParameter{
		{Name: "policy", Value: "p"},
		{Name: "key", Value: "tmp/vars.jsonl"},
	}}

	if v, ok := target.Parameter("key"); !ok || v != "tmp/vars.jsonl" {
		t.Errorf("Parameter(key) = %q, %v", v, ok)
	}
	if _, ok := target.Parameter("missing"); ok {
		t.Error("Parameter(missing) should report absence")
	}
}

func TestUserErrorString(t *testing.T) {
	e := UserError{Field: []string{"input", "title"}, Message: "is too long"}
	if got := e.String(); got != "input.title: is too long" {
		t.Errorf("String() = %q", got)
	}
	e = UserError{Message: "shop is frozen"}
	if got := e.String(); got != "shop is frozen" {
		t.Errorf("String() = %q", got)
	}
}

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	assert.Equal(t, "", Text(nil))
	s := "knee pain"
	assert.Equal(t, "knee pain", Text(&s))
}

func TestValueText(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{``, "", false},
		{`null`, "", false},
		{` null `, "", false},
		{`4`, "4", true},
		{`3.5`, "3.5", true},
		{`"5"`, "5", true},
		{`true`, "true", true},
		{`[1,2]`, "[1,2]", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ValueText(json.RawMessage(tt.raw))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntake_DecodesAnyDuration(t *testing.T) {
	for _, raw := range []string{`3`, `3.5`, `"5"`, `null`} {
		var in Intake
		require.NoError(t, json.Unmarshal([]byte(`{"duration_days":`+raw+`}`), &in), raw)
		assert.JSONEq(t, raw, string(in.DurationDays))
	}

	var in Intake
	require.NoError(t, json.Unmarshal([]byte(`{}`), &in))
	assert.Nil(t, in.DurationDays)
	assert.Nil(t, in.ReportedSymptom)
	assert.Nil(t, in.Severity)
}

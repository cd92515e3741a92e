package rest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBody(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields bodyFields
		want   string
	}{
		{
			name:   "empty strings become null",
			body:   `{"description":"","name":"Red"}`,
			fields: teamFields,
			want:   `{"description":null,"name":"Red"}`,
		},
		{
			name:   "whitespace only is empty",
			body:   `{"notes":"   "}`,
			fields: progressFields,
			want:   `{"notes":null}`,
		},
		{
			name:   "integer strings in numeric fields",
			body:   `{"points":"-5","team_id":" 3 "}`,
			fields: scoreFields,
			want:   `{"points":-5,"team_id":3}`,
		},
		{
			name:   "numeric strings elsewhere are kept",
			body:   `{"code":"42"}`,
			fields: teamFields,
			want:   `{"code":"42"}`,
		},
		{
			name:   "datetime-local",
			body:   `{"achieved_at":"2025-12-05T10:00"}`,
			fields: scoreFields,
			want:   `{"achieved_at":"2025-12-05T10:00:00Z"}`,
		},
		{
			name:   "date only",
			body:   `{"completed_at":"2025-12-05"}`,
			fields: progressFields,
			want:   `{"completed_at":"2025-12-05T00:00:00Z"}`,
		},
		{
			name:   "invalid values are left for the decoder",
			body:   `{"achieved_at":"yesterday","points":"1.5"}`,
			fields: scoreFields,
			want:   `{"achieved_at":"yesterday","points":"1.5"}`,
		},
		{
			name:   "non-object body is unchanged",
			body:   `[1,2]`,
			fields: scoreFields,
			want:   `[1,2]`,
		},
		{
			name:   "malformed body is unchanged",
			body:   `{"name":`,
			fields: teamFields,
			want:   `{"name":`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeBody([]byte(tt.body), tt.fields)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid json", `{"name": "test", "age": 30}`, false},
		{"trailing comma", `{"name": "test", "age": 30,}`, true},
		{"empty body", "", true},
		{"wrong type", `{"age": "thirty"}`, true},
		{"two values", `{"name":"a"} {"name":"b"}`, true},
		{"oversized", `{"name":"` + strings.Repeat("x", MaxRequestBodyBytes) + `"}`, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.body))
			var got payload

			err := DecodeJSON(httptest.NewRecorder(), req, &got)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRequestFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, payload{Name: "test", Age: 30}, got)
		})
	}
}

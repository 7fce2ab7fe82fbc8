package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
		fails   bool
	}{
		{name: "valid", body: `{"name":"test"}`, want: "test"},
		{name: "unknown fields are ignored", body: `{"name":"test","extra":1}`, want: "test"},
		{name: "empty body", body: ``, wantErr: ErrEmptyBody, fails: true},
		{name: "malformed", body: `{"name":"test",}`, fails: true},
		{name: "trailing value", body: `{"name":"a"}{"name":"b"}`, fails: true},
		{name: "wrong type", body: `{"name":42}`, fails: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var p payload

			err := DecodeJSON(httptest.NewRecorder(), r, &p)

			if !tc.fails {
				assert.NoError(t, err)
				assert.Equal(t, tc.want, p.Name)
				return
			}
			assert.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

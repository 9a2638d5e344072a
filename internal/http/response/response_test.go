package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	FirstName string `validate:"required,max=100"`
	Email     string `validate:"required,email"`
	RoleID    string `validate:"required,numeric"`
}

func TestValidationError(t *testing.T) {
	validate := validator.New()

	tests := []struct {
		name string
		form form
		want string
	}{
		{
			name: "пустая форма",
			form: form{},
			want: "field FirstName is a required field, field Email is a required field, field RoleID is a required field",
		},
		{
			name: "некорректная почта",
			form: form{FirstName: "Ivan", Email: "not-an-email", RoleID: "2"},
			want: "field Email must be a valid email address",
		},
		{
			name: "нечисловая роль",
			form: form{FirstName: "Ivan", Email: "a@b.c", RoleID: "abc"},
			want: "field RoleID can contain only numbers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.form)
			require.Error(t, err)

			got := ValidationError(err.(validator.ValidationErrors))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOKWithData(t *testing.T) {
	resp := OKWithData(map[string]any{"status": "ok"})
	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
}

func TestError(t *testing.T) {
	resp := Error("boom")
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "boom", resp.Error)
}

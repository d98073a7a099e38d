package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/assohub/assohub-backend/internal/model"
	"github.com/assohub/assohub-backend/internal/service"
)

func TestPersonalize(t *testing.T) {
	recipient := model.Recipient{
		MemberID:        42,
		Name:            "Ann",
		Email:           "ann@example.org",
		AssociationName: "Rivertown Makers",
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "all tokens",
			template: "Hi {{name}} ({{email}}), member {{member_id}} of {{association_name}}",
			want:     "Hi Ann (ann@example.org), member 42 of Rivertown Makers",
		},
		{
			name:     "name and id",
			template: "Hi {{name}}, id {{member_id}}",
			want:     "Hi Ann, id 42",
		},
		{
			name:     "unknown token stays verbatim",
			template: "Hi {{name}}, your {{coupon_code}} awaits",
			want:     "Hi Ann, your {{coupon_code}} awaits",
		},
		{
			name:     "no tokens",
			template: "plain text",
			want:     "plain text",
		},
		{
			name:     "empty template unchanged",
			template: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.Personalize(tt.template, recipient))
		})
	}
}

func TestPersonalizeDefaultsName(t *testing.T) {
	got := service.Personalize("Dear {{name}}", model.Recipient{MemberID: 7, Email: "x@y.z"})
	assert.Equal(t, "Dear Member", got)
}

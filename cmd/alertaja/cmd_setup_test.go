package main

import (
	"testing"

	"alertaja/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContactFlag(t *testing.T) {
	tests := []struct {
		in   string
		want service.ContactInput
	}{
		{"Maria=923000001", service.ContactInput{Name: "Maria", Phone: "923000001"}},
		{"Polícia=113,police", service.ContactInput{Name: "Polícia", Phone: "113", IsPolice: true}},
		{"Agente=924000000, POLICE", service.ContactInput{Name: "Agente", Phone: "924000000", IsPolice: true}},
		{"Irmão=925000000,other", service.ContactInput{Name: "Irmão", Phone: "925000000"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseContactFlag(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseContactFlag_Invalid(t *testing.T) {
	_, err := parseContactFlag("Maria 923000001")
	assert.Error(t, err)
}

func TestDeref(t *testing.T) {
	s := "maria_ao"
	assert.Equal(t, "maria_ao", deref(&s))
	assert.Equal(t, "-", deref(nil))
}

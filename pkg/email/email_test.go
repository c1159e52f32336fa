package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInDomain(t *testing.T) {
	tests := []struct {
		name    string
		address string
		domain  string
		want    bool
	}{
		{"exact domain", "dana@final.co.il", "final.co.il", true},
		{"case-insensitive", "Dana@FINAL.co.il", "final.co.il", true},
		{"leading at in config", "dana@final.co.il", "@final.co.il", true},
		{"suffix lookalike", "dana@evilfinal.co.il", "final.co.il", false},
		{"subdomain", "dana@mail.final.co.il", "final.co.il", false},
		{"other domain", "dana@example.com", "final.co.il", false},
		{"missing host", "dana@", "final.co.il", false},
		{"missing local part", "@final.co.il", "final.co.il", false},
		{"no restriction", "dana@example.com", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InDomain(tt.address, tt.domain))
		})
	}
}

func TestDeriveDisplayName(t *testing.T) {
	assert.Equal(t, "Dana Levi", DeriveDisplayName("dana.levi@final.co.il"))
	assert.Equal(t, "Dana", DeriveDisplayName("dana@final.co.il"))
	assert.Equal(t, "User", DeriveDisplayName("+++@final.co.il"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "dana@final.co.il", Normalize("  Dana@Final.CO.IL "))
}

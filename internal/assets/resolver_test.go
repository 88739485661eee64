package assets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/anatomyflash/internal/assets"
)

func TestStaticResolver_ImageURL(t *testing.T) {
	r := assets.NewStaticResolver("/static/images/")

	tests := []struct {
		ref  string
		want string
	}{
		{"lungs.png", "/static/images/lungs.png"},
		{"static/images/lungs.png", "/static/images/lungs.png"},
		{"/static/images/digestive/liver.png", "/static/images/digestive/liver.png"},
		{"https://example.org/thymus.jpg", "https://example.org/thymus.jpg"},
	}
	for _, tt := range tests {
		got, err := r.ImageURL(tt.ref)
		require.NoError(t, err, tt.ref)
		assert.Equal(t, tt.want, got)
	}
}

func TestStaticResolver_Rejects(t *testing.T) {
	r := assets.NewStaticResolver("static/images")

	_, err := r.ImageURL("")
	assert.Error(t, err)
	_, err = r.ImageURL("../secrets.txt")
	assert.Error(t, err)
	_, err = r.ImageURL("static/images/../../etc/passwd")
	assert.Error(t, err)
}

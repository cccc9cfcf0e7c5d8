package tmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	Title       string
	Description string
	PrizeAmount float64
	Tags        []string
}

func TestRender(t *testing.T) {
	data := event{
		Title:       "JACKPOT WINNER!",
		Description: "Maria's big night",
		PrizeAmount: 125000,
		Tags:        []string{"vip", "lottery"},
	}

	tests := []struct {
		name    string
		tmpl    string
		want    string
		wantErr string
	}{
		{"field", "{{ .Title }}", "JACKPOT WINNER!", ""},
		{"shell quote", "notify-send {{ .Description | shq }}", `notify-send 'Maria'\''s big night'`, ""},
		{"money", "{{ money .PrizeAmount }}", "$125,000", ""},
		{"join", `{{ join .Tags "," }}`, "vip,lottery", ""},
		{"case", "{{ lower .Title }}", "jackpot winner!", ""},
		{"unknown field", "{{ .Winner }}", "", "execute template"},
		{"syntax", "{{ .Title", "", "parse template"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, data)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_missing_map_key(t *testing.T) {
	_, err := Render("{{ .Missing }}", map[string]string{"Title": "x"})
	assert.Error(t, err)
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "''", shellQuote(""))
	assert.Equal(t, "'plain'", shellQuote("plain"))
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$0", money(0))
	assert.Equal(t, "$999", money(999))
	assert.Equal(t, "$1,000", money(1000))
	assert.Equal(t, "$1,234,567", money(1234567))
	assert.Equal(t, "-$2,500", money(-2500))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("{{ .Title }}", event{}))
	assert.Error(t, Validate("{{ .Nope }}", event{}))
}

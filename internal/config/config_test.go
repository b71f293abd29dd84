package config

import "testing"

func TestGroupConfigured(t *testing.T) {
	t.Parallel()

	cfg := &TelegramConfig{}
	if cfg.GroupConfigured() {
		t.Error("zero group chat id reported as configured")
	}

	cfg.GroupChatID = -1001234567890
	if !cfg.GroupConfigured() {
		t.Error("non-zero group chat id reported as unconfigured")
	}
}

func TestRedactToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "long token keeps prefix", token: "123456789:AAFakeTokenValue", want: "12345678..."},
		{name: "short token fully hidden", token: "secret", want: "..."},
		{name: "empty", token: "", want: "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := redactToken(tt.token); got != tt.want {
				t.Errorf("redactToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}
